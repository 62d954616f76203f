package droptable

import (
	"fmt"
	"strings"
)

// Rarity tiers in ascending order. The zero value is Common.
type Rarity int

const (
	Common Rarity = iota
	Rare
	Epic
	Legendary
)

var rarityNames = [...]string{"common", "rare", "epic", "legendary"}

// Rarities lists every tier in ascending order.
var Rarities = []Rarity{Common, Rare, Epic, Legendary}

func (r Rarity) String() string {
	if r < Common || r > Legendary {
		return fmt.Sprintf("rarity(%d)", int(r))
	}
	return rarityNames[r]
}

func ParseRarity(s string) (Rarity, error) {
	for i, name := range rarityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Rarity(i), nil
		}
	}
	return Common, fmt.Errorf("unknown rarity %q", s)
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = Common
		return nil
	}
	parsed, err := ParseRarity(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
