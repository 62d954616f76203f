// Package catalog holds the read-only reference data the engine consumes:
// quest templates, streaming targets, reward items, badges and featured
// pools. It is loaded from a TOML file owned by the content team.
package catalog

import (
	"fmt"
	"math/rand/v2"
	"os"
	"progression-engine/internal/config"
	"progression-engine/internal/domain"
	"progression-engine/internal/droptable"
	"progression-engine/internal/period"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

type Catalog struct {
	Quests    QuestSettings   `toml:"quests"`
	DropTable DropTable       `toml:"drop_table"`
	Templates []QuestTemplate `toml:"quest_templates"`
	Tracks    []Track         `toml:"tracks"`
	Albums    []Album         `toml:"albums"`
	Items     []Item          `toml:"items"`
	Badges    []Badge         `toml:"badges"`
	Pools     []Pool          `toml:"featured_pools"`

	badgeIndex map[string]Badge
	itemIndex  map[string]Item
}

type QuestSettings struct {
	DailyCount  int `toml:"daily_count"`
	WeeklyCount int `toml:"weekly_count"`
}

type DropTable struct {
	Weights WeightSet `toml:"weights"`
}

type WeightSet struct {
	Common    int `toml:"common"`
	Rare      int `toml:"rare"`
	Epic      int `toml:"epic"`
	Legendary int `toml:"legendary"`
}

func (w WeightSet) Weights() droptable.Weights {
	return droptable.Weights{w.Common, w.Rare, w.Epic, w.Legendary}
}

type QuestTemplate struct {
	Code       string           `toml:"code"`
	Period     period.Kind      `toml:"period"`
	Title      string           `toml:"title"`
	GoalType   string           `toml:"goal_type"`
	GoalMin    int              `toml:"goal_min"`
	GoalMax    int              `toml:"goal_max"`
	TargetKind string           `toml:"target_kind"` // "", "track" or "album"
	Targets    int              `toml:"targets"`
	PerTarget  int              `toml:"per_target"`
	RewardDust int64            `toml:"reward_dust"`
	RewardXP   int64            `toml:"reward_xp"`
	Ticket     droptable.Rarity `toml:"ticket"`
	Badge      string           `toml:"badge"`
}

type Track struct {
	Name   string `toml:"name"`
	Artist string `toml:"artist"`
}

type Album struct {
	Name       string `toml:"name"`
	Artist     string `toml:"artist"`
	TrackCount int    `toml:"track_count"`
}

type Item struct {
	ID     string           `toml:"id"`
	Name   string           `toml:"name"`
	Rarity droptable.Rarity `toml:"rarity"`
	Set    string           `toml:"set"`
}

type Badge struct {
	Code   string           `toml:"code"`
	Name   string           `toml:"name"`
	Rarity droptable.Rarity `toml:"rarity"`
	Active *bool            `toml:"active"`
}

type Pool struct {
	ID       string          `toml:"id"`
	StartsAt time.Time       `toml:"starts_at"`
	EndsAt   time.Time       `toml:"ends_at"`
	Weights  *WeightSet      `toml:"weights"`
	Boost    droptable.Boost `toml:"boost"`
	Set      string          `toml:"set"`
	Members  []string        `toml:"members"`
}

// New loads the catalog named by the configuration.
func New(cfg *config.Config, logger zerolog.Logger) (*Catalog, error) {
	c, err := Load(cfg.CatalogPath)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.CatalogPath).Msg("failed to load catalog")
		return nil, err
	}

	logger.Info().
		Str("path", cfg.CatalogPath).
		Int("templates", len(c.Templates)).
		Int("items", len(c.Items)).
		Int("badges", len(c.badgeIndex)).
		Int("featured_pools", len(c.Pools)).
		Msg("catalog loaded")

	return c, nil
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

func (c *Catalog) validate() error {
	if c.Quests.DailyCount <= 0 {
		c.Quests.DailyCount = 3
	}
	if c.Quests.WeeklyCount <= 0 {
		c.Quests.WeeklyCount = 3
	}
	if c.DropTable.Weights.Weights().Total() <= 0 {
		c.DropTable.Weights = WeightSet{Common: 70, Rare: 22, Epic: 7, Legendary: 1}
	}

	seen := make(map[string]bool, len(c.Templates))
	for _, tpl := range c.Templates {
		if tpl.Code == "" || tpl.GoalType == "" {
			return fmt.Errorf("quest template %q needs a code and a goal_type", tpl.Code)
		}
		if tpl.Period != period.Daily && tpl.Period != period.Weekly {
			return fmt.Errorf("quest template %q has invalid period %q", tpl.Code, tpl.Period)
		}
		key := string(tpl.Period) + "/" + tpl.Code
		if seen[key] {
			return fmt.Errorf("duplicate quest template %q", tpl.Code)
		}
		seen[key] = true

		switch tpl.TargetKind {
		case "":
			if tpl.GoalMin <= 0 {
				return fmt.Errorf("quest template %q needs goal_min > 0", tpl.Code)
			}
		case "track", "album":
			if tpl.Targets <= 0 || tpl.PerTarget <= 0 {
				return fmt.Errorf("streaming template %q needs targets and per_target", tpl.Code)
			}
		default:
			return fmt.Errorf("quest template %q has invalid target_kind %q", tpl.Code, tpl.TargetKind)
		}
	}

	for _, p := range c.Pools {
		if !p.EndsAt.After(p.StartsAt) {
			return fmt.Errorf("featured pool %q ends before it starts", p.ID)
		}
	}
	return nil
}

// index registers the generated streak badge families unless the file
// already lists them (possibly inactive).
func (c *Catalog) index() {
	c.badgeIndex = make(map[string]Badge)
	for _, b := range c.Badges {
		c.badgeIndex[b.Code] = b
	}

	for _, kind := range []period.Kind{period.Daily, period.Weekly} {
		for pos := 1; pos <= domain.CycleLength; pos++ {
			c.ensureBadge(fmt.Sprintf("%s_streak_%d", kind, pos), droptable.Common)
		}
		for n := 1; n <= domain.MaxStreak/domain.CycleLength; n++ {
			c.ensureBadge(fmt.Sprintf("%s_milestone_%d", kind, n), droptable.Epic)
		}
		for count := 1; count <= domain.MaxStreak; count++ {
			c.ensureBadge(fmt.Sprintf("%s_completion_%d", kind, count), droptable.Rare)
		}
	}

	c.itemIndex = make(map[string]Item, len(c.Items))
	for _, item := range c.Items {
		c.itemIndex[item.ID] = item
	}
}

func (c *Catalog) ensureBadge(code string, rarity droptable.Rarity) {
	if _, ok := c.badgeIndex[code]; ok {
		return
	}
	c.badgeIndex[code] = Badge{Code: code, Rarity: rarity}
}

// Badge returns an active badge by code.
func (c *Catalog) Badge(code string) (domain.Badge, bool) {
	b, ok := c.badgeIndex[code]
	if !ok {
		return domain.Badge{}, false
	}
	active := b.Active == nil || *b.Active
	return domain.Badge{Code: b.Code, Name: b.Name, Rarity: b.Rarity, Active: active}, active
}

func (c *Catalog) Item(id string) (Item, bool) {
	item, ok := c.itemIndex[id]
	return item, ok
}

func (c *Catalog) BaseWeights() droptable.Weights {
	return c.DropTable.Weights.Weights()
}

func (c *Catalog) FeaturedPools() []droptable.FeaturedPool {
	pools := make([]droptable.FeaturedPool, 0, len(c.Pools))
	for _, p := range c.Pools {
		fp := droptable.FeaturedPool{
			ID:       p.ID,
			StartsAt: p.StartsAt,
			EndsAt:   p.EndsAt,
			Boost:    p.Boost,
			SetID:    p.Set,
			Members:  p.Members,
		}
		if p.Weights != nil {
			w := p.Weights.Weights()
			fp.Weights = &w
		}
		pools = append(pools, fp)
	}
	return pools
}

// ItemsFor returns the items of a rarity, constrained to the pool's set and
// member list when a featured pool is active.
func (c *Catalog) ItemsFor(rarity droptable.Rarity, pool *droptable.FeaturedPool) []Item {
	var members map[string]bool
	if pool != nil && len(pool.Members) > 0 {
		members = make(map[string]bool, len(pool.Members))
		for _, id := range pool.Members {
			members[id] = true
		}
	}

	var items []Item
	for _, item := range c.Items {
		if item.Rarity != rarity {
			continue
		}
		if pool != nil && pool.SetID != "" && item.Set != pool.SetID {
			continue
		}
		if members != nil && !members[item.ID] {
			continue
		}
		items = append(items, item)
	}
	return items
}

// PickItem samples uniformly from ItemsFor.
func (c *Catalog) PickItem(rng *rand.Rand, rarity droptable.Rarity, pool *droptable.FeaturedPool) (Item, bool) {
	items := c.ItemsFor(rarity, pool)
	if len(items) == 0 {
		return Item{}, false
	}
	return items[rng.IntN(len(items))], true
}
