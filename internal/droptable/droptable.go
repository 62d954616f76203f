// Package droptable implements weighted rarity selection with pity counters,
// ticket floors and time-boxed featured pools. It performs no I/O; callers
// persist the returned pity state and audit the outcome.
package droptable

import (
	"math/rand/v2"
	"time"
)

const (
	EpicPityThreshold      = 15
	LegendaryPityThreshold = 50
)

// Weights holds one weight per rarity, indexed by Rarity.
type Weights [4]int

var DefaultWeights = Weights{70, 22, 7, 1}

func (w Weights) Total() int {
	total := 0
	for _, weight := range w {
		total += weight
	}
	return total
}

func (w Weights) Map() map[string]int {
	m := make(map[string]int, len(w))
	for i, weight := range w {
		m[Rarity(i).String()] = weight
	}
	return m
}

func WeightsFromMap(m map[string]int) Weights {
	var w Weights
	for name, weight := range m {
		if r, err := ParseRarity(name); err == nil {
			w[r] = weight
		}
	}
	return w.clamp()
}

func (w Weights) clamp() Weights {
	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
	}
	return w
}

// WithBoost adds featured boosts to the epic and legendary weights. Results
// never go below zero.
func (w Weights) WithBoost(b Boost) Weights {
	w[Epic] += b.Epic
	w[Legendary] += b.Legendary
	return w.clamp()
}

// Floor zeroes every tier below min.
func (w Weights) Floor(min Rarity) Weights {
	for r := Common; r < min && r <= Legendary; r++ {
		w[r] = 0
	}
	return w
}

type Boost struct {
	Epic      int `json:"epic" toml:"epic"`
	Legendary int `json:"legendary" toml:"legendary"`
}

// FeaturedPool is a reward table that replaces or boosts the default weights
// during [StartsAt, EndsAt). SetID and Members constrain which items it drops.
type FeaturedPool struct {
	ID       string
	StartsAt time.Time
	EndsAt   time.Time
	Weights  *Weights
	Boost    Boost
	SetID    string
	Members  []string
}

func (p FeaturedPool) ActiveAt(t time.Time) bool {
	return !t.Before(p.StartsAt) && t.Before(p.EndsAt)
}

// Table is the resolved weight table for one roll.
type Table struct {
	Weights Weights
	Boost   Boost
	Pool    *FeaturedPool
}

// Resolve picks the first featured pool active at now, falling back to base.
func Resolve(now time.Time, base Weights, pools []FeaturedPool) Table {
	for i := range pools {
		pool := pools[i]
		if !pool.ActiveAt(now) {
			continue
		}
		weights := base
		if pool.Weights != nil {
			weights = *pool.Weights
		}
		return Table{Weights: weights.clamp(), Boost: pool.Boost, Pool: &pool}
	}
	return Table{Weights: base.clamp()}
}

type Band struct {
	MinXP   int
	Weights Weights
}

var XPBands = []Band{
	{MinXP: 0, Weights: Weights{85, 15, 0, 0}},
	{MinXP: 5, Weights: Weights{60, 30, 10, 0}},
	{MinXP: 10, Weights: Weights{45, 35, 17, 3}},
	{MinXP: 15, Weights: Weights{30, 40, 24, 6}},
}

// WeightsForXPBand selects weights from the XP earned in a single activity.
func WeightsForXPBand(xp int) Weights {
	weights := XPBands[0].Weights
	for _, band := range XPBands {
		if xp >= band.MinXP {
			weights = band.Weights
		}
	}
	return weights
}

// Pity counts consecutive rolls below epic and below legendary.
type Pity struct {
	SinceEpic      int `json:"since_epic"`
	SinceLegendary int `json:"since_legendary"`
}

type ForceReason string

const (
	NotForced      ForceReason = ""
	PityLegendary  ForceReason = "pity_legendary"
	PityEpic       ForceReason = "pity_epic"
	TicketFloor    ForceReason = "ticket"
	EmptyTableFall ForceReason = "empty_table"
)

// Floor reports the minimum rarity pity forces. The legendary threshold is
// checked first.
func (p Pity) Floor() (Rarity, ForceReason) {
	switch {
	case p.SinceLegendary >= LegendaryPityThreshold:
		return Legendary, PityLegendary
	case p.SinceEpic >= EpicPityThreshold:
		return Epic, PityEpic
	default:
		return Common, NotForced
	}
}

// After returns the counters following a roll of r.
func (p Pity) After(r Rarity) Pity {
	switch {
	case r >= Legendary:
		return Pity{}
	case r == Epic:
		return Pity{SinceEpic: 0, SinceLegendary: p.SinceLegendary + 1}
	default:
		return Pity{SinceEpic: p.SinceEpic + 1, SinceLegendary: p.SinceLegendary + 1}
	}
}

type Request struct {
	Table Table
	Pity  Pity
	// MinRarity is a ticket floor. Common means no ticket.
	MinRarity Rarity
}

type Outcome struct {
	Rarity  Rarity
	Weights Weights
	Total   int
	// Draw is the sampled value in [0, Total), or -1 when nothing was sampled.
	Draw   int
	Forced ForceReason
	Pity   Pity
}

// Roll resolves one rarity. Pity wins outright over a ticket floor; a
// legendary pity short-circuits sampling entirely.
func Roll(rng *rand.Rand, req Request) Outcome {
	floor, reason := req.Pity.Floor()
	if reason == PityLegendary {
		return Outcome{
			Rarity:  Legendary,
			Weights: req.Table.Weights,
			Total:   req.Table.Weights.Total(),
			Draw:    -1,
			Forced:  reason,
			Pity:    req.Pity.After(Legendary),
		}
	}
	if reason == NotForced && req.MinRarity > Common {
		floor, reason = req.MinRarity, TicketFloor
	}

	weights := req.Table.Weights.clamp().WithBoost(req.Table.Boost).Floor(floor)
	rarity, draw := Sample(rng, weights, floor)
	if draw < 0 && reason == NotForced {
		reason = EmptyTableFall
	}

	return Outcome{
		Rarity:  rarity,
		Weights: weights,
		Total:   weights.Total(),
		Draw:    draw,
		Forced:  reason,
		Pity:    req.Pity.After(rarity),
	}
}

// Sample draws r in [0, total) and walks the tiers in ascending order,
// returning the first whose cumulative weight exceeds r. An empty table
// returns fallback with a draw of -1.
func Sample(rng *rand.Rand, w Weights, fallback Rarity) (Rarity, int) {
	total := w.Total()
	if total <= 0 {
		return fallback, -1
	}

	r := rng.IntN(total)
	if rarity, ok := pick(w, r); ok {
		return rarity, r
	}
	return fallback, r
}

func pick(w Weights, r int) (Rarity, bool) {
	cumulative := 0
	for i, weight := range w {
		cumulative += weight
		if cumulative > r {
			return Rarity(i), true
		}
	}
	return Common, false
}
