package droptable

import (
	"math/rand/v2"
	"testing"
	"time"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestPick(t *testing.T) {
	tests := []struct {
		r    int
		want Rarity
	}{
		{0, Common},
		{69, Common},
		{70, Rare},
		{91, Rare},
		{92, Epic},
		{98, Epic},
		{99, Legendary},
	}

	for _, tt := range tests {
		got, ok := pick(DefaultWeights, tt.r)
		if !ok || got != tt.want {
			t.Errorf("pick(default, %d) = %s, %v, want %s", tt.r, got, ok, tt.want)
		}
	}

	if _, ok := pick(DefaultWeights, 100); ok {
		t.Error("pick(default, 100) matched a tier past the total")
	}
}

func TestSampleEmptyTable(t *testing.T) {
	got, draw := Sample(seeded(1), Weights{}, Common)
	if got != Common || draw != -1 {
		t.Errorf("Sample(empty) = %s, %d, want common, -1", got, draw)
	}
}

func TestPityAfter(t *testing.T) {
	tests := []struct {
		name   string
		before Pity
		rolled Rarity
		want   Pity
	}{
		{"common increments both", Pity{3, 7}, Common, Pity{4, 8}},
		{"rare increments both", Pity{3, 7}, Rare, Pity{4, 8}},
		{"epic resets epic only", Pity{14, 40}, Epic, Pity{0, 41}},
		{"legendary resets both", Pity{14, 49}, Legendary, Pity{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.before.After(tt.rolled); got != tt.want {
				t.Errorf("%+v.After(%s) = %+v, want %+v", tt.before, tt.rolled, got, tt.want)
			}
		})
	}
}

func TestRollForcesEpicOnSixteenthRoll(t *testing.T) {
	rng := seeded(42)
	table := Table{Weights: Weights{100, 0, 0, 0}}
	pity := Pity{}

	for i := 1; i <= EpicPityThreshold; i++ {
		out := Roll(rng, Request{Table: table, Pity: pity})
		if out.Rarity != Common || out.Forced != NotForced {
			t.Fatalf("roll %d = %s (%s), want unforced common", i, out.Rarity, out.Forced)
		}
		pity = out.Pity
	}

	if pity.SinceEpic != EpicPityThreshold {
		t.Fatalf("SinceEpic = %d after %d misses", pity.SinceEpic, EpicPityThreshold)
	}

	out := Roll(rng, Request{Table: table, Pity: pity})
	if out.Rarity < Epic || out.Forced != PityEpic {
		t.Errorf("roll 16 = %s (%s), want forced epic or better", out.Rarity, out.Forced)
	}
	if out.Pity.SinceEpic != 0 {
		t.Errorf("SinceEpic after forced epic = %d, want 0", out.Pity.SinceEpic)
	}
}

func TestRollForcesLegendaryOnFiftyFirstRoll(t *testing.T) {
	rng := seeded(7)
	table := Table{Weights: Weights{100, 0, 0, 0}}
	pity := Pity{}

	for i := 1; i <= LegendaryPityThreshold; i++ {
		out := Roll(rng, Request{Table: table, Pity: pity})
		if out.Rarity == Legendary {
			t.Fatalf("roll %d produced legendary before the threshold", i)
		}
		pity = out.Pity
	}

	if pity.SinceLegendary != LegendaryPityThreshold {
		t.Fatalf("SinceLegendary = %d after %d rolls", pity.SinceLegendary, LegendaryPityThreshold)
	}

	out := Roll(rng, Request{Table: table, Pity: pity})
	if out.Rarity != Legendary || out.Forced != PityLegendary {
		t.Errorf("roll 51 = %s (%s), want forced legendary", out.Rarity, out.Forced)
	}
	if out.Pity != (Pity{}) {
		t.Errorf("pity after legendary = %+v, want zero", out.Pity)
	}
}

func TestRollLegendaryPityOverridesBandWeights(t *testing.T) {
	out := Roll(seeded(3), Request{
		Table: Table{Weights: WeightsForXPBand(1)},
		Pity:  Pity{SinceEpic: EpicPityThreshold, SinceLegendary: LegendaryPityThreshold},
	})
	if out.Rarity != Legendary {
		t.Errorf("Roll() = %s, want legendary", out.Rarity)
	}
}

func TestRollPityWinsOverTicket(t *testing.T) {
	// A legendary ticket with epic pity resolves through pity, not the ticket.
	out := Roll(seeded(11), Request{
		Table:     Table{Weights: Weights{0, 0, 5, 0}},
		Pity:      Pity{SinceEpic: EpicPityThreshold},
		MinRarity: Legendary,
	})
	if out.Forced != PityEpic {
		t.Errorf("Forced = %s, want %s", out.Forced, PityEpic)
	}
	if out.Rarity != Epic {
		t.Errorf("Rarity = %s, want epic", out.Rarity)
	}
}

func TestRollTicketFloor(t *testing.T) {
	rng := seeded(5)
	for i := 0; i < 200; i++ {
		out := Roll(rng, Request{Table: Table{Weights: DefaultWeights}, MinRarity: Rare})
		if out.Rarity < Rare {
			t.Fatalf("roll %d = %s below the rare ticket", i, out.Rarity)
		}
		if out.Forced != TicketFloor {
			t.Fatalf("roll %d Forced = %s, want ticket", i, out.Forced)
		}
		if out.Weights[Common] != 0 {
			t.Fatalf("roll %d kept common weight %d", i, out.Weights[Common])
		}
	}
}

func TestRollEmptyFloorFallsBackToFloorTier(t *testing.T) {
	out := Roll(seeded(9), Request{Table: Table{Weights: Weights{100, 0, 0, 0}}, MinRarity: Legendary})
	if out.Rarity != Legendary || out.Draw != -1 {
		t.Errorf("Roll() = %s draw %d, want legendary draw -1", out.Rarity, out.Draw)
	}
}

func TestBoostFloorsAtZero(t *testing.T) {
	got := DefaultWeights.WithBoost(Boost{Epic: -20, Legendary: 4})
	want := Weights{70, 22, 0, 5}
	if got != want {
		t.Errorf("WithBoost() = %v, want %v", got, want)
	}
}

func TestBoostCannotRevivePrunedTiers(t *testing.T) {
	out := Roll(seeded(13), Request{
		Table:     Table{Weights: DefaultWeights, Boost: Boost{Epic: 50}},
		MinRarity: Legendary,
	})
	if out.Weights[Epic] != 0 || out.Rarity != Legendary {
		t.Errorf("Roll() weights %v rarity %s, want epic pruned and legendary", out.Weights, out.Rarity)
	}
}

func TestWeightsForXPBand(t *testing.T) {
	tests := []struct {
		xp   int
		want Weights
	}{
		{-3, Weights{85, 15, 0, 0}},
		{0, Weights{85, 15, 0, 0}},
		{4, Weights{85, 15, 0, 0}},
		{5, Weights{60, 30, 10, 0}},
		{9, Weights{60, 30, 10, 0}},
		{10, Weights{45, 35, 17, 3}},
		{15, Weights{30, 40, 24, 6}},
		{500, Weights{30, 40, 24, 6}},
	}

	for _, tt := range tests {
		if got := WeightsForXPBand(tt.xp); got != tt.want {
			t.Errorf("WeightsForXPBand(%d) = %v, want %v", tt.xp, got, tt.want)
		}
	}
}

func TestResolveFeaturedPool(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	override := Weights{50, 30, 15, 5}
	pools := []FeaturedPool{
		{ID: "expired", StartsAt: start.AddDate(0, -1, 0), EndsAt: start, Weights: &Weights{0, 0, 0, 100}},
		{ID: "spring", StartsAt: start, EndsAt: start.AddDate(0, 0, 7), Weights: &override, Boost: Boost{Legendary: 2}},
	}

	table := Resolve(start.Add(time.Hour), DefaultWeights, pools)
	if table.Pool == nil || table.Pool.ID != "spring" {
		t.Fatalf("Resolve() pool = %+v, want spring", table.Pool)
	}
	if table.Weights != override || table.Boost.Legendary != 2 {
		t.Errorf("Resolve() = %+v", table)
	}

	table = Resolve(start.AddDate(0, 0, 7), DefaultWeights, pools)
	if table.Pool != nil || table.Weights != DefaultWeights {
		t.Errorf("Resolve() after window = %+v, want default table", table)
	}
}

func TestSampleShareMatchesDefaultTable(t *testing.T) {
	rng := seeded(2024)
	const draws = 20000

	high := 0
	for i := 0; i < draws; i++ {
		if r, _ := Sample(rng, DefaultWeights, Common); r >= Epic {
			high++
		}
	}

	share := float64(high) / draws
	if share < 0.065 || share > 0.095 {
		t.Errorf("epic+legendary share = %.4f, want about 0.08", share)
	}
}

func TestRollThousandTimesKeepsPityBounded(t *testing.T) {
	rng := seeded(1000)
	table := Table{Weights: DefaultWeights}
	pity := Pity{}

	high := 0
	for i := 0; i < 1000; i++ {
		out := Roll(rng, Request{Table: table, Pity: pity})
		if out.Rarity >= Epic {
			high++
		}
		pity = out.Pity
		if pity.SinceEpic < 0 || pity.SinceEpic > EpicPityThreshold {
			t.Fatalf("roll %d SinceEpic = %d out of bounds", i, pity.SinceEpic)
		}
		if pity.SinceLegendary < 0 || pity.SinceLegendary > LegendaryPityThreshold {
			t.Fatalf("roll %d SinceLegendary = %d out of bounds", i, pity.SinceLegendary)
		}
	}

	// Pity lifts the raw 8% table share; the realized share stays near 11%.
	share := float64(high) / 1000
	if share < 0.05 || share > 0.16 {
		t.Errorf("epic+legendary share with pity = %.3f", share)
	}
}

func TestRarityText(t *testing.T) {
	var r Rarity
	if err := r.UnmarshalText([]byte("Epic")); err != nil || r != Epic {
		t.Errorf("UnmarshalText(Epic) = %s, %v", r, err)
	}
	if err := r.UnmarshalText([]byte("mythic")); err == nil {
		t.Error("UnmarshalText(mythic) error = nil")
	}
	if got := WeightsFromMap(map[string]int{"rare": 3, "legendary": -1, "bogus": 9}); got != (Weights{0, 3, 0, 0}) {
		t.Errorf("WeightsFromMap() = %v", got)
	}
}
