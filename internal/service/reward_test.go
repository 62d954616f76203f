package service

import (
	"context"
	"errors"
	"progression-engine/internal/domain"
	"progression-engine/internal/droptable"
	"testing"
	"time"
)

func TestRollCommon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.roller.Roll(ctx, RollInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("Roll() error = %v", err)
	}
	if res.Rarity != droptable.Common || res.ItemID != "sticker_common" || res.Forced != droptable.NotForced {
		t.Errorf("Roll() = %+v, want unforced common sticker", res)
	}
	if res.AuditID == "" {
		t.Error("AuditID is empty")
	}

	state := env.loadState(t, "u1")
	if state.Pity != (droptable.Pity{SinceEpic: 1, SinceLegendary: 1}) {
		t.Errorf("Pity = %+v, want both counters at 1", state.Pity)
	}

	items, err := env.rewards.Inventory(ctx, "u1")
	if err != nil {
		t.Fatalf("Inventory() error = %v", err)
	}
	if len(items) != 1 || items[0].ItemID != "sticker_common" || items[0].Quantity != 1 {
		t.Errorf("Inventory() = %+v, want one sticker", items)
	}
}

func TestRollPity(t *testing.T) {
	tests := []struct {
		name        string
		pity        droptable.Pity
		minRarity   droptable.Rarity
		wantRarity  droptable.Rarity
		wantForced  droptable.ForceReason
		wantItem    string
		wantDust    int64
		wantPityAft droptable.Pity
	}{
		{
			name:        "epic threshold",
			pity:        droptable.Pity{SinceEpic: 15, SinceLegendary: 15},
			wantRarity:  droptable.Epic,
			wantForced:  droptable.PityEpic,
			wantItem:    "card_epic",
			wantPityAft: droptable.Pity{SinceEpic: 0, SinceLegendary: 16},
		},
		{
			name:        "legendary threshold pays consolation",
			pity:        droptable.Pity{SinceEpic: 3, SinceLegendary: 50},
			wantRarity:  droptable.Legendary,
			wantForced:  droptable.PityLegendary,
			wantDust:    150,
			wantPityAft: droptable.Pity{},
		},
		{
			name:        "pity beats a lower ticket",
			pity:        droptable.Pity{SinceEpic: 15, SinceLegendary: 20},
			minRarity:   droptable.Rare,
			wantRarity:  droptable.Epic,
			wantForced:  droptable.PityEpic,
			wantItem:    "card_epic",
			wantPityAft: droptable.Pity{SinceEpic: 0, SinceLegendary: 21},
		},
		{
			name:        "one below threshold is not forced",
			pity:        droptable.Pity{SinceEpic: 14, SinceLegendary: 14},
			wantRarity:  droptable.Common,
			wantForced:  droptable.NotForced,
			wantItem:    "sticker_common",
			wantPityAft: droptable.Pity{SinceEpic: 15, SinceLegendary: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.setState(t, "u1", func(s *domain.GameState) { s.Pity = tt.pity })

			res, err := env.roller.Roll(context.Background(), RollInput{UserID: "u1", MinRarity: tt.minRarity})
			if err != nil {
				t.Fatalf("Roll() error = %v", err)
			}
			if res.Rarity != tt.wantRarity || res.Forced != tt.wantForced {
				t.Errorf("Roll() = %s forced %q, want %s forced %q", res.Rarity, res.Forced, tt.wantRarity, tt.wantForced)
			}
			if res.ItemID != tt.wantItem || res.Consolation != tt.wantDust {
				t.Errorf("Roll() item %q consolation %d, want %q %d", res.ItemID, res.Consolation, tt.wantItem, tt.wantDust)
			}

			state := env.loadState(t, "u1")
			if state.Pity != tt.wantPityAft {
				t.Errorf("Pity = %+v, want %+v", state.Pity, tt.wantPityAft)
			}
			if state.Dust != tt.wantDust {
				t.Errorf("Dust = %d, want %d", state.Dust, tt.wantDust)
			}
		})
	}
}

func TestRollGrantKeyReplays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := RollInput{UserID: "u1", Context: ContextManual, GrantKey: "promo:launch"}

	first, err := env.roller.Roll(ctx, in)
	if err != nil {
		t.Fatalf("Roll() error = %v", err)
	}
	second, err := env.roller.Roll(ctx, in)
	if err != nil {
		t.Fatalf("Roll() replay error = %v", err)
	}

	if first.Replayed || !second.Replayed {
		t.Errorf("Replayed = %v then %v, want false then true", first.Replayed, second.Replayed)
	}
	if second.AuditID != first.AuditID || second.ItemID != first.ItemID || second.ItemName != "Common Sticker" {
		t.Errorf("replay = %+v, want the recorded %+v", second, first)
	}

	items, err := env.rewards.Inventory(ctx, "u1")
	if err != nil {
		t.Fatalf("Inventory() error = %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Errorf("Inventory() = %+v, want a single grant", items)
	}
	if state := env.loadState(t, "u1"); state.Pity.SinceEpic != 1 {
		t.Errorf("SinceEpic = %d, want 1 after a replay", state.Pity.SinceEpic)
	}
}

func TestRollLegendaryRateAnomaly(t *testing.T) {
	env := newTestEnv(t)
	env.roller.legendaryPerDay = 1
	ctx := context.Background()

	var last RollResult
	for i := range 2 {
		env.setState(t, "u1", func(s *domain.GameState) { s.Pity = droptable.Pity{SinceLegendary: 50} })

		res, err := env.roller.Roll(ctx, RollInput{UserID: "u1"})
		if err != nil {
			t.Fatalf("Roll() #%d error = %v", i, err)
		}
		if i == 0 && res.Anomaly {
			t.Errorf("first legendary flagged as %q", res.AnomalyReason)
		}
		last = res
	}

	if !last.Anomaly || last.AnomalyReason != "legendary_rate" {
		t.Errorf("second legendary Anomaly = %v %q, want legendary_rate", last.Anomaly, last.AnomalyReason)
	}
	if last.Consolation != 150 {
		t.Errorf("flagged grant Consolation = %d, want it still paid", last.Consolation)
	}

	summary, err := env.rewards.Summarize(ctx, "u1", testNow.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(summary) != 1 || summary[0].Grants != 2 || summary[0].Anomalies != 1 {
		t.Errorf("Summarize() = %+v, want 2 legendary grants with 1 anomaly", summary)
	}
}

func TestRollXPBandIgnoresCatalogWeights(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.roller.Roll(context.Background(), RollInput{UserID: "u1", XPEarned: 1000})
	if err != nil {
		t.Fatalf("Roll() error = %v", err)
	}
	if res.Weights != droptable.WeightsForXPBand(1000) {
		t.Errorf("Weights = %v, want the XP band table %v", res.Weights, droptable.WeightsForXPBand(1000))
	}
}

func TestRollRequiresUser(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.roller.Roll(context.Background(), RollInput{}); !errors.Is(err, domain.ErrInvalidUser) {
		t.Errorf("Roll() error = %v, want %v", err, domain.ErrInvalidUser)
	}
}
