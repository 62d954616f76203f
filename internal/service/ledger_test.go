package service

import (
	"context"
	"errors"
	"progression-engine/internal/domain"
	"progression-engine/internal/period"
	"testing"
	"time"
)

func TestAwardIsAdditive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.ledger.Award(ctx, "u1", Delta{Dust: 5, XP: 60}, AwardOptions{}); err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	got, err := env.ledger.Award(ctx, "u1", Delta{Dust: 7, XP: 60}, AwardOptions{})
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	if got.Dust != 12 || got.XP != 120 || got.Level != 2 {
		t.Errorf("Award() = %+v, want dust 12 xp 120 level 2", got)
	}
	if got.Progress.IntoLevel != 20 {
		t.Errorf("IntoLevel = %d, want 20", got.Progress.IntoLevel)
	}
	if state := env.loadState(t, "u1"); state.Level != 2 {
		t.Errorf("stored Level = %d, want 2", state.Level)
	}
}

func TestAwardRejectsNegative(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.Award(context.Background(), "u1", Delta{Dust: -1}, AwardOptions{})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Award() error = %v, want %v", err, domain.ErrInvalidAmount)
	}
	_, err = env.ledger.Award(context.Background(), "", Delta{Dust: 1}, AwardOptions{})
	if !errors.Is(err, domain.ErrInvalidUser) {
		t.Errorf("Award() error = %v, want %v", err, domain.ErrInvalidUser)
	}
}

func TestLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.profiles.Upsert(ctx, domain.Profile{UserID: "u2", DisplayName: "Jin"}, testNow); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	track := AwardOptions{TrackLeaderboard: true}
	lastWeek := AwardOptions{TrackLeaderboard: true, PlayedAt: testNow.Add(-7 * 24 * time.Hour)}
	awards := []struct {
		user string
		xp   int64
		opts AwardOptions
	}{
		{"u1", 50, track},
		{"u2", 80, track},
		{"u3", 50, track},
		{"u1", 500, lastWeek},
		{"u4", 10, AwardOptions{}},
	}
	for _, a := range awards {
		if _, err := env.ledger.Award(ctx, a.user, Delta{XP: a.xp}, a.opts); err != nil {
			t.Fatalf("Award(%s) error = %v", a.user, err)
		}
	}

	daily, err := env.ledger.Leaderboard(ctx, period.Daily, time.Time{}, 0)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(daily) != 3 {
		t.Fatalf("daily entries = %+v, want 3 tracked users", daily)
	}
	if daily[0].UserID != "u2" || daily[0].Rank != 1 || daily[0].DisplayName != "Jin" {
		t.Errorf("daily[0] = %+v, want u2 (Jin) ranked 1", daily[0])
	}
	if daily[1].Rank != 2 || daily[2].Rank != 2 {
		t.Errorf("tied ranks = %d and %d, want 2 and 2", daily[1].Rank, daily[2].Rank)
	}

	allTime, found, err := env.ledger.Rank(ctx, period.AllTime, time.Time{}, "u1")
	if err != nil || !found {
		t.Fatalf("Rank(all_time) = %v, %v", found, err)
	}
	if allTime.Score != 550 || allTime.Rank != 1 {
		t.Errorf("all-time u1 = %+v, want score 550 rank 1", allTime)
	}

	if _, found, _ := env.ledger.Rank(ctx, period.Daily, time.Time{}, "u4"); found {
		t.Error("untracked award appeared on the daily board")
	}

	top, err := env.ledger.Leaderboard(ctx, period.Weekly, testNow, 1)
	if err != nil {
		t.Fatalf("Leaderboard(weekly) error = %v", err)
	}
	if len(top) != 1 || top[0].UserID != "u2" {
		t.Errorf("weekly top 1 = %+v, want u2", top)
	}
}

func TestGetState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.completeDay(t, "u1")

	view, err := env.ledger.GetState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if view.State.XP != 105 || view.Progress.Level != 2 {
		t.Errorf("XP = %d level = %d, want 105 and 2", view.State.XP, view.Progress.Level)
	}
	if view.State.Daily.Count != 1 {
		t.Errorf("Daily.Count = %d, want 1", view.State.Daily.Count)
	}
	// first_share, daily_streak_1 and daily_completion_1.
	if len(view.Badges) != 3 {
		t.Errorf("badges = %+v, want 3", view.Badges)
	}
	for _, kind := range []period.Kind{period.Daily, period.Weekly, period.AllTime} {
		if r, ok := view.Ranks[kind]; !ok || r.Rank != 1 || r.Score != 105 {
			t.Errorf("Ranks[%s] = %+v, %v, want rank 1 with 105", kind, r, ok)
		}
	}
}
