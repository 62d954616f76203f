package service

import (
	"context"
	"errors"
	"progression-engine/internal/domain"
	"progression-engine/internal/listening/mock"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

var weekStart = time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)

func dynamitePlays(n int) []domain.Play {
	plays := make([]domain.Play, 0, n+1)
	for i := range n {
		plays = append(plays, domain.Play{
			TrackName:  "Dynamite",
			ArtistName: "BTS",
			PlayedAt:   weekStart.Add(time.Duration(i+1) * time.Hour),
		})
	}
	return append(plays, domain.Play{TrackName: "Dynamite", ArtistName: "Taio Cruz", PlayedAt: weekStart})
}

func TestVerifyRaisesProgress(t *testing.T) {
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	source := mock.NewMockPlaySource(ctrl)
	ctx := context.Background()

	var since time.Time
	gomock.InOrder(
		source.EXPECT().RecentPlays(gomock.Any(), "army", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, s time.Time) ([]domain.Play, error) {
				since = s
				return dynamitePlays(2), nil
			}),
		source.EXPECT().RecentPlays(gomock.Any(), "army", gomock.Any()).Return(dynamitePlays(1), nil),
		source.EXPECT().RecentPlays(gomock.Any(), "army", gomock.Any()).Return(dynamitePlays(7), nil),
	)
	svc := env.verifier(source)
	in := VerifyInput{UserID: "u1", ExternalUsername: "army", QuestCode: "listen"}

	res, err := svc.Verify(ctx, in)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(res) != 1 || res[0].Progress != 2 || res[0].Counted != 2 || res[0].Completed {
		t.Fatalf("Verify() = %+v, want 2/3 incomplete", res)
	}
	if !since.Equal(weekStart) || !res[0].Baseline.Equal(weekStart) {
		t.Errorf("baseline = %v (queried since %v), want %v", res[0].Baseline, since, weekStart)
	}

	// A shorter history never lowers stored progress.
	res, err = svc.Verify(ctx, in)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if res[0].Progress != 2 || res[0].Counted != 1 {
		t.Errorf("after regression Verify() = %+v, want progress kept at 2", res[0])
	}

	res, err = svc.Verify(ctx, in)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if res[0].Progress != 3 || !res[0].Completed {
		t.Errorf("Verify() = %+v, want capped at 3 and completed", res[0])
	}

	claim, err := env.questSvc.Claim(ctx, "u1", "listen")
	if err != nil {
		t.Fatalf("Claim(listen) error = %v", err)
	}
	if claim.Balances == nil || claim.Balances.Dust != 50 {
		t.Errorf("Claim(listen) = %+v, want 50 dust", claim)
	}
}

func TestVerifyDegradesOnProviderError(t *testing.T) {
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	source := mock.NewMockPlaySource(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		source.EXPECT().RecentPlays(gomock.Any(), "army", gomock.Any()).Return(dynamitePlays(2), nil),
		source.EXPECT().RecentPlays(gomock.Any(), "army", gomock.Any()).
			Return(nil, domain.ErrExternalProviderTimeout),
	)
	svc := env.verifier(source)
	in := VerifyInput{UserID: "u1", ExternalUsername: "army", QuestCode: "listen"}

	if _, err := svc.Verify(ctx, in); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	res, err := svc.Verify(ctx, in)
	if err != nil {
		t.Fatalf("Verify() on timeout error = %v, want a degraded result", err)
	}
	if !res[0].Degraded || res[0].Progress != 2 {
		t.Errorf("Verify() = %+v, want degraded with progress 2", res[0])
	}
}

func TestVerifyUsesLinkedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	source := mock.NewMockPlaySource(ctrl)
	ctx := context.Background()

	svc := env.verifier(source)

	// Nothing linked: degraded without calling the provider.
	res, err := svc.Verify(ctx, VerifyInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(res) != 1 || !res[0].Degraded {
		t.Fatalf("Verify() = %+v, want one degraded result", res)
	}

	if err := env.profiles.Upsert(ctx, domain.Profile{UserID: "u1", ListeningUsername: "linked"}, testNow); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	source.EXPECT().RecentPlays(gomock.Any(), "linked", gomock.Any()).Return(dynamitePlays(3), nil)

	res, err = svc.Verify(ctx, VerifyInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if res[0].Degraded || !res[0].Completed {
		t.Errorf("Verify() = %+v, want completed from the linked account", res[0])
	}
}

func TestVerifyTargets(t *testing.T) {
	env := newTestEnv(t)
	svc := env.verifier(mock.NewMockPlaySource(gomock.NewController(t)))
	ctx := context.Background()

	tests := []struct {
		name string
		in   VerifyInput
		want error
	}{
		{"not streaming", VerifyInput{UserID: "u1", QuestCode: "quiz"}, domain.ErrNotStreamingQuest},
		{"unknown quest", VerifyInput{UserID: "u1", QuestCode: "missing"}, domain.ErrQuestNotFound},
		{"missing user", VerifyInput{QuestCode: "listen"}, domain.ErrInvalidUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.Verify(ctx, VerifyInput{UserID: "u1", PeriodKey: "yesterday"}); err == nil {
		t.Error("Verify() with a malformed period key succeeded")
	}
}
