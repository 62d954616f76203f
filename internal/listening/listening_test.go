package listening

import (
	"context"
	"errors"
	"progression-engine/internal/config"
	"progression-engine/internal/domain"
	"progression-engine/internal/listening/mock"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dynamite (Tropical Remix)", "dynamite"},
		{"Butter [Hotter Remix]", "butter"},
		{"Permission to Dance feat. Someone", "permission to dance"},
		{"Left and Right (Feat. Jung Kook of BTS)", "left and right"},
		{"My Universe - ft. BTS", "my universe"},
		{"Don't Stop Me Now!", "dont stop me now"},
		{"Beyoncé", "beyonce"},
		{"  Spring   Day  ", "spring day"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		played string
		target string
		want   bool
	}{
		{"Dynamite (Day Version)", "Dynamite", true},
		{"BUTTER", "Butter", true},
		{"Butterr", "Butter", true},
		{"Butterfly", "Butter", false},
		{"Spring", "Spring Day", false},
		{"Fake Love", "Idol", false},
		{"", "Idol", false},
	}

	for _, tt := range tests {
		if got := Matches(tt.played, tt.target); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.played, tt.target, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	meta := domain.StreamingMeta{
		Tracks: []domain.TrackTarget{
			{TrackName: "Butter", ArtistName: "BTS", RequiredCount: 3},
			{TrackName: "Dynamite", ArtistName: "BTS", RequiredCount: 2},
		},
		Albums: []domain.AlbumTarget{
			{AlbumName: "BE", ArtistName: "BTS", RequiredTrackCount: 2},
		},
	}

	play := func(track, artist, album string) domain.Play {
		return domain.Play{TrackName: track, ArtistName: artist, AlbumName: album}
	}
	plays := []domain.Play{
		play("Butter", "BTS", "Butter"),
		play("Butter", "BTS", "Butter"),
		play("Butter (Hotter Remix)", "BTS", "Butter"),
		play("Butter", "BTS", "Butter"),
		play("Butter", "Other Artist", "Something"),
		play("Butter", "Other Artist", "Something"),
		play("Dynamite (Day Version)", "BTS", "BE"),
		play("Life Goes On", "BTS", "BE"),
		play("Life Goes On", "BTS", "BE"),
		play("Telepathy", "BTS", "BE"),
	}

	got := Count(plays, meta)

	if got.Tracks[0] != 3 {
		t.Errorf("Tracks[0] = %d, want 3 (capped, other artist ignored)", got.Tracks[0])
	}
	if got.Tracks[1] != 1 {
		t.Errorf("Tracks[1] = %d, want 1", got.Tracks[1])
	}
	if got.Albums[0] != 2 {
		t.Errorf("Albums[0] = %d, want 2 (three distinct tracks, capped)", got.Albums[0])
	}
	if got.Total != 6 {
		t.Errorf("Total = %d, want 6", got.Total)
	}
}

func TestCountArtistScope(t *testing.T) {
	meta := domain.StreamingMeta{
		Artists: []string{"BTS"},
		Tracks:  []domain.TrackTarget{{TrackName: "Butter", RequiredCount: 5}},
	}
	plays := []domain.Play{
		{TrackName: "Butter", ArtistName: "BTS"},
		{TrackName: "Butter", ArtistName: "Someone Else"},
	}

	if got := Count(plays, meta).Total; got != 1 {
		t.Errorf("Count().Total = %d, want 1", got)
	}
}

func newTestCache(t *testing.T, source PlaySource) *Cache {
	t.Helper()
	cfg := &config.Config{ListeningCacheSize: 8, ListeningCacheTTL: time.Minute}
	c, err := NewCache(source, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	return c
}

func TestCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockPlaySource(ctrl)
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	plays := []domain.Play{{TrackName: "Butter", ArtistName: "BTS"}}

	source.EXPECT().RecentPlays(gomock.Any(), "armyfan", since).Return(plays, nil).Times(1)

	c := newTestCache(t, source)
	for i := 0; i < 3; i++ {
		got, err := c.RecentPlays(context.Background(), "armyfan", since)
		if err != nil {
			t.Fatalf("RecentPlays() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len(RecentPlays()) = %d, want 1", len(got))
		}
	}
}

func TestCacheExpires(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockPlaySource(ctrl)
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	source.EXPECT().RecentPlays(gomock.Any(), "armyfan", since).Return(nil, nil).Times(2)

	c := newTestCache(t, source)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if _, err := c.RecentPlays(context.Background(), "armyfan", since); err != nil {
		t.Fatalf("RecentPlays() error = %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := c.RecentPlays(context.Background(), "armyfan", since); err != nil {
		t.Fatalf("RecentPlays() error = %v", err)
	}
}

func TestCacheDoesNotStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockPlaySource(ctrl)
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	source.EXPECT().RecentPlays(gomock.Any(), "armyfan", since).Return(nil, boom).Times(2)

	c := newTestCache(t, source)
	for i := 0; i < 2; i++ {
		if _, err := c.RecentPlays(context.Background(), "armyfan", since); !errors.Is(err, boom) {
			t.Errorf("RecentPlays() error = %v, want %v", err, boom)
		}
	}
}

func TestCacheTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mock.NewMockPlaySource(ctrl)
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	source.EXPECT().
		RecentPlays(gomock.Any(), "slowfan", since).
		DoAndReturn(func(ctx context.Context, _ string, _ time.Time) ([]domain.Play, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	c := newTestCache(t, source)
	c.timeout = 20 * time.Millisecond

	_, err := c.RecentPlays(context.Background(), "slowfan", since)
	if !errors.Is(err, domain.ErrExternalProviderTimeout) {
		t.Errorf("RecentPlays() error = %v, want %v", err, domain.ErrExternalProviderTimeout)
	}
}
