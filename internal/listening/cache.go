// Package listening verifies streaming quests against a user's listening
// history: it caches provider responses, normalizes names and tallies
// matching plays.
package listening

import (
	"context"
	"errors"
	"fmt"
	"progression-engine/internal/config"
	"progression-engine/internal/constants"
	"progression-engine/internal/domain"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -destination=mock/source.go -package=mock progression-engine/internal/listening PlaySource

// PlaySource returns a user's plays since a point in time.
type PlaySource interface {
	RecentPlays(ctx context.Context, username string, since time.Time) ([]domain.Play, error)
}

type cacheEntry struct {
	plays   []domain.Play
	expires time.Time
}

// Cache wraps a PlaySource with a short-lived LRU keyed by username and
// baseline, and collapses concurrent identical fetches into one call.
type Cache struct {
	source  PlaySource
	entries *lru.Cache
	group   singleflight.Group
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

func NewCache(source PlaySource, cfg *config.Config, logger zerolog.Logger) (*Cache, error) {
	size := cfg.ListeningCacheSize
	if size <= 0 {
		size = constants.ListeningCacheSize
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create listening cache: %w", err)
	}

	ttl := cfg.ListeningCacheTTL
	if ttl <= 0 {
		ttl = constants.ListeningCacheTTL
	}

	return &Cache{
		source:  source,
		entries: entries,
		ttl:     ttl,
		timeout: constants.ExternalAPITimeout,
		now:     time.Now,
		logger:  logger,
	}, nil
}

func (c *Cache) RecentPlays(ctx context.Context, username string, since time.Time) ([]domain.Play, error) {
	key := strings.ToLower(username) + "|" + strconv.FormatInt(since.Unix(), 10)

	if v, ok := c.entries.Get(key); ok {
		entry := v.(cacheEntry)
		if c.now().Before(entry.expires) {
			c.logger.Debug().Str("username", username).Msg("listening cache hit")
			return entry.plays, nil
		}
		c.entries.Remove(key)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Detached from the first caller so its cancellation does not fail
		// the other waiters; the provider timeout still bounds the call.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		plays, err := c.source.RecentPlays(fetchCtx, username, since)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", domain.ErrExternalProviderTimeout, err)
			}
			return nil, err
		}
		c.entries.Add(key, cacheEntry{plays: plays, expires: c.now().Add(c.ttl)})
		return plays, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrExternalProviderTimeout, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Play), nil
	}
}
