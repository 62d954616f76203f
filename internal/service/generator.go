package service

import (
	"context"
	"fmt"
	"progression-engine/internal/catalog"
	"progression-engine/internal/constants"
	"progression-engine/internal/domain"
	"progression-engine/internal/period"
	"progression-engine/internal/repository"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// PeriodGenerator materializes the quest definitions of a period on first
// use. Generation is deterministic per key and stored insert-or-ignore, so
// concurrent or repeated calls converge on the same rows.
type PeriodGenerator struct {
	catalog *catalog.Catalog
	quests  *repository.QuestRepository
	group   singleflight.Group
	logger  zerolog.Logger
}

func NewPeriodGenerator(c *catalog.Catalog, quests *repository.QuestRepository, logger zerolog.Logger) *PeriodGenerator {
	return &PeriodGenerator{catalog: c, quests: quests, logger: logger}
}

// Ensure returns the definitions of the kind's period holding at.
func (g *PeriodGenerator) Ensure(ctx context.Context, kind period.Kind, at time.Time) ([]domain.QuestDefinition, error) {
	key := period.Key(kind, at)

	defs, err := g.quests.ListDefinitions(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest definitions: %w", err)
	}
	if len(defs) > 0 {
		return defs, nil
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		// Collapsed callers share this run; one caller going away must not fail the rest.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DatabaseTimeout)
		defer cancel()

		generated := g.catalog.Generate(kind, key)
		for i := range generated {
			generated[i].CreatedAt = at.UTC()
		}

		inserted, err := g.quests.InsertDefinitions(ctx, generated)
		if err != nil {
			return nil, fmt.Errorf("failed to store quest definitions: %w", err)
		}
		g.logger.Info().
			Str("period_key", key).
			Int("generated", len(generated)).
			Int("inserted", inserted).
			Msg("quest period generated")

		return g.quests.ListDefinitions(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]domain.QuestDefinition)), nil
}

// Active returns the current daily and weekly definitions, daily first.
func (g *PeriodGenerator) Active(ctx context.Context, at time.Time) ([]domain.QuestDefinition, error) {
	daily, err := g.Ensure(ctx, period.Daily, at)
	if err != nil {
		return nil, err
	}
	weekly, err := g.Ensure(ctx, period.Weekly, at)
	if err != nil {
		return nil, err
	}
	return slices.Concat(daily, weekly), nil
}
