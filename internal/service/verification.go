package service

import (
	"context"
	"errors"
	"fmt"
	"progression-engine/internal/constants"
	"progression-engine/internal/domain"
	"progression-engine/internal/listening"
	"progression-engine/internal/period"
	"progression-engine/internal/repository"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type VerifyInput struct {
	UserID string
	// ExternalUsername defaults to the profile's linked listening account.
	ExternalUsername string
	// QuestCode selects one quest; empty verifies every active streaming quest.
	QuestCode string
	// PeriodKey defaults to the current period of the quest.
	PeriodKey string
}

type VerifyResult struct {
	QuestCode string
	PeriodKey string
	Progress  int
	GoalValue int
	Completed bool
	Counted   int
	Baseline  time.Time
	// Degraded is set when the provider could not be reached; progress was
	// left as it was.
	Degraded bool
}

type VerificationService struct {
	quests    *repository.QuestRepository
	profiles  *repository.ProfileRepository
	generator *PeriodGenerator
	plays     listening.PlaySource
	clock     domain.Clock
	logger    zerolog.Logger
}

func NewVerificationService(
	quests *repository.QuestRepository,
	profiles *repository.ProfileRepository,
	generator *PeriodGenerator,
	plays listening.PlaySource,
	clock domain.Clock,
	logger zerolog.Logger,
) *VerificationService {
	return &VerificationService{
		quests:    quests,
		profiles:  profiles,
		generator: generator,
		plays:     plays,
		clock:     clock,
		logger:    logger,
	}
}

// Verify recomputes streaming quest progress from the user's listening
// history since the quest's baseline. Progress only ever increases.
func (s *VerificationService) Verify(ctx context.Context, in VerifyInput) ([]VerifyResult, error) {
	if in.UserID == "" {
		return nil, domain.ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	defs, err := s.targets(ctx, in)
	if err != nil {
		return nil, err
	}

	username := in.ExternalUsername
	if username == "" {
		profile, err := s.profiles.Get(ctx, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		username = profile.ListeningUsername
	}

	results := make([]VerifyResult, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, def := range defs {
		g.Go(func() error {
			result, err := s.verifyOne(gctx, in.UserID, username, def)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *VerificationService) targets(ctx context.Context, in VerifyInput) ([]domain.QuestDefinition, error) {
	var defs []domain.QuestDefinition
	if in.PeriodKey != "" {
		if _, _, err := period.Parse(in.PeriodKey); err != nil {
			return nil, err
		}
		listed, err := s.quests.ListDefinitions(ctx, in.PeriodKey)
		if err != nil {
			return nil, fmt.Errorf("failed to list quest definitions: %w", err)
		}
		defs = listed
	} else {
		active, err := s.generator.Active(ctx, s.clock.Now())
		if err != nil {
			return nil, err
		}
		defs = active
	}

	var out []domain.QuestDefinition
	for _, def := range defs {
		if in.QuestCode != "" && def.Code != in.QuestCode {
			continue
		}
		if def.Streaming == nil {
			if in.QuestCode != "" {
				return nil, domain.ErrNotStreamingQuest
			}
			continue
		}
		out = append(out, def)
	}
	if in.QuestCode != "" && len(out) == 0 {
		return nil, domain.ErrQuestNotFound
	}
	return out, nil
}

func (s *VerificationService) verifyOne(ctx context.Context, userID, username string, def domain.QuestDefinition) (VerifyResult, error) {
	now := s.clock.Now()
	result := VerifyResult{QuestCode: def.Code, PeriodKey: def.PeriodKey, GoalValue: def.GoalValue}

	_, start, err := period.Parse(def.PeriodKey)
	if err != nil {
		return result, err
	}
	baseline, err := s.quests.EnsureBaseline(ctx, userID, def, start, now)
	if err != nil {
		return result, fmt.Errorf("failed to set verification baseline: %w", err)
	}
	result.Baseline = baseline

	var plays []domain.Play
	if username == "" {
		s.logger.Warn().Str("user_id", userID).Msg("no listening account linked, skipping verification")
		result.Degraded = true
	} else {
		plays, err = s.plays.RecentPlays(ctx, username, baseline)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Bool("timeout", errors.Is(err, domain.ErrExternalProviderTimeout)).
				Str("user_id", userID).
				Str("quest", def.Code).
				Msg("listening provider unavailable, leaving progress unchanged")
			result.Degraded = true
		}
	}

	if result.Degraded {
		current, _, err := s.quests.GetProgress(ctx, userID, def.Code, def.PeriodKey)
		if err != nil {
			return result, err
		}
		result.Progress, result.Completed = current.Progress, current.Completed
		return result, nil
	}

	tally := listening.Count(plays, *def.Streaming)
	result.Counted = tally.Total

	progress, err := s.quests.Raise(ctx, userID, def, min(tally.Total, def.GoalValue), now)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("quest", def.Code).Msg("failed to store verified progress")
		return result, fmt.Errorf("failed to store verified progress: %w", err)
	}
	result.Progress, result.Completed = progress.Progress, progress.Completed

	s.logger.Info().
		Str("user_id", userID).
		Str("quest", def.Code).
		Int("plays", len(plays)).
		Int("counted", tally.Total).
		Int("progress", progress.Progress).
		Msg("streaming quest verified")
	return result, nil
}
