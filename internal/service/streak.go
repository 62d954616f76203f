package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"progression-engine/internal/catalog"
	"progression-engine/internal/constants"
	"progression-engine/internal/domain"
	"progression-engine/internal/period"
	"progression-engine/internal/repository"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

type StreakResult struct {
	Kind       period.Kind
	PeriodKey  string
	Transition domain.Transition
	Count      int
	Highest    int
	Badges     []string
	Bonus      *RollResult
	// Ignored is set when the completion was older than the last recorded one.
	Ignored bool
}

type StreakService struct {
	tx        *repository.TxRunner
	quests    *repository.QuestRepository
	state     *repository.StateRepository
	badges    *repository.BadgeRepository
	generator *PeriodGenerator
	rewards   *RewardService
	catalog   *catalog.Catalog
	locks     *UserLocks
	clock     domain.Clock
	logger    zerolog.Logger
}

func NewStreakService(
	tx *repository.TxRunner,
	quests *repository.QuestRepository,
	state *repository.StateRepository,
	badges *repository.BadgeRepository,
	generator *PeriodGenerator,
	rewards *RewardService,
	c *catalog.Catalog,
	locks *UserLocks,
	clock domain.Clock,
	logger zerolog.Logger,
) *StreakService {
	return &StreakService{
		tx:        tx,
		quests:    quests,
		state:     state,
		badges:    badges,
		generator: generator,
		rewards:   rewards,
		catalog:   c,
		locks:     locks,
		clock:     clock,
		logger:    logger,
	}
}

// CompletePeriod records that the user finished every quest of the current
// daily or weekly period and awards the resulting streak badges.
func (s *StreakService) CompletePeriod(ctx context.Context, userID string, kind period.Kind) (StreakResult, error) {
	if userID == "" {
		return StreakResult{}, domain.ErrInvalidUser
	}
	if kind != period.Daily && kind != period.Weekly {
		return StreakResult{}, fmt.Errorf("streaks are daily or weekly, got %q", kind)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	return s.complete(ctx, userID, kind, s.clock.Now())
}

func (s *StreakService) complete(ctx context.Context, userID string, kind period.Kind, at time.Time) (StreakResult, error) {
	key := period.Key(kind, at)
	result := StreakResult{Kind: kind, PeriodKey: key}

	if err := s.requireClaimed(ctx, userID, kind, at); err != nil {
		return result, err
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("failed to acquire user lock: %w", err)
	}
	defer release()

	bonus := false
	for attempt := 0; ; attempt++ {
		if attempt == constants.StateSaveAttempts {
			return result, fmt.Errorf("failed to save streak: %w", domain.ErrVersionConflict)
		}

		state, err := s.state.Load(ctx, userID, at)
		if err != nil {
			return result, err
		}
		streak := state.Streak(kind)

		transition, err := streak.Advance(key, period.Previous(kind, at), at)
		if errors.Is(err, domain.ErrInvalidPeriodTransition) {
			s.logger.Warn().
				Err(err).
				Str("user_id", userID).
				Str("period_key", key).
				Str("last_key", streak.LastKey).
				Msg("ignoring out-of-order period completion")
			result.Ignored = true
			result.Count, result.Highest = streak.Count, streak.Highest
			return result, nil
		}
		if err != nil {
			return result, err
		}

		result.Transition = transition
		if transition == domain.TransitionNone {
			// Already recorded; only a milestone bonus left undone by an
			// earlier attempt remains. Its grant key makes this a replay.
			result.Count, result.Highest = streak.Count, streak.Highest
			bonus, err = s.milestoneReached(ctx, userID, kind, key, streak.Count)
			if err != nil {
				return result, err
			}
			break
		}

		grants, milestone := s.badgesFor(userID, kind, key, streak)
		err = s.tx.Run(ctx, func(tx *sql.Tx) error {
			if err := s.state.WithTx(tx).Save(ctx, &state, at); err != nil {
				return err
			}
			result.Badges = result.Badges[:0]
			badges := s.badges.WithTx(tx)
			for _, grant := range grants {
				err := badges.Grant(ctx, grant, at)
				switch {
				case errors.Is(err, domain.ErrDuplicateGrant):
					s.logger.Debug().Str("user_id", userID).Str("badge", grant.Code).Str("occurrence", grant.Occurrence).Msg("badge already granted")
				case err != nil:
					return err
				default:
					result.Badges = append(result.Badges, grant.Code)
				}
			}
			return nil
		})
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Str("period_key", key).Msg("failed to save streak")
			return result, fmt.Errorf("failed to save streak: %w", err)
		}

		result.Count, result.Highest = streak.Count, streak.Highest
		bonus = milestone
		break
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("period_key", key).
		Str("transition", result.Transition.String()).
		Int("count", result.Count).
		Strs("badges", result.Badges).
		Msg("streak updated")

	if bonus {
		roll, err := s.rewards.roll(ctx, RollInput{
			UserID:   userID,
			Context:  ContextStreakMilestone,
			GrantKey: fmt.Sprintf("milestone:%s:%s:%s", userID, kind, key),
		})
		if err != nil {
			return result, fmt.Errorf("failed to roll milestone bonus: %w", err)
		}
		result.Bonus = &roll
	}
	return result, nil
}

// milestoneReached reports whether the completion recorded under key reached
// a milestone. Its badge is written with the state, so the badge marks it.
func (s *StreakService) milestoneReached(ctx context.Context, userID string, kind period.Kind, key string, count int) (bool, error) {
	if !domain.IsMilestone(count) {
		return false, nil
	}
	badges, err := s.badges.List(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to list badges: %w", err)
	}
	family := fmt.Sprintf("%s_milestone", kind)
	for _, b := range badges {
		if b.Family == family && b.Occurrence == key {
			return true, nil
		}
	}
	return false, nil
}

// requireClaimed fails with ErrPeriodIncomplete unless every quest of the
// period holding at is completed and claimed.
func (s *StreakService) requireClaimed(ctx context.Context, userID string, kind period.Kind, at time.Time) error {
	defs, err := s.generator.Ensure(ctx, kind, at)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return domain.ErrPeriodIncomplete
	}

	key := period.Key(kind, at)
	rows, err := s.quests.ListProgress(ctx, userID, key, key)
	if err != nil {
		return fmt.Errorf("failed to list quest progress: %w", err)
	}
	claimed := make(map[string]bool, len(rows))
	for _, p := range rows {
		claimed[p.QuestCode] = p.Completed && p.Claimed
	}
	for _, def := range defs {
		if !claimed[def.Code] {
			return domain.ErrPeriodIncomplete
		}
	}
	return nil
}

// badgesFor mutates streak with the milestone and earned bookkeeping and
// returns the badges the new count grants. Cyclic and milestone badges need
// the count to pass the last marker, so a streak held at the cap earns
// neither again.
func (s *StreakService) badgesFor(userID string, kind period.Kind, key string, streak *domain.StreakState) ([]domain.BadgeGrant, bool) {
	var grants []domain.BadgeGrant
	count := streak.Count
	meta := map[string]any{"streak": count, "period_key": key}
	reached := count > streak.LastMilestone

	if reached {
		pos := domain.CyclePosition(count)
		grants = append(grants, domain.BadgeGrant{
			UserID:        userID,
			Code:          fmt.Sprintf("%s_streak_%d", kind, pos),
			Family:        fmt.Sprintf("%s_streak", kind),
			CyclePosition: pos,
			Occurrence:    key,
			Metadata:      meta,
		})
		streak.LastMilestone = count
	}

	milestone := reached && domain.IsMilestone(count)
	if milestone {
		grants = append(grants, domain.BadgeGrant{
			UserID:     userID,
			Code:       fmt.Sprintf("%s_milestone_%d", kind, count/domain.CycleLength),
			Family:     fmt.Sprintf("%s_milestone", kind),
			Occurrence: key,
			Metadata:   meta,
		})
		streak.Milestones++
	}

	if !streak.HasEarned(count) {
		grants = append(grants, domain.BadgeGrant{
			UserID:     userID,
			Code:       fmt.Sprintf("%s_completion_%d", kind, count),
			Family:     fmt.Sprintf("%s_completion", kind),
			Occurrence: strconv.Itoa(count),
			Metadata:   meta,
		})
		streak.RecordEarned(count)
	}

	active := grants[:0]
	for _, grant := range grants {
		if _, ok := s.catalog.Badge(grant.Code); !ok {
			s.logger.Debug().Str("badge", grant.Code).Msg("badge inactive in catalog, skipping")
			continue
		}
		active = append(active, grant)
	}
	return active, milestone
}
