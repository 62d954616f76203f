package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"progression-engine/internal/catalog"
	"progression-engine/internal/constants"
	"progression-engine/internal/domain"
	"progression-engine/internal/droptable"
	"progression-engine/internal/period"
	"progression-engine/internal/repository"

	"github.com/rs/zerolog"
)

type AdvanceInput struct {
	UserID  string
	GoalTag string
	Amount  int
	// EventID is an optional idempotency key; a repeated id is applied once.
	EventID string
}

type AdvanceResult struct {
	Updated   []domain.QuestProgress
	Duplicate bool
}

type ClaimResult struct {
	Quest          domain.QuestDefinition
	Progress       domain.QuestProgress
	AlreadyClaimed bool
	Balances       *Balances
	Ticket         *RollResult
	Badge          string
	Streak         *StreakResult
}

type QuestService struct {
	tx        *repository.TxRunner
	quests    *repository.QuestRepository
	badges    *repository.BadgeRepository
	generator *PeriodGenerator
	ledger    *LedgerService
	rewards   *RewardService
	streaks   *StreakService
	catalog   *catalog.Catalog
	clock     domain.Clock
	logger    zerolog.Logger
}

func NewQuestService(
	tx *repository.TxRunner,
	quests *repository.QuestRepository,
	badges *repository.BadgeRepository,
	generator *PeriodGenerator,
	ledger *LedgerService,
	rewards *RewardService,
	streaks *StreakService,
	c *catalog.Catalog,
	clock domain.Clock,
	logger zerolog.Logger,
) *QuestService {
	return &QuestService{
		tx:        tx,
		quests:    quests,
		badges:    badges,
		generator: generator,
		ledger:    ledger,
		rewards:   rewards,
		streaks:   streaks,
		catalog:   c,
		clock:     clock,
		logger:    logger,
	}
}

// Advance adds amount to every active quest whose goal type matches the tag.
func (s *QuestService) Advance(ctx context.Context, in AdvanceInput) (AdvanceResult, error) {
	if in.UserID == "" {
		return AdvanceResult{}, domain.ErrInvalidUser
	}
	if in.Amount <= 0 {
		return AdvanceResult{}, domain.ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	now := s.clock.Now()
	active, err := s.generator.Active(ctx, now)
	if err != nil {
		return AdvanceResult{}, err
	}

	var matched []domain.QuestDefinition
	for _, def := range active {
		if def.Matches(in.GoalTag) {
			matched = append(matched, def)
		}
	}
	if len(matched) == 0 {
		s.logger.Debug().Str("user_id", in.UserID).Str("goal_tag", in.GoalTag).Msg("no active quest matches tag")
		return AdvanceResult{}, nil
	}

	var result AdvanceResult
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		quests := s.quests.WithTx(tx)

		if in.EventID != "" {
			fresh, err := quests.RecordEvent(ctx, in.UserID, in.EventID, in.GoalTag, in.Amount, now)
			if err != nil {
				return fmt.Errorf("failed to record progress event: %w", err)
			}
			if !fresh {
				result.Duplicate = true
				return nil
			}
		}

		for _, def := range matched {
			progress, err := quests.Increment(ctx, in.UserID, def, in.Amount, now)
			if err != nil {
				s.logger.Error().Err(err).Str("user_id", in.UserID).Str("quest", def.Code).Msg("failed to advance quest")
				return fmt.Errorf("failed to advance quest %s: %w", def.Code, err)
			}
			result.Updated = append(result.Updated, progress)
		}
		return nil
	})
	if err != nil {
		return AdvanceResult{}, err
	}

	if result.Duplicate {
		s.logger.Debug().Str("user_id", in.UserID).Str("event_id", in.EventID).Msg("duplicate progress event ignored")
		for _, def := range matched {
			progress, _, err := s.quests.GetProgress(ctx, in.UserID, def.Code, def.PeriodKey)
			if err != nil {
				return AdvanceResult{}, err
			}
			result.Updated = append(result.Updated, progress)
		}
		return result, nil
	}

	s.logger.Info().
		Str("user_id", in.UserID).
		Str("goal_tag", in.GoalTag).
		Int("amount", in.Amount).
		Int("quests", len(result.Updated)).
		Msg("quest progress advanced")
	return result, nil
}

// ListForUser returns the current daily and weekly quests merged with the
// user's progress. Quests without progress report zero.
func (s *QuestService) ListForUser(ctx context.Context, userID string) ([]domain.UserQuest, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	now := s.clock.Now()
	active, err := s.generator.Active(ctx, now)
	if err != nil {
		return nil, err
	}

	rows, err := s.quests.ListProgress(ctx, userID, period.DailyKey(now), period.WeeklyKey(now))
	if err != nil {
		return nil, fmt.Errorf("failed to list quest progress: %w", err)
	}
	byKey := make(map[string]domain.QuestProgress, len(rows))
	for _, p := range rows {
		byKey[p.PeriodKey+"/"+p.QuestCode] = p
	}

	quests := make([]domain.UserQuest, 0, len(active))
	for _, def := range active {
		progress, ok := byKey[def.PeriodKey+"/"+def.Code]
		if !ok {
			progress = domain.QuestProgress{
				UserID:    userID,
				QuestCode: def.Code,
				PeriodKey: def.PeriodKey,
				GoalValue: def.GoalValue,
			}
		}
		quests = append(quests, domain.UserQuest{Definition: def, Progress: progress})
	}
	return quests, nil
}

// Claim pays out a completed quest once. Claiming again reports
// AlreadyClaimed and finishes any grant an earlier attempt left undone.
func (s *QuestService) Claim(ctx context.Context, userID, questCode string) (ClaimResult, error) {
	if userID == "" {
		return ClaimResult{}, domain.ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	now := s.clock.Now()
	active, err := s.generator.Active(ctx, now)
	if err != nil {
		return ClaimResult{}, err
	}

	var def domain.QuestDefinition
	found := false
	for _, d := range active {
		if d.Code == questCode {
			def, found = d, true
			break
		}
	}
	if !found {
		return ClaimResult{}, domain.ErrQuestNotFound
	}

	result := ClaimResult{Quest: def}
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		quests := s.quests.WithTx(tx)

		flipped, err := quests.MarkClaimed(ctx, userID, def.Code, def.PeriodKey, now)
		if err != nil {
			return fmt.Errorf("failed to claim quest: %w", err)
		}
		if !flipped {
			progress, ok, err := quests.GetProgress(ctx, userID, def.Code, def.PeriodKey)
			if err != nil {
				return err
			}
			if !ok || !progress.Completed {
				return domain.ErrNotCompleted
			}
			result.AlreadyClaimed = true
			return nil
		}

		if def.Reward.Dust > 0 || def.Reward.XP > 0 {
			balances, err := s.ledger.award(ctx, tx, userID, Delta{Dust: def.Reward.Dust, XP: def.Reward.XP}, AwardOptions{
				TrackLeaderboard: true,
				PlayedAt:         now,
			})
			if err != nil {
				return err
			}
			result.Balances = &balances
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotCompleted) {
			s.logger.Error().Err(err).Str("user_id", userID).Str("quest", questCode).Msg("failed to claim quest")
		}
		return ClaimResult{}, err
	}

	progress, _, err := s.quests.GetProgress(ctx, userID, def.Code, def.PeriodKey)
	if err != nil {
		return ClaimResult{}, err
	}
	result.Progress = progress

	if err := s.finishGrants(ctx, userID, def, &result); err != nil {
		return ClaimResult{}, err
	}

	streak, err := s.streaks.complete(ctx, userID, def.Period, now)
	switch {
	case errors.Is(err, domain.ErrPeriodIncomplete):
	case err != nil:
		s.logger.Warn().Err(err).Str("user_id", userID).Str("period_key", def.PeriodKey).Msg("failed to advance streak after claim")
	default:
		result.Streak = &streak
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("quest", def.Code).
		Str("period_key", def.PeriodKey).
		Bool("already_claimed", result.AlreadyClaimed).
		Msg("quest claimed")
	return result, nil
}

// finishGrants performs the ticket roll and badge of a claimed quest. Both
// are keyed so a retry after a partial failure grants nothing twice.
func (s *QuestService) finishGrants(ctx context.Context, userID string, def domain.QuestDefinition, result *ClaimResult) error {
	if def.Reward.Ticket > droptable.Common {
		ticket, err := s.rewards.Roll(ctx, RollInput{
			UserID:    userID,
			Context:   ContextQuestClaim,
			MinRarity: def.Reward.Ticket,
			GrantKey:  fmt.Sprintf("claim:%s:%s:%s", userID, def.PeriodKey, def.Code),
		})
		if err != nil {
			return fmt.Errorf("failed to roll claim ticket: %w", err)
		}
		result.Ticket = &ticket
	}

	if def.Reward.Badge == "" {
		return nil
	}
	if _, ok := s.catalog.Badge(def.Reward.Badge); !ok {
		s.logger.Warn().Str("badge", def.Reward.Badge).Msg("quest badge is not an active catalog badge, skipping")
		return nil
	}

	err := s.badges.Grant(ctx, domain.BadgeGrant{
		UserID:     userID,
		Code:       def.Reward.Badge,
		Family:     def.Reward.Badge,
		Occurrence: domain.OnceOccurrence,
		Metadata:   map[string]any{"quest": def.Code, "period_key": def.PeriodKey},
	}, s.clock.Now())
	switch {
	case errors.Is(err, domain.ErrDuplicateGrant):
		s.logger.Debug().Str("user_id", userID).Str("badge", def.Reward.Badge).Msg("badge already granted")
	case err != nil:
		return fmt.Errorf("failed to grant quest badge: %w", err)
	default:
		result.Badge = def.Reward.Badge
	}
	return nil
}
