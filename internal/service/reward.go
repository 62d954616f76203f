package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"progression-engine/internal/catalog"
	"progression-engine/internal/config"
	"progression-engine/internal/constants"
	"progression-engine/internal/domain"
	"progression-engine/internal/droptable"
	"progression-engine/internal/repository"
	"time"

	"github.com/rs/zerolog"
)

const (
	ContextQuestClaim      = "quest_claim"
	ContextStreakMilestone = "streak_milestone"
	ContextManual          = "manual"
)

type RollInput struct {
	UserID string
	// Context labels the grant in the audit log, e.g. "quest_claim".
	Context   string
	MinRarity droptable.Rarity
	// XPEarned selects the XP band table instead of the catalog table.
	XPEarned int
	// GrantKey makes the roll idempotent: a key already recorded returns the
	// stored result instead of rolling again.
	GrantKey string
}

type RollResult struct {
	AuditID       string
	Rarity        droptable.Rarity
	ItemID        string
	ItemName      string
	Consolation   int64
	Forced        droptable.ForceReason
	Weights       droptable.Weights
	Pity          droptable.Pity
	PoolID        string
	Anomaly       bool
	AnomalyReason string
	Replayed      bool
}

type RewardService struct {
	tx      *repository.TxRunner
	state   *repository.StateRepository
	rewards *repository.RewardRepository
	ledger  *LedgerService
	catalog *catalog.Catalog
	locks   *UserLocks
	clock   domain.Clock
	seed    func() uint64

	legendaryPerDay int
	logger          zerolog.Logger
}

func NewRewardService(
	cfg *config.Config,
	tx *repository.TxRunner,
	state *repository.StateRepository,
	rewards *repository.RewardRepository,
	ledger *LedgerService,
	c *catalog.Catalog,
	locks *UserLocks,
	clock domain.Clock,
	logger zerolog.Logger,
) *RewardService {
	return &RewardService{
		tx:              tx,
		state:           state,
		rewards:         rewards,
		ledger:          ledger,
		catalog:         c,
		locks:           locks,
		clock:           clock,
		seed:            rand.Uint64,
		legendaryPerDay: cfg.AnomalyLegendaryPerDay,
		logger:          logger,
	}
}

// Roll draws one reward for the user, updates pity and writes the audit row.
func (s *RewardService) Roll(ctx context.Context, in RollInput) (RollResult, error) {
	if in.UserID == "" {
		return RollResult{}, domain.ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	release, err := s.locks.Acquire(ctx, in.UserID)
	if err != nil {
		return RollResult{}, fmt.Errorf("failed to acquire user lock: %w", err)
	}
	defer release()

	return s.roll(ctx, in)
}

// roll expects the caller to hold the user's lock.
func (s *RewardService) roll(ctx context.Context, in RollInput) (RollResult, error) {
	if in.Context == "" {
		in.Context = ContextManual
	}

	if in.GrantKey != "" {
		if result, found, err := s.replay(ctx, in.UserID, in.GrantKey); err != nil || found {
			return result, err
		}
	}

	now := s.clock.Now()
	table := s.table(now, in.XPEarned)

	for attempt := 0; attempt < constants.StateSaveAttempts; attempt++ {
		state, err := s.state.Load(ctx, in.UserID, now)
		if err != nil {
			return RollResult{}, err
		}

		seed := s.seed()
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		outcome := droptable.Roll(rng, droptable.Request{
			Table:     table,
			Pity:      state.Pity,
			MinRarity: in.MinRarity,
		})

		anomaly, reason, err := s.detectAnomaly(ctx, in.UserID, outcome, now)
		if err != nil {
			return RollResult{}, err
		}

		audit := domain.GrantAudit{
			UserID:        in.UserID,
			GrantKey:      in.GrantKey,
			Context:       in.Context,
			Rarity:        outcome.Rarity,
			Weights:       outcome.Weights,
			Seed:          seed,
			Forced:        outcome.Forced,
			Anomaly:       anomaly,
			AnomalyReason: reason,
			CreatedAt:     now,
		}
		result := RollResult{
			Rarity:        outcome.Rarity,
			Forced:        outcome.Forced,
			Weights:       outcome.Weights,
			Pity:          outcome.Pity,
			Anomaly:       anomaly,
			AnomalyReason: reason,
		}
		if table.Pool != nil {
			result.PoolID = table.Pool.ID
		}

		item, ok := s.catalog.PickItem(rng, outcome.Rarity, table.Pool)
		if ok {
			audit.ItemID = item.ID
			result.ItemID, result.ItemName = item.ID, item.Name
		} else {
			audit.Consolation = constants.ConsolationDust[outcome.Rarity.String()]
			result.Consolation = audit.Consolation
			s.logger.Warn().
				Err(domain.ErrNoCatalogMatch).
				Str("user_id", in.UserID).
				Str("rarity", outcome.Rarity.String()).
				Int64("consolation", audit.Consolation).
				Msg("granting consolation dust")
		}

		state.Pity = outcome.Pity
		err = s.tx.Run(ctx, func(tx *sql.Tx) error {
			if err := s.state.WithTx(tx).Save(ctx, &state, now); err != nil {
				return err
			}
			if ok {
				if err := s.rewards.WithTx(tx).AddItem(ctx, in.UserID, item.ID, 1, now); err != nil {
					return fmt.Errorf("failed to add inventory item: %w", err)
				}
			} else if audit.Consolation > 0 {
				if _, err := s.ledger.award(ctx, tx, in.UserID, Delta{Dust: audit.Consolation}, AwardOptions{}); err != nil {
					return err
				}
			}
			return s.rewards.WithTx(tx).RecordAudit(ctx, &audit)
		})

		switch {
		case errors.Is(err, domain.ErrVersionConflict):
			s.logger.Debug().Str("user_id", in.UserID).Int("attempt", attempt+1).Msg("retrying roll after state conflict")
			continue
		case errors.Is(err, domain.ErrDuplicateGrant):
			replayed, _, err := s.replay(ctx, in.UserID, in.GrantKey)
			return replayed, err
		case err != nil:
			s.logger.Error().Err(err).Str("user_id", in.UserID).Msg("failed to persist roll")
			return RollResult{}, fmt.Errorf("failed to persist roll: %w", err)
		}

		result.AuditID = audit.ID
		s.logger.Info().
			Str("user_id", in.UserID).
			Str("context", in.Context).
			Str("rarity", outcome.Rarity.String()).
			Str("forced", string(outcome.Forced)).
			Str("item_id", audit.ItemID).
			Bool("anomaly", anomaly).
			Msg("reward rolled")
		return result, nil
	}

	return RollResult{}, fmt.Errorf("failed to roll reward: %w", domain.ErrVersionConflict)
}

func (s *RewardService) table(now time.Time, xpEarned int) droptable.Table {
	if xpEarned > 0 {
		return droptable.Table{Weights: droptable.WeightsForXPBand(xpEarned)}
	}
	return droptable.Resolve(now, s.catalog.BaseWeights(), s.catalog.FeaturedPools())
}

// detectAnomaly flags outcomes drawn from an empty table and legendary
// grants beyond the daily threshold. Flagged grants are still awarded.
func (s *RewardService) detectAnomaly(ctx context.Context, userID string, outcome droptable.Outcome, now time.Time) (bool, string, error) {
	if outcome.Forced == droptable.EmptyTableFall {
		return true, "zero_weight_table", nil
	}
	if outcome.Draw >= 0 && outcome.Weights[outcome.Rarity] == 0 {
		return true, "zero_weight_outcome", nil
	}

	if outcome.Rarity == droptable.Legendary && s.legendaryPerDay > 0 {
		recent, err := s.rewards.CountRecent(ctx, userID, droptable.Legendary, now.Add(-constants.AnomalyWindow))
		if err != nil {
			return false, "", fmt.Errorf("failed to count recent legendaries: %w", err)
		}
		if recent >= s.legendaryPerDay {
			s.logger.Warn().Str("user_id", userID).Int("recent_legendaries", recent).Msg("legendary rate anomaly")
			return true, "legendary_rate", nil
		}
	}
	return false, "", nil
}

func (s *RewardService) replay(ctx context.Context, userID, grantKey string) (RollResult, bool, error) {
	audit, found, err := s.rewards.AuditByGrantKey(ctx, userID, grantKey)
	if err != nil {
		return RollResult{}, false, fmt.Errorf("failed to load grant %s: %w", grantKey, err)
	}
	if !found {
		return RollResult{}, false, nil
	}

	result := RollResult{
		AuditID:       audit.ID,
		Rarity:        audit.Rarity,
		ItemID:        audit.ItemID,
		Consolation:   audit.Consolation,
		Forced:        audit.Forced,
		Weights:       audit.Weights,
		Anomaly:       audit.Anomaly,
		AnomalyReason: audit.AnomalyReason,
		Replayed:      true,
	}
	if item, ok := s.catalog.Item(audit.ItemID); ok {
		result.ItemName = item.Name
	}
	s.logger.Debug().Str("user_id", userID).Str("grant_key", grantKey).Str("audit_id", audit.ID).Msg("replaying recorded grant")
	return result, true, nil
}
