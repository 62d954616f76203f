package service

import (
	"context"
	"database/sql"
	"fmt"
	"progression-engine/internal/constants"
	"progression-engine/internal/domain"
	"progression-engine/internal/period"
	"progression-engine/internal/progression"
	"progression-engine/internal/repository"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Delta struct {
	Dust int64
	XP   int64
}

type AwardOptions struct {
	TrackLeaderboard bool
	// PlayedAt selects the leaderboard periods; zero means now.
	PlayedAt time.Time
}

type Balances struct {
	Dust     int64
	XP       int64
	Level    int
	Progress progression.LevelProgress
}

// StateView is the read model behind GetGameState.
type StateView struct {
	State     domain.GameState
	Progress  progression.LevelProgress
	Badges    []domain.UserBadge
	Inventory []domain.InventoryItem
	Ranks     map[period.Kind]domain.LeaderboardEntry
}

var boardKinds = []period.Kind{period.Daily, period.Weekly, period.AllTime}

type LedgerService struct {
	tx          *repository.TxRunner
	state       *repository.StateRepository
	leaderboard *repository.LeaderboardRepository
	profiles    *repository.ProfileRepository
	badges      *repository.BadgeRepository
	rewards     *repository.RewardRepository
	clock       domain.Clock
	logger      zerolog.Logger
}

func NewLedgerService(
	tx *repository.TxRunner,
	state *repository.StateRepository,
	leaderboard *repository.LeaderboardRepository,
	profiles *repository.ProfileRepository,
	badges *repository.BadgeRepository,
	rewards *repository.RewardRepository,
	clock domain.Clock,
	logger zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		tx:          tx,
		state:       state,
		leaderboard: leaderboard,
		profiles:    profiles,
		badges:      badges,
		rewards:     rewards,
		clock:       clock,
		logger:      logger,
	}
}

// Award adds non-negative dust and xp to the user's balances.
func (s *LedgerService) Award(ctx context.Context, userID string, delta Delta, opts AwardOptions) (Balances, error) {
	if userID == "" {
		return Balances{}, domain.ErrInvalidUser
	}
	if delta.Dust < 0 || delta.XP < 0 {
		return Balances{}, domain.ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var balances Balances
	err := s.tx.Run(ctx, func(tx *sql.Tx) error {
		var err error
		balances, err = s.award(ctx, tx, userID, delta, opts)
		return err
	})
	if err != nil {
		return Balances{}, err
	}
	return balances, nil
}

// award applies delta inside tx. Callers that already hold a transaction
// (claims, consolation dust) use this directly.
func (s *LedgerService) award(ctx context.Context, tx *sql.Tx, userID string, delta Delta, opts AwardOptions) (Balances, error) {
	if delta.Dust < 0 || delta.XP < 0 {
		return Balances{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	state := s.state.WithTx(tx)

	dust, xp, err := state.AddBalances(ctx, userID, delta.Dust, delta.XP, now)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to add balances")
		return Balances{}, fmt.Errorf("failed to add balances: %w", err)
	}

	level := progression.LevelForXP(xp)
	if err := state.SetLevel(ctx, userID, level, xp); err != nil {
		return Balances{}, fmt.Errorf("failed to set level: %w", err)
	}

	if delta.XP > 0 && opts.TrackLeaderboard {
		playedAt := opts.PlayedAt
		if playedAt.IsZero() {
			playedAt = now
		}
		if err := s.track(ctx, tx, userID, delta.XP, playedAt); err != nil {
			return Balances{}, err
		}
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int64("dust_delta", delta.Dust).
		Int64("xp_delta", delta.XP).
		Int64("dust", dust).
		Int64("xp", xp).
		Int("level", level).
		Msg("balances awarded")

	return Balances{Dust: dust, XP: xp, Level: level, Progress: progression.Progress(xp)}, nil
}

func (s *LedgerService) track(ctx context.Context, tx *sql.Tx, userID string, xp int64, playedAt time.Time) error {
	profile, err := s.profiles.WithTx(tx).Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	board := s.leaderboard.WithTx(tx)
	for _, kind := range boardKinds {
		start, end := period.Bounds(kind, playedAt)
		err := board.Add(ctx, domain.LeaderboardEntry{
			PeriodType:   kind,
			PeriodKey:    period.Key(kind, playedAt),
			UserID:       userID,
			DisplayName:  profile.DisplayName,
			AvatarURL:    profile.AvatarURL,
			Score:        xp,
			PeriodStart:  start,
			PeriodEnd:    end,
			LastPlayedAt: playedAt,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Str("period", string(kind)).Msg("failed to update leaderboard")
			return fmt.Errorf("failed to update %s leaderboard: %w", kind, err)
		}
	}
	return nil
}

// GetState returns the user's balances, badges, inventory and current ranks.
func (s *LedgerService) GetState(ctx context.Context, userID string) (*StateView, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	now := s.clock.Now()
	state, err := s.state.Load(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	view := &StateView{
		State:    state,
		Progress: progression.Progress(state.XP),
		Ranks:    make(map[period.Kind]domain.LeaderboardEntry, len(boardKinds)),
	}
	ranks := make([]*domain.LeaderboardEntry, len(boardKinds))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		badges, err := s.badges.List(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list badges: %w", err)
		}
		view.Badges = badges
		return nil
	})
	g.Go(func() error {
		items, err := s.rewards.Inventory(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list inventory: %w", err)
		}
		view.Inventory = items
		return nil
	})
	for i, kind := range boardKinds {
		g.Go(func() error {
			entry, found, err := s.leaderboard.Entry(gctx, period.Key(kind, now), userID)
			if err != nil {
				return fmt.Errorf("failed to get %s rank: %w", kind, err)
			}
			if found {
				ranks[i] = &entry
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load game state view")
		return nil, err
	}

	for i, kind := range boardKinds {
		if ranks[i] != nil {
			view.Ranks[kind] = *ranks[i]
		}
	}
	return view, nil
}

// Leaderboard lists the top entries of the kind's period holding at.
func (s *LedgerService) Leaderboard(ctx context.Context, kind period.Kind, at time.Time, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = constants.LeaderboardDefaultSize
	}
	limit = min(limit, constants.LeaderboardMaxSize)
	if at.IsZero() {
		at = s.clock.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	entries, err := s.leaderboard.Top(ctx, period.Key(kind, at), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}
	return entries, nil
}

// Rank returns the user's entry in the kind's period holding at. False when
// the user has not scored in that period.
func (s *LedgerService) Rank(ctx context.Context, kind period.Kind, at time.Time, userID string) (domain.LeaderboardEntry, bool, error) {
	if at.IsZero() {
		at = s.clock.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.leaderboard.Entry(ctx, period.Key(kind, at), userID)
}
