package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"progression-engine/internal/db"
	"progression-engine/internal/domain"
	"progression-engine/internal/droptable"
	"time"

	"github.com/rs/zerolog"
)

// StateRepository stores the per-user game state aggregate. Balances change
// through additive updates; pity and streak fields change through Save,
// which is guarded by the version column.
type StateRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewStateRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *StateRepository {
	return &StateRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *StateRepository) WithTx(tx *sql.Tx) *StateRepository {
	return &StateRepository{queries: r.queries.WithTx(tx), db: r.db, logger: r.logger}
}

// Load returns the user's state, creating the default row on first access.
func (r *StateRepository) Load(ctx context.Context, userID string, now time.Time) (domain.GameState, error) {
	if err := r.queries.EnsureGameState(ctx, db.EnsureGameStateParams{UserID: userID, CreatedAt: now.UTC()}); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create game state")
		return domain.GameState{}, fmt.Errorf("failed to create game state: %w", err)
	}

	row, err := r.queries.GetGameState(ctx, userID)
	if err != nil {
		return domain.GameState{}, fmt.Errorf("failed to get game state: %w", err)
	}
	return toGameState(row)
}

// AddBalances increments dust and xp and returns the new totals.
func (r *StateRepository) AddBalances(ctx context.Context, userID string, dust, xp int64, at time.Time) (int64, int64, error) {
	if err := r.queries.EnsureGameState(ctx, db.EnsureGameStateParams{UserID: userID, CreatedAt: at.UTC()}); err != nil {
		return 0, 0, fmt.Errorf("failed to create game state: %w", err)
	}

	row, err := r.queries.IncrementBalances(ctx, db.IncrementBalancesParams{
		Dust:      dust,
		Xp:        xp,
		UpdatedAt: at.UTC(),
		UserID:    userID,
	})
	if err != nil {
		return 0, 0, err
	}
	return row.Dust, row.Xp, nil
}

// SetLevel writes level only while the stored xp still equals xp.
func (r *StateRepository) SetLevel(ctx context.Context, userID string, level int, xp int64) error {
	return r.queries.UpdateLevel(ctx, db.UpdateLevelParams{
		Level:  int64(level),
		UserID: userID,
		Xp:     xp,
	})
}

// Save persists pity and streak fields if state.Version is still current.
// On success state.Version is bumped to the stored value.
func (r *StateRepository) Save(ctx context.Context, state *domain.GameState, at time.Time) error {
	dailyEarned, err := json.Marshal(nonNil(state.Daily.Earned))
	if err != nil {
		return fmt.Errorf("failed to encode daily streaks: %w", err)
	}
	weeklyEarned, err := json.Marshal(nonNil(state.Weekly.Earned))
	if err != nil {
		return fmt.Errorf("failed to encode weekly streaks: %w", err)
	}

	n, err := r.queries.UpdateGameStateAggregate(ctx, db.UpdateGameStateAggregateParams{
		PitySinceEpic:       int64(state.Pity.SinceEpic),
		PitySinceLegendary:  int64(state.Pity.SinceLegendary),
		DailyCount:          int64(state.Daily.Count),
		DailyLastKey:        state.Daily.LastKey,
		DailyLastAt:         toNullTime(state.Daily.LastAt),
		DailyEarned:         string(dailyEarned),
		DailyHighest:        int64(state.Daily.Highest),
		DailyLastMilestone:  int64(state.Daily.LastMilestone),
		DailyMilestones:     int64(state.Daily.Milestones),
		WeeklyCount:         int64(state.Weekly.Count),
		WeeklyLastKey:       state.Weekly.LastKey,
		WeeklyLastAt:        toNullTime(state.Weekly.LastAt),
		WeeklyEarned:        string(weeklyEarned),
		WeeklyHighest:       int64(state.Weekly.Highest),
		WeeklyLastMilestone: int64(state.Weekly.LastMilestone),
		WeeklyMilestones:    int64(state.Weekly.Milestones),
		UpdatedAt:           at.UTC(),
		UserID:              state.UserID,
		Version:             state.Version,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", state.UserID).Msg("failed to save game state")
		return fmt.Errorf("failed to save game state: %w", err)
	}
	if n == 0 {
		r.logger.Debug().Str("user_id", state.UserID).Int64("version", state.Version).Msg("game state version conflict")
		return domain.ErrVersionConflict
	}

	state.Version++
	return nil
}

func toGameState(row db.GameState) (domain.GameState, error) {
	var dailyEarned, weeklyEarned []int
	if err := json.Unmarshal([]byte(row.DailyEarned), &dailyEarned); err != nil {
		return domain.GameState{}, fmt.Errorf("failed to decode daily streaks: %w", err)
	}
	if err := json.Unmarshal([]byte(row.WeeklyEarned), &weeklyEarned); err != nil {
		return domain.GameState{}, fmt.Errorf("failed to decode weekly streaks: %w", err)
	}

	return domain.GameState{
		UserID: row.UserID,
		Dust:   row.Dust,
		XP:     row.Xp,
		Level:  int(row.Level),
		Pity: droptable.Pity{
			SinceEpic:      int(row.PitySinceEpic),
			SinceLegendary: int(row.PitySinceLegendary),
		},
		Daily: domain.StreakState{
			Count:         int(row.DailyCount),
			LastKey:       row.DailyLastKey,
			LastAt:        nullTime(row.DailyLastAt),
			Earned:        dailyEarned,
			Highest:       int(row.DailyHighest),
			LastMilestone: int(row.DailyLastMilestone),
			Milestones:    int(row.DailyMilestones),
		},
		Weekly: domain.StreakState{
			Count:         int(row.WeeklyCount),
			LastKey:       row.WeeklyLastKey,
			LastAt:        nullTime(row.WeeklyLastAt),
			Earned:        weeklyEarned,
			Highest:       int(row.WeeklyHighest),
			LastMilestone: int(row.WeeklyLastMilestone),
			Milestones:    int(row.WeeklyMilestones),
		},
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
