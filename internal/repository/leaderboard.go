package repository

import (
	"context"
	"database/sql"
	"errors"
	"progression-engine/internal/db"
	"progression-engine/internal/domain"
	"progression-engine/internal/period"

	"github.com/rs/zerolog"
)

type LeaderboardRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewLeaderboardRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *LeaderboardRepository {
	return &LeaderboardRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *LeaderboardRepository) WithTx(tx *sql.Tx) *LeaderboardRepository {
	return &LeaderboardRepository{queries: r.queries.WithTx(tx), db: r.db, logger: r.logger}
}

// Add adds entry.Score to the user's row for the period, creating it if
// needed. Display metadata is refreshed when non-empty.
func (r *LeaderboardRepository) Add(ctx context.Context, entry domain.LeaderboardEntry) error {
	params := db.AddLeaderboardScoreParams{
		PeriodKey:    entry.PeriodKey,
		UserID:       entry.UserID,
		PeriodType:   string(entry.PeriodType),
		Score:        entry.Score,
		DisplayName:  entry.DisplayName,
		AvatarUrl:    entry.AvatarURL,
		LastPlayedAt: entry.LastPlayedAt.UTC(),
	}
	if !entry.PeriodStart.IsZero() {
		params.PeriodStart = sql.NullTime{Time: entry.PeriodStart.UTC(), Valid: true}
		params.PeriodEnd = sql.NullTime{Time: entry.PeriodEnd.UTC(), Valid: true}
	}
	return r.queries.AddLeaderboardScore(ctx, params)
}

// Top lists the highest scores of a period. Equal scores share a rank.
func (r *LeaderboardRepository) Top(ctx context.Context, periodKey string, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.queries.ListLeaderboard(ctx, db.ListLeaderboardParams{PeriodKey: periodKey, Limit: int64(limit)})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = toLeaderboardEntry(row)
		if i > 0 && row.Score == rows[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries, nil
}

// Entry returns the user's row with its rank. False when the user has no
// score in the period.
func (r *LeaderboardRepository) Entry(ctx context.Context, periodKey, userID string) (domain.LeaderboardEntry, bool, error) {
	row, err := r.queries.GetLeaderboardEntry(ctx, db.GetLeaderboardEntryParams{PeriodKey: periodKey, UserID: userID})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LeaderboardEntry{}, false, nil
	}
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}

	ahead, err := r.queries.CountLeaderboardAhead(ctx, db.CountLeaderboardAheadParams{PeriodKey: periodKey, Score: row.Score})
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}

	entry := toLeaderboardEntry(row)
	entry.Rank = int(ahead) + 1
	return entry, true, nil
}

func toLeaderboardEntry(row db.LeaderboardEntry) domain.LeaderboardEntry {
	entry := domain.LeaderboardEntry{
		PeriodType:   period.Kind(row.PeriodType),
		PeriodKey:    row.PeriodKey,
		UserID:       row.UserID,
		DisplayName:  row.DisplayName,
		AvatarURL:    row.AvatarUrl,
		Score:        row.Score,
		LastPlayedAt: row.LastPlayedAt,
	}
	if row.PeriodStart.Valid {
		entry.PeriodStart = row.PeriodStart.Time
	}
	if row.PeriodEnd.Valid {
		entry.PeriodEnd = row.PeriodEnd.Time
	}
	return entry
}
