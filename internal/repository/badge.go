package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"progression-engine/internal/db"
	"progression-engine/internal/domain"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type BadgeRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewBadgeRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *BadgeRepository {
	return &BadgeRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *BadgeRepository) WithTx(tx *sql.Tx) *BadgeRepository {
	return &BadgeRepository{queries: r.queries.WithTx(tx), db: r.db, logger: r.logger}
}

// Grant inserts a user badge. A second grant of the same family and
// occurrence returns domain.ErrDuplicateGrant and changes nothing.
func (r *BadgeRepository) Grant(ctx context.Context, grant domain.BadgeGrant, at time.Time) error {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	metadata := []byte("{}")
	if len(grant.Metadata) > 0 {
		metadata, err = json.Marshal(grant.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode badge metadata: %w", err)
		}
	}

	n, err := r.queries.InsertUserBadge(ctx, db.InsertUserBadgeParams{
		ID:            id,
		UserID:        grant.UserID,
		BadgeCode:     grant.Code,
		BadgeFamily:   grant.Family,
		CyclePosition: int64(grant.CyclePosition),
		Occurrence:    grant.Occurrence,
		Metadata:      string(metadata),
		EarnedAt:      at.UTC(),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", grant.UserID).Str("badge", grant.Code).Msg("failed to insert user badge")
		return fmt.Errorf("failed to insert user badge: %w", err)
	}
	if n == 0 {
		return domain.ErrDuplicateGrant
	}
	return nil
}

func (r *BadgeRepository) List(ctx context.Context, userID string) ([]domain.UserBadge, error) {
	rows, err := r.queries.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges := make([]domain.UserBadge, 0, len(rows))
	for _, row := range rows {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(row.Metadata), &metadata); err != nil {
			r.logger.Warn().Err(err).Str("badge_id", row.ID).Msg("invalid badge metadata, ignoring")
			metadata = nil
		}
		badges = append(badges, domain.UserBadge{
			ID: row.ID,
			BadgeGrant: domain.BadgeGrant{
				UserID:        row.UserID,
				Code:          row.BadgeCode,
				Family:        row.BadgeFamily,
				CyclePosition: int(row.CyclePosition),
				Occurrence:    row.Occurrence,
				Metadata:      metadata,
			},
			EarnedAt: row.EarnedAt,
		})
	}
	return badges, nil
}
