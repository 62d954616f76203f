package repository

import (
	"context"
	"database/sql"
	"errors"
	"progression-engine/internal/db"
	"progression-engine/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

// ProfileRepository reads display metadata owned by the account service.
type ProfileRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewProfileRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *ProfileRepository) WithTx(tx *sql.Tx) *ProfileRepository {
	return &ProfileRepository{queries: r.queries.WithTx(tx), db: r.db, logger: r.logger}
}

// Get returns the user's profile. A user without a row gets an empty
// profile rather than an error.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (domain.Profile, error) {
	row, err := r.queries.GetUserProfile(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Str("user_id", userID).Msg("profile not found, using empty profile")
		return domain.Profile{UserID: userID}, nil
	}
	if err != nil {
		return domain.Profile{}, err
	}

	return domain.Profile{
		UserID:            row.UserID,
		DisplayName:       row.DisplayName,
		AvatarURL:         row.AvatarUrl,
		ListeningUsername: row.ListeningUsername,
	}, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile domain.Profile, at time.Time) error {
	return r.queries.UpsertUserProfile(ctx, db.UpsertUserProfileParams{
		UserID:            profile.UserID,
		DisplayName:       profile.DisplayName,
		AvatarUrl:         profile.AvatarURL,
		ListeningUsername: profile.ListeningUsername,
		UpdatedAt:         at.UTC(),
	})
}
