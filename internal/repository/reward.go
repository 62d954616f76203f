package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"progression-engine/internal/db"
	"progression-engine/internal/domain"
	"progression-engine/internal/droptable"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RewardRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRewardRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RewardRepository {
	return &RewardRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *RewardRepository) WithTx(tx *sql.Tx) *RewardRepository {
	return &RewardRepository{queries: r.queries.WithTx(tx), db: r.db, logger: r.logger}
}

func (r *RewardRepository) AddItem(ctx context.Context, userID, itemID string, quantity int, at time.Time) error {
	return r.queries.AddInventoryItem(ctx, db.AddInventoryItemParams{
		UserID:    userID,
		ItemID:    itemID,
		Quantity:  int64(quantity),
		UpdatedAt: at.UTC(),
	})
}

func (r *RewardRepository) Inventory(ctx context.Context, userID string) ([]domain.InventoryItem, error) {
	rows, err := r.queries.ListInventory(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.InventoryItem, len(rows))
	for i, row := range rows {
		items[i] = domain.InventoryItem{
			UserID:    row.UserID,
			ItemID:    row.ItemID,
			Quantity:  int(row.Quantity),
			UpdatedAt: row.UpdatedAt,
		}
	}
	return items, nil
}

// RecordAudit appends a grant audit row and fills audit.ID. A grant key the
// same user already recorded returns domain.ErrDuplicateGrant.
func (r *RewardRepository) RecordAudit(ctx context.Context, audit *domain.GrantAudit) error {
	if audit.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		audit.ID = id
	}

	weights, err := json.Marshal(audit.Weights.Map())
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	var grantKey sql.NullString
	if audit.GrantKey != "" {
		grantKey = sql.NullString{String: audit.GrantKey, Valid: true}
	}

	n, err := r.queries.InsertRewardAudit(ctx, db.InsertRewardAuditParams{
		ID:            audit.ID,
		UserID:        audit.UserID,
		GrantKey:      grantKey,
		Context:       audit.Context,
		Rarity:        audit.Rarity.String(),
		Weights:       string(weights),
		Seed:          strconv.FormatUint(audit.Seed, 10),
		Forced:        string(audit.Forced),
		ItemID:        audit.ItemID,
		Consolation:   audit.Consolation,
		Anomaly:       audit.Anomaly,
		AnomalyReason: audit.AnomalyReason,
		CreatedAt:     audit.CreatedAt.UTC(),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", audit.UserID).Msg("failed to insert reward audit")
		return fmt.Errorf("failed to insert reward audit: %w", err)
	}
	if n == 0 {
		return domain.ErrDuplicateGrant
	}
	return nil
}

// AuditByGrantKey finds the user's grant recorded under grantKey. Keys are
// scoped per user.
func (r *RewardRepository) AuditByGrantKey(ctx context.Context, userID, grantKey string) (domain.GrantAudit, bool, error) {
	row, err := r.queries.GetRewardAuditByGrantKey(ctx, db.GetRewardAuditByGrantKeyParams{
		UserID:   userID,
		GrantKey: sql.NullString{String: grantKey, Valid: true},
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GrantAudit{}, false, nil
	}
	if err != nil {
		return domain.GrantAudit{}, false, err
	}

	audit, err := toGrantAudit(row)
	if err != nil {
		return domain.GrantAudit{}, false, err
	}
	return audit, true, nil
}

// CountRecent counts the user's grants of rarity created at or after since.
func (r *RewardRepository) CountRecent(ctx context.Context, userID string, rarity droptable.Rarity, since time.Time) (int, error) {
	n, err := r.queries.CountRecentAuditsByRarity(ctx, db.CountRecentAuditsByRarityParams{
		UserID:    userID,
		Rarity:    rarity.String(),
		CreatedAt: since.UTC(),
	})
	return int(n), err
}

type AuditSummary struct {
	Context   string
	Rarity    droptable.Rarity
	Grants    int
	Anomalies int
}

// Summarize groups audit rows since the given time by context and rarity.
// An empty userID covers every user.
func (r *RewardRepository) Summarize(ctx context.Context, userID string, since time.Time) ([]AuditSummary, error) {
	rows, err := r.queries.SummarizeRewardAudit(ctx, db.SummarizeRewardAuditParams{
		CreatedAt: since.UTC(),
		UserID:    userID,
	})
	if err != nil {
		return nil, err
	}

	summary := make([]AuditSummary, 0, len(rows))
	for _, row := range rows {
		rarity, err := droptable.ParseRarity(row.Rarity)
		if err != nil {
			return nil, err
		}
		summary = append(summary, AuditSummary{
			Context:   row.Context,
			Rarity:    rarity,
			Grants:    int(row.Grants),
			Anomalies: int(row.Anomalies.Int64),
		})
	}
	return summary, nil
}

func toGrantAudit(row db.RewardAudit) (domain.GrantAudit, error) {
	rarity, err := droptable.ParseRarity(row.Rarity)
	if err != nil {
		return domain.GrantAudit{}, err
	}

	var weights map[string]int
	if err := json.Unmarshal([]byte(row.Weights), &weights); err != nil {
		return domain.GrantAudit{}, fmt.Errorf("failed to decode weights: %w", err)
	}

	seed, err := strconv.ParseUint(row.Seed, 10, 64)
	if err != nil {
		return domain.GrantAudit{}, fmt.Errorf("failed to parse seed: %w", err)
	}

	return domain.GrantAudit{
		ID:            row.ID,
		UserID:        row.UserID,
		GrantKey:      row.GrantKey.String,
		Context:       row.Context,
		Rarity:        rarity,
		Weights:       droptable.WeightsFromMap(weights),
		Seed:          seed,
		Forced:        droptable.ForceReason(row.Forced),
		ItemID:        row.ItemID,
		Consolation:   row.Consolation,
		Anomaly:       row.Anomaly,
		AnomalyReason: row.AnomalyReason,
		CreatedAt:     row.CreatedAt,
	}, nil
}
