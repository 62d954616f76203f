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
	"progression-engine/internal/period"
	"time"

	"github.com/rs/zerolog"
)

type QuestRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewQuestRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *QuestRepository {
	return &QuestRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *QuestRepository) WithTx(tx *sql.Tx) *QuestRepository {
	return &QuestRepository{queries: r.queries.WithTx(tx), db: r.db, logger: r.logger}
}

// InsertDefinitions stores a generated period. Existing rows win, so a
// definition never changes once written. Returns how many rows were new.
func (r *QuestRepository) InsertDefinitions(ctx context.Context, defs []domain.QuestDefinition) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	inserted := 0
	for _, def := range defs {
		var meta sql.NullString
		if def.Streaming != nil {
			raw, err := json.Marshal(def.Streaming)
			if err != nil {
				return 0, fmt.Errorf("failed to encode streaming meta for %s: %w", def.Code, err)
			}
			meta = sql.NullString{String: string(raw), Valid: true}
		}

		n, err := qtx.InsertQuestDefinition(ctx, db.InsertQuestDefinitionParams{
			PeriodKey:     def.PeriodKey,
			Code:          def.Code,
			PeriodType:    string(def.Period),
			Position:      int64(def.Position),
			Title:         def.Title,
			GoalType:      def.GoalType,
			GoalValue:     int64(def.GoalValue),
			StreamingMeta: meta,
			RewardDust:    def.Reward.Dust,
			RewardXp:      def.Reward.XP,
			RewardTicket:  ticketText(def.Reward.Ticket),
			RewardBadge:   def.Reward.Badge,
			CreatedAt:     def.CreatedAt.UTC(),
		})
		if err != nil {
			r.logger.Error().Err(err).Str("code", def.Code).Str("period_key", def.PeriodKey).Msg("failed to insert quest definition")
			return 0, fmt.Errorf("failed to insert quest definition %s: %w", def.Code, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit quest definitions: %w", err)
	}
	return inserted, nil
}

func (r *QuestRepository) ListDefinitions(ctx context.Context, periodKey string) ([]domain.QuestDefinition, error) {
	rows, err := r.queries.ListQuestDefinitionsByPeriod(ctx, periodKey)
	if err != nil {
		return nil, err
	}

	defs := make([]domain.QuestDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := toQuestDefinition(row)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (r *QuestRepository) GetDefinition(ctx context.Context, periodKey, code string) (domain.QuestDefinition, error) {
	row, err := r.queries.GetQuestDefinition(ctx, db.GetQuestDefinitionParams{PeriodKey: periodKey, Code: code})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuestDefinition{}, domain.ErrQuestNotFound
	}
	if err != nil {
		return domain.QuestDefinition{}, err
	}
	return toQuestDefinition(row)
}

// RecordEvent stores an advance idempotency key. False means the event was
// already applied.
func (r *QuestRepository) RecordEvent(ctx context.Context, userID, eventID, tag string, amount int, at time.Time) (bool, error) {
	n, err := r.queries.InsertProgressEvent(ctx, db.InsertProgressEventParams{
		UserID:    userID,
		EventID:   eventID,
		GoalTag:   tag,
		Amount:    int64(amount),
		CreatedAt: at.UTC(),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Increment adds amount to the user's progress on def, clamped at the goal.
func (r *QuestRepository) Increment(ctx context.Context, userID string, def domain.QuestDefinition, amount int, at time.Time) (domain.QuestProgress, error) {
	row, err := r.queries.IncrementQuestProgress(ctx, db.IncrementQuestProgressParams{
		UserID:    userID,
		QuestCode: def.Code,
		PeriodKey: def.PeriodKey,
		Amount:    int64(amount),
		GoalValue: int64(def.GoalValue),
		UpdatedAt: at.UTC(),
	})
	if err != nil {
		return domain.QuestProgress{}, err
	}
	return domain.QuestProgress{
		UserID:    userID,
		QuestCode: def.Code,
		PeriodKey: def.PeriodKey,
		Progress:  int(row.Progress),
		GoalValue: def.GoalValue,
		Completed: row.Completed,
		Claimed:   row.Claimed,
		UpdatedAt: at.UTC(),
	}, nil
}

// Raise sets progress to value unless the stored progress is already higher.
func (r *QuestRepository) Raise(ctx context.Context, userID string, def domain.QuestDefinition, value int, at time.Time) (domain.QuestProgress, error) {
	row, err := r.queries.RaiseQuestProgress(ctx, db.RaiseQuestProgressParams{
		UserID:    userID,
		QuestCode: def.Code,
		PeriodKey: def.PeriodKey,
		Progress:  int64(value),
		GoalValue: int64(def.GoalValue),
		UpdatedAt: at.UTC(),
	})
	if err != nil {
		return domain.QuestProgress{}, err
	}
	return domain.QuestProgress{
		UserID:    userID,
		QuestCode: def.Code,
		PeriodKey: def.PeriodKey,
		Progress:  int(row.Progress),
		GoalValue: def.GoalValue,
		Completed: row.Completed,
		Claimed:   row.Claimed,
		UpdatedAt: at.UTC(),
	}, nil
}

// EnsureBaseline stores baseline as the verification start unless one is
// already recorded, and returns the effective value.
func (r *QuestRepository) EnsureBaseline(ctx context.Context, userID string, def domain.QuestDefinition, baseline, at time.Time) (time.Time, error) {
	err := r.queries.EnsureQuestBaseline(ctx, db.EnsureQuestBaselineParams{
		UserID:     userID,
		QuestCode:  def.Code,
		PeriodKey:  def.PeriodKey,
		GoalValue:  int64(def.GoalValue),
		BaselineAt: sql.NullTime{Time: baseline.UTC(), Valid: true},
		CreatedAt:  at.UTC(),
	})
	if err != nil {
		return time.Time{}, err
	}

	progress, found, err := r.GetProgress(ctx, userID, def.Code, def.PeriodKey)
	if err != nil {
		return time.Time{}, err
	}
	if !found || progress.BaselineAt == nil {
		return baseline.UTC(), nil
	}
	return *progress.BaselineAt, nil
}

func (r *QuestRepository) GetProgress(ctx context.Context, userID, code, periodKey string) (domain.QuestProgress, bool, error) {
	row, err := r.queries.GetQuestProgress(ctx, db.GetQuestProgressParams{
		UserID:    userID,
		QuestCode: code,
		PeriodKey: periodKey,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuestProgress{}, false, nil
	}
	if err != nil {
		return domain.QuestProgress{}, false, err
	}
	return toQuestProgress(row), true, nil
}

func (r *QuestRepository) ListProgress(ctx context.Context, userID, dailyKey, weeklyKey string) ([]domain.QuestProgress, error) {
	rows, err := r.queries.ListQuestProgressForPeriods(ctx, db.ListQuestProgressForPeriodsParams{
		UserID:    userID,
		DailyKey:  dailyKey,
		WeeklyKey: weeklyKey,
	})
	if err != nil {
		return nil, err
	}

	progress := make([]domain.QuestProgress, len(rows))
	for i, row := range rows {
		progress[i] = toQuestProgress(row)
	}
	return progress, nil
}

// MarkClaimed flips claimed for a completed, unclaimed row. False means the
// row was missing, incomplete or already claimed.
func (r *QuestRepository) MarkClaimed(ctx context.Context, userID, code, periodKey string, at time.Time) (bool, error) {
	n, err := r.queries.ClaimQuestProgress(ctx, db.ClaimQuestProgressParams{
		ClaimedAt: at.UTC(),
		UserID:    userID,
		QuestCode: code,
		PeriodKey: periodKey,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func toQuestDefinition(row db.QuestDefinition) (domain.QuestDefinition, error) {
	kind, err := period.ParseKind(row.PeriodType)
	if err != nil {
		return domain.QuestDefinition{}, err
	}

	var ticket droptable.Rarity
	if err := ticket.UnmarshalText([]byte(row.RewardTicket)); err != nil {
		return domain.QuestDefinition{}, err
	}

	def := domain.QuestDefinition{
		Code:      row.Code,
		Period:    kind,
		PeriodKey: row.PeriodKey,
		Position:  int(row.Position),
		Title:     row.Title,
		GoalType:  row.GoalType,
		GoalValue: int(row.GoalValue),
		Reward: domain.QuestReward{
			Dust:   row.RewardDust,
			XP:     row.RewardXp,
			Ticket: ticket,
			Badge:  row.RewardBadge,
		},
		CreatedAt: row.CreatedAt,
	}

	if row.StreamingMeta.Valid && row.StreamingMeta.String != "" {
		var meta domain.StreamingMeta
		if err := json.Unmarshal([]byte(row.StreamingMeta.String), &meta); err != nil {
			return domain.QuestDefinition{}, fmt.Errorf("failed to decode streaming meta for %s: %w", row.Code, err)
		}
		def.Streaming = &meta
	}
	return def, nil
}

func toQuestProgress(row db.QuestProgress) domain.QuestProgress {
	return domain.QuestProgress{
		UserID:     row.UserID,
		QuestCode:  row.QuestCode,
		PeriodKey:  row.PeriodKey,
		Progress:   int(row.Progress),
		GoalValue:  int(row.GoalValue),
		Completed:  row.Completed,
		Claimed:    row.Claimed,
		ClaimedAt:  nullTime(row.ClaimedAt),
		BaselineAt: nullTime(row.BaselineAt),
		UpdatedAt:  row.UpdatedAt,
	}
}

// ticketText stores "no ticket" as an empty column.
func ticketText(r droptable.Rarity) string {
	if r == droptable.Common {
		return ""
	}
	return r.String()
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
