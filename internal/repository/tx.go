package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// TxRunner runs a function inside one write transaction. Repositories bind to
// it through their WithTx methods.
type TxRunner struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTxRunner(sqlDB *sql.DB, logger zerolog.Logger) *TxRunner {
	return &TxRunner{db: sqlDB, logger: logger}
}

func (r *TxRunner) Run(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
