package postgres

import (
	// Go Internal Packages
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"github.com/lib/pq"
)

type PredictionsRepository struct {
	db    *sql.DB
	table string
}

func NewPredictionsRepository(db *sql.DB, table string) *PredictionsRepository {
	return &PredictionsRepository{db: db, table: table}
}

// CreateTable creates the predictions table if it is missing.
func (r *PredictionsRepository) CreateTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		transaction_id BIGINT,
		user_id BIGINT,
		amount DOUBLE PRECISION,
		transaction_type TEXT,
		status TEXT,
		device_id TEXT,
		location TEXT,
		is_foreign_transaction BOOLEAN,
		num_chargebacks BIGINT,
		potential_fraud INTEGER NOT NULL,
		predicted_fraud INTEGER NOT NULL
	)`, pq.QuoteIdentifier(r.table))

	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *PredictionsRepository) insertQuery() string {
	placeholders := make([]string, len(models.SinkColumns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(r.table),
		strings.Join(models.SinkColumns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// InsertPredictions appends a scored batch inside one transaction.
func (r *PredictionsRepository) InsertPredictions(ctx context.Context, txs []models.ScoredTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.insertQuery())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range txs {
		if _, err := stmt.ExecContext(ctx, txs[i].Values()...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PredictionsRepository) Close() error {
	return r.db.Close()
}
