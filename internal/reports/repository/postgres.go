package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"avalia_backend/internal/valuation/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo stores each list as a JSONB array in report_lists.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed repository.
func NewPostgres(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

func (r *PostgresRepo) List(ctx context.Context, email string) ([]domain.Report, error) {
	query := `SELECT payload FROM report_lists WHERE storage_key = $1`

	var raw []byte
	if err := r.pool.QueryRow(ctx, query, StorageKey(email)).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Report{}, nil
		}
		return nil, fmt.Errorf("get report list: %w", err)
	}
	return decodeList(raw)
}

// Append prepends in a single upsert.
func (r *PostgresRepo) Append(ctx context.Context, email string, report domain.Report) error {
	query := `
		INSERT INTO report_lists (storage_key, payload, updated_at)
		VALUES ($1, jsonb_build_array($2::jsonb), now())
		ON CONFLICT (storage_key) DO UPDATE
		SET payload = jsonb_build_array($2::jsonb) || report_lists.payload,
			updated_at = now()`

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := r.pool.Exec(ctx, query, StorageKey(email), string(data)); err != nil {
		return fmt.Errorf("append report: %w", err)
	}
	return nil
}

var _ Repository = (*PostgresRepo)(nil)
