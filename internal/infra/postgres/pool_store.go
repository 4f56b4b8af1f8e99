package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizhub-service/internal/domain"
)

// PoolStore loads and saves pool JSONB in Postgres. It implements
// memory.PoolLoader so the cached repositories can sit in front of it.
type PoolStore struct {
	db *pgxpool.Pool
}

func NewPoolStore(db *pgxpool.Pool) *PoolStore {
	return &PoolStore{db: db}
}

func (s *PoolStore) LoadPool(ctx context.Context, name string) (domain.Pool, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM pools WHERE name=$1`, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Pool{}, domain.ErrPoolNotFound
	}
	if err != nil {
		return domain.Pool{}, fmt.Errorf("load pool: %w", err)
	}
	var pool domain.Pool
	if err := json.Unmarshal(raw, &pool); err != nil {
		return domain.Pool{}, fmt.Errorf("unmarshal pool: %w", err)
	}
	return pool, nil
}

func (s *PoolStore) PoolNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM pools ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan pool name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PoolStore) SavePool(ctx context.Context, pool domain.Pool) error {
	raw, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO pools (name, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (name) DO UPDATE SET data=EXCLUDED.data`,
		pool.Name, raw)
	if err != nil {
		return fmt.Errorf("save pool: %w", err)
	}
	return nil
}
