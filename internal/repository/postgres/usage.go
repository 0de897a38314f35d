package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.UsageStore = (*UsageRepository)(nil)

type UsageRepository struct {
	db *Connection
}

func NewUsageRepository(db *Connection) *UsageRepository {
	return &UsageRepository{
		db: db,
	}
}

func (r *UsageRepository) Insert(ctx context.Context, usage model.APIUsage) error {
	query := `INSERT INTO api_usage (api_key_id, store_id, method, endpoint, occurred_at)
			  VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.Exec(ctx, query,
		usage.APIKeyID, usage.StoreID, usage.Method, usage.Endpoint, usage.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to insert api usage: %w", err)
	}

	return nil
}

func (r *UsageRepository) ListByKey(ctx context.Context, keyID uuid.UUID, from, to time.Time) ([]model.APIUsage, error) {
	query := `SELECT api_key_id, store_id, method, endpoint, occurred_at
			  FROM api_usage
			  WHERE api_key_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
			  ORDER BY occurred_at`

	rows, err := r.db.Query(ctx, query, keyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list api usage: %w", err)
	}
	defer rows.Close()

	usage := make([]model.APIUsage, 0)
	for rows.Next() {
		var u model.APIUsage
		if err := rows.Scan(&u.APIKeyID, &u.StoreID, &u.Method, &u.Endpoint, &u.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan api usage: %w", err)
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api usage: %w", err)
	}

	return usage, nil
}
