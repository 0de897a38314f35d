package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.APIKeyStore = (*APIKeyRepository)(nil)

const apiKeyColumns = `id, store_id, prefix, hashed_key, name, status, created_at, revoked_at, last_used_at`

type APIKeyRepository struct {
	db *Connection
}

func NewAPIKeyRepository(db *Connection) *APIKeyRepository {
	return &APIKeyRepository{
		db: db,
	}
}

func scanAPIKey(row pgx.Row) (model.APIKey, error) {
	var key model.APIKey
	err := row.Scan(
		&key.ID, &key.StoreID, &key.Prefix, &key.HashedKey, &key.Name, &key.Status,
		&key.CreatedAt, &key.RevokedAt, &key.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.APIKey{}, model.ErrNotFound
		}
		return model.APIKey{}, err
	}

	return key, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key model.APIKey) (model.APIKey, error) {
	query := `INSERT INTO api_keys (id, store_id, prefix, hashed_key, name, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + apiKeyColumns

	saved, err := scanAPIKey(r.db.QueryRow(ctx, query,
		key.ID, key.StoreID, key.Prefix, key.HashedKey, key.Name, key.Status, key.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.APIKey{}, model.ErrConflict
		}
		return model.APIKey{}, fmt.Errorf("failed to create api key: %w", err)
	}

	return saved, nil
}

func (r *APIKeyRepository) GetByID(ctx context.Context, storeID, keyID uuid.UUID) (model.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE store_id = $1 AND id = $2`

	key, err := scanAPIKey(r.db.QueryRow(ctx, query, storeID, keyID))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.APIKey{}, fmt.Errorf("failed to get api key: %w", err)
	}

	return key, err
}

func (r *APIKeyRepository) GetByStoreAndPrefix(ctx context.Context, storeID uuid.UUID, prefix string) (model.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE store_id = $1 AND prefix = $2`

	key, err := scanAPIKey(r.db.QueryRow(ctx, query, storeID, prefix))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.APIKey{}, fmt.Errorf("failed to get api key by prefix: %w", err)
	}

	return key, err
}

func (r *APIKeyRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE store_id = $1 ORDER BY created_at DESC`

	return r.list(ctx, query, storeID)
}

func (r *APIKeyRepository) FindActiveByPrefix(ctx context.Context, prefix string) ([]model.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE prefix = $1 AND status = 'active'`

	return r.list(ctx, query, prefix)
}

func (r *APIKeyRepository) list(ctx context.Context, query string, args ...any) ([]model.APIKey, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]model.APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api keys: %w", err)
	}

	return keys, nil
}

// Revoke flips an active key to revoked. It returns model.ErrNotFound when no
// active key matched, including keys that were already revoked.
func (r *APIKeyRepository) Revoke(ctx context.Context, storeID, keyID uuid.UUID) (model.APIKey, error) {
	query := `UPDATE api_keys SET status = 'revoked', revoked_at = now()
			  WHERE store_id = $1 AND id = $2 AND status = 'active'
			  RETURNING ` + apiKeyColumns

	key, err := scanAPIKey(r.db.QueryRow(ctx, query, storeID, keyID))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.APIKey{}, fmt.Errorf("failed to revoke api key: %w", err)
	}

	return key, err
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, keyID uuid.UUID, at time.Time) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, keyID, at); err != nil {
		return fmt.Errorf("failed to update api key last use: %w", err)
	}

	return nil
}
