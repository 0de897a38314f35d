package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.StoreStore = (*StoreRepository)(nil)

const storeColumns = `id, auth_id, name, address, email, webhooks, created_at, updated_at`

type StoreRepository struct {
	db *Connection
}

func NewStoreRepository(db *Connection) *StoreRepository {
	return &StoreRepository{
		db: db,
	}
}

func scanStore(row pgx.Row) (model.Store, error) {
	var store model.Store
	err := row.Scan(
		&store.ID, &store.AuthID, &store.Name, &store.Address, &store.Email, &store.Webhooks,
		&store.CreatedAt, &store.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Store{}, model.ErrNotFound
		}
		return model.Store{}, err
	}

	return store, nil
}

func (r *StoreRepository) Create(ctx context.Context, store model.Store) (model.Store, error) {
	if store.Webhooks == nil {
		store.Webhooks = []model.Webhook{}
	}

	query := `INSERT INTO stores (id, auth_id, name, address, email, webhooks, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + storeColumns

	saved, err := scanStore(r.db.QueryRow(ctx, query,
		store.ID, store.AuthID, store.Name, store.Address, store.Email, store.Webhooks,
		store.CreatedAt, store.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Store{}, model.ErrConflict
		}
		return model.Store{}, fmt.Errorf("failed to create store: %w", err)
	}

	return saved, nil
}

func (r *StoreRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`

	store, err := scanStore(r.db.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.Store{}, fmt.Errorf("failed to get store by id: %w", err)
	}

	return store, err
}

func (r *StoreRepository) GetByAuthID(ctx context.Context, authID string) (model.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE auth_id = $1`

	store, err := scanStore(r.db.QueryRow(ctx, query, authID))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.Store{}, fmt.Errorf("failed to get store by auth id: %w", err)
	}

	return store, err
}

func (r *StoreRepository) Update(ctx context.Context, authID string, params model.UpdateStoreParams) (model.Store, error) {
	query := `UPDATE stores
			  SET name = COALESCE($2, name),
			      address = COALESCE($3, address),
			      webhooks = COALESCE($4, webhooks),
			      updated_at = now()
			  WHERE auth_id = $1
			  RETURNING ` + storeColumns

	// A nil webhook slice leaves the stored list untouched.
	var webhooks any
	if params.Webhooks != nil {
		webhooks = params.Webhooks
	}

	store, err := scanStore(r.db.QueryRow(ctx, query, authID, params.Name, params.Address, webhooks))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.Store{}, fmt.Errorf("failed to update store: %w", err)
	}

	return store, err
}

// Delete removes the store; its API keys and advertisements cascade.
func (r *StoreRepository) Delete(ctx context.Context, authID string) (model.Store, error) {
	query := `DELETE FROM stores WHERE auth_id = $1 RETURNING ` + storeColumns

	store, err := scanStore(r.db.QueryRow(ctx, query, authID))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.Store{}, fmt.Errorf("failed to delete store: %w", err)
	}

	return store, err
}
