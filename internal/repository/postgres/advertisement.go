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

var _ model.AdvertisementStore = (*AdvertisementRepository)(nil)

const adColumns = `id, store_id, title, description, target_categories, starts_at, ends_at, media_url, created_at, updated_at`

type AdvertisementRepository struct {
	db *Connection
}

func NewAdvertisementRepository(db *Connection) *AdvertisementRepository {
	return &AdvertisementRepository{
		db: db,
	}
}

func scanAd(row pgx.Row) (model.Advertisement, error) {
	var ad model.Advertisement
	err := row.Scan(
		&ad.ID, &ad.StoreID, &ad.Title, &ad.Description, &ad.TargetCategories,
		&ad.Validity.Start, &ad.Validity.End, &ad.MediaURL, &ad.CreatedAt, &ad.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Advertisement{}, model.ErrNotFound
		}
		return model.Advertisement{}, err
	}

	return ad, nil
}

func (r *AdvertisementRepository) Create(ctx context.Context, ad model.Advertisement) (model.Advertisement, error) {
	query := `INSERT INTO advertisements (id, store_id, title, description, target_categories, starts_at, ends_at, media_url, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + adColumns

	saved, err := scanAd(r.db.QueryRow(ctx, query,
		ad.ID, ad.StoreID, ad.Title, ad.Description, ad.TargetCategories,
		ad.Validity.Start, ad.Validity.End, ad.MediaURL, ad.CreatedAt, ad.UpdatedAt,
	))
	if err != nil {
		return model.Advertisement{}, fmt.Errorf("failed to create advertisement: %w", err)
	}

	return saved, nil
}

func (r *AdvertisementRepository) GetByID(ctx context.Context, storeID, id uuid.UUID) (model.Advertisement, error) {
	query := `SELECT ` + adColumns + ` FROM advertisements WHERE store_id = $1 AND id = $2`

	ad, err := scanAd(r.db.QueryRow(ctx, query, storeID, id))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.Advertisement{}, fmt.Errorf("failed to get advertisement: %w", err)
	}

	return ad, err
}

func (r *AdvertisementRepository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.Advertisement, error) {
	query := `SELECT ` + adColumns + ` FROM advertisements WHERE store_id = $1 ORDER BY created_at DESC`

	return r.list(ctx, query, storeID)
}

func (r *AdvertisementRepository) ListActive(ctx context.Context, now time.Time) ([]model.Advertisement, error) {
	query := `SELECT ` + adColumns + ` FROM advertisements
			  WHERE starts_at <= $1 AND ends_at >= $1
			  ORDER BY created_at`

	return r.list(ctx, query, now)
}

func (r *AdvertisementRepository) ListActiveByStore(ctx context.Context, storeID uuid.UUID, now time.Time) ([]model.Advertisement, error) {
	query := `SELECT ` + adColumns + ` FROM advertisements
			  WHERE store_id = $1 AND starts_at <= $2 AND ends_at >= $2
			  ORDER BY created_at`

	return r.list(ctx, query, storeID, now)
}

func (r *AdvertisementRepository) list(ctx context.Context, query string, args ...any) ([]model.Advertisement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list advertisements: %w", err)
	}
	defer rows.Close()

	ads := make([]model.Advertisement, 0)
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advertisement: %w", err)
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate advertisements: %w", err)
	}

	return ads, nil
}

func (r *AdvertisementRepository) Delete(ctx context.Context, storeID, id uuid.UUID) (model.Advertisement, error) {
	query := `DELETE FROM advertisements WHERE store_id = $1 AND id = $2 RETURNING ` + adColumns

	ad, err := scanAd(r.db.QueryRow(ctx, query, storeID, id))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.Advertisement{}, fmt.Errorf("failed to delete advertisement: %w", err)
	}

	return ad, err
}
