package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.UserDataStore = (*UserDataRepository)(nil)

type UserDataRepository struct {
	db *Connection
}

func NewUserDataRepository(db *Connection) *UserDataRepository {
	return &UserDataRepository{
		db: db,
	}
}

func (r *UserDataRepository) Create(ctx context.Context, record model.UserData) (model.UserData, error) {
	query := `INSERT INTO user_data (id, user_id, store_id, email, data_type, entries, metadata, processed_status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id, user_id, store_id, email, data_type, entries, metadata, processed_status, created_at, processed_at`

	var saved model.UserData
	err := r.db.QueryRow(ctx, query,
		record.ID, record.UserID, record.StoreID, record.Email, record.DataType, record.Entries,
		record.Metadata, record.ProcessedStatus, record.Timestamp,
	).Scan(
		&saved.ID, &saved.UserID, &saved.StoreID, &saved.Email, &saved.DataType, &saved.Entries,
		&saved.Metadata, &saved.ProcessedStatus, &saved.Timestamp, &saved.ProcessedAt,
	)
	if err != nil {
		return model.UserData{}, fmt.Errorf("failed to create user data: %w", err)
	}

	return saved, nil
}

// UpdateStatus records the outcome of downstream processing. Terminal
// statuses stamp processed_at.
func (r *UserDataRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ProcessedStatus) error {
	query := `UPDATE user_data
			  SET processed_status = $2,
			      processed_at = CASE WHEN $2 = 'pending' THEN NULL ELSE now() END
			  WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update user data status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *UserDataRepository) ListPurchasesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.UserData, error) {
	query := `SELECT id, user_id, store_id, email, data_type, entries, metadata, processed_status, created_at, processed_at
			  FROM user_data
			  WHERE user_id = $1 AND data_type = 'purchase'
			  ORDER BY created_at DESC
			  LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	records := make([]model.UserData, 0)
	for rows.Next() {
		var record model.UserData
		if err := rows.Scan(
			&record.ID, &record.UserID, &record.StoreID, &record.Email, &record.DataType, &record.Entries,
			&record.Metadata, &record.ProcessedStatus, &record.Timestamp, &record.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}

	return records, nil
}
