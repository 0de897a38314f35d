package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, auth_id, email, username, phone, preferences, data_sharing, anonymize_data,
	opt_in_stores, opt_out_stores, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.AuthID, &user.Email, &user.Username, &user.Phone, &user.Preferences,
		&user.Privacy.DataSharingConsent, &user.Privacy.AnonymizeData,
		&user.Privacy.OptInStores, &user.Privacy.OptOutStores,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, err
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.Preferences == nil {
		user.Preferences = []model.Preference{}
	}

	query := `INSERT INTO users (id, auth_id, email, username, phone, preferences, data_sharing, anonymize_data, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.AuthID, user.Email, user.Username, user.Phone, user.Preferences,
		user.Privacy.DataSharingConsent, user.Privacy.AnonymizeData,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrConflict
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, err
}

func (r *UserRepository) GetByAuthID(ctx context.Context, authID string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, authID))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by auth id: %w", err)
	}

	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, err
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string, exceptAuthID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND auth_id <> $2)`

	var taken bool
	if err := r.db.QueryRow(ctx, query, username, exceptAuthID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}

	return taken, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, authID string, params model.UpdateUserParams) (model.User, error) {
	query := `UPDATE users
			  SET username = COALESCE($2, username), phone = COALESCE($3, phone), updated_at = now()
			  WHERE auth_id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, authID, params.Username, params.Phone))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		if isUniqueViolation(err) {
			return model.User{}, model.ErrConflict
		}
		return model.User{}, fmt.Errorf("failed to update user profile: %w", err)
	}

	return user, nil
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, authID string, preferences []model.Preference) (model.User, error) {
	if preferences == nil {
		preferences = []model.Preference{}
	}

	query := `UPDATE users SET preferences = $2, updated_at = now()
			  WHERE auth_id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, authID, preferences))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to update user preferences: %w", err)
	}

	return user, err
}

func (r *UserRepository) UpdatePrivacy(ctx context.Context, authID string, consent, anonymize bool) (model.User, error) {
	query := `UPDATE users SET data_sharing = $2, anonymize_data = $3, updated_at = now()
			  WHERE auth_id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, authID, consent, anonymize))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to update user privacy: %w", err)
	}

	return user, err
}

// OptIn moves storeID into the opt-in set and out of the opt-out set in one statement.
func (r *UserRepository) OptIn(ctx context.Context, userID uuid.UUID, storeID string) (model.User, error) {
	query := `UPDATE users
			  SET opt_in_stores = array_append(array_remove(opt_in_stores, $2), $2),
			      opt_out_stores = array_remove(opt_out_stores, $2),
			      updated_at = now()
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, userID, storeID))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to opt in: %w", err)
	}

	return user, err
}

// OptOut moves storeID into the opt-out set and out of the opt-in set in one statement.
func (r *UserRepository) OptOut(ctx context.Context, userID uuid.UUID, storeID string) (model.User, error) {
	query := `UPDATE users
			  SET opt_out_stores = array_append(array_remove(opt_out_stores, $2), $2),
			      opt_in_stores = array_remove(opt_in_stores, $2),
			      updated_at = now()
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, userID, storeID))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to opt out: %w", err)
	}

	return user, err
}

// AutoOptIn adds storeID to the opt-in set only when the store is in neither
// set. It reports whether a row changed; a concurrent opt-out always wins.
func (r *UserRepository) AutoOptIn(ctx context.Context, userID uuid.UUID, storeID string) (bool, error) {
	query := `UPDATE users
			  SET opt_in_stores = array_append(opt_in_stores, $2), updated_at = now()
			  WHERE id = $1
			    AND NOT ($2 = ANY (opt_in_stores))
			    AND NOT ($2 = ANY (opt_out_stores))`

	tag, err := r.db.Exec(ctx, query, userID, storeID)
	if err != nil {
		return false, fmt.Errorf("failed to auto opt in: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// RemoveStore drops storeID from the consent lists of every user and
// returns the users that referenced it.
func (r *UserRepository) RemoveStore(ctx context.Context, storeID string) ([]model.User, error) {
	query := `UPDATE users
			  SET opt_in_stores = array_remove(opt_in_stores, $1),
			      opt_out_stores = array_remove(opt_out_stores, $1),
			      updated_at = now()
			  WHERE $1 = ANY(opt_in_stores) OR $1 = ANY(opt_out_stores)
			  RETURNING ` + userColumns

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove store from consent lists: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to remove store from consent lists: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, authID string) (model.User, error) {
	query := `DELETE FROM users WHERE auth_id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, authID))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to delete user: %w", err)
	}

	return user, err
}
