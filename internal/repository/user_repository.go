package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kursio/kursio-backend/internal/model"
)

// UserRepository handles user account data access.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, is_superadmin, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }, u *model.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.IsSuperadmin, &u.CreatedAt, &u.UpdatedAt)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u := &model.User{}
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByUsername retrieves a user by username (login).
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{}
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err := scanUser(row, u); err != nil {
		return nil, err
	}
	return u, nil
}

// List retrieves all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, is_superadmin)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsSuperadmin,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// UpdateProfile modifies a user's own profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users
		 SET email = $1, first_name = $2, last_name = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		u.Email, u.FirstName, u.LastName, u.ID)
	return err
}

// Delete removes a user. Attempts, progress and certificates cascade.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
