package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/flavourbook-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// PostgresRepository is the pgx-backed Repository implementation.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, password, name, is_active, is_staff, is_superuser, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Name, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user row. The email is expected to be normalized
// and the password hashed by the service layer before it reaches here.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (email, password, name, is_active, is_staff, is_superuser)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		user.Email, user.HashedPassword, user.Name, user.IsActive, user.IsStaff, user.IsSuperuser,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError("a user with this email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by primary key.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by exact (normalized) email.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return user, nil
}

// UpdateUser persists all mutable user fields. The row is addressed by ID;
// ownership of the profile is the identity itself, so no scoping applies.
func (r *PostgresRepository) UpdateUser(ctx context.Context, user *User) (*User, error) {
	query := `UPDATE users
	          SET email = $2, password = $3, name = $4, is_active = $5, is_staff = $6, is_superuser = $7
	          WHERE id = $1
	          RETURNING ` + userColumns
	updated, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.HashedPassword, user.Name, user.IsActive, user.IsStaff, user.IsSuperuser,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError("a user with this email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return updated, nil
}

// UpsertToken stores the token as the user's single credential. The UNIQUE
// constraint on user_id makes reissue atomic: the old token row is replaced
// in the same statement, so it stops authenticating the moment a new one is
// issued.
func (r *PostgresRepository) UpsertToken(ctx context.Context, userID int64, token string) error {
	query := `INSERT INTO auth_tokens (token, user_id)
	          VALUES ($1, $2)
	          ON CONFLICT (user_id) DO UPDATE
	          SET token = EXCLUDED.token, created_at = now()`
	if _, err := r.db.Exec(ctx, query, token, userID); err != nil {
		return apperror.NewDatabaseError("failed to store auth token", err)
	}
	return nil
}

// GetUserByToken resolves a bearer token to its owning user.
func (r *PostgresRepository) GetUserByToken(ctx context.Context, token string) (*User, error) {
	query := `SELECT u.id, u.email, u.password, u.name, u.is_active, u.is_staff, u.is_superuser, u.created_at
	          FROM auth_tokens t
	          JOIN users u ON u.id = t.user_id
	          WHERE t.token = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("token not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to resolve auth token", err)
	}
	return user, nil
}

var _ Repository = (*PostgresRepository)(nil)
