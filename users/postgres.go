package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/user/profile-service/auth"
)

const pgUniqueViolation = "23505"

type userRow struct {
	ID         int64          `db:"id"`
	Username   string         `db:"username"`
	Password   string         `db:"password"`
	ProfilePic sql.NullString `db:"profile_pic"`
	Role       string         `db:"role"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r userRow) toUser() *auth.User {
	u := &auth.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.Password,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
	}
	if r.ProfilePic.Valid {
		u.ProfilePic = &r.ProfilePic.String
	}
	return u
}

// PostgresRepository implements Repository with parameterized queries only.
// db is a *sqlx.DB or *sqlx.Tx.
type PostgresRepository struct {
	db sqlx.ExtContext
}

func NewPostgresRepository(db sqlx.ExtContext) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	query :=
		`SELECT id, username, password, profile_pic, role, created_at FROM users
		 WHERE username = $1
		 `

	var row userRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return row.toUser(), nil
}

func (r *PostgresRepository) UpdateProfilePic(ctx context.Context, username, filename string) error {
	query :=
		`UPDATE users SET profile_pic = $1
		 WHERE username = $2
		 `

	res, err := r.db.ExecContext(ctx, query, filename, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, username, passwordHash, role string) (*auth.User, error) {
	query :=
		`INSERT INTO users (username, password, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	var created struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := sqlx.GetContext(ctx, r.db, &created, query, username, passwordHash, role); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &auth.User{
		ID:           created.ID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    created.CreatedAt,
	}, nil
}
