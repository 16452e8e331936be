package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/bookhive/bookhive-api/internal/core/domain"
)

const userColumns = `uid::text, username, email, hashed_password, is_activated, is_verified, is_superuser, created_at, updated_at`

// UserRepository stores user records in the users table.
type UserRepository struct {
	pool poolIface
}

func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *user
	created.ID = uuid.NewString()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (uid, username, email, hashed_password, is_activated, is_verified, is_superuser, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		created.ID, created.Username, created.Email, created.PasswordHash,
		created.IsActivated, created.IsVerified, created.IsSuperuser,
		created.CreatedAt, created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, oops.With("operation", "create user").With("username", created.Username).Wrap(err)
	}

	return &created, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, username, email string) (*domain.User, error) {
	var (
		conds []string
		args  []any
	)
	if username != "" {
		args = append(args, username)
		conds = append(conds, "username = $"+strconv.Itoa(len(args)))
	}
	if email != "" {
		args = append(args, email)
		conds = append(conds, "email = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return nil, domain.ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(conds, " AND ")
	return r.queryOne(ctx, "find user by login", query, args...)
}

func (r *UserRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	if _, err := uuid.Parse(uid); err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.queryOne(ctx, "find user by uid", `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
}

func (r *UserRepository) queryOne(ctx context.Context, op, query string, args ...any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsActivated, &u.IsVerified, &u.IsSuperuser,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, oops.With("operation", op).Wrap(err)
	}
	return &u, nil
}
