package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, name, password_hash, reset_token_hash, reset_token_expires_at, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query, user.Email, user.Name, user.PasswordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isBadID(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 4)

	add := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("name", upd.Name)
	add("email", upd.Email)
	add("password_hash", upd.PasswordHash)

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE users
		SET    %s, updated_at = NOW()
		WHERE  id = $%d
		RETURNING %s`, strings.Join(sets, ", "), len(args), userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, domain.ErrEmailTaken
		case isBadID(err):
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) (*domain.User, error) {
	query := `
		UPDATE users
		SET    reset_token_hash       = $2,
		       reset_token_expires_at = $3,
		       updated_at             = NOW()
		WHERE  email = $1
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, email, tokenHash, expiresAt))
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM   users
		WHERE  reset_token_hash = $1 AND reset_token_expires_at > $2`

	u, err := scanUser(r.pool.QueryRow(ctx, query, tokenHash, now))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrResetTokenInvalid
	}
	return u, err
}

// ConsumeResetToken matches, expires and clears the token in one statement,
// so two concurrent resets with the same token cannot both succeed.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.User, error) {
	query := `
		UPDATE users
		SET    password_hash          = $2,
		       reset_token_hash       = NULL,
		       reset_token_expires_at = NULL,
		       updated_at             = NOW()
		WHERE  reset_token_hash = $1 AND reset_token_expires_at > $3
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, tokenHash, passwordHash, now))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrResetTokenInvalid
	}
	return u, err
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET    reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE  reset_token_expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("clear expired reset tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.ResetTokenHash, &u.ResetTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
