// Package repository provides refresh token persistence implementations for
// PostgreSQL and MySQL with transaction support via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/database"
	apperrors "github.com/allisson/sessions/internal/errors"
)

// PostgreSQLRefreshTokenRepository implements RefreshToken persistence for
// PostgreSQL. Uses native UUID types with transaction support via
// database.GetTx().
type PostgreSQLRefreshTokenRepository struct {
	db *sql.DB
}

// Create inserts a new RefreshToken into the PostgreSQL database.
func (p *PostgreSQLRefreshTokenRepository) Create(
	ctx context.Context,
	token *authDomain.RefreshToken,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO refresh_tokens (token, jti, user_id, expires_at, invalidated, created_at)
			  VALUES ($1, $2, $3, $4, $5, NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.Token,
		token.JTI,
		token.UserID,
		token.ExpiresAt,
		token.Invalidated,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create refresh token")
	}
	return nil
}

// GetByToken retrieves a RefreshToken by its opaque value. Returns
// ErrRefreshTokenNotFound if no row matches.
func (p *PostgreSQLRefreshTokenRepository) GetByToken(
	ctx context.Context,
	token string,
) (*authDomain.RefreshToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT token, jti, user_id, expires_at, invalidated, created_at
			  FROM refresh_tokens WHERE token = $1`

	var refreshToken authDomain.RefreshToken

	err := querier.QueryRowContext(ctx, query, token).Scan(
		&refreshToken.Token,
		&refreshToken.JTI,
		&refreshToken.UserID,
		&refreshToken.ExpiresAt,
		&refreshToken.Invalidated,
		&refreshToken.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrRefreshTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get refresh token")
	}

	return &refreshToken, nil
}

// Invalidate flips the invalidated flag if and only if the token is still
// live. The condition makes concurrent redemptions race safely: exactly one
// caller observes claimed=true and may mint a replacement pair.
func (p *PostgreSQLRefreshTokenRepository) Invalidate(
	ctx context.Context,
	token string,
) (claimed bool, err error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_tokens SET invalidated = TRUE
			  WHERE token = $1 AND invalidated = FALSE`

	result, err := querier.ExecContext(ctx, query, token)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to invalidate refresh token")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}

	return rows > 0, nil
}

// InvalidateAllForUser soft-revokes every live refresh token owned by the
// user and returns the jtis of the access tokens they were chained to, so
// callers can register them in the revocation registry.
func (p *PostgreSQLRefreshTokenRepository) InvalidateAllForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_tokens SET invalidated = TRUE
			  WHERE user_id = $1 AND invalidated = FALSE
			  RETURNING jti`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to invalidate user refresh tokens")
	}
	defer rows.Close()

	jtis := []uuid.UUID{}
	for rows.Next() {
		var jti uuid.UUID
		if err := rows.Scan(&jti); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan refresh token jti")
		}
		jtis = append(jtis, jti)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate refresh token jtis")
	}

	return jtis, nil
}

// NewPostgreSQLRefreshTokenRepository creates a new PostgreSQL RefreshToken repository.
func NewPostgreSQLRefreshTokenRepository(db *sql.DB) *PostgreSQLRefreshTokenRepository {
	return &PostgreSQLRefreshTokenRepository{db: db}
}
