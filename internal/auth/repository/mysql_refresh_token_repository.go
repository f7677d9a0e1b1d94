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

// MySQLRefreshTokenRepository implements RefreshToken persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLRefreshTokenRepository struct {
	db *sql.DB
}

// Create inserts a new RefreshToken into the MySQL database using BINARY(16)
// for UUIDs.
func (m *MySQLRefreshTokenRepository) Create(
	ctx context.Context,
	token *authDomain.RefreshToken,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO refresh_tokens (token, jti, user_id, expires_at, invalidated, created_at)
			  VALUES (?, ?, ?, ?, ?, NOW())`

	jti, err := token.JTI.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal jti")
	}

	userID, err := token.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		token.Token,
		jti,
		userID,
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
func (m *MySQLRefreshTokenRepository) GetByToken(
	ctx context.Context,
	token string,
) (*authDomain.RefreshToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT token, jti, user_id, expires_at, invalidated, created_at
			  FROM refresh_tokens WHERE token = ?`

	var refreshToken authDomain.RefreshToken
	var jtiBytes []byte
	var userIDBytes []byte

	err := querier.QueryRowContext(ctx, query, token).Scan(
		&refreshToken.Token,
		&jtiBytes,
		&userIDBytes,
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

	if err := refreshToken.JTI.UnmarshalBinary(jtiBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal jti")
	}

	if err := refreshToken.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &refreshToken, nil
}

// Invalidate flips the invalidated flag if and only if the token is still
// live. The condition makes concurrent redemptions race safely: exactly one
// caller observes claimed=true and may mint a replacement pair.
func (m *MySQLRefreshTokenRepository) Invalidate(
	ctx context.Context,
	token string,
) (claimed bool, err error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE refresh_tokens SET invalidated = TRUE
			  WHERE token = ? AND invalidated = FALSE`

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
// user and returns the jtis of the access tokens they were chained to.
// MySQL has no UPDATE .. RETURNING, so the live jtis are read first with a
// row lock and then flipped; callers must run this inside a transaction.
func (m *MySQLRefreshTokenRepository) InvalidateAllForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	selectQuery := `SELECT jti FROM refresh_tokens
					WHERE user_id = ? AND invalidated = FALSE
					FOR UPDATE`

	rows, err := querier.QueryContext(ctx, selectQuery, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list live refresh tokens")
	}
	defer rows.Close()

	jtis := []uuid.UUID{}
	for rows.Next() {
		var jtiBytes []byte
		if err := rows.Scan(&jtiBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan refresh token jti")
		}

		var jti uuid.UUID
		if err := jti.UnmarshalBinary(jtiBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal jti")
		}
		jtis = append(jtis, jti)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate refresh token jtis")
	}

	updateQuery := `UPDATE refresh_tokens SET invalidated = TRUE
					WHERE user_id = ? AND invalidated = FALSE`

	if _, err := querier.ExecContext(ctx, updateQuery, id); err != nil {
		return nil, apperrors.Wrap(err, "failed to invalidate user refresh tokens")
	}

	return jtis, nil
}

// NewMySQLRefreshTokenRepository creates a new MySQL RefreshToken repository.
func NewMySQLRefreshTokenRepository(db *sql.DB) *MySQLRefreshTokenRepository {
	return &MySQLRefreshTokenRepository{db: db}
}
