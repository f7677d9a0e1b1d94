package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/database"
	apperrors "github.com/allisson/sessions/internal/errors"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// MySQLUserRepository implements User persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLUserRepository) Create(ctx context.Context, user *userDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO users (id, identity_id, first_name, last_name, created_at, updated_at)
			  VALUES (?, ?, ?, ?, NOW(), NOW())`

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	identityID, err := user.IdentityID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	_, err = querier.ExecContext(ctx, query, id, identityID, user.FirstName, user.LastName)
	if err != nil {
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a User by ID. Returns ErrUserNotFound if the user doesn't exist.
func (m *MySQLUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, identity_id, first_name, last_name, created_at, updated_at
			  FROM users WHERE id = ?`

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	return m.scanUser(querier.QueryRowContext(ctx, query, id), "failed to get user")
}

// GetByIdentityID retrieves the User linked to an identity. Returns
// ErrUserNotFound if no profile exists for the identity.
func (m *MySQLUserRepository) GetByIdentityID(
	ctx context.Context,
	identityID uuid.UUID,
) (*userDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, identity_id, first_name, last_name, created_at, updated_at
			  FROM users WHERE identity_id = ?`

	id, err := identityID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal identity id")
	}

	return m.scanUser(querier.QueryRowContext(ctx, query, id), "failed to get user by identity")
}

// Delete removes a User by ID. Refresh tokens are removed by the foreign key
// cascade. Returns ErrUserNotFound if no row was deleted.
func (m *MySQLUserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM users WHERE id = ?`

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return userDomain.ErrUserNotFound
	}

	return nil
}

// scanUser scans a single user row, unmarshaling the BINARY(16) ids.
func (m *MySQLUserRepository) scanUser(row *sql.Row, wrapMsg string) (*userDomain.User, error) {
	var user userDomain.User
	var idBytes []byte
	var identityIDBytes []byte

	err := row.Scan(
		&idBytes,
		&identityIDBytes,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	if err := user.IdentityID.UnmarshalBinary(identityIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal identity id")
	}

	return &user, nil
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
