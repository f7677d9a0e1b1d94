package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/database"
	apperrors "github.com/allisson/sessions/internal/errors"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
)

// MySQLIdentityRepository implements Identity persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLIdentityRepository struct {
	db *sql.DB
}

// Create inserts a new Identity into the MySQL database using BINARY(16) for
// UUIDs. Returns ErrEmailAlreadyRegistered when the email is taken, or an
// error if UUID marshaling or database insertion fails.
func (m *MySQLIdentityRepository) Create(ctx context.Context, identity *identityDomain.Identity) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO identities (id, email, password_hash, created_at, updated_at)
			  VALUES (?, ?, ?, NOW(), NOW())`

	id, err := identity.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	_, err = querier.ExecContext(ctx, query, id, identity.Email, identity.PasswordHash)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return identityDomain.ErrEmailAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to create identity")
	}
	return nil
}

// GetByEmail retrieves an Identity by its normalized email. Returns
// ErrIdentityNotFound if no identity exists for the email.
func (m *MySQLIdentityRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*identityDomain.Identity, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, email, password_hash, created_at, updated_at
			  FROM identities WHERE email = ?`

	return m.scanIdentity(querier.QueryRowContext(ctx, query, email), "failed to get identity by email")
}

// GetByID retrieves an Identity by ID using BINARY(16) for UUIDs. Returns
// ErrIdentityNotFound if the identity doesn't exist.
func (m *MySQLIdentityRepository) GetByID(
	ctx context.Context,
	identityID uuid.UUID,
) (*identityDomain.Identity, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, email, password_hash, created_at, updated_at
			  FROM identities WHERE id = ?`

	id, err := identityID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal identity id")
	}

	return m.scanIdentity(querier.QueryRowContext(ctx, query, id), "failed to get identity")
}

// Delete removes an Identity by ID. Role assignments are removed by the
// identity_roles foreign key cascade. Returns ErrIdentityNotFound if no row
// was deleted.
func (m *MySQLIdentityRepository) Delete(ctx context.Context, identityID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM identities WHERE id = ?`

	id, err := identityID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete identity")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return identityDomain.ErrIdentityNotFound
	}

	return nil
}

// scanIdentity scans a single identity row, unmarshaling the BINARY(16) id.
func (m *MySQLIdentityRepository) scanIdentity(
	row *sql.Row,
	wrapMsg string,
) (*identityDomain.Identity, error) {
	var identity identityDomain.Identity
	var idBytes []byte

	err := row.Scan(
		&idBytes,
		&identity.Email,
		&identity.PasswordHash,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrIdentityNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	if err := identity.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal identity id")
	}

	return &identity, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

// NewMySQLIdentityRepository creates a new MySQL Identity repository.
func NewMySQLIdentityRepository(db *sql.DB) *MySQLIdentityRepository {
	return &MySQLIdentityRepository{db: db}
}
