// Package repository provides identity persistence implementations for
// PostgreSQL and MySQL with transaction support via database.GetTx().
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

// PostgreSQLIdentityRepository implements Identity persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLIdentityRepository struct {
	db *sql.DB
}

// Create inserts a new Identity into the PostgreSQL database. Returns
// ErrEmailAlreadyRegistered when the email is taken, or an error if database
// insertion fails.
func (p *PostgreSQLIdentityRepository) Create(ctx context.Context, identity *identityDomain.Identity) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO identities (id, email, password_hash, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, identity.ID, identity.Email, identity.PasswordHash)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return identityDomain.ErrEmailAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to create identity")
	}
	return nil
}

// GetByEmail retrieves an Identity by its normalized email. Returns
// ErrIdentityNotFound if no identity exists for the email.
func (p *PostgreSQLIdentityRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*identityDomain.Identity, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, email, password_hash, created_at, updated_at
			  FROM identities WHERE email = $1`

	var identity identityDomain.Identity

	err := querier.QueryRowContext(ctx, query, email).Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrIdentityNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get identity by email")
	}

	return &identity, nil
}

// GetByID retrieves an Identity by ID. Returns ErrIdentityNotFound if the
// identity doesn't exist.
func (p *PostgreSQLIdentityRepository) GetByID(
	ctx context.Context,
	identityID uuid.UUID,
) (*identityDomain.Identity, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, email, password_hash, created_at, updated_at
			  FROM identities WHERE id = $1`

	var identity identityDomain.Identity

	err := querier.QueryRowContext(ctx, query, identityID).Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrIdentityNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get identity")
	}

	return &identity, nil
}

// Delete removes an Identity by ID. Role assignments are removed by the
// identity_roles foreign key cascade. Returns ErrIdentityNotFound if no row
// was deleted.
func (p *PostgreSQLIdentityRepository) Delete(ctx context.Context, identityID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM identities WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, identityID)
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

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLIdentityRepository creates a new PostgreSQL Identity repository.
func NewPostgreSQLIdentityRepository(db *sql.DB) *PostgreSQLIdentityRepository {
	return &PostgreSQLIdentityRepository{db: db}
}
