package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/database"
	apperrors "github.com/allisson/sessions/internal/errors"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
)

// PostgreSQLRoleRepository implements Role persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// GetByName retrieves a Role by its canonical name. Returns ErrRoleNotFound
// if the role doesn't exist.
func (p *PostgreSQLRoleRepository) GetByName(
	ctx context.Context,
	name identityDomain.RoleType,
) (*identityDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, created_at FROM roles WHERE name = $1`

	var role identityDomain.Role

	err := querier.QueryRowContext(ctx, query, name.String()).Scan(
		&role.ID,
		&role.Name,
		&role.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role by name")
	}

	return &role, nil
}

// GetForIdentity retrieves the role assigned to an identity. An identity
// holds at most one role; if more than one assignment exists the first by
// assignment time wins. Returns ErrRoleNotFound when no role is assigned.
func (p *PostgreSQLRoleRepository) GetForIdentity(
	ctx context.Context,
	identityID uuid.UUID,
) (*identityDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT r.id, r.name, r.created_at
			  FROM roles r
			  JOIN identity_roles ir ON ir.role_id = r.id
			  WHERE ir.identity_id = $1
			  ORDER BY ir.created_at
			  LIMIT 1`

	var role identityDomain.Role

	err := querier.QueryRowContext(ctx, query, identityID).Scan(
		&role.ID,
		&role.Name,
		&role.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role for identity")
	}

	return &role, nil
}

// Assign links an identity to a role.
func (p *PostgreSQLRoleRepository) Assign(ctx context.Context, identityID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO identity_roles (identity_id, role_id, created_at)
			  VALUES ($1, $2, NOW())`

	_, err := querier.ExecContext(ctx, query, identityID, roleID)
	if err != nil {
		return apperrors.Wrap(err, "failed to assign role")
	}
	return nil
}

// ReplaceForIdentity removes every role assignment for the identity and
// assigns the given role. Callers run this inside a transaction so the
// identity never observes an intermediate roleless state.
func (p *PostgreSQLRoleRepository) ReplaceForIdentity(
	ctx context.Context,
	identityID, roleID uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	deleteQuery := `DELETE FROM identity_roles WHERE identity_id = $1`

	if _, err := querier.ExecContext(ctx, deleteQuery, identityID); err != nil {
		return apperrors.Wrap(err, "failed to remove role assignments")
	}

	return p.Assign(ctx, identityID, roleID)
}

// ListClaims returns the claim values attached to a role, ordered for
// deterministic output. A role without claims yields an empty slice.
func (p *PostgreSQLRoleRepository) ListClaims(
	ctx context.Context,
	name identityDomain.RoleType,
) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT rc.claim_value
			  FROM role_claims rc
			  JOIN roles r ON rc.role_id = r.id
			  WHERE r.name = $1
			  ORDER BY rc.claim_value`

	rows, err := querier.QueryContext(ctx, query, name.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role claims")
	}
	defer rows.Close()

	claims := []string{}
	for rows.Next() {
		var claim string
		if err := rows.Scan(&claim); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role claim")
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate role claims")
	}

	return claims, nil
}

// NewPostgreSQLRoleRepository creates a new PostgreSQL Role repository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}
