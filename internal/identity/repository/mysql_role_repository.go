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

// MySQLRoleRepository implements Role persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLRoleRepository struct {
	db *sql.DB
}

// GetByName retrieves a Role by its canonical name. Returns ErrRoleNotFound
// if the role doesn't exist.
func (m *MySQLRoleRepository) GetByName(
	ctx context.Context,
	name identityDomain.RoleType,
) (*identityDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, created_at FROM roles WHERE name = ?`

	return m.scanRole(querier.QueryRowContext(ctx, query, name.String()), "failed to get role by name")
}

// GetForIdentity retrieves the role assigned to an identity. An identity
// holds at most one role; if more than one assignment exists the first by
// assignment time wins. Returns ErrRoleNotFound when no role is assigned.
func (m *MySQLRoleRepository) GetForIdentity(
	ctx context.Context,
	identityID uuid.UUID,
) (*identityDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT r.id, r.name, r.created_at
			  FROM roles r
			  JOIN identity_roles ir ON ir.role_id = r.id
			  WHERE ir.identity_id = ?
			  ORDER BY ir.created_at
			  LIMIT 1`

	id, err := identityID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal identity id")
	}

	return m.scanRole(querier.QueryRowContext(ctx, query, id), "failed to get role for identity")
}

// Assign links an identity to a role.
func (m *MySQLRoleRepository) Assign(ctx context.Context, identityID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO identity_roles (identity_id, role_id, created_at)
			  VALUES (?, ?, NOW())`

	id, err := identityID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	rid, err := roleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	if _, err := querier.ExecContext(ctx, query, id, rid); err != nil {
		return apperrors.Wrap(err, "failed to assign role")
	}
	return nil
}

// ReplaceForIdentity removes every role assignment for the identity and
// assigns the given role. Callers run this inside a transaction so the
// identity never observes an intermediate roleless state.
func (m *MySQLRoleRepository) ReplaceForIdentity(
	ctx context.Context,
	identityID, roleID uuid.UUID,
) error {
	querier := database.GetTx(ctx, m.db)

	deleteQuery := `DELETE FROM identity_roles WHERE identity_id = ?`

	id, err := identityID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal identity id")
	}

	if _, err := querier.ExecContext(ctx, deleteQuery, id); err != nil {
		return apperrors.Wrap(err, "failed to remove role assignments")
	}

	return m.Assign(ctx, identityID, roleID)
}

// ListClaims returns the claim values attached to a role, ordered for
// deterministic output. A role without claims yields an empty slice.
func (m *MySQLRoleRepository) ListClaims(
	ctx context.Context,
	name identityDomain.RoleType,
) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT rc.claim_value
			  FROM role_claims rc
			  JOIN roles r ON rc.role_id = r.id
			  WHERE r.name = ?
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

// scanRole scans a single role row, unmarshaling the BINARY(16) id.
func (m *MySQLRoleRepository) scanRole(row *sql.Row, wrapMsg string) (*identityDomain.Role, error) {
	var role identityDomain.Role
	var idBytes []byte

	err := row.Scan(
		&idBytes,
		&role.Name,
		&role.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	if err := role.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role id")
	}

	return &role, nil
}

// NewMySQLRoleRepository creates a new MySQL Role repository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}
