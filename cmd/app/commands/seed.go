package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/app"
	"github.com/allisson/sessions/internal/config"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// Seeded administrator credentials for development and test environments.
const (
	seedAdminEmail     = "admin@test.com"
	seedAdminPassword  = "Test1234!"
	seedAdminFirstName = "Admin"
	seedAdminLastName  = "User"
)

// seedClaimType is the claim_type stamped on every seeded role claim.
const seedClaimType = "permission"

// roleSeed describes a role and the claim values attached to it.
type roleSeed struct {
	name   identityDomain.RoleType
	claims []string
}

// roleSeeds is the closed role set with its claims. The admin claims gate the
// role-change and account-delete endpoints.
var roleSeeds = []roleSeed{
	{identityDomain.RoleUser, []string{"users:read"}},
	{identityDomain.RoleTutor, []string{"users:read", "tutors:content:write"}},
	{identityDomain.RoleAdmin, []string{"users:read", "admin:users:read", "admin:users:write"}},
}

// RunSeed populates the role set, role claims, and a development admin
// account. The command is idempotent: existing roles, claims, and the admin
// identity are left untouched on re-runs.
func RunSeed(ctx context.Context) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	db, err := container.DB()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("seeding roles and claims", slog.String("driver", cfg.DBDriver))

	for _, seed := range roleSeeds {
		if err := ensureRole(ctx, db, cfg.DBDriver, seed); err != nil {
			return fmt.Errorf("failed to seed role %q: %w", seed.name, err)
		}
	}

	if err := ensureAdminAccount(ctx, container); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	logger.Info("seed completed successfully")
	return nil
}

// ensureRole inserts the role and its claims if absent. Inserts are
// conflict-tolerant so concurrent or repeated seeds stay safe.
func ensureRole(ctx context.Context, db *sql.DB, driver string, seed roleSeed) error {
	roleID := uuid.Must(uuid.NewV7())

	roleQuery := `INSERT INTO roles (id, name, created_at) VALUES ($1, $2, NOW())
				  ON CONFLICT (name) DO NOTHING`
	if driver == "mysql" {
		roleQuery = `INSERT IGNORE INTO roles (id, name, created_at) VALUES (?, ?, NOW())`
	}

	roleIDArg, err := uuidArg(driver, roleID)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, roleQuery, roleIDArg, seed.name.String()); err != nil {
		return fmt.Errorf("failed to insert role: %w", err)
	}

	// Re-read the id: the insert is a no-op when the role already exists.
	storedID, err := lookupRoleID(ctx, db, driver, seed.name)
	if err != nil {
		return err
	}

	claimQuery := `INSERT INTO role_claims (id, role_id, claim_type, claim_value, created_at)
				   VALUES ($1, $2, $3, $4, NOW())
				   ON CONFLICT (role_id, claim_type, claim_value) DO NOTHING`
	if driver == "mysql" {
		claimQuery = `INSERT IGNORE INTO role_claims (id, role_id, claim_type, claim_value, created_at)
					  VALUES (?, ?, ?, ?, NOW())`
	}

	storedIDArg, err := uuidArg(driver, storedID)
	if err != nil {
		return err
	}

	for _, claim := range seed.claims {
		claimIDArg, err := uuidArg(driver, uuid.Must(uuid.NewV7()))
		if err != nil {
			return err
		}

		if _, err := db.ExecContext(
			ctx, claimQuery, claimIDArg, storedIDArg, seedClaimType, claim,
		); err != nil {
			return fmt.Errorf("failed to insert claim %q: %w", claim, err)
		}
	}

	return nil
}

// lookupRoleID fetches the stored role id by name.
func lookupRoleID(
	ctx context.Context,
	db *sql.DB,
	driver string,
	name identityDomain.RoleType,
) (uuid.UUID, error) {
	query := `SELECT id FROM roles WHERE name = $1`
	if driver == "mysql" {
		query = `SELECT id FROM roles WHERE name = ?`
	}

	var id uuid.UUID
	if err := db.QueryRowContext(ctx, query, name.String()).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up role id: %w", err)
	}
	return id, nil
}

// uuidArg converts a UUID to the driver's bind representation: BINARY(16)
// bytes for MySQL, the native UUID type for PostgreSQL.
func uuidArg(driver string, id uuid.UUID) (interface{}, error) {
	if driver == "mysql" {
		b, err := id.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal uuid: %w", err)
		}
		return b, nil
	}
	return id, nil
}

// ensureAdminAccount creates the seeded admin identity, profile, and role
// assignment in one transaction. Skips creation when the email is taken.
func ensureAdminAccount(ctx context.Context, container *app.Container) error {
	logger := container.Logger()

	identityRepo, err := container.IdentityRepository()
	if err != nil {
		return err
	}

	roleRepo, err := container.RoleRepository()
	if err != nil {
		return err
	}

	userRepo, err := container.UserRepository()
	if err != nil {
		return err
	}

	txManager, err := container.TxManager()
	if err != nil {
		return err
	}

	if _, err := identityRepo.GetByEmail(ctx, seedAdminEmail); err == nil {
		logger.Info("admin account already present", slog.String("email", seedAdminEmail))
		return nil
	} else if !errors.Is(err, identityDomain.ErrIdentityNotFound) {
		return err
	}

	passwordHash, err := container.PasswordService().HashPassword(seedAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	identity := &identityDomain.Identity{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        seedAdminEmail,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user := &userDomain.User{
		ID:         uuid.Must(uuid.NewV7()),
		IdentityID: identity.ID,
		FirstName:  seedAdminFirstName,
		LastName:   seedAdminLastName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := identityRepo.Create(ctx, identity); err != nil {
			return err
		}

		adminRole, err := roleRepo.GetByName(ctx, identityDomain.RoleAdmin)
		if err != nil {
			return err
		}

		if err := roleRepo.Assign(ctx, identity.ID, adminRole.ID); err != nil {
			return err
		}

		return userRepo.Create(ctx, user)
	})
	if err != nil {
		return err
	}

	logger.Info("admin account created",
		slog.String("email", seedAdminEmail),
		slog.String("user_id", user.ID.String()))
	return nil
}
