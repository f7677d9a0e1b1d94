package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/sessions/internal/app"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
	"github.com/allisson/sessions/internal/config"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
)

// RunCreateUser registers an account with the requested role from the
// command line. The role is validated before any infrastructure comes up.
func RunCreateUser(ctx context.Context, email, password, firstName, lastName, role string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	roleType, err := identityDomain.ParseRoleType(role)
	if err != nil {
		return fmt.Errorf("invalid role %q: %w", role, err)
	}

	accountUseCase, err := container.AccountUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize account use case: %w", err)
	}

	user, err := accountUseCase.Register(ctx, authUseCase.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		Role:      roleType.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", roleType.String()))
	return nil
}
