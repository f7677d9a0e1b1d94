package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/app"
	"github.com/allisson/sessions/internal/config"
)

// RunDeleteUser deletes an account from the command line, sweeping every live
// session the user holds.
func RunDeleteUser(ctx context.Context, id string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	userID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid user id %q: must be a valid UUID", id)
	}

	accountUseCase, err := container.AccountUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize account use case: %w", err)
	}

	if err := accountUseCase.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.Info("user deleted", slog.String("user_id", userID.String()))
	return nil
}
