package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	"github.com/allisson/sessions/internal/metrics"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login operations.
func (t *tokenUseCaseWithMetrics) Login(
	ctx context.Context,
	email, password string,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.Login(ctx, email, password)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "login", status)
	t.metrics.RecordDuration(ctx, "auth", "login", time.Since(start), status)

	return pair, err
}

// Refresh records metrics for token refresh operations.
func (t *tokenUseCaseWithMetrics) Refresh(
	ctx context.Context,
	accessToken, refreshToken string,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.Refresh(ctx, accessToken, refreshToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "refresh", status)
	t.metrics.RecordDuration(ctx, "auth", "refresh", time.Since(start), status)

	return pair, err
}

// Logout records metrics for logout operations.
func (t *tokenUseCaseWithMetrics) Logout(ctx context.Context, refreshToken string) error {
	start := time.Now()
	err := t.next.Logout(ctx, refreshToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "logout", status)
	t.metrics.RecordDuration(ctx, "auth", "logout", time.Since(start), status)

	return err
}

// accountUseCaseWithMetrics decorates AccountUseCase with metrics instrumentation.
type accountUseCaseWithMetrics struct {
	next    AccountUseCase
	metrics metrics.BusinessMetrics
}

// NewAccountUseCaseWithMetrics wraps an AccountUseCase with metrics recording.
func NewAccountUseCaseWithMetrics(useCase AccountUseCase, m metrics.BusinessMetrics) AccountUseCase {
	return &accountUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Register records metrics for account registration operations.
func (a *accountUseCaseWithMetrics) Register(
	ctx context.Context,
	input RegisterInput,
) (*userDomain.User, error) {
	start := time.Now()
	user, err := a.next.Register(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "register", status)
	a.metrics.RecordDuration(ctx, "account", "register", time.Since(start), status)

	return user, err
}

// UpdateUserRole records metrics for role update operations.
func (a *accountUseCaseWithMetrics) UpdateUserRole(
	ctx context.Context,
	userID uuid.UUID,
	roleName string,
) error {
	start := time.Now()
	err := a.next.UpdateUserRole(ctx, userID, roleName)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "role_update", status)
	a.metrics.RecordDuration(ctx, "account", "role_update", time.Since(start), status)

	return err
}

// DeleteUser records metrics for account deletion operations.
func (a *accountUseCaseWithMetrics) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	err := a.next.DeleteUser(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "user_delete", status)
	a.metrics.RecordDuration(ctx, "account", "user_delete", time.Since(start), status)

	return err
}
