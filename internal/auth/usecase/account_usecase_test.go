package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/sessions/internal/errors"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// accountUseCaseFixture bundles the mocks behind an AccountUseCase under test.
type accountUseCaseFixture struct {
	identityRepo      *mockIdentityRepository
	roleRepo          *mockRoleRepository
	userRepo          *mockUserRepository
	refreshTokenRepo  *mockRefreshTokenRepository
	passwordService   *mockPasswordService
	revocationService *mockRevocationService
	roleClaimsService *mockRoleClaimsService
	useCase           AccountUseCase
}

func newAccountUseCaseFixture() *accountUseCaseFixture {
	f := &accountUseCaseFixture{
		identityRepo:      &mockIdentityRepository{},
		roleRepo:          &mockRoleRepository{},
		userRepo:          &mockUserRepository{},
		refreshTokenRepo:  &mockRefreshTokenRepository{},
		passwordService:   &mockPasswordService{},
		revocationService: &mockRevocationService{},
		roleClaimsService: &mockRoleClaimsService{},
	}
	f.useCase = NewAccountUseCase(
		&fakeTxManager{},
		f.identityRepo,
		f.roleRepo,
		f.userRepo,
		f.refreshTokenRepo,
		f.passwordService,
		f.revocationService,
		f.roleClaimsService,
	)
	return f
}

func (f *accountUseCaseFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.identityRepo.AssertExpectations(t)
	f.roleRepo.AssertExpectations(t)
	f.userRepo.AssertExpectations(t)
	f.refreshTokenRepo.AssertExpectations(t)
	f.passwordService.AssertExpectations(t)
	f.revocationService.AssertExpectations(t)
	f.roleClaimsService.AssertExpectations(t)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:     "alice@example.com",
		Password:  "Test1234!",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func TestAccountUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatesIdentityRoleAndUser", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		defaultRole := &identityDomain.Role{
			ID:   uuid.Must(uuid.NewV7()),
			Name: identityDomain.RoleUser,
		}

		f.passwordService.On("HashPassword", "Test1234!").
			Return("$argon2id$v=19$m=65536,t=3,p=4$test-hash", nil).Once()
		f.identityRepo.On("Create", ctx, mock.MatchedBy(func(identity *identityDomain.Identity) bool {
			return identity.Email == "alice@example.com" &&
				identity.PasswordHash == "$argon2id$v=19$m=65536,t=3,p=4$test-hash" &&
				identity.ID != uuid.Nil
		})).Return(nil).Once()
		f.roleRepo.On("GetByName", ctx, identityDomain.RoleUser).Return(defaultRole, nil).Once()
		f.roleRepo.On("Assign", ctx, mock.Anything, defaultRole.ID).Return(nil).Once()
		f.userRepo.On("Create", ctx, mock.MatchedBy(func(user *userDomain.User) bool {
			return user.FirstName == "Alice" &&
				user.LastName == "Smith" &&
				user.IdentityID != uuid.Nil
		})).Return(nil).Once()

		input := validRegisterInput()
		input.Email = " Alice@Example.COM "

		user, err := f.useCase.Register(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "Alice Smith", user.FullName())
		assert.NotEqual(t, uuid.Nil, user.ID)
		f.assertExpectations(t)
	})

	t.Run("Success_AssignsRequestedRole", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		tutorRole := &identityDomain.Role{
			ID:   uuid.Must(uuid.NewV7()),
			Name: identityDomain.RoleTutor,
		}

		f.passwordService.On("HashPassword", "Test1234!").Return("hash", nil).Once()
		f.identityRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.roleRepo.On("GetByName", ctx, identityDomain.RoleTutor).Return(tutorRole, nil).Once()
		f.roleRepo.On("Assign", ctx, mock.Anything, tutorRole.ID).Return(nil).Once()
		f.userRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		input := validRegisterInput()
		input.Role = "Tutor"

		_, err := f.useCase.Register(ctx, input)
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		input := validRegisterInput()
		input.Role = "superuser"

		_, err := f.useCase.Register(ctx, input)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidRole)
		f.assertExpectations(t)
	})

	t.Run("Error_WeakPassword", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		input := validRegisterInput()
		input.Password = "password"

		_, err := f.useCase.Register(ctx, input)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.assertExpectations(t)
	})

	t.Run("Error_InvalidEmail", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		input := validRegisterInput()
		input.Email = "not-an-email"

		_, err := f.useCase.Register(ctx, input)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.assertExpectations(t)
	})

	t.Run("Error_DuplicateEmail", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		f.passwordService.On("HashPassword", "Test1234!").Return("hash", nil).Once()
		f.identityRepo.On("Create", ctx, mock.Anything).
			Return(identityDomain.ErrEmailAlreadyRegistered).Once()

		_, err := f.useCase.Register(ctx, validRegisterInput())
		assert.ErrorIs(t, err, identityDomain.ErrEmailAlreadyRegistered)
		f.assertExpectations(t)
	})
}

func TestAccountUseCase_UpdateUserRole(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReplacesRoleAndRevokesSessions", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		user := &userDomain.User{
			ID:         uuid.Must(uuid.NewV7()),
			IdentityID: uuid.Must(uuid.NewV7()),
		}
		currentRole := &identityDomain.Role{
			ID:   uuid.Must(uuid.NewV7()),
			Name: identityDomain.RoleUser,
		}
		newRole := &identityDomain.Role{
			ID:   uuid.Must(uuid.NewV7()),
			Name: identityDomain.RoleAdmin,
		}
		jtis := []uuid.UUID{uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())}

		f.userRepo.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		f.roleRepo.On("GetByName", ctx, identityDomain.RoleAdmin).Return(newRole, nil).Once()
		f.roleRepo.On("GetForIdentity", ctx, user.IdentityID).Return(currentRole, nil).Once()
		f.roleRepo.On("ReplaceForIdentity", ctx, user.IdentityID, newRole.ID).Return(nil).Once()
		f.refreshTokenRepo.On("InvalidateAllForUser", ctx, user.ID).Return(jtis, nil).Once()
		// Every live session gets its jti registered in the revocation registry.
		f.revocationService.On("Revoke", ctx, jtis[0], "role_changed").Return(nil).Once()
		f.revocationService.On("Revoke", ctx, jtis[1], "role_changed").Return(nil).Once()
		f.roleClaimsService.On("Invalidate", ctx,
			[]identityDomain.RoleType{identityDomain.RoleAdmin, identityDomain.RoleUser}).
			Return(nil).Once()

		err := f.useCase.UpdateUserRole(ctx, user.ID, "Admin")
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Success_NoPriorAssignment", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		user := &userDomain.User{
			ID:         uuid.Must(uuid.NewV7()),
			IdentityID: uuid.Must(uuid.NewV7()),
		}
		newRole := &identityDomain.Role{
			ID:   uuid.Must(uuid.NewV7()),
			Name: identityDomain.RoleTutor,
		}

		f.userRepo.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		f.roleRepo.On("GetByName", ctx, identityDomain.RoleTutor).Return(newRole, nil).Once()
		f.roleRepo.On("GetForIdentity", ctx, user.IdentityID).
			Return(nil, identityDomain.ErrRoleNotFound).Once()
		f.roleRepo.On("ReplaceForIdentity", ctx, user.IdentityID, newRole.ID).Return(nil).Once()
		f.refreshTokenRepo.On("InvalidateAllForUser", ctx, user.ID).
			Return([]uuid.UUID{}, nil).Once()
		f.roleClaimsService.On("Invalidate", ctx,
			[]identityDomain.RoleType{identityDomain.RoleTutor}).
			Return(nil).Once()

		err := f.useCase.UpdateUserRole(ctx, user.ID, "tutor")
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Error_UnknownRoleName", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		err := f.useCase.UpdateUserRole(ctx, uuid.Must(uuid.NewV7()), "superuser")
		assert.ErrorIs(t, err, identityDomain.ErrInvalidRole)
		f.assertExpectations(t)
	})

	t.Run("Error_UnknownUser", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		userID := uuid.Must(uuid.NewV7())
		f.userRepo.On("GetByID", ctx, userID).
			Return(nil, userDomain.ErrUserNotFound).Once()

		err := f.useCase.UpdateUserRole(ctx, userID, "admin")
		assert.ErrorIs(t, err, userDomain.ErrUserNotFound)
		f.assertExpectations(t)
	})

	t.Run("Error_RoleMissingFromDatabase", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		user := &userDomain.User{
			ID:         uuid.Must(uuid.NewV7()),
			IdentityID: uuid.Must(uuid.NewV7()),
		}

		f.userRepo.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		f.roleRepo.On("GetByName", ctx, identityDomain.RoleAdmin).
			Return(nil, identityDomain.ErrRoleNotFound).Once()

		err := f.useCase.UpdateUserRole(ctx, user.ID, "admin")
		assert.ErrorIs(t, err, identityDomain.ErrRoleNotFound)
		f.assertExpectations(t)
	})
}

func TestAccountUseCase_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SweepsSessionsAndDeletesIdentity", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		user := &userDomain.User{
			ID:         uuid.Must(uuid.NewV7()),
			IdentityID: uuid.Must(uuid.NewV7()),
		}
		jtis := []uuid.UUID{uuid.Must(uuid.NewV7())}

		f.userRepo.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		f.refreshTokenRepo.On("InvalidateAllForUser", ctx, user.ID).Return(jtis, nil).Once()
		f.identityRepo.On("Delete", ctx, user.IdentityID).Return(nil).Once()
		f.revocationService.On("Revoke", ctx, jtis[0], "user_deleted").Return(nil).Once()

		err := f.useCase.DeleteUser(ctx, user.ID)
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Error_UnknownUser", func(t *testing.T) {
		f := newAccountUseCaseFixture()

		userID := uuid.Must(uuid.NewV7())
		f.userRepo.On("GetByID", ctx, userID).
			Return(nil, userDomain.ErrUserNotFound).Once()

		err := f.useCase.DeleteUser(ctx, userID)
		assert.ErrorIs(t, err, userDomain.ErrUserNotFound)
		f.assertExpectations(t)
	})
}
