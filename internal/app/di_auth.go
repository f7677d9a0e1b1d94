package app

import (
	"fmt"

	authHTTP "github.com/allisson/sessions/internal/auth/http"
	authRepository "github.com/allisson/sessions/internal/auth/repository"
	authService "github.com/allisson/sessions/internal/auth/service"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
	identityRepository "github.com/allisson/sessions/internal/identity/repository"
	identityService "github.com/allisson/sessions/internal/identity/service"
	userRepository "github.com/allisson/sessions/internal/user/repository"
)

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() identityService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = identityService.NewPasswordService()
	})
	return c.passwordService
}

// JWTService returns the access token signing service.
func (c *Container) JWTService() authService.JWTService {
	c.jwtServiceInit.Do(func() {
		c.jwtService = authService.NewJWTService(authService.JWTConfig{
			SigningKey: []byte(c.config.JWTSigningKey),
			Issuer:     c.config.JWTIssuer,
			Audience:   c.config.JWTAudience,
			TTL:        c.config.AccessTokenExpiration,
		})
	})
	return c.jwtService
}

// RefreshTokenService returns the opaque refresh token generator.
func (c *Container) RefreshTokenService() authService.RefreshTokenService {
	c.refreshTokenServiceInit.Do(func() {
		c.refreshTokenService = authService.NewRefreshTokenService()
	})
	return c.refreshTokenService
}

// RevocationService returns the jti revocation registry. Entries live as long
// as an access token can, so a revoked jti stays revoked until the token
// would have expired anyway.
func (c *Container) RevocationService() authService.RevocationService {
	c.revocationServiceInit.Do(func() {
		c.revocationService = authService.NewRevocationService(
			c.Cache(),
			c.config.AccessTokenExpiration,
		)
	})
	return c.revocationService
}

// RoleClaimsService returns the cached role-to-claims resolver.
func (c *Container) RoleClaimsService() (authService.RoleClaimsService, error) {
	var err error
	c.roleClaimsServiceInit.Do(func() {
		c.roleClaimsService, err = c.initRoleClaimsService()
		if err != nil {
			c.initErrors["roleClaimsService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleClaimsService"]; exists {
		return nil, storedErr
	}
	return c.roleClaimsService, nil
}

// IdentityRepository returns the identity repository based on database driver.
func (c *Container) IdentityRepository() (authUseCase.IdentityRepository, error) {
	var err error
	c.identityRepositoryInit.Do(func() {
		c.identityRepository, err = c.initIdentityRepository()
		if err != nil {
			c.initErrors["identityRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["identityRepository"]; exists {
		return nil, storedErr
	}
	return c.identityRepository, nil
}

// RoleRepository returns the role repository based on database driver.
func (c *Container) RoleRepository() (authUseCase.RoleRepository, error) {
	var err error
	c.roleRepositoryInit.Do(func() {
		c.roleRepository, err = c.initRoleRepository()
		if err != nil {
			c.initErrors["roleRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleRepository"]; exists {
		return nil, storedErr
	}
	return c.roleRepository, nil
}

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (authUseCase.UserRepository, error) {
	var err error
	c.userRepositoryInit.Do(func() {
		c.userRepository, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepository"]; exists {
		return nil, storedErr
	}
	return c.userRepository, nil
}

// RefreshTokenRepository returns the refresh token repository based on database driver.
func (c *Container) RefreshTokenRepository() (authUseCase.RefreshTokenRepository, error) {
	var err error
	c.refreshTokenRepositoryInit.Do(func() {
		c.refreshTokenRepository, err = c.initRefreshTokenRepository()
		if err != nil {
			c.initErrors["refreshTokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["refreshTokenRepository"]; exists {
		return nil, storedErr
	}
	return c.refreshTokenRepository, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// AccountUseCase returns the account use case.
func (c *Container) AccountUseCase() (authUseCase.AccountUseCase, error) {
	var err error
	c.accountUseCaseInit.Do(func() {
		c.accountUseCase, err = c.initAccountUseCase()
		if err != nil {
			c.initErrors["accountUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accountUseCase"]; exists {
		return nil, storedErr
	}
	return c.accountUseCase, nil
}

// TokenHandler returns the HTTP handler for the token lifecycle endpoints.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// AccountHandler returns the HTTP handler for the account lifecycle endpoints.
func (c *Container) AccountHandler() (*authHTTP.AccountHandler, error) {
	var err error
	c.accountHandlerInit.Do(func() {
		c.accountHandler, err = c.initAccountHandler()
		if err != nil {
			c.initErrors["accountHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accountHandler"]; exists {
		return nil, storedErr
	}
	return c.accountHandler, nil
}

// initRoleClaimsService creates the role claims service backed by the shared cache.
func (c *Container) initRoleClaimsService() (authService.RoleClaimsService, error) {
	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for role claims service: %w", err)
	}

	return authService.NewRoleClaimsService(
		c.Cache(),
		roleRepo,
		c.config.RoleClaimsCacheTTL,
	), nil
}

// initIdentityRepository creates the identity repository instance.
func (c *Container) initIdentityRepository() (authUseCase.IdentityRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for identity repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return identityRepository.NewMySQLIdentityRepository(db), nil
	case "postgres":
		return identityRepository.NewPostgreSQLIdentityRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRoleRepository creates the role repository instance.
func (c *Container) initRoleRepository() (authUseCase.RoleRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for role repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return identityRepository.NewMySQLRoleRepository(db), nil
	case "postgres":
		return identityRepository.NewPostgreSQLRoleRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initUserRepository creates the user repository instance.
func (c *Container) initUserRepository() (authUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return userRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return userRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRefreshTokenRepository creates the refresh token repository instance.
func (c *Container) initRefreshTokenRepository() (authUseCase.RefreshTokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for refresh token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLRefreshTokenRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLRefreshTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenUseCase creates the token use case with all its dependencies,
// wrapped with business metrics.
func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	identityRepo, err := c.IdentityRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity repository for token use case: %w", err)
	}

	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for token use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for token use case: %w", err)
	}

	refreshTokenRepo, err := c.RefreshTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token repository for token use case: %w", err)
	}

	roleClaimsService, err := c.RoleClaimsService()
	if err != nil {
		return nil, fmt.Errorf("failed to get role claims service for token use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}

	useCase := authUseCase.NewTokenUseCase(
		c.config,
		txManager,
		identityRepo,
		roleRepo,
		userRepo,
		refreshTokenRepo,
		c.PasswordService(),
		c.JWTService(),
		c.RefreshTokenService(),
		c.RevocationService(),
		roleClaimsService,
	)

	return authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initAccountUseCase creates the account use case with all its dependencies,
// wrapped with business metrics.
func (c *Container) initAccountUseCase() (authUseCase.AccountUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for account use case: %w", err)
	}

	identityRepo, err := c.IdentityRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity repository for account use case: %w", err)
	}

	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for account use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for account use case: %w", err)
	}

	refreshTokenRepo, err := c.RefreshTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token repository for account use case: %w", err)
	}

	roleClaimsService, err := c.RoleClaimsService()
	if err != nil {
		return nil, fmt.Errorf("failed to get role claims service for account use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for account use case: %w", err)
	}

	useCase := authUseCase.NewAccountUseCase(
		txManager,
		identityRepo,
		roleRepo,
		userRepo,
		refreshTokenRepo,
		c.PasswordService(),
		c.RevocationService(),
		roleClaimsService,
	)

	return authUseCase.NewAccountUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initTokenHandler creates the token handler.
func (c *Container) initTokenHandler() (*authHTTP.TokenHandler, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}
	return authHTTP.NewTokenHandler(tokenUseCase, c.Logger()), nil
}

// initAccountHandler creates the account handler.
func (c *Container) initAccountHandler() (*authHTTP.AccountHandler, error) {
	accountUseCase, err := c.AccountUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get account use case for account handler: %w", err)
	}
	return authHTTP.NewAccountHandler(accountUseCase, c.Logger()), nil
}
