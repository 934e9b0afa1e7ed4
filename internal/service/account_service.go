package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/metrics"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// CreateAccountParams holds registration input. Password is plaintext.
type CreateAccountParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// AccessToken is the result of a successful login.
type AccessToken struct {
	AccountID string
	Token     string
	ExpiresAt time.Time
}

// AccountService provides registration, lookup and login.
type AccountService interface {
	// CreateAccount registers a new account. Returns ErrAccountExists when the
	// username is taken.
	CreateAccount(ctx context.Context, params CreateAccountParams) (*domain.Account, error)

	// GetAccountByID returns the account or an Account *NotFoundError.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// CreateAccessToken verifies the credentials and issues a token.
	// Returns ErrInvalidCredentials on any mismatch.
	CreateAccessToken(ctx context.Context, username, password string) (*AccessToken, error)
}

type accountServiceImpl struct {
	accounts   store.DocumentStore[domain.Account]
	hasher     auth.PasswordHasher
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAccountService creates a new AccountService.
// It returns an error if any of the required dependencies are nil.
func NewAccountService(
	accounts store.DocumentStore[domain.Account],
	hasher auth.PasswordHasher,
	jwtService auth.JWTService,
	logger *slog.Logger,
) (AccountService, error) {
	if accounts == nil {
		return nil, &ServiceError{Service: "account", Operation: "create_service", Message: "accounts store cannot be nil"}
	}
	if hasher == nil {
		return nil, &ServiceError{Service: "account", Operation: "create_service", Message: "hasher cannot be nil"}
	}
	if jwtService == nil {
		return nil, &ServiceError{Service: "account", Operation: "create_service", Message: "jwtService cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &accountServiceImpl{
		accounts:   accounts,
		hasher:     hasher,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "account_service")),
	}, nil
}

// CreateAccount implements AccountService.CreateAccount.
func (s *accountServiceImpl) CreateAccount(
	ctx context.Context,
	params CreateAccountParams,
) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if params.Username == "" {
		return nil, validationError(domain.ErrEmptyUsername)
	}
	if params.Password == "" {
		return nil, NewBadRequestError("Password is required", auth.ErrEmptyPassword)
	}

	if _, err := s.accounts.FindOne(ctx, store.Filter{"username": params.Username}); err == nil {
		log.Debug("username already registered", slog.String("username", params.Username))
		return nil, ErrAccountExists
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check username", slog.String("error", err.Error()))
		return nil, NewServiceError("account", "create_account", "failed to check username", err)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("account", "create_account", "failed to hash password", err)
	}

	account, err := domain.NewAccount(params.Username, params.FirstName, params.LastName, hash)
	if err != nil {
		return nil, validationError(err)
	}

	if err := s.accounts.Insert(ctx, account.ID, account); err != nil {
		if store.IsDuplicateError(err) {
			return nil, ErrAccountExists
		}
		log.Error("failed to store account", slog.String("error", err.Error()))
		return nil, NewServiceError("account", "create_account", "failed to store account", err)
	}

	metrics.IncResourceOperation("account", "create")
	log.Info("account created", slog.String("account_id", account.ID))
	return account, nil
}

// GetAccountByID implements AccountService.GetAccountByID.
func (s *accountServiceImpl) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := s.accounts.FindOne(ctx, store.Filter{"id": accountID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewNotFoundError(ResourceAccount, accountID)
		}
		log.Error("failed to load account",
			slog.String("error", err.Error()),
			slog.String("account_id", accountID))
		return nil, NewServiceError("account", "get_account", "failed to load account", err)
	}
	return account, nil
}

// CreateAccessToken implements AccountService.CreateAccessToken.
func (s *accountServiceImpl) CreateAccessToken(
	ctx context.Context,
	username, password string,
) (*AccessToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.FindOne(ctx, store.Filter{"username": username})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("login for unknown username")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load account for login", slog.String("error", err.Error()))
		return nil, NewServiceError("account", "create_access_token", "failed to load account", err)
	}

	if err := s.hasher.Compare(account.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("account_id", account.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(ctx, account.ID)
	if err != nil {
		log.Error("failed to generate access token",
			slog.String("error", err.Error()),
			slog.String("account_id", account.ID))
		return nil, NewServiceError("account", "create_access_token", "failed to generate token", err)
	}

	log.Info("access token issued", slog.String("account_id", account.ID))
	return &AccessToken{
		AccountID: account.ID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.jwtService.TokenLifetime()),
	}, nil
}
