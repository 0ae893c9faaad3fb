// Package service contains the business logic layer of the application.
//
//	Handler (HTTP)  → decodes JSON into a raw map, maps outcomes to status codes
//	Service         → validates, applies the password policy, calls the store
//	Repository      → one SQL statement per call
//
// The service never sees HTTP and never sees SQL. It returns apperror values
// and the handler decides what they mean on the wire.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/registration-backend/internal/apperror"
	"github.com/sakif/registration-backend/internal/auth"
	"github.com/sakif/registration-backend/internal/model"
	"github.com/sakif/registration-backend/internal/repository"
	"github.com/sakif/registration-backend/internal/validate"
)

// AccountService handles registration, login, and listing.
// It holds no per-request state and is safe for concurrent use.
type AccountService struct {
	repo      repository.AccountRepository
	validator *validate.Validator
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all required dependencies.
func NewAccountService(
	repo repository.AccountRepository,
	validator *validate.Validator,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		repo:      repo,
		validator: validator,
		passwords: passwords,
		logger:    logger,
	}
}

// Register validates raw against the registration schema and stores one new
// account. Re-registering the same email adds another row.
//
// Errors: apperror.ErrValidation with every failing field (the store is not
// touched), or apperror.ErrPersistence.
func (s *AccountService) Register(ctx context.Context, raw map[string]any) error {
	account, err := s.validator.Registration(raw)
	if err != nil {
		return err
	}

	stored, err := s.passwords.Prepare(account.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
		}
		return fmt.Errorf("service/account: preparing password: %w", err)
	}
	account.Password = stored

	if err := s.repo.InsertAccount(ctx, &account); err != nil {
		s.logStoreFailure("registration failed", err, slog.String("email", account.Email))
		return fmt.Errorf("service/account: registering: %w", err)
	}

	s.logger.Info("account registered", slog.String("email", account.Email))
	return nil
}

// Login validates raw against the login schema and reports whether any stored
// account has exactly that email and password. A mismatch is (false, nil),
// not an error.
func (s *AccountService) Login(ctx context.Context, raw map[string]any) (bool, error) {
	creds, err := s.validator.Login(raw)
	if err != nil {
		return false, err
	}

	var matched bool
	switch s.passwords.Mode() {
	case auth.ModeBcrypt:
		matched, err = s.matchHashed(ctx, creds)
	default:
		matched, err = s.matchPlain(ctx, creds)
	}
	if err != nil {
		s.logStoreFailure("login lookup failed", err, slog.String("email", creds.Email))
		return false, fmt.Errorf("service/account: logging in: %w", err)
	}

	if matched {
		s.logger.Info("login succeeded", slog.String("email", creds.Email))
	} else {
		s.logger.Info("login failed: incorrect email or password", slog.String("email", creds.Email))
	}
	return matched, nil
}

// matchPlain is a single equality lookup in the store.
func (s *AccountService) matchPlain(ctx context.Context, creds model.Credentials) (bool, error) {
	_, err := s.repo.FindAccountByCredentials(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// matchHashed checks the password against every row with this email, since
// duplicates are allowed and each row has its own salt.
func (s *AccountService) matchHashed(ctx context.Context, creds model.Credentials) (bool, error) {
	candidates, err := s.repo.FindAccountsByEmail(ctx, creds.Email)
	if err != nil {
		return false, err
	}
	for _, c := range candidates {
		if s.passwords.Matches(c.Password, creds.Password) {
			return true, nil
		}
	}
	return false, nil
}

// List returns every stored account in storage order.
func (s *AccountService) List(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		s.logStoreFailure("listing failed", err)
		return nil, fmt.Errorf("service/account: listing: %w", err)
	}
	return accounts, nil
}

// logStoreFailure logs the driver error and incident id that the client
// will never see.
func (s *AccountService) logStoreFailure(msg string, err error, attrs ...any) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Cause() != nil {
		attrs = append(attrs,
			slog.String("op", appErr.Op),
			slog.String("incident", appErr.Incident),
			slog.String("error", appErr.Cause().Error()),
		)
	} else {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.Error(msg, attrs...)
}
