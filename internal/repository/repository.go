// Package repository declares the storage contracts the service layer depends on.
//
// The service only ever sees these interfaces. internal/repository/sqldb
// implements them over database/sql for sqlite, mysql, and postgres; tests
// substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/registration-backend/internal/model"
)

// AccountRepository is the account store gateway.
//
// Every method is a single statement against Registration_Table and is safe
// to call from concurrent requests. Any storage failure is returned as an
// apperror.ErrPersistence carrying no row data.
type AccountRepository interface {
	// InsertAccount appends one row. Inserting the same account twice
	// yields two rows; email is not unique.
	InsertAccount(ctx context.Context, account *model.Account) error

	// FindAccountByCredentials returns the first row (in storage order)
	// whose Email and Password both equal the arguments exactly, or
	// apperror.ErrNotFound.
	FindAccountByCredentials(ctx context.Context, email, password string) (*model.Account, error)

	// FindAccountsByEmail returns every row with exactly this email, in
	// storage order. Used when passwords are stored hashed and cannot be
	// compared in SQL.
	FindAccountsByEmail(ctx context.Context, email string) ([]model.Account, error)

	// ListAccounts returns every row in storage order.
	ListAccounts(ctx context.Context) ([]model.Account, error)
}
