package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sakif/registration-backend/internal/apperror"
	"github.com/sakif/registration-backend/internal/model"
	"github.com/sakif/registration-backend/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

// Operation names used in persistence errors and logs.
const (
	opInsert    = "insert account"
	opFindCreds = "find account by credentials"
	opFindEmail = "find accounts by email"
	opList      = "list accounts"
)

const selectAccounts = `SELECT Name, Gender, Email, Date_of_birth, Password, Weight, Height
	FROM Registration_Table`

// InsertAccount appends one row to Registration_Table.
//
// The column order matches the table definition, not the request field
// order; the struct fields are passed explicitly so the two can't drift.
func (db *DB) InsertAccount(ctx context.Context, account *model.Account) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(
		`INSERT INTO Registration_Table (Name, Gender, Email, Date_of_birth, Password, Weight, Height)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		account.Name,
		account.Gender,
		account.Email,
		account.DateOfBirth,
		account.Password,
		account.Weight,
		account.Height,
	)
	if err != nil {
		return apperror.Persistence(opInsert, err)
	}
	return nil
}

// FindAccountByCredentials returns the first row whose Email and Password
// both equal the arguments. The comparison is exact and case-sensitive on
// every driver.
//
// Returns apperror.ErrNotFound when nothing matches; that is an expected
// outcome for a wrong password, not a failure.
func (db *DB) FindAccountByCredentials(ctx context.Context, email, password string) (*model.Account, error) {
	var a model.Account

	err := db.conn.QueryRowContext(ctx, db.rebind(
		selectAccounts+` WHERE `+db.equals("Email")+` AND `+db.equals("Password")),
		email, password,
	).Scan(
		&a.Name,
		&a.Gender,
		&a.Email,
		&a.DateOfBirth,
		&a.Password,
		&a.Weight,
		&a.Height,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("account", email)
		}
		return nil, apperror.Persistence(opFindCreds, err)
	}

	return &a, nil
}

// FindAccountsByEmail returns every row with exactly this email.
func (db *DB) FindAccountsByEmail(ctx context.Context, email string) ([]model.Account, error) {
	return db.queryAccounts(ctx, opFindEmail, selectAccounts+` WHERE `+db.equals("Email"), email)
}

// ListAccounts returns every stored row. There is no ORDER BY: the table has
// no key to order on, and a plain scan returns rows in insertion order.
func (db *DB) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return db.queryAccounts(ctx, opList, selectAccounts)
}

// queryAccounts runs a multi-row SELECT and scans every row.
// Always returns a non-nil slice on success so the listing encodes as [].
func (db *DB) queryAccounts(ctx context.Context, op, query string, args ...any) ([]model.Account, error) {
	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, apperror.Persistence(op, err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(
			&a.Name,
			&a.Gender,
			&a.Email,
			&a.DateOfBirth,
			&a.Password,
			&a.Weight,
			&a.Height,
		); err != nil {
			return nil, apperror.Persistence(op, err)
		}
		accounts = append(accounts, a)
	}

	// rows.Err catches failures that ended the loop early (e.g. a dropped
	// connection mid-scan), which would otherwise look like a short result.
	if err := rows.Err(); err != nil {
		return nil, apperror.Persistence(op, err)
	}

	return accounts, nil
}
