// Package handler contains the HTTP handlers. Handlers parse the request,
// call the service, and write the response; they hold no business logic.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/registration-backend/internal/apperror"
	"github.com/sakif/registration-backend/internal/auth"
	"github.com/sakif/registration-backend/internal/model"
)

// Fixed failure messages. Clients match on these strings.
const (
	msgRegisterFailed = "SQL Error occurred."
	msgLoginFailed    = "Database error during login."
	msgListFailed     = "Error retrieving registrations."
)

// maxBodyBytes bounds a register or login body. The real payload is a few
// hundred bytes.
const maxBodyBytes = 64 << 10

// AccountService is what the handler needs from the service layer.
// *service.AccountService satisfies it.
type AccountService interface {
	Register(ctx context.Context, raw map[string]any) error
	Login(ctx context.Context, raw map[string]any) (bool, error)
	List(ctx context.Context) ([]model.Account, error)
}

// AccountHandler serves /register, /login, and /registrations.
type AccountHandler struct {
	accounts AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleRegister stores a new account.
//
// HTTP: POST /register
// REQUEST BODY: {"name","email","password","gender","dob","weight","height"}
//
//	200 {"success":true}
//	400 {"success":false,"errors":[...]}
//	500 {"success":false,"message":"SQL Error occurred."}
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeFields(w, r)
	if err != nil {
		h.logger.Warn("invalid register body", slog.String("error", err.Error()))
		writeError(w, err, msgRegisterFailed)
		return
	}

	if err := h.accounts.Register(r.Context(), raw); err != nil {
		writeError(w, err, msgRegisterFailed)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true})
}

// HandleLogin checks an email/password pair.
//
// HTTP: POST /login
// REQUEST BODY: {"email","password"}
//
// A wrong password is not an HTTP error: it is 200 {"success":false}.
//
//	200 {"success":true} | {"success":false}
//	400 {"success":false,"errors":[...]}
//	500 {"success":false,"message":"Database error during login."}
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeFields(w, r)
	if err != nil {
		h.logger.Warn("invalid login body", slog.String("error", err.Error()))
		writeError(w, err, msgLoginFailed)
		return
	}

	ok, err := h.accounts.Login(r.Context(), raw)
	if err != nil {
		writeError(w, err, msgLoginFailed)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: ok})
}

// HandleList returns every stored row as a bare JSON array, keyed by column name.
//
// HTTP: GET /registrations
//
// The rows include the Password column. Mount this behind auth.Guard.
func (h *AccountHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		writeError(w, err, msgListFailed)
		return
	}

	if op, ok := auth.OperatorFromContext(r.Context()); ok {
		h.logger.Info("registrations listed",
			slog.String("operator", op),
			slog.Int("count", len(accounts)),
		)
	}

	writeJSON(w, http.StatusOK, accounts)
}

// decodeFields reads the body as one JSON object of arbitrary values.
//
// An empty body is an empty object, so the validator reports every missing
// field rather than a parse error. Numbers are kept as json.Number so
// "weight": 60 is stored as "60", not "60.000000".
//
// Anything that isn't a JSON object comes back as a validation error on the
// pseudo-field "body".
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.ValidationFailed("body", "request body too large")
		}
		return nil, apperror.ValidationFailed("body", "request body must be a JSON object")
	}
	if raw == nil {
		// literal "null"
		raw = map[string]any{}
	}
	return raw, nil
}
