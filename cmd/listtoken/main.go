// Command listtoken mints an operator token for GET /registrations.
//
// It signs with the same LIST_TOKEN_SECRET the server reads:
//
//	LIST_TOKEN_SECRET=... go run ./cmd/listtoken -operator alice -ttl 1h
//
// The token is printed to stdout; pass it as "Authorization: Bearer <token>".
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sakif/registration-backend/internal/auth"
)

type env struct {
	Secret string `envconfig:"LIST_TOKEN_SECRET" required:"true"`
}

func main() {
	operator := flag.String("operator", "", "operator name recorded as the token subject")
	ttl := flag.Duration("ttl", time.Hour, "how long the token stays valid")
	flag.Parse()

	if err := run(*operator, *ttl); err != nil {
		slog.Error("minting token failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(operator string, ttl time.Duration) error {
	if operator == "" {
		return fmt.Errorf("-operator is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("-ttl must be positive")
	}

	var e env
	if err := envconfig.Process("", &e); err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(e.Secret)
	if err != nil {
		return err
	}

	token, err := tokens.Generate(operator, ttl, auth.ScopeListAccounts)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
