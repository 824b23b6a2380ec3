package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/dtroode/diary-server/internal/bootstrap"
	"github.com/dtroode/diary-server/internal/config"
	"github.com/dtroode/diary-server/internal/logger"
	"github.com/dtroode/diary-server/internal/password"
	"github.com/dtroode/diary-server/internal/token"
	"github.com/dtroode/diary-server/internal/worker"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// loadConfig is a test seam for config.NewConfig.
var loadConfig = config.NewConfig

// now is a test seam for the inspect clock.
var now = time.Now

func hashCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	t := fs.Uint("time", uint(password.DefaultTime), "argon2id iterations")
	mem := fs.Uint("mem", uint(password.DefaultMemKiB), "argon2id memory in KiB")
	par := fs.Uint("par", uint(password.DefaultPar), "argon2id parallelism")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *par > 255 {
		return fmt.Errorf("par must be at most 255, got %d", *par)
	}

	fmt.Fprint(stderr, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(pw) == 0 {
		return errors.New("password must not be empty")
	}

	hasher := password.NewArgon2(password.Params{
		Time:   uint32(*t),
		MemKiB: uint32(*mem),
		Par:    uint8(*par),
	})
	hash, err := hasher.Hash(string(pw))
	clear(pw)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, hash)
	return nil
}

func inspectCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: sessionctl inspect <token>")
		return errUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	codec, err := token.NewJWT(token.Config{
		Secret:    []byte(cfg.JWT.Secret),
		Algorithm: cfg.JWT.Algorithm,
	})
	if err != nil {
		return err
	}

	claims, err := codec.DecodeAllowExpired(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	fmt.Fprintf(stdout, "subject:    %s\n", claims.SubjectID)
	fmt.Fprintf(stdout, "token_id:   %s\n", claims.TokenID)
	fmt.Fprintf(stdout, "kind:       %s\n", claims.Kind)
	fmt.Fprintf(stdout, "issued_at:  %s\n", claims.IssuedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(stdout, "expires_at: %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(stdout, "expired:    %t\n", !now().Before(claims.ExpiresAt))
	return nil
}

func purgeCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(stderr, cfg.LogLevel)

	st, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	purged, err := worker.NewPurger(st.Revocations, cfg.PurgeInterval, log).PurgeOnce(ctx)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	fmt.Fprintf(stdout, "purged %d expired revocation records\n", purged)
	return nil
}
