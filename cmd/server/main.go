package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"golang.org/x/sync/errgroup"

	grpcctx "github.com/dtroode/diary-server/internal/api/grpc/context"
	"github.com/dtroode/diary-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/diary-server/internal/api/grpc/server"
	"github.com/dtroode/diary-server/internal/bootstrap"
	"github.com/dtroode/diary-server/internal/config"
	"github.com/dtroode/diary-server/internal/logger"
	"github.com/dtroode/diary-server/internal/model"
	"github.com/dtroode/diary-server/internal/password"
	"github.com/dtroode/diary-server/internal/server"
	"github.com/dtroode/diary-server/internal/service"
	"github.com/dtroode/diary-server/internal/token"
	"github.com/dtroode/diary-server/internal/worker"
)

const (
	appName         = "diary"
	shutdownTimeout = 10 * time.Second
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	displayAppName()
	logAppVersion()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", "error", err)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *logger.Logger) error {
	st, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	codec, err := token.NewJWT(token.Config{
		Secret:    []byte(cfg.JWT.Secret),
		Algorithm: cfg.JWT.Algorithm,
	})
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	sessionService, err := service.NewSession(codec, st.Revocations, st.Users, service.SessionConfig{
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create session service: %w", err)
	}

	hasher := password.NewArgon2(password.Params{
		Time:   cfg.KDF.Time,
		MemKiB: cfg.KDF.MemKiB,
		Par:    cfg.KDF.Par,
	})
	accountService := service.NewAccount(st.Users, hasher, sessionService, logger)

	s := router.New(accountService, sessionService, grpcctx.NewManager(), logger).Register()
	srv := grpcServer.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port))

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		logger.Info("TLS is disabled, bearer tokens travel in clear text")
		sl = server.NewPlainListener()
	}

	purger := worker.NewPurger(st.Revocations, cfg.PurgeInterval, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server on", "address", srv.Address())
		if err := srv.Start(sl); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return purger.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received interruption signal, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func displayAppName() {
	figure.NewFigure(appName, "cybermedium", true).Print()
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
