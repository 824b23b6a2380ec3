// Package bootstrap opens the storage backends selected by configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dtroode/diary-server/internal/config"
	"github.com/dtroode/diary-server/internal/logger"
	"github.com/dtroode/diary-server/internal/model"
	"github.com/dtroode/diary-server/internal/repository/memory"
	"github.com/dtroode/diary-server/internal/repository/postgres"
	"github.com/dtroode/diary-server/internal/repository/redis"
)

// Stores holds the account and revocation backends chosen by configuration.
type Stores struct {
	Users       model.UserStore
	Revocations model.RevocationStore
	closers     []func() error
	logger      *logger.Logger
}

// OpenStores connects the configured backends. An empty DATABASE_DSN keeps
// accounts in memory, which is meant for local development only.
func OpenStores(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Stores, error) {
	st := &Stores{logger: logger}

	var conn *postgres.Connection
	if cfg.Database.DSN != "" {
		c, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		conn = c
		st.closers = append(st.closers, conn.Close)
		st.Users = postgres.NewUserRepository(conn)
	} else {
		logger.Info("DATABASE_DSN is empty, accounts are kept in memory")
		st.Users = memory.NewUserStore()
	}

	switch cfg.RevocationBackend {
	case config.BackendPostgres:
		st.Revocations = postgres.NewRevocationRepository(conn.DB)
	case config.BackendRedis:
		client, err := redis.Connect(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to initialize revocation store: %w", err)
		}
		st.closers = append(st.closers, client.Close)
		st.Revocations = redis.NewRevocationStore(client, cfg.Redis.Prefix)
	default:
		st.Revocations = memory.NewRevocationStore()
	}

	logger.Info("stores ready",
		"revocation_backend", cfg.RevocationBackend,
		"persistent_accounts", conn != nil)

	return st, nil
}

// Close releases backends in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Error("failed to close store", "error", err.Error())
		}
	}
}
