package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/business-dashboard/internal/common"
	repo "github.com/joseph-ayodele/business-dashboard/internal/repository"
)

// ConnectDB opens the configured store and makes sure its tables exist.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repo.Client, error) {
	client, err := repo.Open(ctx, repo.ConfigFrom(cfg), logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := repo.EnsureTables(ctx, client); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("successfully connected to database", "dialect", client.Dialect())
	return client, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, client *repo.Client, timeout time.Duration) error {
	return client.HealthCheck(ctx, timeout)
}

// CloseDB closes the database connections gracefully
func CloseDB(client *repo.Client) {
	client.Close()
}
