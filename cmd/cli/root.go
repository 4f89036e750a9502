// Package cli implements the tokengate-admin command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokengate/tokengate/internal/config"
	"github.com/tokengate/tokengate/internal/infrastructure/monitoring"
	"github.com/tokengate/tokengate/internal/infrastructure/persistence/redis"
	"github.com/tokengate/tokengate/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tokengate-admin",
	Short: "Administer tokengate sessions",
	Long: `tokengate-admin inspects and manages live sessions directly against the
session store, bypassing the HTTP surface. It shares the server's config file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file")
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// storeContext loads config and opens the session registry for a command run.
func storeContext(ctx context.Context) (*redis.SessionRegistry, func(), error) {
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	cliLogger, _ := monitoring.NewZapLogger("warn", "console")
	conn, err := redis.Connect(ctx, &cfg.Redis, cliLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	store := redis.NewSessionStore(conn.Client())
	registry := redis.NewSessionRegistry(store, cfg.Auth.AppName)
	cleanup := func() {
		if err := conn.Close(); err != nil {
			cliLogger.Warn(ctx, "close redis", logger.Error(err))
		}
	}
	return registry, cleanup, nil
}
