package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/zulandar/swapmeet/internal/config"
	"github.com/zulandar/swapmeet/internal/db"
	"github.com/zulandar/swapmeet/internal/identity"
	"github.com/zulandar/swapmeet/internal/notify"
	"gorm.io/gorm"
)

func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
}

// announce publishes an event to the configured channels. The command has
// already succeeded; delivery problems are only logged.
func announce(cmd *cobra.Command, cfg *config.Config, evt notify.Event) {
	logger := newLogger(cmd)
	n, err := notify.FromConfig(cfg.Notify, slog.New(slog.DiscardHandler))
	if err != nil {
		logger.Warn("notify: setup failed", "error", err)
		return
	}
	notify.Publish(context.Background(), n, logger, evt)
}

// addConfigFlag registers the shared --config flag.
func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", defaultConfigPath, "path to swapmeet config file")
}

// addActorFlag registers the required --as flag naming the acting user.
func addActorFlag(cmd *cobra.Command, actor *string) {
	cmd.Flags().StringVar(actor, "as", "", "id of the acting user (required)")
	cmd.MarkFlagRequired("as")
}

// resolveActor checks that the --as user exists in the directory.
func resolveActor(gormDB *gorm.DB, actor string) (string, error) {
	id, err := identity.Require(context.Background(), identity.Static(actor))
	if err != nil {
		return "", err
	}
	if _, err := identity.Lookup(gormDB, id); err != nil {
		return "", err
	}
	return id, nil
}

// session loads config, connects and resolves the acting user.
func session(configPath, actor string) (*config.Config, *gorm.DB, string, error) {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return nil, nil, "", err
	}
	id, err := resolveActor(gormDB, actor)
	if err != nil {
		return nil, nil, "", err
	}
	return cfg, gormDB, id, nil
}
