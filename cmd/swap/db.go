package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/swapmeet/internal/config"
	"github.com/zulandar/swapmeet/internal/db"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBSeedCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the swapmeet database",
		Long:  "Creates the database if needed, migrates all tables and loads the seed file named in the config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config from %s (driver %s)\n", configPath, cfg.Database.Driver)

	return initDatabase(cmd, cfg)
}

func initDatabase(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	if cfg.Database.Driver == config.DriverMySQL {
		adminDB, err := db.ConnectAdmin(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.CreateDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Database %s ready\n", cfg.Database.Name)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if cfg.Seed != "" {
		if err := seedFrom(cmd, gormDB, cfg.Seed); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nSwapmeet database initialized successfully.")
	return nil
}

func newDBSeedCmd() *cobra.Command {
	var (
		configPath string
		file       string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, items and skills from a fixture file",
		Long:  "Upserts the users, items and skills of a YAML fixture. Defaults to the seed file named in the config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(cmd, configPath, file)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (overrides the config's seed)")
	return cmd
}

func runDBSeed(cmd *cobra.Command, configPath, file string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.Seed
	}
	if file == "" {
		return fmt.Errorf("no fixture file: pass --file or set seed in %s", configPath)
	}
	return seedFrom(cmd, gormDB, file)
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the swapmeet database",
		Long: `Drops the swapmeet database (or deletes the SQLite file) and runs init again.

All exchanges, messages and reviews are lost. Requires --yes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, yes bool) error {
	if !yes {
		return fmt.Errorf("refusing to drop the database without --yes")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		adminDB, err := db.ConnectAdmin(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.DropDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Dropped database %s\n", cfg.Database.Name)
	case config.DriverSQLite:
		if err := os.Remove(cfg.Database.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", cfg.Database.Path, err)
		}
		fmt.Fprintf(out, "Removed %s\n", cfg.Database.Path)
	}
	return initDatabase(cmd, cfg)
}

func seedFrom(cmd *cobra.Command, gormDB *gorm.DB, file string) error {
	f, err := db.LoadFixture(file)
	if err != nil {
		return err
	}
	if err := db.Seed(gormDB, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d items, %d skills from %s\n",
		len(f.Users), len(f.Items), len(f.Skills), file)
	return nil
}
