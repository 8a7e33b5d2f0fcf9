package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"premises-access-control/internal/config"
	"premises-access-control/internal/storage"
)

// Shared by all subcommands, wired in PersistentPreRun.
var (
	cfgFile  string
	cfg      *config.Config
	provider storage.Provider
)

var rootCmd = &cobra.Command{
	Use:              "premises-access-control",
	Short:            "Premises access control management system",
	Long:             `A command-line tool for managing scannable access credentials, access event logging and weekly access reports.`,
	PersistentPreRun: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if provider != nil {
			provider.Close()
		}
	},
}

func setup(cmd *cobra.Command, args []string) {
	godotenv.Load()

	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfig(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.Cfg = cfg

	provider = storage.NewProvider(&cfg.Storage)
	if provider == nil {
		slog.Error("No usable storage backend configured")
		os.Exit(1)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}
