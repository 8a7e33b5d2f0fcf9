package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	app "premises-access-control/internal"
	"premises-access-control/internal/access"
	"premises-access-control/internal/config"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/report"
	"premises-access-control/internal/routes"
	"premises-access-control/internal/storage"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the access control server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		fmt.Println("Starting premises access control server...")
		ServerMain(ctx, provider)
	},
}

// Initialize logger
func initLogger(cfg *config.Config) *slog.Logger {
	// Determine level from config and set it on the handler options.
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		println("Invalid log level in config, defaulting to INFO")
	}
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	slog.Debug("Logger initialized", "level", level.String())
	return logger
}

// NewApp builds the service graph on top of an initialized provider.
func NewApp(cfg *config.Config, storageProvider storage.Provider) (*routes.App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &routes.App{
		Config:     cfg,
		Provider:   storageProvider,
		Issuer:     credential.NewIssuer(storageProvider, storage.Directory(storageProvider)),
		Scanner:    access.NewScanner(credential.NewValidator(storageProvider), access.NewRecorder(storageProvider, loc)),
		Aggregator: report.NewAggregator(storageProvider, loc),
		Sink:       report.NewEmailSink(&cfg.Email),
		Decoder:    access.TextDecoder{},
	}, nil
}

// Build the weekly report delivery job from config.
func newReportJob(cfg *config.Config, aggregator *report.Aggregator, sink report.Sink) (*report.Job, error) {
	weekday, err := report.ParseWeekday(cfg.Report.Weekday)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	schedule := report.Schedule{
		Weekday:  weekday,
		Hour:     cfg.Report.Hour,
		Minute:   cfg.Report.Minute,
		Location: loc,
	}

	job := report.NewJob(schedule, func(ctx context.Context) error {
		recipients, err := report.LoadRecipients(cfg.Report.RecipientsFile)
		if err != nil {
			return err
		}
		if len(recipients) == 0 {
			return report.ErrNoRecipients
		}

		weekly, err := aggregator.Aggregate(ctx, time.Now())
		if err != nil {
			return err
		}
		return sink.Deliver(ctx, weekly, recipients)
	})
	return job, nil
}

func ServerMain(ctx context.Context, storageProvider storage.Provider) {

	if config.Cfg == nil {
		panic("Config not initialized.")
	}

	initLogger(config.Cfg)

	// Use the provider passed from cobra command (already initialized)
	if storageProvider == nil {
		slog.Error("Storage provider is nil")
		os.Exit(1)
	}

	services, err := NewApp(config.Cfg, storageProvider)
	if err != nil {
		slog.Error("Failed to build services", "error", err)
		os.Exit(1)
	}

	// Weekly report delivery runs alongside the HTTP server.
	job, err := newReportJob(config.Cfg, services.Aggregator, services.Sink)
	if err != nil {
		slog.Error("Failed to build report schedule", "error", err)
		os.Exit(1)
	}
	job.Start()
	defer job.Stop()

	server := app.HTTPServer(services)
	server.Run(config.Cfg.Listen)
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
