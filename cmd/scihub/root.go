package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkm/scihub-go/internal/config"
	"github.com/rkm/scihub-go/internal/scihub"
)

// app carries the wired-up client shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client *scihub.Client
}

func newRootCommand() *cobra.Command {
	a := &app{}
	var user, password, apiURL string

	root := &cobra.Command{
		Use:           "scihub",
		Short:         "Search and download Copernicus Open Access Hub products",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Flags override the environment.
			if user != "" {
				cfg.API.User = user
			}
			if password != "" {
				cfg.API.Password = password
			}
			if apiURL != "" {
				cfg.API.URL = apiURL
			}
			if cfg.API.User == "" || cfg.API.Password == "" {
				return fmt.Errorf("hub credentials are required: set --user/--password or SCIHUB_USER/SCIHUB_PASSWORD")
			}

			a.cfg = cfg
			a.logger = setupLogger(cfg.Logging.Level, cfg.Logging.Format)
			creds := scihub.Credentials{User: cfg.API.User, Password: cfg.API.Password}
			a.client = scihub.NewClient(cfg.API.URL, creds, cfg.API.Timeout).WithLogger(a.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&user, "user", "u", "", "hub username")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "hub password")
	root.PersistentFlags().StringVar(&apiURL, "url", "", "hub API URL")

	root.AddCommand(newSearchCommand(a))
	root.AddCommand(newDownloadCommand(a))
	return root
}

func setupLogger(level, format string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: slogLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
