package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kaiyoux/kwess"
	"github.com/kaiyoux/kwess/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "kwess",
		Usage: "Questrade account and market data from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(kwess.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "server-type",
				Usage: "authorization server (live|test)",
				Value: string(kwess.DefaultConfigServerType),
			},
			&cli.StringFlag{
				Name:  "credential-file",
				Usage: "path of the cached credential record",
				Value: kwess.DefaultConfigCredentialFile,
			},
			&cli.StringFlag{
				Name:  "storage--type",
				Usage: "refresh token storage (file|env|keyring)",
				Value: string(kwess.DefaultConfigStorage),
			},
			&cli.StringFlag{
				Name:  "storage--file",
				Usage: "path of the refresh token file",
				Value: kwess.DefaultConfigRefreshTokenFile,
			},
			&cli.StringFlag{
				Name:  "storage--env-key",
				Usage: "environment variable holding the refresh token",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout (negative waits forever)",
				Value: kwess.DefaultConfigTimeout,
			},
			&cli.BoolFlag{
				Name:  "gmt",
				Usage: "send query timestamps in UTC instead of local time",
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			accountsCommand(),
			overviewCommand(),
			balancesCommand(),
			positionsCommand(),
			activitiesCommand(),
			ordersCommand(),
			executionsCommand(),
			timeCommand(),
			marketsCommand(),
			quotesCommand(),
			candlesCommand(),
			searchCommand(),
			symbolsCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// setup loads configuration, installs logging, and builds an authenticated
// client for a subcommand action.
func setup(ctx context.Context, cmd *cli.Command) (*kwess.Client, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	client, err := kwess.New(ctx, cfg)
	if err != nil {
		var cfgErr *kwess.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("%w\n\nLog into your Questrade account (APP HUB), generate a new token for manual authorization, and store it with \"kwess login\", then try again", err)
		}
		return nil, err
	}
	return client, nil
}
