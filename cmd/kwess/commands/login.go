package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/kaiyoux/kwess"
	"github.com/kaiyoux/kwess/internal/observability"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "store a manually issued authorization token",
		ArgsUsage: "[token]",
		Description: "Saves a token minted in the Questrade APP HUB to the configured\n" +
			"refresh-token storage. The token is read from the first argument, or\n" +
			"prompted for without echo when run interactively.",
		Action: loginAction,
	}
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	token := cmd.Args().First()
	if token == "" {
		token, err = promptToken()
		if err != nil {
			return err
		}
	}

	if err := kwess.StoreBootstrapToken(ctx, cfg, token); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Token stored. It will be exchanged on the next command.")
	return nil
}

// promptToken reads the token from stdin, without echo when stdin is a
// terminal so the secret never lands in scrollback.
func promptToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Authorization token: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return string(raw), nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return "", fmt.Errorf("no token on stdin")
	}
	return scanner.Text(), nil
}
