package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "search symbols by prefix",
		ArgsUsage: "prefix",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "offset",
				Usage: "records to skip from the start of the result set",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			prefix := cmd.Args().First()
			if prefix == "" {
				return fmt.Errorf("search prefix required")
			}
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			payload, err := client.SearchSymbols(ctx, prefix, cmd.Int("offset"))
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "symbols",
		Usage: "show detailed symbol data by ids or names",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ids",
				Usage: "comma-separated symbol ids",
			},
			&cli.StringFlag{
				Name:  "names",
				Usage: "comma-separated ticker names",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids := cmd.String("ids")
			names := cmd.String("names")
			if (ids == "") == (names == "") {
				return fmt.Errorf("exactly one of --ids or --names required")
			}

			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			if ids != "" {
				symbolIDs, err := parseIDs(ids)
				if err != nil {
					return err
				}
				payload, err := client.SymbolsByIDs(ctx, symbolIDs...)
				if err != nil {
					return err
				}
				printJSON(payload)
				return nil
			}

			payload, err := client.SymbolsByNames(ctx, strings.Split(names, ",")...)
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}
