package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func accountFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "account",
		Aliases: []string{"a"},
		Usage:   "account type (e.g. tfsa, margin, rrsp)",
		Value:   "TFSA",
	}
}

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "start",
			Usage: "range start (YYYY-MM-DD or RFC 3339)",
		},
		&cli.StringFlag{
			Name:  "end",
			Usage: "range end, defaults to now",
		},
	}
}

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "list the accounts of the authorized user",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			payload, err := json.Marshal(struct {
				UserID   int `json:"userId"`
				Accounts any `json:"accounts"`
			}{client.UserID(), client.Accounts()})
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}

func overviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "overview",
		Usage: "balances and positions for one account, fetched concurrently",
		Flags: []cli.Flag{accountFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			account := cmd.String("account")
			var balances, positions, serverTime json.RawMessage

			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				balances, err = client.Balances(gCtx, account)
				return err
			})
			g.Go(func() error {
				var err error
				positions, err = client.Positions(gCtx, account)
				return err
			})
			g.Go(func() error {
				var err error
				_, serverTime, err = client.ServerTime(gCtx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			payload, err := json.Marshal(struct {
				Time      json.RawMessage `json:"serverTime"`
				Balances  json.RawMessage `json:"balances"`
				Positions json.RawMessage `json:"positions"`
			}{serverTime, balances, positions})
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}

func balancesCommand() *cli.Command {
	return &cli.Command{
		Name:  "balances",
		Usage: "show balances for one account",
		Flags: []cli.Flag{accountFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			payload, err := client.Balances(ctx, cmd.String("account"))
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}

func positionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "positions",
		Usage: "show positions for one account",
		Flags: []cli.Flag{accountFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			payload, err := client.Positions(ctx, cmd.String("account"))
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}

func activitiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "activities",
		Usage: "show account activities for a date range",
		Flags: append([]cli.Flag{accountFlag()}, rangeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			start, end, err := parseRange(cmd.String("start"), cmd.String("end"))
			if err != nil {
				return err
			}
			for payload, err := range client.Activities(ctx, cmd.String("account"), start, end) {
				if err != nil {
					return err
				}
				printJSON(payload)
			}
			return nil
		},
	}
}

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "show account orders for a date range or by id",
		Flags: append([]cli.Flag{
			accountFlag(),
			&cli.StringFlag{
				Name:  "state",
				Usage: "order state filter (open|closed|all)",
				Value: "All",
			},
			&cli.StringFlag{
				Name:  "ids",
				Usage: "comma-separated order ids (overrides the date range)",
			},
		}, rangeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			if ids := cmd.String("ids"); ids != "" {
				orderIDs, err := parseIDs(ids)
				if err != nil {
					return err
				}
				payload, err := client.OrdersByIDs(ctx, cmd.String("account"), orderIDs...)
				if err != nil {
					return err
				}
				printJSON(payload)
				return nil
			}

			start, end, err := parseRange(cmd.String("start"), cmd.String("end"))
			if err != nil {
				return err
			}
			for payload, err := range client.Orders(ctx, cmd.String("account"), cmd.String("state"), start, end) {
				if err != nil {
					return err
				}
				printJSON(payload)
			}
			return nil
		},
	}
}

func executionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "executions",
		Usage: "show account executions for a date range",
		Flags: append([]cli.Flag{accountFlag()}, rangeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			start, end, err := parseRange(cmd.String("start"), cmd.String("end"))
			if err != nil {
				return err
			}
			for payload, err := range client.Executions(ctx, cmd.String("account"), start, end) {
				if err != nil {
					return err
				}
				printJSON(payload)
			}
			return nil
		},
	}
}

// parseIDs splits a comma-separated id list.
func parseIDs(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
