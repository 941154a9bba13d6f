package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func timeCommand() *cli.Command {
	return &cli.Command{
		Name:  "time",
		Usage: "show the API server's clock",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			_, payload, err := client.ServerTime(ctx)
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}

func marketsCommand() *cli.Command {
	return &cli.Command{
		Name:  "markets",
		Usage: "list supported markets",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			payload, err := client.Markets(ctx)
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}

func quotesCommand() *cli.Command {
	return &cli.Command{
		Name:      "quotes",
		Usage:     "show Level 1 quotes for symbol ids",
		ArgsUsage: "id[,id...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("at least one symbol id required")
			}
			ids, err := parseIDs(cmd.Args().First())
			if err != nil {
				return err
			}
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			payload, err := client.Quotes(ctx, ids...)
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}
}

func candlesCommand() *cli.Command {
	return &cli.Command{
		Name:  "candles",
		Usage: "show historical OHLC candles for a symbol id",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:     "symbol-id",
				Usage:    "internal symbol id",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "interval",
				Usage: "candle granularity (e.g. OneMinute, HalfHour, OneDay)",
				Value: "OneDay",
			},
		}, rangeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			start, end, err := parseRange(cmd.String("start"), cmd.String("end"))
			if err != nil {
				return err
			}
			for payload, err := range client.Candles(ctx, cmd.Int("symbol-id"), cmd.String("interval"), start, end) {
				if err != nil {
					return err
				}
				printJSON(payload)
			}
			return nil
		},
	}
}
