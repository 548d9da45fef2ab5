package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

func positionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "positions",
		Usage:     "Show open Hyperliquid positions for an address or seeker handle",
		ArgsUsage: "ADDRESS_OR_SEEKER",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("address or seeker handle is required")
			}
			account := c.Args().Get(0)

			d, err := buildDeps(c)
			if err != nil {
				return err
			}

			state, err := d.hyperliquid.Positions(context.Background(), account)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				data, err := json.MarshalIndent(state, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal positions: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if len(state.AssetPositions) == 0 {
				fmt.Println("no open positions")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COIN\tSIDE\tSIZE\tLEVERAGE\tENTRY\tMARK\tUPNL\tLIQ")
			for _, ap := range state.AssetPositions {
				pos := ap.Position
				fmt.Fprintf(w, "%s\t%s\t%s\t%sx (%s)\t%s\t%s\t%s\t%s\n",
					pos.Coin,
					pos.Side(),
					pos.Szi,
					strconv.FormatFloat(pos.Leverage.Value, 'f', -1, 64),
					pos.Leverage.Type,
					pos.EntryPx,
					pos.MarkPx,
					pos.UnrealizedPnl,
					pos.LiqPx,
				)
			}
			return w.Flush()
		},
	}
}
