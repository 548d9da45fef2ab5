package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/daocha/blockchain-lookup/service/wallets"
)

func walletsCommand() *cli.Command {
	return &cli.Command{
		Name:  "wallets",
		Usage: "Known wallet commands",
		Subcommands: []*cli.Command{
			walletsListCommand(),
		},
	}
}

func walletsListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List publicly attributed wallets usable as inspection starting points",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			all := wallets.All()

			if c.Bool("json") {
				out := make([]map[string]string, 0, len(all))
				for _, w := range all {
					out = append(out, map[string]string{
						"label":   w.Label,
						"address": w.Address,
						"chain":   w.Chain,
						"status":  string(w.Status),
						"source":  w.Source,
					})
				}
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal wallets: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tADDRESS\tCHAIN\tSTATUS")
			for _, wallet := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", wallet.Label, wallet.Address, wallet.Chain, wallet.Status)
			}
			return w.Flush()
		},
	}
}
