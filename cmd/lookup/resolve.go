package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/daocha/blockchain-lookup/service/resolver"
)

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a handle (.skr, .sol, .eth, or bare name) to a canonical address",
		ArgsUsage: "HANDLE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("handle is required")
			}
			handle := c.Args().Get(0)

			d, err := buildDeps(c)
			if err != nil {
				return err
			}

			address, err := d.resolver.Resolve(context.Background(), handle)
			if errors.Is(err, resolver.ErrNotFound) {
				return fmt.Errorf("%s: not found", handle)
			}
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", handle, err)
			}

			if c.Bool("json") {
				data, _ := json.Marshal(map[string]string{
					"handle":  handle,
					"address": address,
				})
				fmt.Println(string(data))
			} else {
				fmt.Printf("%s → %s\n", handle, address)
			}
			return nil
		},
	}
}
