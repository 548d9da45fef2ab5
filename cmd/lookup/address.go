package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/daocha/blockchain-lookup/service/address"
)

func classifyAddressCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify-address",
		Usage:     "Report what kind of address or handle the input is",
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("input is required")
			}
			input := c.Args().Get(0)
			kind := address.Classify(input)

			if c.Bool("json") {
				data, _ := json.Marshal(map[string]string{
					"input": input,
					"kind":  string(kind),
				})
				fmt.Println(string(data))
			} else {
				fmt.Printf("%s: %s\n", input, kind)
			}
			return nil
		},
	}
}
