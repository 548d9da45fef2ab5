package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/daocha/blockchain-lookup/service/classify"
)

func activityCommand() *cli.Command {
	return &cli.Command{
		Name:      "activity",
		Usage:     "Fetch and classify recent transactions for an address or handle",
		ArgsUsage: "ADDRESS_OR_HANDLE",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of rows (defaults to ACTIVITY_LIMIT)",
			},
			&cli.StringSliceFlag{
				Name:  "must-jq",
				Usage: "jq filter a row must satisfy (repeatable; all must be truthy)",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("address or handle is required")
			}
			input := c.Args().Get(0)

			// Compile jq filters up front so a bad filter fails before any
			// network access.
			jqFilters := c.StringSlice("must-jq")
			compiledJQFilters := make([]*gojq.Code, len(jqFilters))
			for i, filter := range jqFilters {
				query, err := gojq.Parse(filter)
				if err != nil {
					return fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
				}
				compiledJQFilters[i], err = gojq.Compile(query)
				if err != nil {
					return fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
				}
			}

			d, err := buildDeps(c)
			if err != nil {
				return err
			}

			report, err := d.aggregator.Inspect(context.Background(), input)
			if err != nil {
				return err
			}

			rows := report.Rows
			if len(compiledJQFilters) > 0 {
				rows = filterRows(rows, compiledJQFilters)
			}
			if limit := c.Int("limit"); limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}

			if c.Bool("json") {
				out := make([]map[string]any, 0, len(rows))
				for _, row := range rows {
					out = append(out, rowJSON(row))
				}
				data, err := json.MarshalIndent(map[string]any{
					"input":   report.Input,
					"address": report.Address,
					"chain":   report.Chain,
					"rows":    out,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal report: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("%s (%s)\n", report.Address, report.Chain)
			if len(rows) == 0 {
				fmt.Println("no activity")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tCATEGORY\tSUMMARY\tHASH")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					time.Unix(row.Timestamp, 0).UTC().Format("2006-01-02 15:04"),
					row.Category,
					row.Summary,
					row.ShortHash,
				)
			}
			return w.Flush()
		},
	}
}

// rowJSON renders a classified row with stable lowercase keys for jq filters
// and JSON output.
func rowJSON(row classify.Classified) map[string]any {
	return map[string]any{
		"timestamp":  int(row.Timestamp),
		"category":   string(row.Category),
		"summary":    row.Summary,
		"short_hash": row.ShortHash,
	}
}

// filterRows keeps the rows for which every compiled jq filter yields a
// truthy first result.
func filterRows(rows []classify.Classified, filters []*gojq.Code) []classify.Classified {
	var out []classify.Classified
	for _, row := range rows {
		keep := true
		for _, code := range filters {
			iter := code.Run(rowJSON(row))
			v, ok := iter.Next()
			if !ok {
				keep = false
				break
			}
			if _, isErr := v.(error); isErr {
				keep = false
				break
			}
			if !isTruthy(v) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// isTruthy checks if a jq result value is truthy.
// In jq, false and null are falsy, everything else is truthy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
