package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSimilarCommand(ctx *commandContext) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "similar NAME...",
		Short: "List the contacts whose occupations are closest to NAME",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := ctx.ingest(cmd.Context())
			if err != nil {
				return err
			}
			hits, err := svc.Similar(strings.Join(args, " "), topK)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, hits)
			}

			rows := make([][]string, len(hits))
			for i, h := range hits {
				rows[i] = []string{h.Name, strconv.FormatFloat(h.Score, 'f', 3, 64)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Similarity"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top", "k", 5, "Number of neighbours to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
