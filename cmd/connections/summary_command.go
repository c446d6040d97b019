package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var (
		top    int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the most common occupation terms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if top > 0 {
				cfg.Summarizer.MaxTerms = top
			}
			svc, res, err := ctx.ingest(cmd.Context())
			if err != nil {
				return err
			}
			terms, err := svc.Summary()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, terms)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d contacts\n", res.Features.Rows())
			rows := make([][]string, len(terms))
			for i, t := range terms {
				rows[i] = []string{t.Term, strconv.Itoa(t.Count)}
			}
			fmt.Fprintln(out, renderTable([]string{"Term", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 0, "Number of terms (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
