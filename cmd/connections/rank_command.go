package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRankCommand(ctx *commandContext) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "rank QUERY...",
		Short: "Rank contacts against a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := ctx.ingest(cmd.Context())
			if err != nil {
				return err
			}
			if topK <= 0 {
				topK = ctx.config.Ranking.TopK
			}
			query := strings.Join(args, " ")
			matches, err := svc.Rank(cmd.Context(), query, topK)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, matches)
			}

			rows := make([][]string, len(matches))
			for i, m := range matches {
				rows[i] = []string{
					strconv.Itoa(i + 1),
					m.Name,
					strconv.FormatFloat(m.Score, 'f', 2, 64),
					strconv.FormatFloat(m.Keyword, 'f', 1, 64),
					strconv.FormatFloat(m.Intent, 'f', 1, 64),
					strconv.FormatFloat(m.Similarity, 'f', 3, 64),
					m.Document,
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Name", "Score", "Keyword", "Intent", "Similarity", "Document"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top", "k", 0, "Number of matches to show (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
