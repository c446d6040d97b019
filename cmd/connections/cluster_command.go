package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newClusterCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group contacts with similar occupations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := ctx.ingest(cmd.Context())
			if err != nil {
				return err
			}
			clusters, err := svc.Clusters()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, clusters)
			}

			rows := make([][]string, len(clusters))
			for i, c := range clusters {
				rows[i] = []string{c.Leader, strconv.Itoa(len(c.Members)), strings.Join(c.Members[1:], ", ")}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Leader", "Size", "Members"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
