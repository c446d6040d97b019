package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"connections/internal/domain"
	"connections/internal/service"
)

type contactJSON struct {
	Name    string     `json:"name"`
	Entries [][]string `json:"entries"`
}

func newFeaturesCommand(ctx *commandContext) *cobra.Command {
	var (
		stage        string
		asTable      bool
		showFeatures bool
	)

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Run the pipeline and print the normalized contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := ctx.ingest(cmd.Context())
			if err != nil {
				return err
			}
			mapping, err := stageMapping(res, stage)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asTable || showFeatures {
				rows := make([][]string, 0, len(mapping))
				for _, c := range mapping {
					parts := make([]string, len(c.Entries))
					for i, e := range c.Entries {
						parts[i] = strconv.Quote(strings.Join(e, "|"))
					}
					rows = append(rows, []string{c.Name, strings.Join(parts, " ")})
				}
				fmt.Fprintln(out, renderTable([]string{"Name", "Entries"}, rows, nil))
			} else if err := writeJSON(cmd, mapping); err != nil {
				return err
			}

			if showFeatures {
				fmt.Fprintln(out, renderTFIDF(res.Features))
				fmt.Fprintln(out, renderEmbeddings(res.Features))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "normalized", "Mapping to print: raw, structured or normalized")
	cmd.Flags().BoolVar(&asTable, "table", false, "Print a table instead of JSON")
	cmd.Flags().BoolVar(&showFeatures, "show-features", false, "Also print the TF-IDF and embedding matrices")
	return cmd
}

func stageMapping(res *service.Result, stage string) ([]contactJSON, error) {
	var out []contactJSON
	switch strings.ToLower(strings.TrimSpace(stage)) {
	case "raw":
		res.Raw.Each(func(name string, entries []domain.RawEntry) {
			c := contactJSON{Name: name, Entries: make([][]string, len(entries))}
			for i, e := range entries {
				c.Entries[i] = []string{string(e)}
			}
			out = append(out, c)
		})
	case "structured":
		res.Structured.Each(func(name string, entries []domain.StructuredEntry) {
			c := contactJSON{Name: name, Entries: make([][]string, len(entries))}
			for i, e := range entries {
				c.Entries[i] = []string(e)
			}
			out = append(out, c)
		})
	case "normalized", "":
		res.Normalized.Each(func(name string, entries []domain.TokenList) {
			c := contactJSON{Name: name, Entries: make([][]string, len(entries))}
			for i, e := range entries {
				c.Entries[i] = []string(e)
			}
			out = append(out, c)
		})
	default:
		return nil, errors.Errorf("unknown stage %q (want raw, structured or normalized)", stage)
	}
	if out == nil {
		out = []contactJSON{}
	}
	return out, nil
}

func renderTFIDF(f domain.Features) string {
	headers := append([]string{"Name"}, f.Vocabulary...)
	aligns := make([]columnAlignment, len(headers))
	for i := 1; i < len(aligns); i++ {
		aligns[i] = alignRight
	}
	rows := make([][]string, f.Rows())
	for i, name := range f.Names {
		row := []string{name}
		for _, x := range f.TFIDF[i].Dense() {
			row = append(row, strconv.FormatFloat(x, 'f', 3, 64))
		}
		rows[i] = row
	}
	return renderTable(headers, rows, aligns)
}

// renderEmbeddings shows the width, norm and leading components of each row.
func renderEmbeddings(f domain.Features) string {
	const preview = 4
	rows := make([][]string, f.Rows())
	for i, name := range f.Names {
		vec := f.Embeddings[i]
		head := make([]string, 0, preview)
		for _, x := range vec[:min(preview, len(vec))] {
			head = append(head, strconv.FormatFloat(x, 'f', 3, 64))
		}
		if len(vec) > preview {
			head = append(head, "...")
		}
		rows[i] = []string{
			name,
			strconv.Itoa(len(vec)),
			strconv.FormatFloat(norm(vec), 'f', 3, 64),
			strings.Join(head, " "),
		}
	}
	return renderTable([]string{"Name", "Dim", "Norm", "Head"}, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignLeft})
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
