package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/weiwei-tsao/covid-state-compare/internal/business/covid"
	"github.com/weiwei-tsao/covid-state-compare/internal/visuals"
)

func newCompareCmd(deps *Deps) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "compare [state1] [state2]",
		Short: "Compare two states' deaths by age group",
		Long: `Fetches both sources, builds the age-bucket series for the two states and prints them
together with the national summary. States default to California and Arizona.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, second := covid.DefaultFirstState, covid.DefaultSecondState
			if len(args) > 0 {
				first = args[0]
			}
			if len(args) > 1 {
				second = args[1]
			}

			cmp, err := deps.Service.Compare(cmd.Context(), first, second)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(w, cmp)
			case "mermaid":
				_, err := fmt.Fprintf(w, "%s\n\n%s\n%s\n",
					visuals.GenerateComparisonChart(cmp.First.Series, cmp.Second.Series),
					visuals.GenerateSummaryTable(cmp.First.Summary, cmp.Second.Summary, cmp.National),
					cmp.Caption)
				return err
			case "png":
				if out == "" {
					return fmt.Errorf("--out is required for png output")
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := visuals.RenderComparisonPNG(f, cmp.First.Series, cmp.Second.Series); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "wrote %s\n", out)
				return err
			default:
				return fmt.Errorf("unknown format %q (json, mermaid, png)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, mermaid or png")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file for png")
	return cmd
}
