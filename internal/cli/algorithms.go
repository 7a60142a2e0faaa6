package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
)

// AlgorithmsResult lists the catalog.
type AlgorithmsResult struct {
	Algorithms []ir.Descriptor `json:"algorithms"`
}

// NewAlgorithmsCommand creates the algorithms command.
func NewAlgorithmsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the algorithm catalog",
		Long: `List every algorithm tag with its display name and mode.

Precompute algorithms record a full event log in the background and replay
it; live algorithms decide one primitive per step.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			descs := algorithm.NewCatalog().Descriptors()
			if f.Format == "json" {
				return f.Success(AlgorithmsResult{Algorithms: descs})
			}

			tbl := table.NewWriter()
			tbl.SetOutputMirror(f.Writer)
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"Tag", "Name", "Mode"})
			for _, d := range descs {
				tbl.AppendRow(table.Row{d.Type.String(), d.Name, d.Mode()})
			}
			tbl.AppendFooter(table.Row{"", "", len(descs)})
			tbl.Render()
			return nil
		},
	}
}
