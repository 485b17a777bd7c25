package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openfroyo/deckfiber/pkg/catalogue"
)

func newCatalogueCommand(g *globals) *cobra.Command {
	var module string

	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "List the element types scenes may use",
		Example: `  # List everything
  deckfiber catalogue

  # List geo layers only
  deckfiber catalogue --module geo-layers`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type row struct {
				Element string `json:"element"`
				Class   string `json:"class"`
				Module  string `json:"module"`
			}
			var rows []row
			for _, e := range catalogue.New().Entries() {
				if module != "" && e.Kind.Module() != module {
					continue
				}
				rows = append(rows, row{Element: e.Element, Class: e.Class, Module: e.Kind.Module()})
			}

			if g.jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ELEMENT\tCLASS\tMODULE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Element, r.Class, r.Module)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&module, "module", "", "only list one module (core, layers, geo-layers, mesh-layers, factory)")

	return cmd
}
