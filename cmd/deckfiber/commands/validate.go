package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openfroyo/deckfiber/pkg/catalogue"
	"github.com/openfroyo/deckfiber/pkg/scene"
)

func newValidateCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scene>...",
		Short: "Validate scene files",
		Long: `Validate scene files without rendering them.

This command checks:
  - YAML, JSON or CUE syntax
  - Document structure and deck configuration
  - Component references and cycles
  - That every element type is in the catalogue`,
		Example: `  # Validate one scene
  deckfiber validate city.yaml

  # Validate several
  deckfiber validate scenes/*.cue`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalogue.New()
			failed := 0
			for _, path := range args {
				doc, err := scene.Load(path)
				if err == nil {
					err = doc.Check(cat)
				}
				if err != nil {
					failed++
					log.Error().Err(err).Str("scene", path).Msg("Scene is invalid")
					fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid\n", path)
					continue
				}
				log.Debug().Str("scene", path).Strs("types", doc.Types()).Msg("Scene is valid")
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenes invalid", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}
