package commands

import (
	"github.com/spf13/cobra"

	"github.com/openfroyo/deckfiber/pkg/scene"
)

func newRenderCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Render a scene once and print the committed views and layers",
		Long: `Load a scene file, mount it on a headless canvas, configure the deck
from the scene's deck block and render the layer tree once. The views and
layers committed to the deck are printed in order.`,
		Example: `  # Render a YAML scene
  deckfiber render city.yaml

  # Render and record the commit in a journal
  deckfiber render --journal history.db city.cue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			doc, err := scene.Load(args[0])
			if err != nil {
				return err
			}

			s, err := g.openSession(ctx, sessionOptions{})
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.close(ctx); err == nil {
					err = cerr
				}
			}()

			if err := s.mount(ctx, doc); err != nil {
				return err
			}
			if err := s.render(ctx, doc); err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), s.snapshot(), g.jsonOutput)
		},
	}
	return cmd
}
