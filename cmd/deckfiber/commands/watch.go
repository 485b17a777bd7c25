package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openfroyo/deckfiber/pkg/engine"
	"github.com/openfroyo/deckfiber/pkg/scene"
)

func newWatchCommand(g *globals) *cobra.Command {
	var (
		metricsAddr string
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <scene>",
		Short: "Render a scene and re-render it on every change",
		Long: `Render a scene like render does, then watch the file and re-render
whenever it changes. Unchanged layers keep their engine objects between
renders. Prometheus metrics are served while watching.

A change to the deck block needs a restart; only the layer tree is
re-rendered.`,
		Example: `  # Watch a scene, serving metrics on the default address
  deckfiber watch city.yaml

  # Watch with a journal and a custom metrics address
  deckfiber watch --journal history.db --metrics-addr 127.0.0.1:9100 city.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			path := args[0]

			doc, err := scene.Load(path)
			if err != nil {
				return err
			}

			s, err := g.openSession(ctx, sessionOptions{metricsAddr: metricsAddr})
			if err != nil {
				return err
			}
			defer func() {
				// The command context is already cancelled here.
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if cerr := s.close(closeCtx); err == nil {
					err = cerr
				}
			}()

			if err := s.mount(ctx, doc); err != nil {
				return err
			}
			if err := s.render(ctx, doc); err != nil {
				return err
			}
			if err := printSnapshot(cmd.OutOrStdout(), s.snapshot(), g.jsonOutput); err != nil {
				return err
			}

			w := scene.NewWatcher(path, log.Logger, scene.WithDebounce(debounce))
			err = w.Watch(ctx, func(ctx context.Context, doc *scene.Document) error {
				if err := s.render(ctx, doc); err != nil {
					if engine.IsTransient(err) {
						log.Debug().Err(err).Msg("Render superseded")
						return nil
					}
					return err
				}
				return printSnapshot(cmd.OutOrStdout(), s.snapshot(), g.jsonOutput)
			})
			if err != nil {
				return err
			}
			defer w.Close()

			log.Info().Str("scene", path).Str("metrics", metricsAddr).Msg("Watching scene, press Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9464", "metrics listen address, empty to disable")
	cmd.Flags().DurationVar(&debounce, "debounce", scene.DefaultDebounce, "wait for writes to settle before re-rendering")

	return cmd
}
