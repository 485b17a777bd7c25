package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/roots"
	"github.com/openfroyo/deckfiber/pkg/scene"
	"github.com/openfroyo/deckfiber/pkg/store"
	"github.com/openfroyo/deckfiber/pkg/stores"
	"github.com/openfroyo/deckfiber/pkg/telemetry"
)

// session is one mounted scene with its telemetry and optional journal.
type session struct {
	tel     *telemetry.Telemetry
	journal *stores.Journal
	root    *roots.Root
	canvas  *deck.Canvas
}

type sessionOptions struct {
	metricsAddr string
}

func (g *globals) telemetryConfig(opts sessionOptions) *telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = g.version
	cfg.Logging.Level = "warn"
	if g.verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Tracing.Exporter = g.traceExporter
	cfg.Tracing.Enabled = g.traceExporter != "none"
	if g.traceExporter == "otlp" {
		cfg.Tracing.Endpoint = g.otlpEndpoint
	}
	cfg.Metrics.Enabled = opts.metricsAddr != ""
	cfg.Metrics.ListenAddress = opts.metricsAddr
	// Journal writes follow commit order.
	cfg.Events.EnableAsync = false
	return cfg
}

func (g *globals) openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	tel, err := telemetry.NewTelemetry(g.telemetryConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	s := &session{tel: tel}

	if g.journal != "" {
		j, err := stores.Open(ctx, stores.Config{Path: g.journal})
		if err != nil {
			_ = tel.Shutdown(ctx)
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		tel.Events.Subscribe(j.Subscriber(ctx, log.Logger), stores.JournalFilter())
		s.journal = j
	}

	if opts.metricsAddr != "" {
		if err := tel.StartMetricsServer(); err != nil {
			_ = s.close(ctx)
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	registry := roots.NewRegistry(
		roots.WithTelemetry(tel),
		roots.WithRenderTimeout(g.renderTimeout),
	)
	s.canvas = &deck.Canvas{ID: "canvas-" + uuid.New().String()[:8]}
	s.root = registry.CreateRoot(s.canvas)
	return s, nil
}

// mount configures the root from the scene's deck block.
func (s *session) mount(ctx context.Context, doc *scene.Document) error {
	_, err := s.root.Configure(ctx, doc.DeckConfig(s.canvas))
	return err
}

// render renders the scene tree.
func (s *session) render(ctx context.Context, doc *scene.Document) error {
	tree, err := doc.Tree()
	if err != nil {
		return err
	}
	return s.root.Render(ctx, tree)
}

func (s *session) close(ctx context.Context) error {
	var errs []error
	if s.root.Phase() == store.PhaseConfigured {
		errs = append(errs, s.root.Unmount(ctx))
	}
	errs = append(errs, s.tel.Shutdown(ctx))
	if s.journal != nil {
		errs = append(errs, s.journal.Close())
	}
	return errors.Join(errs...)
}

// snapshot is the printable state of the mounted deck.
type snapshot struct {
	RootID  string   `json:"root_id"`
	DeckID  string   `json:"deck_id"`
	Views   []string `json:"views"`
	Layers  []string `json:"layers"`
	Commits int      `json:"commits"`
}

func (s *session) snapshot() snapshot {
	snap := snapshot{RootID: s.root.ID(), Commits: s.root.Commits(), Views: []string{}, Layers: []string{}}
	d := s.root.Deck()
	if d == nil {
		return snap
	}
	snap.DeckID = d.ID()
	for _, v := range d.Views() {
		snap.Views = append(snap.Views, fmt.Sprintf("%s:%s", v.Class(), v.ID()))
	}
	for _, l := range d.Layers() {
		snap.Layers = append(snap.Layers, fmt.Sprintf("%s:%s", l.Class(), l.ID()))
	}
	return snap
}

func printSnapshot(w io.Writer, snap snapshot, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	fmt.Fprintf(w, "root %s (commit %d)\n", snap.RootID, snap.Commits)
	fmt.Fprintf(w, "views:\n")
	for _, v := range snap.Views {
		fmt.Fprintf(w, "  %s\n", v)
	}
	fmt.Fprintf(w, "layers:\n")
	for _, l := range snap.Layers {
		fmt.Fprintf(w, "  %s\n", l)
	}
	return nil
}
