package stores

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfroyo/deckfiber/pkg/deck"
	"github.com/openfroyo/deckfiber/pkg/engine"
	"github.com/openfroyo/deckfiber/pkg/reconciler"
	"github.com/openfroyo/deckfiber/pkg/roots"
	"github.com/openfroyo/deckfiber/pkg/telemetry"
)

// setupJournal opens an in-memory journal.
func setupJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestOpen(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, j.HealthCheck(context.Background()))
	require.NoError(t, j.Close())

	// Reopening an already migrated database is fine.
	j, err = Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, j.Close())
}

func TestJournal_Roots(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordRoot(ctx, RootRecord{ID: "r1", Target: "map", DeckID: "d1", ConfiguredAt: at}))
	require.NoError(t, j.RecordRoot(ctx, RootRecord{ID: "r2", Target: "minimap", ConfiguredAt: at.Add(time.Minute)}))

	root, err := j.GetRoot(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "map", root.Target)
	assert.Equal(t, at, root.ConfiguredAt)
	assert.Nil(t, root.UnmountedAt)

	require.NoError(t, j.FinalizeRoot(ctx, "r1", 3, at.Add(time.Hour)))
	root, err = j.GetRoot(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, root.UnmountedAt)
	assert.Equal(t, at.Add(time.Hour), *root.UnmountedAt)
	assert.Equal(t, 3, root.Commits)

	all, err := j.ListRoots(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r2", all[0].ID)

	_, err = j.GetRoot(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, j.FinalizeRoot(ctx, "missing", 0, at), ErrNotFound)
}

func TestJournal_Commits(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordRoot(ctx, RootRecord{ID: "r1", ConfiguredAt: at}))
	require.NoError(t, j.RecordCommit(ctx, CommitRecord{
		ID: "c1", RootID: "r1", Status: CommitStatusApplied,
		Views: []string{"main"}, Layers: []string{"x", "y"},
		Duration: 3 * time.Millisecond, CreatedAt: at,
	}))
	require.NoError(t, j.RecordCommit(ctx, CommitRecord{
		ID: "c2", RootID: "r1", Status: CommitStatusFailed,
		Code: engine.ErrCodeEngineApply, Reason: "duplicate id", CreatedAt: at.Add(time.Second),
	}))
	// Commits of a root never seen configured still land.
	require.NoError(t, j.RecordCommit(ctx, CommitRecord{ID: "c3", RootID: "r9", Status: CommitStatusApplied, CreatedAt: at}))

	c, err := j.GetCommit(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, c.Views)
	assert.Equal(t, []string{"x", "y"}, c.Layers)
	assert.Equal(t, 3*time.Millisecond, c.Duration)

	c, err = j.GetCommit(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, c.Layers)
	assert.Equal(t, engine.ErrCodeEngineApply, c.Code)

	list, err := j.ListCommits(ctx, CommitFilter{RootID: "r1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c2", list[1].ID)

	list, err = j.ListCommits(ctx, CommitFilter{Status: CommitStatusApplied})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = j.ListCommits(ctx, CommitFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.Error(t, j.RecordCommit(ctx, CommitRecord{ID: "c1", RootID: "r1", Status: CommitStatusApplied}))
	_, err = j.GetCommit(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournal_RecordsRootSession(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()

	tel, err := telemetry.NewTelemetry(telemetry.TestingConfig())
	require.NoError(t, err)
	defer tel.Shutdown(ctx)
	tel.Events.Subscribe(j.Subscriber(ctx, zerolog.Nop()), JournalFilter())

	canvas := &deck.Canvas{ID: "map"}
	root := roots.NewRegistry(roots.WithTelemetry(tel)).CreateRoot(canvas)
	_, err = root.Configure(ctx, deck.Config{})
	require.NoError(t, err)

	require.NoError(t, root.Render(ctx, reconciler.H("mapView", reconciler.Props{"id": "main"},
		reconciler.H("lineLayer", reconciler.Props{"id": "roads"}),
	)))
	err = root.Render(ctx, reconciler.Fragment{
		reconciler.H("lineLayer", reconciler.Props{"id": "dup"}),
		reconciler.H("arcLayer", reconciler.Props{"id": "dup"}),
	})
	require.Error(t, err)
	require.NoError(t, root.Unmount(ctx))

	stored, err := j.GetRoot(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, "map", stored.Target)
	assert.NotEmpty(t, stored.DeckID)
	assert.NotNil(t, stored.UnmountedAt)
	assert.Equal(t, 2, stored.Commits)

	commits, err := j.ListCommits(ctx, CommitFilter{RootID: root.ID()})
	require.NoError(t, err)
	require.Len(t, commits, 3)

	assert.Equal(t, CommitStatusApplied, commits[0].Status)
	assert.Equal(t, []string{"main"}, commits[0].Views)
	assert.Equal(t, []string{"roads"}, commits[0].Layers)

	assert.Equal(t, CommitStatusFailed, commits[1].Status)
	assert.Equal(t, engine.ErrCodeEngineApply, commits[1].Code)

	assert.Equal(t, CommitStatusApplied, commits[2].Status)
	assert.Empty(t, commits[2].Layers)
}

func TestJournal_RecordIgnoresOtherEvents(t *testing.T) {
	j := setupJournal(t)
	require.NoError(t, j.Record(context.Background(), telemetry.Event{Type: telemetry.EventTypeRenderDiscarded, RootID: "r1"}))

	roots, err := j.ListRoots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roots)
}
