package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cityScene = "../../../pkg/scene/testdata/city.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand("test", "none", "today")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRender(t *testing.T) {
	out, err := run(t, "render", "--json", cityScene)
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, []string{"MapView:main"}, snap.Views)
	assert.Equal(t, []string{"TileLayer:basemap", "BitmapLayer:satellite", "ScatterplotLayer:poi"}, snap.Layers)
	assert.Equal(t, 1, snap.Commits)
	assert.NotEmpty(t, snap.DeckID)
}

func TestRender_UnsupportedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`{version: v1, layers: [{type: hexagonLayer}]}`), 0o644))

	_, err := run(t, "render", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported element type")
}

func TestRenderWithJournalThenHistory(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "history.db")

	_, err := run(t, "render", "--journal", journal, cityScene)
	require.NoError(t, err)

	out, err := run(t, "history", "--journal", journal, "--json")
	require.NoError(t, err)

	var commits []struct {
		Status string   `json:"status"`
		Layers []string `json:"layers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &commits))
	require.Len(t, commits, 2)
	assert.Equal(t, "applied", commits[0].Status)
	assert.Equal(t, []string{"basemap", "satellite", "poi"}, commits[0].Layers)
	assert.Empty(t, commits[1].Layers)

	out, err = run(t, "history", "--journal", journal)
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "basemap,satellite,poi")
}

func TestHistory_RequiresJournal(t *testing.T) {
	_, err := run(t, "history")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`{version: v1, layers: [{type: Missing}]}`), 0o644))

	out, err := run(t, "validate", cityScene, "../../../pkg/scene/testdata/city.cue")
	require.NoError(t, err)
	assert.Contains(t, out, "city.yaml: ok")
	assert.Contains(t, out, "city.cue: ok")

	out, err = run(t, "validate", cityScene, bad)
	require.Error(t, err)
	assert.Contains(t, out, "bad.yaml: invalid")
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestCatalogue(t *testing.T) {
	out, err := run(t, "catalogue", "--module", "mesh-layers", "--json")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "scenegraphLayer", rows[0]["element"])
	assert.Equal(t, "SimpleMeshLayer", rows[1]["class"])

	out, err = run(t, "catalogue")
	require.NoError(t, err)
	assert.Contains(t, out, "geoJsonLayer")
	assert.Contains(t, out, "GeoJsonLayer")
}

func TestCatalogue_Table(t *testing.T) {
	out, err := run(t, "catalogue", "--module", "geo-layers")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "catalogue_geo_layers", []byte(out))
}
