package index

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexandro/assetgraph-mcp/graph"
	"github.com/lexandro/assetgraph-mcp/prefs"
	"github.com/lexandro/assetgraph-mcp/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scenarioStore holds a.png, b.mat (refs a.png) and sub/c.png.
func scenarioStore() *store.Memory {
	s := store.NewMemory()
	s.AddFolder("Assets")
	s.AddAsset("Assets/a.png", "a")
	s.AddAsset("Assets/b.mat", "b", "Assets/a.png")
	s.AddAsset("Assets/sub/c.png", "c")
	return s
}

func newTestController(t *testing.T, s *store.Memory, p Preferences) *Controller {
	t.Helper()
	c, err := New(s, p, Options{ContentRoot: "Assets"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func Test_Controller_NewBuildsWithStoredIgnoreList(t *testing.T) {
	c := newTestController(t, scenarioStore(), prefs.NewMemory("sub"))

	assert.Equal(t, StateBuilt, c.State())
	assert.Equal(t, []graph.ID{"a", "b"}, c.Visible())
	assert.Equal(t, []string{"*", ".mat", ".png"}, c.Extensions())
	assert.Equal(t, "Assets", c.Status().ScopeRoot)
}

func Test_Controller_NewFailsOnPreferenceError(t *testing.T) {
	p := prefs.NewMemory("")
	p.FailWith(errors.New("prefs unavailable"))

	_, err := New(scenarioStore(), p, Options{ContentRoot: "Assets"}, testLogger())
	assert.Error(t, err)
}

func Test_Controller_NewFailsOnInvalidScope(t *testing.T) {
	_, err := New(scenarioStore(), prefs.NewMemory(""), Options{ContentRoot: "Assets", ScopeRoot: "Assets/nope"}, testLogger())
	assert.ErrorIs(t, err, graph.ErrInvalidScope)
}

func Test_Controller_SetFilter(t *testing.T) {
	c := newTestController(t, scenarioStore(), prefs.NewMemory("sub"))

	assert.Equal(t, []graph.ID{"a"}, c.SetFilter(".png", graph.RefNone))
	assert.Equal(t, []graph.ID{"b"}, c.SetFilter("*", graph.RefNoIncoming))
	assert.Equal(t, []graph.ID{"a"}, c.SetFilter("*", graph.RefNoOutgoing))
	assert.Empty(t, c.SetFilter(".mat", graph.RefNoOutgoing))
	assert.Equal(t, []graph.ID{"a", "b"}, c.SetFilter("", graph.RefNone))
}

func Test_Controller_SetIgnoreListDoesNotRebuild(t *testing.T) {
	p := prefs.NewMemory("")
	s := scenarioStore()
	c := newTestController(t, s, p)
	require.Equal(t, []graph.ID{"a", "b", "c"}, c.Visible())

	visible, err := c.SetIgnoreList("sub, b.mat")
	require.NoError(t, err)
	assert.Equal(t, []graph.ID{"a"}, visible)

	raw, _ := p.IgnoreList()
	assert.Equal(t, "sub, b.mat", raw)
	assert.Equal(t, []graph.ID{"c"}, c.Search("c"), "graph membership is unchanged until the next build")
	assert.Equal(t, 0, s.Refreshes())
}

func Test_Controller_SetIgnoreListPersistFailure(t *testing.T) {
	p := prefs.NewMemory("sub")
	c := newTestController(t, scenarioStore(), p)
	p.FailWith(errors.New("read-only"))

	_, err := c.SetIgnoreList("")
	assert.Error(t, err)
	assert.Equal(t, []graph.ID{"a", "b"}, c.Visible())
}

func Test_Controller_SetScopeRoot(t *testing.T) {
	c := newTestController(t, scenarioStore(), prefs.NewMemory(""))
	c.SetFilter(".mat", graph.RefNone)
	c.Select("b", false)

	visible, err := c.SetScopeRoot("Assets/sub/")
	require.NoError(t, err)
	assert.Equal(t, []graph.ID{"c"}, visible)

	status := c.Status()
	assert.Equal(t, "Assets/sub", status.ScopeRoot)
	assert.Equal(t, graph.Wildcard, status.Extension)
	assert.Equal(t, graph.RefNone, status.RefType)
	_, selected := c.Selected()
	assert.False(t, selected)
}

func Test_Controller_SetScopeRootFailureKeepsGraph(t *testing.T) {
	c := newTestController(t, scenarioStore(), prefs.NewMemory(""))

	_, err := c.SetScopeRoot("Assets/missing")
	assert.ErrorIs(t, err, graph.ErrInvalidScope)

	_, err = c.SetScopeRoot("Packages")
	assert.ErrorIs(t, err, graph.ErrInvalidScope)

	assert.Equal(t, "Assets", c.Status().ScopeRoot)
	assert.Equal(t, []graph.ID{"a", "b", "c"}, c.Visible())
	assert.Equal(t, StateBuilt, c.State())
}

func Test_Controller_Select(t *testing.T) {
	c := newTestController(t, scenarioStore(), prefs.NewMemory(""))

	sel, ok := c.Select("b", false)
	require.True(t, ok)
	assert.Equal(t, "Assets/b.mat", sel.Path)
	assert.Equal(t, []graph.ID{"a"}, sel.Outgoing)
	assert.Empty(t, sel.Incoming)

	_, err := c.SetIgnoreList("b.mat")
	require.NoError(t, err)

	sel, ok = c.Select("a", false)
	require.True(t, ok)
	assert.Equal(t, []graph.ID{"b"}, sel.Incoming)

	sel, ok = c.Select("a", true)
	require.True(t, ok)
	assert.Empty(t, sel.Incoming, "ignored referencing assets are hidden")

	id, selected := c.Selected()
	assert.True(t, selected)
	assert.Equal(t, graph.ID("a"), id)

	_, ok = c.Select("zzz", false)
	assert.False(t, ok)
}

func Test_Controller_Describe(t *testing.T) {
	c := newTestController(t, scenarioStore(), prefs.NewMemory(""))

	d, err := c.Describe("a")
	require.NoError(t, err)
	assert.Equal(t, Description{ID: "a", Path: "Assets/a.png", Kind: "Texture", Indexed: true, Outgoing: 0, Incoming: 1}, d)

	_, err = c.Describe("missing")
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func Test_Controller_LookupAndPaths(t *testing.T) {
	c := newTestController(t, scenarioStore(), prefs.NewMemory(""))

	id, ok := c.Lookup("Assets/b.mat")
	require.True(t, ok)
	assert.Equal(t, graph.ID("b"), id)
	assert.Equal(t, []string{"Assets/b.mat", "", "Assets/a.png"}, c.Paths([]graph.ID{"b", "nope", "a"}))
}

func Test_Controller_ReclaimUnreferenced(t *testing.T) {
	s := store.NewMemory()
	s.AddFolder("Assets")
	s.AddAsset("Assets/A.png", "A")
	s.AddAsset("Assets/B.png", "B")
	s.AddAsset("Assets/C.mat", "C", "Assets/B.png")
	c := newTestController(t, s, prefs.NewMemory(""))

	var callbackReport *graph.ReclaimReport
	var stateInCallback State
	report, err := c.ReclaimUnreferenced(func(r graph.ReclaimReport) {
		callbackReport = &r
		// The controller must already be unlocked here.
		stateInCallback = c.State()
	})
	require.NoError(t, err)

	assert.Equal(t, []graph.ID{"A"}, report.Deleted)
	assert.NoError(t, report.Err())
	require.NotNil(t, callbackReport)
	assert.Equal(t, report.Deleted, callbackReport.Deleted)
	assert.Equal(t, StateBuilt, stateInCallback)

	assert.False(t, s.Exists("Assets/A.png"))
	assert.True(t, s.Exists("Assets/B.png"))
	assert.True(t, s.Exists("Assets/C.mat"))
	assert.Equal(t, 1, s.Refreshes())
	assert.Equal(t, []graph.ID{"B", "C"}, c.Visible(), "graph is rebuilt after reclaiming")
}

func Test_Controller_ReclaimReportsFailures(t *testing.T) {
	s := scenarioStore()
	s.AddAsset("Assets/d.png", "d")
	s.AddAsset("Assets/e.png", "e")
	locked := errors.New("file locked")
	s.FailDelete("Assets/d.png", locked)
	c := newTestController(t, s, prefs.NewMemory(""))

	calls := 0
	report, err := c.ReclaimUnreferenced(func(graph.ReclaimReport) { calls++ })
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.ElementsMatch(t, []graph.ID{"c", "e"}, report.Deleted)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Assets/d.png", report.Failures[0].Path)
	assert.ErrorIs(t, report.Err(), locked)
	assert.Equal(t, 1, s.Refreshes())
	assert.Contains(t, c.Visible(), graph.ID("d"))
}

func Test_Controller_MarkStaleAndRebuild(t *testing.T) {
	s := scenarioStore()
	c := newTestController(t, s, prefs.NewMemory(""))

	c.MarkStale()
	assert.Equal(t, StateStale, c.State())

	s.AddAsset("Assets/f.prefab", "f", "Assets/b.mat")
	stats, err := c.Rebuild()
	require.NoError(t, err)

	assert.Equal(t, StateBuilt, c.State())
	assert.Equal(t, 4, stats.Sources)
	assert.Equal(t, 1, s.Refreshes())
	assert.Equal(t, []string{"*", ".mat", ".png", ".prefab"}, c.Extensions())
}

func Test_Controller_FindAndSuggest(t *testing.T) {
	s := store.NewMemory()
	s.AddFolder("Assets")
	s.AddAsset("Assets/Textures/hero.png", "t1")
	s.AddAsset("Assets/Materials/hero.mat", "m1", "Assets/Textures/hero.png")
	s.AddAsset("Assets/Prefabs/villain.prefab", "p1")
	c := newTestController(t, s, prefs.NewMemory(""))

	hits, total, err := c.Find(FindOptions{Query: "hero", Kind: "Material"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, hits, 1)
	assert.Equal(t, graph.ID("m1"), hits[0].ID)

	suggestions := c.Suggest("hreo", 5)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "hero", suggestions[0].Name)
	for _, s := range suggestions {
		assert.NotEqual(t, "villain", s.Name)
	}
	assert.Empty(t, c.Suggest("", 5))
}

func Test_Controller_Status(t *testing.T) {
	c := newTestController(t, scenarioStore(), prefs.NewMemory("sub"))

	status := c.Status()
	assert.Equal(t, StateBuilt, status.State)
	assert.Equal(t, "sub", status.IgnoreList)
	assert.Equal(t, 2, status.Stats.Sources)
	assert.Equal(t, 2, status.Visible)
	assert.Equal(t, map[string]int{"Texture": 1, "Material": 1}, status.Kinds)
	assert.Equal(t, uint64(2), status.NameDocuments)
	assert.Equal(t, "built", status.State.String())
}

func Test_Controller_ReclaimCandidatesIsReadOnly(t *testing.T) {
	s := scenarioStore()
	c := newTestController(t, s, prefs.NewMemory(""))

	assert.Equal(t, []graph.ID{"c"}, c.ReclaimCandidates())
	assert.True(t, s.Exists("Assets/sub/c.png"))
	assert.Equal(t, 0, s.Refreshes())
}
