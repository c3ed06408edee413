package store

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/lexandro/assetgraph-mcp/graph"
)

// ErrNotFound is returned for paths the store does not know.
var ErrNotFound = errors.New("asset not found")

type memAsset struct {
	id     graph.ID
	folder bool
	deps   []string
}

// Memory is an in-memory graph.Store. Dependencies are reported exactly as
// configured, including repeats, self references and stale paths.
type Memory struct {
	mu         sync.Mutex
	assets     map[string]*memAsset
	byID       map[graph.ID]string
	order      []string
	failDelete map[string]error
	refreshes  int
}

var _ graph.Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		assets:     make(map[string]*memAsset),
		byID:       make(map[graph.ID]string),
		failDelete: make(map[string]error),
	}
}

// AddFolder registers a folder and its parents.
func (m *Memory) AddFolder(folderPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addFolderLocked(folderPath)
}

func (m *Memory) addFolderLocked(folderPath string) {
	if folderPath == "." || folderPath == "/" || folderPath == "" {
		return
	}
	if _, ok := m.assets[folderPath]; ok {
		return
	}
	m.addFolderLocked(path.Dir(folderPath))
	id := graph.ID("folder:" + folderPath)
	m.assets[folderPath] = &memAsset{id: id, folder: true}
	m.byID[id] = folderPath
	m.order = append(m.order, folderPath)
}

// AddAsset registers an asset with its ID and the dependency paths the store
// will report for it. Parent folders are created as needed.
func (m *Memory) AddAsset(assetPath string, id graph.ID, deps ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addFolderLocked(path.Dir(assetPath))
	if _, ok := m.assets[assetPath]; !ok {
		m.order = append(m.order, assetPath)
	}
	m.assets[assetPath] = &memAsset{id: id, deps: deps}
	m.byID[id] = assetPath
}

// FailDelete makes every later Delete of assetPath return err.
func (m *Memory) FailDelete(assetPath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDelete[assetPath] = err
}

// Refreshes returns how many times Refresh has been called.
func (m *Memory) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}

// Exists reports whether assetPath is still in the store.
func (m *Memory) Exists(assetPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[assetPath]
	return ok
}

func (m *Memory) ResolveID(assetPath string) (graph.ID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[assetPath]
	if !ok {
		return "", false
	}
	return a.id, true
}

func (m *Memory) ResolvePath(id graph.ID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	return p, ok
}

func (m *Memory) Enumerate(root string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.assets[root]; !ok || !a.folder {
		return nil, fmt.Errorf("%s: %w", root, ErrNotFound)
	}
	var out []string
	seen := make(map[string]bool)
	for _, p := range m.order {
		if _, ok := m.assets[p]; ok && !seen[p] && strings.HasPrefix(p, root+"/") {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) IsContainer(assetPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[assetPath]
	return ok && a.folder
}

func (m *Memory) Dependencies(assetPath string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[assetPath]
	if !ok {
		return nil, fmt.Errorf("%s: %w", assetPath, ErrNotFound)
	}
	return append([]string(nil), a.deps...), nil
}

func (m *Memory) Delete(assetPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failDelete[assetPath]; err != nil {
		return err
	}
	a, ok := m.assets[assetPath]
	if !ok {
		return fmt.Errorf("%s: %w", assetPath, ErrNotFound)
	}
	delete(m.assets, assetPath)
	delete(m.byID, a.id)
	return nil
}

func (m *Memory) Refresh() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return nil
}
