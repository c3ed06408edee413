package store

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/lexandro/assetgraph-mcp/kind"
)

var guidRefPattern = regexp.MustCompile(`guid:\s*([0-9a-fA-F]{32})`)

// scanEntry caches the guids one asset references, keyed by path and
// invalidated by size or modification time.
type scanEntry struct {
	modTime     time.Time
	size        int64
	metaModTime time.Time
	guids       []string
}

// referencedGUIDs returns the distinct guids an asset's content and sidecar
// reference, in order of first appearance, excluding ownGUID.
func (s *FS) referencedGUIDs(relPath, ownGUID string) ([]string, error) {
	absPath := s.abs(relPath)
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	var metaModTime time.Time
	if metaInfo, err := os.Stat(absPath + MetaSuffix); err == nil {
		metaModTime = metaInfo.ModTime()
	}

	if cached, ok := s.cache.Get(relPath); ok &&
		cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() && cached.metaModTime.Equal(metaModTime) {
		return cached.guids, nil
	}

	var sources [][]byte
	if !metaModTime.IsZero() {
		if data, err := readFileWithRetry(absPath + MetaSuffix); err == nil {
			sources = append(sources, data)
		}
	}
	switch k := kind.Detect(relPath); {
	case kind.IsTextSerialized(k):
		data, err := readFileWithRetry(absPath)
		if err != nil {
			return nil, err
		}
		// Binary-serialized assets carry references the store cannot read.
		if !kind.IsBinaryContent(data) {
			sources = append(sources, data)
		}
	case k == kind.Unknown:
		// Custom extensions count only when they hold serialized YAML.
		data, err := readFileWithRetry(absPath)
		if err != nil {
			return nil, err
		}
		if !kind.IsBinaryContent(data) && kind.IsYAMLSerialized(data) {
			sources = append(sources, data)
		}
	}

	seen := map[string]bool{ownGUID: true}
	var guids []string
	for _, data := range sources {
		for _, m := range guidRefPattern.FindAllSubmatch(data, -1) {
			guid := strings.ToLower(string(m[1]))
			if seen[guid] || guid == zeroGUID {
				continue
			}
			seen[guid] = true
			guids = append(guids, guid)
		}
	}

	s.cache.Add(relPath, scanEntry{
		modTime:     info.ModTime(),
		size:        info.Size(),
		metaModTime: metaModTime,
		guids:       guids,
	})
	return guids, nil
}

// zeroGUID marks an empty object reference in serialized assets.
const zeroGUID = "00000000000000000000000000000000"

// readFileWithRetry attempts to read a file, retrying once after a short delay
// if the file is locked (common on Windows while the editor is saving).
func readFileWithRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		time.Sleep(50 * time.Millisecond)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
