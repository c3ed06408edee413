package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/lexandro/assetgraph-mcp/graph"
)

// MetaSuffix is appended to an asset path to find its sidecar.
const MetaSuffix = ".meta"

var guidPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// metaFile is the part of a .meta sidecar the store reads.
type metaFile struct {
	FileFormatVersion int    `yaml:"fileFormatVersion"`
	GUID              string `yaml:"guid"`
	FolderAsset       string `yaml:"folderAsset"`
}

// readMetaGUID parses a sidecar and returns its normalized guid.
func readMetaGUID(metaPath string) (string, error) {
	data, err := readFileWithRetry(metaPath)
	if err != nil {
		return "", err
	}
	var meta metaFile
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return "", fmt.Errorf("parsing %s: %w", metaPath, err)
	}
	guid := strings.ToLower(strings.TrimSpace(meta.GUID))
	if !guidPattern.MatchString(guid) {
		return "", fmt.Errorf("%s: malformed guid %q", metaPath, meta.GUID)
	}
	return guid, nil
}

// syntheticID derives an ID for an asset without a usable sidecar. Unlike a
// guid it does not survive renames.
func syntheticID(relPath string) graph.ID {
	return graph.ID(fmt.Sprintf("path:%016x", xxhash.Sum64String(relPath)))
}

// IsSynthetic reports whether id was derived from a path rather than a guid.
func IsSynthetic(id graph.ID) bool {
	return strings.HasPrefix(string(id), "path:")
}
