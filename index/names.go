package index

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexandro/assetgraph-mcp/graph"
)

// NameIndex provides full-text search over asset names and paths using a
// Bleve in-memory index. It is rebuilt whenever the graph is.
type NameIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	paths map[graph.ID]string
}

// NameEntry is one asset to index.
type NameEntry struct {
	ID   graph.ID
	Path string
	Kind string
}

// NameHit is one search result.
type NameHit struct {
	ID    graph.ID
	Path  string
	Kind  string
	Score float64
}

// FindOptions configures a name search.
type FindOptions struct {
	Query      string
	Kind       string // exact asset kind, e.g. "Texture"
	PathGlob   string // doublestar pattern over asset paths
	MaxResults int
}

// nameDocument is the document structure stored in Bleve.
type nameDocument struct {
	Name  string `json:"name"`
	Words string `json:"words"`
	Path  string `json:"path"`
	Kind  string `json:"kind"`
}

// NewNameIndex creates an empty in-memory name index.
func NewNameIndex() (*NameIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildNameMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &NameIndex{index: bleveIndex, paths: make(map[graph.ID]string)}, nil
}

// buildNameMapping creates the Bleve index mapping for asset names.
func buildNameMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Name split at case changes and separators so "HeroIdle" and
	// "hero_idle" both answer to "hero".
	wordsFieldMapping := bleve.NewTextFieldMapping()
	wordsFieldMapping.Store = false
	wordsFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("words", wordsFieldMapping)

	pathFieldMapping := bleve.NewTextFieldMapping()
	pathFieldMapping.Store = true
	pathFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	kindFieldMapping := bleve.NewKeywordFieldMapping()
	kindFieldMapping.Store = true
	kindFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("kind", kindFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Replace discards the current contents and indexes entries in one batch.
func (ni *NameIndex) Replace(entries []NameEntry) error {
	newIndex, err := bleve.NewMemOnly(buildNameMapping())
	if err != nil {
		return fmt.Errorf("creating new index: %w", err)
	}
	paths := make(map[graph.ID]string, len(entries))
	batch := newIndex.NewBatch()
	for _, entry := range entries {
		name := graph.Stem(entry.Path)
		doc := nameDocument{
			Name:  name,
			Words: strings.Join(splitWords(name), " "),
			Path:  entry.Path,
			Kind:  entry.Kind,
		}
		if err := batch.Index(string(entry.ID), doc); err != nil {
			newIndex.Close()
			return fmt.Errorf("indexing %s: %w", entry.Path, err)
		}
		paths[entry.ID] = entry.Path
	}
	if err := newIndex.Batch(batch); err != nil {
		newIndex.Close()
		return fmt.Errorf("committing name index: %w", err)
	}

	ni.mu.Lock()
	old := ni.index
	ni.index = newIndex
	ni.paths = paths
	ni.mu.Unlock()

	if err := old.Close(); err != nil {
		return fmt.Errorf("closing old index: %w", err)
	}
	return nil
}

// Search runs a name query.
// Query format:
//   - Plain text: match query (word-level matching)
//   - "quoted text": phrase query over the split name words
//   - /regex/: regexp query over indexed terms
//   - ~term: fuzzy query (edit distance up to 2)
func (ni *NameIndex) Search(options FindOptions) ([]NameHit, int, error) {
	ni.mu.RLock()
	defer ni.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	pathGlob := strings.ReplaceAll(options.PathGlob, "\\", "/")
	if pathGlob != "" && !doublestar.ValidatePattern(pathGlob) {
		return nil, 0, fmt.Errorf("invalid glob pattern: %s", options.PathGlob)
	}

	bleveQuery := buildNameQuery(options.Query)
	if options.Kind != "" {
		kindQuery := bleve.NewTermQuery(options.Kind)
		kindQuery.SetField("kind")
		bleveQuery = bleve.NewConjunctionQuery(bleveQuery, kindQuery)
	}

	searchRequest := bleve.NewSearchRequest(bleveQuery)
	// Over-fetch because the glob filter runs after scoring.
	searchRequest.Size = options.MaxResults * 5
	searchRequest.Fields = []string{"path", "kind"}

	searchResults, err := ni.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	var hits []NameHit
	total := 0
	for _, hit := range searchResults.Hits {
		id := graph.ID(hit.ID)
		assetPath, ok := ni.paths[id]
		if !ok {
			continue
		}
		if pathGlob != "" {
			if matched, err := doublestar.Match(pathGlob, assetPath); err != nil || !matched {
				continue
			}
		}
		total++
		if len(hits) >= options.MaxResults {
			continue
		}
		assetKind, _ := hit.Fields["kind"].(string)
		hits = append(hits, NameHit{ID: id, Path: assetPath, Kind: assetKind, Score: hit.Score})
	}
	return hits, total, nil
}

// buildNameQuery parses the query string into a Bleve query.
func buildNameQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if queryString == "" {
		return bleve.NewMatchAllQuery()
	}

	// Regex query: /pattern/
	if strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") && len(queryString) > 2 {
		return bleve.NewRegexpQuery(strings.ToLower(queryString[1 : len(queryString)-1]))
	}

	// Phrase query: "exact phrase"
	if strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") && len(queryString) > 2 {
		phrase := bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
		phrase.SetField("words")
		return phrase
	}

	// Fuzzy query: ~term
	if strings.HasPrefix(queryString, "~") && len(queryString) > 1 {
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(queryString[1:]))
		fuzzy.SetFuzziness(2)
		return fuzzy
	}

	return bleve.NewMatchQuery(queryString)
}

// splitWords breaks an asset name into lower-case words at separators,
// lower-to-upper case changes and letter/digit boundaries.
func splitWords(name string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// DocumentCount returns the number of documents in the Bleve index.
func (ni *NameIndex) DocumentCount() uint64 {
	ni.mu.RLock()
	defer ni.mu.RUnlock()
	count, _ := ni.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ni *NameIndex) Close() error {
	ni.mu.Lock()
	defer ni.mu.Unlock()
	return ni.index.Close()
}
