package index

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/lexandro/assetgraph-mcp/graph"
)

// minSuggestSimilarity is the Jaro-Winkler score below which a name is not
// offered as a suggestion.
const minSuggestSimilarity = 0.75

// Suggestion is an asset whose name is close to a search term.
type Suggestion struct {
	ID         graph.ID
	Name       string
	Similarity float64
}

// suggestNames ranks the names of ids by similarity to term, best first,
// ties broken by key order. At most limit suggestions are returned.
func suggestNames(g *graph.Graph, ids []graph.ID, term string, limit int) []Suggestion {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return nil
	}

	var out []Suggestion
	for _, id := range ids {
		assetPath, _ := g.Path(id)
		name := graph.Stem(assetPath)
		score, err := edlib.StringsSimilarity(term, strings.ToLower(name), edlib.JaroWinkler)
		if err != nil || float64(score) < minSuggestSimilarity {
			continue
		}
		out = append(out, Suggestion{ID: id, Name: name, Similarity: float64(score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
