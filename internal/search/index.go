// Package search maintains a Bleve full-text index over memos and
// answers case-insensitive substring queries scoped to one owner.
package search

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	_ "github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	_ "github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/pmemoapp/pmemo-server/internal/domain"
)

// maxHits caps how many results a single query returns.
const maxHits = 1000

// memoDoc is the indexed projection of a memo. Only what search
// needs goes into the index; the store remains the source of truth.
type memoDoc struct {
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Index wraps a Bleve index over memos.
type Index struct {
	idx    bleve.Index
	logger *slog.Logger
}

// New opens the index at path, creating it with the memo mapping if it
// does not exist yet.
func New(path string, logger *slog.Logger) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		m, merr := buildMapping()
		if merr != nil {
			return nil, merr
		}
		idx, err = bleve.New(path, m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	if logger != nil {
		logger.Info("Search index opened", "path", path)
	}

	return &Index{idx: idx, logger: logger}, nil
}

// NewMemOnly creates an in-memory index. Used in tests.
func NewMemOnly(logger *slog.Logger) (*Index, error) {
	m, err := buildMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx, logger: logger}, nil
}

// Close releases the underlying index.
func (i *Index) Close() error {
	if i.logger != nil {
		i.logger.Info("Closing search index")
	}
	return i.idx.Close()
}

// IndexMemo adds or replaces a memo document.
func (i *Index) IndexMemo(memo *domain.Memo) error {
	return i.idx.Index(memo.ID, memoDoc{
		OwnerID: memo.OwnerID,
		Title:   memo.Title,
		Content: memo.Content,
	})
}

// DeleteMemo removes a memo document. Deleting an unindexed ID is a no-op.
func (i *Index) DeleteMemo(memoID string) error {
	return i.idx.Delete(memoID)
}

// Search returns the IDs of the owner's memos whose title or content
// contains the query as a substring, case-insensitively. Result order
// is unspecified; callers re-sort against store data.
func (i *Index) Search(ownerID, query string) ([]string, error) {
	ownerQuery := bleve.NewTermQuery(ownerID)
	ownerQuery.SetField("owner_id")

	pattern := substringPattern(query)

	titleQuery := bleve.NewRegexpQuery(pattern)
	titleQuery.SetField("title")

	contentQuery := bleve.NewRegexpQuery(pattern)
	contentQuery.SetField("content")

	combined := bleve.NewConjunctionQuery(
		ownerQuery,
		bleve.NewDisjunctionQuery(titleQuery, contentQuery),
	)

	req := bleve.NewSearchRequestOptions(combined, maxHits, 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// substringPattern lowercases the query, quotes regexp metacharacters
// and wraps the result so the anchored term regexp acts as a substring
// match. Indexed text is lowercased by the analyzer, so matching stays
// case-insensitive.
func substringPattern(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	return ".*" + regexp.QuoteMeta(query) + ".*"
}

// buildMapping defines the memo document mapping. Title and content are
// stored as single lowercased tokens so an anchored regexp query behaves
// like substring matching; owner_id is an exact keyword for scoping.
func buildMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer("to_lower", map[string]any{
		"type":          "custom",
		"tokenizer":     "single",
		"token_filters": []string{"to_lower"},
	}); err != nil {
		return nil, fmt.Errorf("failed to register analyzer: %w", err)
	}

	ownerField := bleve.NewTextFieldMapping()
	ownerField.Analyzer = keyword.Name
	ownerField.Store = false
	ownerField.IncludeInAll = false

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = "to_lower"
	textField.Store = false
	textField.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("owner_id", ownerField)
	doc.AddFieldMappingsAt("title", textField)
	doc.AddFieldMappingsAt("content", textField)

	im.DefaultMapping = doc
	return im, nil
}
