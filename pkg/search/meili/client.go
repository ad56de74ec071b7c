package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

// Document is the paper projection stored in the search index.
type Document struct {
	Id       string                 `json:"id"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Authors  []string               `json:"authors,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ScoredDocument carries the raw Meilisearch ranking score (0..1).
type ScoredDocument struct {
	Document
	RankingScore float64 `json:"_rankingScore"`
}

type Client struct {
	index meilisearch.IndexManager
}

var wordPattern = regexp.MustCompile(`\w+`)

func NewClient(host, apiKey, indexName string) *Client {
	manager := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	return &Client{
		index: manager.Index(indexName),
	}
}

// buildSearchTerms extracts up to 5 significant words from the query plus
// the first 3 requirements. Words of 2 characters or less are noise.
func buildSearchTerms(query string, requirements []string) string {
	var terms []string

	words := wordPattern.FindAllString(strings.ToLower(query), -1)
	count := 0
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		terms = append(terms, w)
		count++
		if count >= 5 {
			break
		}
	}

	reqCount := len(requirements)
	if reqCount > 3 {
		reqCount = 3
	}
	terms = append(terms, requirements[:reqCount]...)

	return strings.Join(terms, " ")
}

// Search runs a keyword search and returns deduplicated hits ordered by
// ranking score, capped at limit.
func (c *Client) Search(ctx context.Context, query string, requirements []string, limit int) ([]*ScoredDocument, error) {
	if limit <= 0 {
		limit = 10
	}

	searchQuery := buildSearchTerms(query, requirements)

	resp, err := c.index.SearchWithContext(ctx, searchQuery, &meilisearch.SearchRequest{
		Limit:                 20,
		AttributesToHighlight: []string{"*"},
		ShowRankingScore:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	seen := make(map[string]struct{})
	var docs []*ScoredDocument
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc ScoredDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if doc.Id == "" {
			continue
		}
		if _, ok := seen[doc.Id]; ok {
			continue
		}
		seen[doc.Id] = struct{}{}
		docs = append(docs, &doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].RankingScore > docs[j].RankingScore
	})

	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// UpsertDocuments adds or replaces documents in the index.
func (c *Client) UpsertDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if _, err := c.index.AddDocumentsWithContext(ctx, docs); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}
	return nil
}

// DeleteDocument removes a document from the index by id.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	if _, err := c.index.DeleteDocumentWithContext(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
