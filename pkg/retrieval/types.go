package retrieval

import "context"

// Source labels which search path produced a hit.
const (
	SourceKeyword = "keyword"
	SourceVector  = "vector"
	SourceBoth    = "both"
)

// Hit is a fused retrieval result. Scores are on a 0..100 scale.
type Hit struct {
	DocID        string                 `json:"doc_id"`
	Title        string                 `json:"title,omitempty"`
	Content      string                 `json:"content,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	KeywordScore float64                `json:"keyword_score"`
	VectorScore  float64                `json:"vector_score"`
	FinalScore   float64                `json:"final_score"`
	Source       string                 `json:"source"`
}

// KeywordHit is a raw keyword search result. RankingScore is 0..1.
type KeywordHit struct {
	DocID        string
	Title        string
	Content      string
	Metadata     map[string]interface{}
	RankingScore float64
}

// VectorHit is a raw vector search result. Similarity is 0..1.
type VectorHit struct {
	DocID      string
	Content    string
	Metadata   map[string]interface{}
	Similarity float64
}

// DocRecord is a document fetched from the primary store to enrich
// vector-only hits.
type DocRecord struct {
	DocID    string
	Title    string
	Content  string
	Metadata map[string]interface{}
}

type KeywordSearcher interface {
	Search(ctx context.Context, query string, requirements []string, limit int) ([]*KeywordHit, error)
}

type VectorSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]*VectorHit, error)
}

type DocStore interface {
	FetchDoc(ctx context.Context, docID string) (*DocRecord, error)
}
