package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredPaperEmbedding pairs an embedding row with its cosine similarity
// against a query vector, scaled 0..1.
type ScoredPaperEmbedding struct {
	Embedding  *entity.PaperEmbedding
	Similarity float64
}

type PaperEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.PaperEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.PaperEmbedding) error
	DeleteByPaperId(ctx context.Context, paperId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaperEmbedding, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredPaperEmbedding, error)
}
