package service

import (
	"context"
	"fmt"

	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/retrieval"
	"ai-research-be/pkg/search/meili"

	"github.com/google/uuid"
)

// keywordSearchAdapter exposes the Meilisearch client as a retrieval
// keyword searcher.
type keywordSearchAdapter struct {
	client *meili.Client
}

func NewKeywordSearcher(client *meili.Client) retrieval.KeywordSearcher {
	return &keywordSearchAdapter{client: client}
}

func (a *keywordSearchAdapter) Search(ctx context.Context, query string, requirements []string, limit int) ([]*retrieval.KeywordHit, error) {
	docs, err := a.client.Search(ctx, query, requirements, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]*retrieval.KeywordHit, len(docs))
	for i, doc := range docs {
		hits[i] = &retrieval.KeywordHit{
			DocID:        doc.Id,
			Title:        doc.Title,
			Content:      doc.Content,
			Metadata:     doc.Metadata,
			RankingScore: doc.RankingScore,
		}
	}
	return hits, nil
}

// vectorSearchAdapter embeds the query and searches the pgvector chunk
// store, collapsing chunks to one hit per paper.
type vectorSearchAdapter struct {
	embedder   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
	threshold  float64
}

func NewVectorSearcher(embedder embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, threshold float64) retrieval.VectorSearcher {
	return &vectorSearchAdapter{
		embedder:   embedder,
		uowFactory: uowFactory,
		threshold:  threshold,
	}
}

func (a *vectorSearchAdapter) Search(ctx context.Context, query string, limit int) ([]*retrieval.VectorHit, error) {
	res, err := a.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := a.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.PaperEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, limit, a.threshold)
	if err != nil {
		return nil, err
	}

	// Results arrive ordered by similarity, so the first chunk per paper
	// is the best one.
	seen := make(map[uuid.UUID]struct{})
	hits := make([]*retrieval.VectorHit, 0, len(scored))
	for _, s := range scored {
		if _, ok := seen[s.Embedding.PaperId]; ok {
			continue
		}
		seen[s.Embedding.PaperId] = struct{}{}
		hits = append(hits, &retrieval.VectorHit{
			DocID:      s.Embedding.PaperId.String(),
			Content:    s.Embedding.Document,
			Similarity: s.Similarity,
			Metadata: map[string]interface{}{
				"chunk_index": s.Embedding.ChunkIndex,
			},
		})
	}
	return hits, nil
}

// paperDocStore resolves vector-only hits to full paper records.
type paperDocStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPaperDocStore(uowFactory unitofwork.RepositoryFactory) retrieval.DocStore {
	return &paperDocStore{uowFactory: uowFactory}
}

func (d *paperDocStore) FetchDoc(ctx context.Context, docID string) (*retrieval.DocRecord, error) {
	id, err := uuid.Parse(docID)
	if err != nil {
		return nil, fmt.Errorf("invalid paper id %q: %w", docID, err)
	}

	uow := d.uowFactory.NewUnitOfWork(ctx)
	paper, err := uow.PaperRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, fmt.Errorf("paper %s not found", docID)
	}

	return &retrieval.DocRecord{
		DocID:    docID,
		Title:    paper.Title,
		Content:  paper.Content,
		Metadata: paper.Metadata,
	}, nil
}
