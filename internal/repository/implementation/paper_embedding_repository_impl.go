package implementation

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/mapper"
	"ai-research-be/internal/model"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PaperEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaperEmbeddingMapper
}

func NewPaperEmbeddingRepository(db *gorm.DB) contract.PaperEmbeddingRepository {
	return &PaperEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaperEmbeddingMapper(),
	}
}

func (r *PaperEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PaperEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.PaperEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaperEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.PaperEmbedding) error {
	models := make([]*model.PaperEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PaperEmbeddingRepositoryImpl) DeleteByPaperId(ctx context.Context, paperId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("paper_id = ?", paperId).Delete(&model.PaperEmbedding{}).Error
}

func (r *PaperEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaperEmbedding, error) {
	var models []*model.PaperEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PaperEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// SearchSimilarWithScore returns embeddings with similarity scores, filtered by threshold.
// Cosine distance in pgvector is 1 - cosine_similarity, so the select inverts it.
func (r *PaperEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredPaperEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.PaperEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("paper_embeddings").
		Select("paper_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN papers ON papers.id = paper_embeddings.paper_id").
		Where("paper_embeddings.deleted_at IS NULL").
		Where("papers.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scoredEmbeddings := make([]*contract.ScoredPaperEmbedding, len(results))
	for i, res := range results {
		scoredEmbeddings[i] = &contract.ScoredPaperEmbedding{
			Embedding:  r.mapper.ToEntity(&res.PaperEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scoredEmbeddings, nil
}
