package mapper

import (
	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type PaperEmbeddingMapper struct{}

func NewPaperEmbeddingMapper() *PaperEmbeddingMapper {
	return &PaperEmbeddingMapper{}
}

func (m *PaperEmbeddingMapper) ToEntity(e *model.PaperEmbedding) *entity.PaperEmbedding {
	if e == nil {
		return nil
	}

	return &entity.PaperEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		PaperId:        e.PaperId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *PaperEmbeddingMapper) ToModel(e *entity.PaperEmbedding) *model.PaperEmbedding {
	if e == nil {
		return nil
	}

	return &model.PaperEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		PaperId:        e.PaperId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
	}
}
