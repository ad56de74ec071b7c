package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaperEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	PaperId        uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
}
