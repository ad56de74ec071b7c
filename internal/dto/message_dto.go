package dto

import "github.com/google/uuid"

// PublishEmbedPaperMessage asks the ingest consumer to (re)index a paper.
type PublishEmbedPaperMessage struct {
	PaperId uuid.UUID `json:"paper_id"`
}
