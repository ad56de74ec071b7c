package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestPaperRequest struct {
	Title    string                 `json:"title" validate:"required"`
	Content  string                 `json:"content" validate:"required"`
	Authors  []string               `json:"authors,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type IngestPaperResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetPaperResponse struct {
	Id        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Authors   []string               `json:"authors,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type DeletePaperResponse struct {
	Id uuid.UUID `json:"id"`
}
