package dto

import (
	"time"

	"github.com/google/uuid"
)

// StartResearchRequest is the body of the research streaming endpoint.
type StartResearchRequest struct {
	Query               string                 `json:"query" validate:"required"`
	QueryAnalysisResult map[string]interface{} `json:"query_analysis_result" validate:"required"`
	WithPaper           bool                   `json:"with_paper"`
	WithExample         bool                   `json:"with_example"`
	IsDrawing           bool                   `json:"is_drawing"`
}

type GetSolutionResponse struct {
	Id            uuid.UUID              `json:"id"`
	Query         string                 `json:"query"`
	QueryAnalysis map[string]interface{} `json:"query_analysis,omitempty"`
	Content       map[string]interface{} `json:"content"`
	ImageURL      string                 `json:"image_url,omitempty"`
	ImageName     string                 `json:"image_name,omitempty"`
	Citations     []SolutionCitationDTO  `json:"citations,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

type SolutionCitationDTO struct {
	PaperId uuid.UUID `json:"paper_id"`
	Title   string    `json:"title"`
}

type GetAllSolutionsResponse struct {
	Solutions []GetSolutionResponse `json:"solutions"`
	Total     int64                 `json:"total"`
}
