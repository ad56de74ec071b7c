package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaperCitation links a persisted solution to a grounding paper consulted
// during the run. Created by the persistence stage, never mutated afterward.
type PaperCitation struct {
	Id         uuid.UUID
	SolutionId uuid.UUID
	PaperId    uuid.UUID
	CreatedAt  time.Time

	// Relationships
	Solution *Solution
	Paper    *Paper
}
