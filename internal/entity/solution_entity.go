package entity

import (
	"time"

	"github.com/google/uuid"
)

// Solution is one persisted candidate solution produced by a research run.
type Solution struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	Query         string
	QueryAnalysis map[string]interface{}
	Content       map[string]interface{}
	ImageURL      string
	ImageName     string
	CreatedAt     time.Time
}
