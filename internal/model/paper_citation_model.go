package model

import (
	"time"

	"github.com/google/uuid"
)

type PaperCitation struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SolutionId uuid.UUID `gorm:"type:uuid;not null;index"`
	PaperId    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	// Relationships
	Solution *Solution `gorm:"foreignKey:SolutionId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Paper    *Paper    `gorm:"foreignKey:PaperId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (PaperCitation) TableName() string {
	return "paper_citations"
}
