package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Solution struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	Query         string         `gorm:"type:text;not null"`
	QueryAnalysis datatypes.JSON `gorm:"type:jsonb"`
	Content       datatypes.JSON `gorm:"type:jsonb"`
	ImageURL      string         `gorm:"type:varchar(1024)"`
	ImageName     string         `gorm:"type:varchar(255)"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Solution) TableName() string {
	return "solutions"
}
