package entity

import (
	"time"

	"github.com/google/uuid"
)

type Paper struct {
	Id       uuid.UUID
	Title    string
	Content  string
	Authors  string
	Metadata map[string]interface{}

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
