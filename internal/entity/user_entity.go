package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id       uuid.UUID
	Email    string
	Name     string
	UserType string

	// Model-provider credentials. Empty values fall back to the
	// configured default provider.
	ApiKey    string
	ApiUrl    string
	ModelName string

	CreatedAt time.Time
	UpdatedAt *time.Time
}
