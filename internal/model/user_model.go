package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name      string         `gorm:"type:varchar(255)"`
	UserType  string         `gorm:"type:varchar(64)"`
	ApiKey    string         `gorm:"type:varchar(255)"`
	ApiUrl    string         `gorm:"type:varchar(255)"`
	ModelName string         `gorm:"type:varchar(128)"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
