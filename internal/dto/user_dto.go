package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateModelCredentialsRequest struct {
	ApiKey    string `json:"api_key" validate:"required"`
	ApiUrl    string `json:"api_url" validate:"required,url"`
	ModelName string `json:"model_name" validate:"required"`
}

type GetUserResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UserType  string    `json:"user_type"`
	ModelName string    `json:"model_name"`
	ApiUrl    string    `json:"api_url"`
	CreatedAt time.Time `json:"created_at"`
}
