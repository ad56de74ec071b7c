package service

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	Show(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateModelCredentials(ctx context.Context, id uuid.UUID, apiKey, apiUrl, modelName string) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) Show(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
}

// UpdateModelCredentials stores the user's own model-provider settings.
// Runs started afterwards pick them up instead of the configured default.
func (s *userService) UpdateModelCredentials(ctx context.Context, id uuid.UUID, apiKey, apiUrl, modelName string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	user.ApiKey = apiKey
	user.ApiUrl = apiUrl
	user.ModelName = modelName
	return uow.UserRepository().Update(ctx, user)
}
