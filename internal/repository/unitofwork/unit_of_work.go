package unitofwork

import (
	"context"

	"ai-research-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PaperRepository() contract.PaperRepository
	PaperEmbeddingRepository() contract.PaperEmbeddingRepository
	SolutionRepository() contract.SolutionRepository
	PaperCitationRepository() contract.PaperCitationRepository
}
