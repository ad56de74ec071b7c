package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SolutionRepository interface {
	Create(ctx context.Context, solution *entity.Solution) error
	CreateBulk(ctx context.Context, solutions []*entity.Solution) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Solution, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Solution, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
