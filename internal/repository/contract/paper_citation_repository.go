package contract

import (
	"context"

	"ai-research-be/internal/entity"

	"github.com/google/uuid"
)

type PaperCitationRepository interface {
	CreateBulk(ctx context.Context, citations []*entity.PaperCitation) error
	FindAllBySolutionId(ctx context.Context, solutionId uuid.UUID) ([]*entity.PaperCitation, error)
}
