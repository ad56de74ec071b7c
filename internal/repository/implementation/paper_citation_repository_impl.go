package implementation

import (
	"context"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"
	"ai-research-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaperCitationRepositoryImpl struct {
	db *gorm.DB
}

func NewPaperCitationRepository(db *gorm.DB) contract.PaperCitationRepository {
	return &PaperCitationRepositoryImpl{db: db}
}

func (r *PaperCitationRepositoryImpl) CreateBulk(ctx context.Context, citations []*entity.PaperCitation) error {
	if len(citations) == 0 {
		return nil
	}

	models := make([]*model.PaperCitation, len(citations))
	for i, c := range citations {
		models[i] = &model.PaperCitation{
			Id:         c.Id,
			SolutionId: c.SolutionId,
			PaperId:    c.PaperId,
			CreatedAt:  c.CreatedAt,
		}
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		citations[i].Id = m.Id
		if citations[i].CreatedAt.IsZero() {
			citations[i].CreatedAt = time.Now()
		}
	}
	return nil
}

func (r *PaperCitationRepositoryImpl) FindAllBySolutionId(ctx context.Context, solutionId uuid.UUID) ([]*entity.PaperCitation, error) {
	var models []*model.PaperCitation
	err := r.db.WithContext(ctx).
		Preload("Paper").
		Where("solution_id = ?", solutionId).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	paperMapper := func(p *model.Paper) *entity.Paper {
		if p == nil {
			return nil
		}
		return &entity.Paper{Id: p.Id, Title: p.Title, Authors: p.Authors}
	}

	citations := make([]*entity.PaperCitation, len(models))
	for i, m := range models {
		citations[i] = &entity.PaperCitation{
			Id:         m.Id,
			SolutionId: m.SolutionId,
			PaperId:    m.PaperId,
			CreatedAt:  m.CreatedAt,
			Paper:      paperMapper(m.Paper),
		}
	}
	return citations, nil
}
