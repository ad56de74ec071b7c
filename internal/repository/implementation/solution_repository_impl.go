package implementation

import (
	"context"
	"errors"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/mapper"
	"ai-research-be/internal/model"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SolutionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SolutionMapper
}

func NewSolutionRepository(db *gorm.DB) contract.SolutionRepository {
	return &SolutionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSolutionMapper(),
	}
}

func (r *SolutionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SolutionRepositoryImpl) Create(ctx context.Context, solution *entity.Solution) error {
	m := r.mapper.ToModel(solution)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*solution = *r.mapper.ToEntity(m)
	return nil
}

func (r *SolutionRepositoryImpl) CreateBulk(ctx context.Context, solutions []*entity.Solution) error {
	models := make([]*model.Solution, len(solutions))
	for i, s := range solutions {
		models[i] = r.mapper.ToModel(s)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update generated IDs back to entities
	for i, m := range models {
		*solutions[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *SolutionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Solution{}, id).Error
}

func (r *SolutionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Solution, error) {
	var m model.Solution
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SolutionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Solution, error) {
	var models []*model.Solution
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SolutionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Solution{}).Count(&count).Error
	return count, err
}
