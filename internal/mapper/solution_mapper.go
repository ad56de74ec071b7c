package mapper

import (
	"encoding/json"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"

	"gorm.io/datatypes"
)

type SolutionMapper struct{}

func NewSolutionMapper() *SolutionMapper {
	return &SolutionMapper{}
}

func (m *SolutionMapper) ToEntity(s *model.Solution) *entity.Solution {
	if s == nil {
		return nil
	}

	var analysis map[string]interface{}
	if len(s.QueryAnalysis) > 0 {
		_ = json.Unmarshal(s.QueryAnalysis, &analysis)
	}

	var content map[string]interface{}
	if len(s.Content) > 0 {
		_ = json.Unmarshal(s.Content, &content)
	}

	return &entity.Solution{
		Id:            s.Id,
		UserId:        s.UserId,
		Query:         s.Query,
		QueryAnalysis: analysis,
		Content:       content,
		ImageURL:      s.ImageURL,
		ImageName:     s.ImageName,
		CreatedAt:     s.CreatedAt,
	}
}

func (m *SolutionMapper) ToModel(s *entity.Solution) *model.Solution {
	if s == nil {
		return nil
	}

	var analysis datatypes.JSON
	if s.QueryAnalysis != nil {
		if raw, err := json.Marshal(s.QueryAnalysis); err == nil {
			analysis = raw
		}
	}

	var content datatypes.JSON
	if s.Content != nil {
		if raw, err := json.Marshal(s.Content); err == nil {
			content = raw
		}
	}

	return &model.Solution{
		Id:            s.Id,
		UserId:        s.UserId,
		Query:         s.Query,
		QueryAnalysis: analysis,
		Content:       content,
		ImageURL:      s.ImageURL,
		ImageName:     s.ImageName,
		CreatedAt:     s.CreatedAt,
	}
}

func (m *SolutionMapper) ToEntities(solutions []*model.Solution) []*entity.Solution {
	entities := make([]*entity.Solution, len(solutions))
	for i, s := range solutions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
