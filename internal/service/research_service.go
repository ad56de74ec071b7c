package service

import (
	"context"
	"fmt"

	"ai-research-be/internal/config"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/llm"
	llmfactory "ai-research-be/pkg/llm/factory"
	"ai-research-be/pkg/stream"
	"ai-research-be/pkg/workflow"

	"github.com/google/uuid"
)

type IResearchService interface {
	// StartResearch kicks off a workflow run and returns its event stream.
	// The run executes in the background; the caller drains the stream.
	StartResearch(ctx context.Context, user *entity.User, req *dto.StartResearchRequest) (*stream.Stream, error)

	ShowSolution(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.GetSolutionResponse, error)
	GetAllSolutions(ctx context.Context, userId uuid.UUID) (*dto.GetAllSolutionsResponse, error)
}

type researchService struct {
	engine     *workflow.Engine
	uowFactory unitofwork.RepositoryFactory
	aiConfig   config.AIConfig
	logger     logger.ILogger
}

func NewResearchService(
	engine *workflow.Engine,
	uowFactory unitofwork.RepositoryFactory,
	aiConfig config.AIConfig,
	logger logger.ILogger,
) IResearchService {
	return &researchService{
		engine:     engine,
		uowFactory: uowFactory,
		aiConfig:   aiConfig,
		logger:     logger,
	}
}

func (s *researchService) StartResearch(ctx context.Context, user *entity.User, req *dto.StartResearchRequest) (*stream.Stream, error) {
	model, err := s.buildModel(user)
	if err != nil {
		return nil, err
	}

	state := &workflow.RunState{
		User: workflow.UserContext{
			Id:       user.Id,
			UserType: user.UserType,
		},
		WithPaper:     req.WithPaper,
		WithExample:   req.WithExample,
		IsDrawing:     req.IsDrawing,
		Query:         req.Query,
		QueryAnalysis: req.QueryAnalysisResult,
		PaperIds:      idList(req.QueryAnalysisResult, "paper_ids"),
		ExampleIds:    idList(req.QueryAnalysisResult, "example_ids"),
		Status:        "Starting research workflow",
	}

	s.logger.Info("research_service", "starting research run", map[string]interface{}{
		"user_id":      user.Id,
		"with_paper":   req.WithPaper,
		"with_example": req.WithExample,
		"is_drawing":   req.IsDrawing,
	})

	st := stream.New(ctx)
	st.Run(func(runCtx context.Context) error {
		err := s.engine.Run(runCtx, model, state, st)
		if err != nil {
			s.logger.Error("research_service", "research run failed", map[string]interface{}{
				"user_id": user.Id,
				"error":   err.Error(),
			})
		}
		return err
	})
	return st, nil
}

// buildModel constructs the per-run model client. User credentials win;
// empty fields fall back to the configured default provider.
func (s *researchService) buildModel(user *entity.User) (llm.LLMProvider, error) {
	providerType := s.aiConfig.LLMProvider
	baseURL := s.aiConfig.LLMBaseURL
	modelName := s.aiConfig.LLMModel
	apiKey := s.aiConfig.LLMAPIKey

	if user.ApiUrl != "" {
		baseURL = user.ApiUrl
		providerType = "openai"
	}
	if user.ModelName != "" {
		modelName = user.ModelName
	}
	if user.ApiKey != "" {
		apiKey = user.ApiKey
		providerType = "openai"
	}

	model, err := llmfactory.NewLLMProvider(providerType, modelName, baseURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("build model client: %w", err)
	}
	return model, nil
}

func (s *researchService) ShowSolution(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.GetSolutionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	solution, err := uow.SolutionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if solution == nil {
		return nil, nil
	}

	citations, err := uow.PaperCitationRepository().FindAllBySolutionId(ctx, solution.Id)
	if err != nil {
		return nil, err
	}

	resp := solutionToDTO(solution)
	for _, c := range citations {
		title := ""
		if c.Paper != nil {
			title = c.Paper.Title
		}
		resp.Citations = append(resp.Citations, dto.SolutionCitationDTO{
			PaperId: c.PaperId,
			Title:   title,
		})
	}
	return resp, nil
}

func (s *researchService) GetAllSolutions(ctx context.Context, userId uuid.UUID) (*dto.GetAllSolutionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	solutions, err := uow.SolutionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	total, err := uow.SolutionRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	resp := &dto.GetAllSolutionsResponse{
		Solutions: make([]dto.GetSolutionResponse, len(solutions)),
		Total:     total,
	}
	for i, solution := range solutions {
		resp.Solutions[i] = *solutionToDTO(solution)
	}
	return resp, nil
}

func solutionToDTO(solution *entity.Solution) *dto.GetSolutionResponse {
	return &dto.GetSolutionResponse{
		Id:            solution.Id,
		Query:         solution.Query,
		QueryAnalysis: solution.QueryAnalysis,
		Content:       solution.Content,
		ImageURL:      solution.ImageURL,
		ImageName:     solution.ImageName,
		CreatedAt:     solution.CreatedAt,
	}
}

// idList reads a loosely typed id array out of the query-analysis object.
func idList(qa map[string]interface{}, key string) []string {
	if qa == nil {
		return nil
	}
	raw, ok := qa[key].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}
