package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/search/meili"

	"github.com/google/uuid"
)

type IPaperService interface {
	Ingest(ctx context.Context, req *dto.IngestPaperRequest) (*dto.IngestPaperResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.GetPaperResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeletePaperResponse, error)
}

type paperService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	searchClient     *meili.Client
}

func NewPaperService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	searchClient *meili.Client,
) IPaperService {
	return &paperService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		searchClient:     searchClient,
	}
}

func (s *paperService) Ingest(ctx context.Context, req *dto.IngestPaperRequest) (*dto.IngestPaperResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	paper := entity.Paper{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		Authors:   strings.Join(req.Authors, ", "),
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
	}

	if err := uow.PaperRepository().Create(ctx, &paper); err != nil {
		return nil, err
	}

	// Embedding happens asynchronously in the ingest consumer
	msgPayload := dto.PublishEmbedPaperMessage{
		PaperId: paper.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.IngestPaperResponse{
		Id: paper.Id,
	}, nil
}

func (s *paperService) Show(ctx context.Context, id uuid.UUID) (*dto.GetPaperResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	paper, err := uow.PaperRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, nil
	}

	return &dto.GetPaperResponse{
		Id:        paper.Id,
		Title:     paper.Title,
		Content:   paper.Content,
		Authors:   splitAuthors(paper.Authors),
		Metadata:  paper.Metadata,
		CreatedAt: paper.CreatedAt,
	}, nil
}

func (s *paperService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeletePaperResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	paper, err := uow.PaperRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, fmt.Errorf("paper not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.PaperEmbeddingRepository().DeleteByPaperId(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.PaperRepository().Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if err := s.searchClient.DeleteDocument(ctx, id.String()); err != nil {
		// Search index cleanup is best effort, the row is already gone
		fmt.Printf("[WARN] Failed to remove paper %s from search index: %v\n", id, err)
	}

	return &dto.DeletePaperResponse{Id: id}, nil
}

func splitAuthors(authors string) []string {
	if authors == "" {
		return nil
	}
	parts := strings.Split(authors, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
