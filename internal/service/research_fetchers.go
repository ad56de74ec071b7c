package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/workflow"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const paperCacheTTL = 1 * time.Hour

// paperFetcher resolves referenced papers for the paper stage, with a
// Redis read-through cache since the same papers tend to be referenced
// across consecutive runs.
type paperFetcher struct {
	uowFactory unitofwork.RepositoryFactory
	rdb        *redis.Client
}

func NewPaperFetcher(uowFactory unitofwork.RepositoryFactory, rdb *redis.Client) workflow.PaperFetcher {
	return &paperFetcher{
		uowFactory: uowFactory,
		rdb:        rdb,
	}
}

func (f *paperFetcher) FetchPaper(ctx context.Context, id string) (map[string]interface{}, error) {
	cacheKey := "paper:" + id

	if f.rdb != nil {
		if cached, err := f.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var doc map[string]interface{}
			if err := json.Unmarshal([]byte(cached), &doc); err == nil {
				return doc, nil
			}
		}
	}

	paperId, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid paper id %q: %w", id, err)
	}

	uow := f.uowFactory.NewUnitOfWork(ctx)
	paper, err := uow.PaperRepository().FindOne(ctx, specification.ByID{ID: paperId})
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, nil
	}

	doc := map[string]interface{}{
		"paper_id": paper.Id.String(),
		"title":    paper.Title,
		"content":  paper.Content,
		"authors":  paper.Authors,
		"metadata": paper.Metadata,
	}

	if f.rdb != nil {
		if data, err := json.Marshal(doc); err == nil {
			if err := f.rdb.Set(ctx, cacheKey, data, paperCacheTTL).Err(); err != nil {
				log.Printf("[WARN] Failed to cache paper %s: %v", id, err)
			}
		}
	}

	return doc, nil
}

// solutionFetcher resolves prior solutions for the example stage.
type solutionFetcher struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSolutionFetcher(uowFactory unitofwork.RepositoryFactory) workflow.SolutionFetcher {
	return &solutionFetcher{uowFactory: uowFactory}
}

func (f *solutionFetcher) FetchSolution(ctx context.Context, id string) (map[string]interface{}, error) {
	solutionId, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid solution id %q: %w", id, err)
	}

	uow := f.uowFactory.NewUnitOfWork(ctx)
	solution, err := uow.SolutionRepository().FindOne(ctx, specification.ByID{ID: solutionId})
	if err != nil {
		return nil, err
	}
	if solution == nil {
		// Missing examples are skipped, not fatal
		return nil, nil
	}

	return map[string]interface{}{
		"solution_id": solution.Id.String(),
		"query":       solution.Query,
		"content":     solution.Content,
		"image_url":   solution.ImageURL,
	}, nil
}
