package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/events"
	pkgNats "ai-research-be/pkg/nats"
	"ai-research-be/pkg/retrieval"
	"ai-research-be/pkg/workflow"

	"github.com/google/uuid"
)

// solutionPersister implements the workflow persistence stage: it writes
// every candidate solution as its own record, links citations to the
// grounding papers and returns the canonical read-back payload.
type solutionPersister struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pkgNats.Publisher
}

func NewSolutionPersister(uowFactory unitofwork.RepositoryFactory, eventPublisher *pkgNats.Publisher) workflow.Persister {
	return &solutionPersister{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (p *solutionPersister) Persist(ctx context.Context, state *workflow.RunState) (map[string]interface{}, error) {
	candidates := candidatePayloads(state.FinalSolution)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("final solution carries no candidates")
	}

	now := time.Now()
	solutions := make([]*entity.Solution, len(candidates))
	for i, candidate := range candidates {
		solutions[i] = &entity.Solution{
			Id:            uuid.New(),
			UserId:        state.User.Id,
			Query:         state.Query,
			QueryAnalysis: state.QueryAnalysis,
			Content:       candidate,
			ImageURL:      stringValue(candidate["image_url"]),
			ImageName:     stringValue(candidate["image_name"]),
			CreatedAt:     now,
		}
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SolutionRepository().CreateBulk(ctx, solutions); err != nil {
		return nil, err
	}

	paperIds := citedPaperIds(state.DomainKnowledge)
	if len(paperIds) > 0 {
		var citations []*entity.PaperCitation
		for _, solution := range solutions {
			for _, paperId := range paperIds {
				citations = append(citations, &entity.PaperCitation{
					Id:         uuid.New(),
					SolutionId: solution.Id,
					PaperId:    paperId,
					CreatedAt:  now,
				})
			}
		}
		if err := uow.PaperCitationRepository().CreateBulk(ctx, citations); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Read back so the caller receives identity-bearing records
	ids := make([]uuid.UUID, len(solutions))
	for i, s := range solutions {
		ids[i] = s.Id
	}
	persisted, err := uow.SolutionRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}

	canonical := make([]interface{}, len(persisted))
	for i, s := range persisted {
		canonical[i] = map[string]interface{}{
			"id":         s.Id.String(),
			"query":      s.Query,
			"content":    s.Content,
			"image_url":  s.ImageURL,
			"image_name": s.ImageName,
			"created_at": s.CreatedAt,
		}
	}

	p.publishCreated(ctx, state, ids)

	result := make(map[string]interface{}, len(state.FinalSolution))
	for k, v := range state.FinalSolution {
		result[k] = v
	}
	result["solutions"] = canonical
	return result, nil
}

// publishCreated notifies downstream consumers. Auxiliary, never fails the run.
func (p *solutionPersister) publishCreated(ctx context.Context, state *workflow.RunState, ids []uuid.UUID) {
	if p.eventPublisher == nil {
		return
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	evt := events.BaseEvent{
		Type: "SOLUTION_CREATED",
		Data: map[string]interface{}{
			"solution_ids": idStrings,
			"user_id":      state.User.Id,
			"query":        state.Query,
		},
		OccurredAt: time.Now(),
	}
	if err := p.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish SOLUTION_CREATED event: %v", err)
	}
}

func candidatePayloads(finalSolution map[string]interface{}) []map[string]interface{} {
	if finalSolution == nil {
		return nil
	}
	raw, ok := finalSolution["solutions"].([]interface{})
	if !ok {
		// Unstructured model output still gets persisted as one record
		return []map[string]interface{}{finalSolution}
	}
	candidates := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			candidates = append(candidates, m)
		}
	}
	return candidates
}

// citedPaperIds extracts the paper ids consulted during grounding. Hits
// from the example stage carry solution ids and are skipped.
func citedPaperIds(domainKnowledge map[string]interface{}) []uuid.UUID {
	if domainKnowledge == nil {
		return nil
	}
	raw, ok := domainKnowledge["hits"].([]interface{})
	if !ok {
		return nil
	}

	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, item := range raw {
		var candidate string
		switch hit := item.(type) {
		case *retrieval.Hit:
			candidate = hit.DocID
		case map[string]interface{}:
			candidate = stringValue(hit["paper_id"])
		}
		if candidate == "" {
			continue
		}
		id, err := uuid.Parse(candidate)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
