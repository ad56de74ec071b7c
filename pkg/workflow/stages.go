package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/stream"

	"golang.org/x/sync/errgroup"
)

func (e *Engine) retrieveStage(ctx context.Context, state *RunState, st *stream.Stream) error {
	hits, err := e.retriever.Fuse(ctx, state.Query, requirementList(state.QueryAnalysis), e.retrievalLimit)
	if err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}

	hitList := make([]interface{}, len(hits))
	for i, h := range hits {
		hitList[i] = h
	}

	state.DomainKnowledge = map[string]interface{}{"hits": hitList}
	state.Progress = 30
	state.Status = "RAG search completed"

	return st.PublishNodeComplete(StageRetrieve.String(), state.DomainKnowledge)
}

func (e *Engine) paperStage(ctx context.Context, state *RunState) error {
	hits := make([]interface{}, len(state.PaperIds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fetchLimit)
	for i, id := range state.PaperIds {
		g.Go(func() error {
			paper, err := e.papers.FetchPaper(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch paper %s: %w", id, err)
			}
			hits[i] = map[string]interface{}{
				"paper_id": id,
				"content":  paper,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	state.DomainKnowledge = map[string]interface{}{"hits": hits}
	state.Progress = 35
	state.Status = "Paper processing completed"
	return nil
}

func (e *Engine) exampleStage(ctx context.Context, state *RunState) error {
	fetched := make([]map[string]interface{}, len(state.ExampleIds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fetchLimit)
	for i, id := range state.ExampleIds {
		g.Go(func() error {
			solution, err := e.examples.FetchSolution(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch solution %s: %w", id, err)
			}
			fetched[i] = solution
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	existing := existingHits(state.DomainKnowledge)
	for i, solution := range fetched {
		if solution == nil {
			continue
		}
		existing = append(existing, map[string]interface{}{
			"solution_id": state.ExampleIds[i],
			"content":     solution,
		})
	}

	state.DomainKnowledge = map[string]interface{}{"hits": existing}
	state.Progress = 35
	state.Status = "Example solutions added"
	return nil
}

func (e *Engine) domainExpertStage(ctx context.Context, model llm.LLMProvider, state *RunState, st *stream.Stream) error {
	userPrompt := fmt.Sprintf("query: %s\nDomain Knowledge: %s",
		state.Query, asJSON(state.DomainKnowledge))

	response, err := e.streamChat(ctx, model, e.prompts.DomainExpert, userPrompt, st)
	if err != nil {
		return fmt.Errorf("domain expert: %w", err)
	}

	state.InitSolution = ParseModelOutput(response)
	state.Progress = 60
	state.Status = "Domain analysis completed"

	return st.PublishNodeComplete(StageDomainExpert.String(), state.InitSolution)
}

func (e *Engine) interdisciplinaryStage(ctx context.Context, model llm.LLMProvider, state *RunState, st *stream.Stream) error {
	userPrompt := fmt.Sprintf("query: %s\nDomain Knowledge: %s\nInitial Solution: %s",
		state.Query, asJSON(state.DomainKnowledge), asJSON(state.InitSolution))

	response, err := e.streamChat(ctx, model, e.prompts.Interdisciplinary, userPrompt, st)
	if err != nil {
		return fmt.Errorf("interdisciplinary: %w", err)
	}

	state.IteratedSolution = ParseModelOutput(response)
	state.Progress = 70
	state.Status = "Interdisciplinary analysis completed"

	return st.PublishNodeComplete(StageInterdisciplinary.String(), state.IteratedSolution)
}

func (e *Engine) evaluationStage(ctx context.Context, model llm.LLMProvider, state *RunState, st *stream.Stream) error {
	userPrompt := fmt.Sprintf("query: %s\nDomain Knowledge: %s\nInitial Solution: %s\nIterated Solution: %s",
		state.Query, asJSON(state.DomainKnowledge), asJSON(state.InitSolution), asJSON(state.IteratedSolution))

	response, err := e.streamChat(ctx, model, e.prompts.Evaluation, userPrompt, st)
	if err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}

	state.FinalSolution = ParseModelOutput(response)
	state.Progress = 80
	state.Status = "Solution evaluation completed"

	return st.PublishNodeComplete(StageEvaluation.String(), state.FinalSolution)
}

// drawingStage attaches an image to each candidate solution. A failure on
// one candidate is skipped, the run keeps going. A structurally invalid
// final solution aborts the stage early without failing the run.
func (e *Engine) drawingStage(ctx context.Context, state *RunState, st *stream.Stream) error {
	solutions, ok := candidateSolutions(state.FinalSolution)
	if !ok {
		state.Err = "final_solution error"
		state.Progress = 85
		state.Status = "Image generation failed"
		return nil
	}

	targetUser := stringField(state.QueryAnalysis, "Target User", "null")
	total := len(solutions)

	for i, candidate := range solutions {
		current := 80 + float64(i+1)*10/float64(total)
		if err := st.PublishProgress(int(current)); err != nil {
			return err
		}
		if err := st.PublishStatus(fmt.Sprintf("Generating image %d/%d...", i+1, total)); err != nil {
			return err
		}

		technicalMethod := stringField(candidate, "Technical Method", "")
		possibleResults := stringField(candidate, "Possible Results", "")

		url, name, err := e.images.Synthesize(ctx, targetUser, technicalMethod, possibleResults, state.User.UserType)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Per-item isolation: this candidate ships without an image
			continue
		}
		candidate["image_url"] = url
		candidate["image_name"] = name
	}

	state.Progress = 90
	state.Status = "Image generation completed"

	return st.PublishNodeComplete(StageDrawing.String(), state.FinalSolution)
}

// persistStage writes the final solution and substitutes the canonical
// read-back records. Write failures degrade to the in-memory payload.
func (e *Engine) persistStage(ctx context.Context, state *RunState, st *stream.Stream) error {
	canonical, err := e.persister.Persist(ctx, state)
	if err == nil && canonical != nil {
		state.FinalSolution = canonical
	}

	state.Progress = 100
	state.Status = "Task completed"

	return st.PublishNodeComplete(StagePersist.String(), state.FinalSolution)
}

func (e *Engine) streamChat(ctx context.Context, model llm.LLMProvider, systemPrompt, userPrompt string, st *stream.Stream) (string, error) {
	history := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
	return model.ChatStream(ctx, history, func(chunk string) error {
		return st.PublishChunk(chunk)
	})
}

// --- helpers ---

func asJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// requirementList tolerates the loose shapes a query-analysis object can
// carry for its Requirement field.
func requirementList(qa map[string]interface{}) []string {
	if qa == nil {
		return nil
	}
	switch v := qa["Requirement"].(type) {
	case []string:
		return v
	case []interface{}:
		reqs := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				reqs = append(reqs, s)
			}
		}
		return reqs
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func existingHits(domainKnowledge map[string]interface{}) []interface{} {
	if domainKnowledge == nil {
		return nil
	}
	hits, _ := domainKnowledge["hits"].([]interface{})
	return hits
}

func candidateSolutions(finalSolution map[string]interface{}) ([]map[string]interface{}, bool) {
	if finalSolution == nil {
		return nil, false
	}
	raw, ok := finalSolution["solutions"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, false
	}
	solutions := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}
		solutions = append(solutions, m)
	}
	return solutions, true
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
