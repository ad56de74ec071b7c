package workflow

import (
	"context"

	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/retrieval"
	"ai-research-be/pkg/stream"
)

// Retriever grounds a run with fused keyword/vector hits.
type Retriever interface {
	Fuse(ctx context.Context, query string, requirements []string, limit int) ([]*retrieval.Hit, error)
}

// PaperFetcher resolves a referenced paper by id.
type PaperFetcher interface {
	FetchPaper(ctx context.Context, id string) (map[string]interface{}, error)
}

// SolutionFetcher resolves a previously persisted solution by id.
type SolutionFetcher interface {
	FetchSolution(ctx context.Context, id string) (map[string]interface{}, error)
}

// ImageSynthesizer generates and stores one illustration, returning a
// durable URL and object name.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, targetUser, technicalMethod, possibleResults, userType string) (url string, name string, err error)
}

// Persister durably writes the final solution with citation links and
// returns the canonical read-back payload.
type Persister interface {
	Persist(ctx context.Context, state *RunState) (map[string]interface{}, error)
}

// Prompts are the system prompts of the generative stages.
type Prompts struct {
	DomainExpert      string
	Interdisciplinary string
	Evaluation        string
}

// Engine drives the research pipeline as an explicit state machine. All
// collaborators are long-lived and safe for concurrent use; per-run state
// lives entirely in RunState.
type Engine struct {
	retriever Retriever
	papers    PaperFetcher
	examples  SolutionFetcher
	images    ImageSynthesizer
	persister Persister
	prompts   Prompts

	retrievalLimit int
	fetchLimit     int
}

type EngineConfig struct {
	Retriever Retriever
	Papers    PaperFetcher
	Examples  SolutionFetcher
	Images    ImageSynthesizer
	Persister Persister
	Prompts   Prompts

	// RetrievalLimit caps fused hits per run, default 10.
	RetrievalLimit int
	// FetchLimit bounds concurrent id lookups in the paper and example
	// stages, default 4.
	FetchLimit int
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.RetrievalLimit <= 0 {
		cfg.RetrievalLimit = 10
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 4
	}
	return &Engine{
		retriever:      cfg.Retriever,
		papers:         cfg.Papers,
		examples:       cfg.Examples,
		images:         cfg.Images,
		persister:      cfg.Persister,
		prompts:        cfg.Prompts,
		retrievalLimit: cfg.RetrievalLimit,
		fetchLimit:     cfg.FetchLimit,
	}
}

// Run executes the pipeline for one request. The model is per-run because
// it is built from the requesting user's credentials. Errors bubble up to
// the caller, which converts them into a single error event.
func (e *Engine) Run(ctx context.Context, model llm.LLMProvider, state *RunState, st *stream.Stream) error {
	stage := StageRetrieve
	for stage != StageDone {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.execute(ctx, stage, model, state, st); err != nil {
			return err
		}

		if err := st.PublishProgress(state.Progress); err != nil {
			return err
		}
		if err := st.PublishStatus(state.Status); err != nil {
			return err
		}

		stage = Next(stage, state)
	}
	return nil
}

func (e *Engine) execute(ctx context.Context, stage Stage, model llm.LLMProvider, state *RunState, st *stream.Stream) error {
	switch stage {
	case StageRetrieve:
		return e.retrieveStage(ctx, state, st)
	case StagePaper:
		return e.paperStage(ctx, state)
	case StageExample:
		return e.exampleStage(ctx, state)
	case StageDomainExpert:
		return e.domainExpertStage(ctx, model, state, st)
	case StageInterdisciplinary:
		return e.interdisciplinaryStage(ctx, model, state, st)
	case StageEvaluation:
		return e.evaluationStage(ctx, model, state, st)
	case StageDrawing:
		return e.drawingStage(ctx, state, st)
	case StagePersist:
		return e.persistStage(ctx, state, st)
	}
	return nil
}
