package workflow

import "github.com/google/uuid"

// Stage identifies one node of the research pipeline.
type Stage int

const (
	StageRetrieve Stage = iota
	StagePaper
	StageExample
	StageDomainExpert
	StageInterdisciplinary
	StageEvaluation
	StageDrawing
	StagePersist
	StageDone
)

// String returns the wire name used in node_complete events.
func (s Stage) String() string {
	switch s {
	case StageRetrieve:
		return "rag"
	case StagePaper:
		return "paper"
	case StageExample:
		return "example"
	case StageDomainExpert:
		return "domain_expert"
	case StageInterdisciplinary:
		return "interdisciplinary"
	case StageEvaluation:
		return "evaluation"
	case StageDrawing:
		return "drawing"
	case StagePersist:
		return "persistence"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// UserContext carries the identity of the requesting user through a run.
type UserContext struct {
	Id       uuid.UUID
	UserType string
}

// RunState is the mutable record threaded through one pipeline run. It is
// owned by exactly one run and never shared across runs.
type RunState struct {
	User UserContext

	// Run flags
	WithPaper   bool
	WithExample bool
	IsDrawing   bool

	// Input
	Query         string
	QueryAnalysis map[string]interface{}
	PaperIds      []string
	ExampleIds    []string

	// Accumulated output
	DomainKnowledge  map[string]interface{}
	InitSolution     map[string]interface{}
	IteratedSolution map[string]interface{}
	FinalSolution    map[string]interface{}

	// Progress tracking
	Progress int
	Status   string

	// Structural error recorded by a stage that degraded instead of failing
	Err string
}

// Next evaluates the transition table. Branches are deterministic and
// first-match-wins: the paper branch takes priority over example when both
// flags are set.
func Next(current Stage, state *RunState) Stage {
	switch current {
	case StageRetrieve:
		if state.WithPaper {
			return StagePaper
		}
		if state.WithExample {
			return StageExample
		}
		return StageDomainExpert
	case StagePaper, StageExample:
		return StageDomainExpert
	case StageDomainExpert:
		return StageInterdisciplinary
	case StageInterdisciplinary:
		return StageEvaluation
	case StageEvaluation:
		if state.IsDrawing {
			return StageDrawing
		}
		return StagePersist
	case StageDrawing:
		return StagePersist
	case StagePersist:
		return StageDone
	}
	return StageDone
}
