package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext_PaperTakesPriorityOverExample(t *testing.T) {
	state := &RunState{WithPaper: true, WithExample: true}
	assert.Equal(t, StagePaper, Next(StageRetrieve, state))
}

func TestNext_ExampleBranchWhenPaperUnset(t *testing.T) {
	state := &RunState{WithExample: true}
	assert.Equal(t, StageExample, Next(StageRetrieve, state))
}

func TestNext_DirectToDomainExpertWithoutFlags(t *testing.T) {
	state := &RunState{}
	assert.Equal(t, StageDomainExpert, Next(StageRetrieve, state))
}

func TestNext_BothBranchesRejoinAtDomainExpert(t *testing.T) {
	state := &RunState{}
	assert.Equal(t, StageDomainExpert, Next(StagePaper, state))
	assert.Equal(t, StageDomainExpert, Next(StageExample, state))
}

func TestNext_DrawingBranch(t *testing.T) {
	drawing := &RunState{IsDrawing: true}
	assert.Equal(t, StageDrawing, Next(StageEvaluation, drawing))

	plain := &RunState{}
	assert.Equal(t, StagePersist, Next(StageEvaluation, plain))
}

func TestNext_LinearTail(t *testing.T) {
	state := &RunState{}
	assert.Equal(t, StageInterdisciplinary, Next(StageDomainExpert, state))
	assert.Equal(t, StageEvaluation, Next(StageInterdisciplinary, state))
	assert.Equal(t, StagePersist, Next(StageDrawing, state))
	assert.Equal(t, StageDone, Next(StagePersist, state))
}

func TestStage_WireNames(t *testing.T) {
	assert.Equal(t, "rag", StageRetrieve.String())
	assert.Equal(t, "domain_expert", StageDomainExpert.String())
	assert.Equal(t, "persistence", StagePersist.String())
}
