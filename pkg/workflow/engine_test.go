package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/retrieval"
	"ai-research-be/pkg/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRetriever struct {
	hits []*retrieval.Hit
	err  error
}

func (f *fakeRetriever) Fuse(ctx context.Context, query string, requirements []string, limit int) ([]*retrieval.Hit, error) {
	return f.hits, f.err
}

type fakePaperFetcher struct {
	calls int32
}

func (f *fakePaperFetcher) FetchPaper(ctx context.Context, id string) (map[string]interface{}, error) {
	atomic.AddInt32(&f.calls, 1)
	return map[string]interface{}{"title": "paper " + id}, nil
}

type fakeSolutionFetcher struct {
	calls int32
}

func (f *fakeSolutionFetcher) FetchSolution(ctx context.Context, id string) (map[string]interface{}, error) {
	atomic.AddInt32(&f.calls, 1)
	return map[string]interface{}{"content": "solution " + id}, nil
}

type fakeImages struct {
	failIndex int // 0-based call index that fails, -1 for none
	calls     int
}

func (f *fakeImages) Synthesize(ctx context.Context, targetUser, technicalMethod, possibleResults, userType string) (string, string, error) {
	idx := f.calls
	f.calls++
	if idx == f.failIndex {
		return "", "", errors.New("image backend rejected prompt")
	}
	return fmt.Sprintf("https://img.test/%d.png", idx), fmt.Sprintf("%d.png", idx), nil
}

type fakePersister struct {
	canonical map[string]interface{}
	err       error
	called    bool
}

func (f *fakePersister) Persist(ctx context.Context, state *RunState) (map[string]interface{}, error) {
	f.called = true
	return f.canonical, f.err
}

// fakeModel replays canned responses, streaming each in two chunks.
type fakeModel struct {
	responses []string
	call      int
	err       error
}

func (f *fakeModel) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	resp, err := f.next()
	return resp, err
}

func (f *fakeModel) ChatStream(ctx context.Context, history []llm.Message, onChunk llm.ChunkHandler, opts ...llm.Option) (string, error) {
	resp, err := f.next()
	if err != nil {
		return "", err
	}
	half := len(resp) / 2
	for _, part := range []string{resp[:half], resp[half:]} {
		if part == "" {
			continue
		}
		if err := onChunk(part); err != nil {
			return "", err
		}
	}
	return resp, nil
}

func (f *fakeModel) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (f *fakeModel) next() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.call >= len(f.responses) {
		return "{}", nil
	}
	resp := f.responses[f.call]
	f.call++
	return resp, nil
}

// --- harness ---

type harness struct {
	engine    *Engine
	retriever *fakeRetriever
	papers    *fakePaperFetcher
	examples  *fakeSolutionFetcher
	images    *fakeImages
	persister *fakePersister
}

func newHarness() *harness {
	h := &harness{
		retriever: &fakeRetriever{hits: []*retrieval.Hit{{DocID: "d1", FinalScore: 42}}},
		papers:    &fakePaperFetcher{},
		examples:  &fakeSolutionFetcher{},
		images:    &fakeImages{failIndex: -1},
		persister: &fakePersister{},
	}
	h.engine = NewEngine(EngineConfig{
		Retriever: h.retriever,
		Papers:    h.papers,
		Examples:  h.examples,
		Images:    h.images,
		Persister: h.persister,
		Prompts: Prompts{
			DomainExpert:      "domain prompt",
			Interdisciplinary: "interdisciplinary prompt",
			Evaluation:        "evaluation prompt",
		},
	})
	return h
}

func runAndCollect(t *testing.T, h *harness, model llm.LLMProvider, state *RunState) []stream.Event {
	t.Helper()
	st := stream.New(context.Background())
	st.Run(func(ctx context.Context) error {
		return h.engine.Run(ctx, model, state, st)
	})

	var events []stream.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-st.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out draining run events")
		}
	}
}

func progressValues(events []stream.Event) []int {
	var values []int
	for _, ev := range events {
		if ev.Type == stream.EventProgress {
			values = append(values, ev.Data.(int))
		}
	}
	return values
}

func nodeSequence(events []stream.Event) []string {
	var nodes []string
	for _, ev := range events {
		if ev.Type != stream.EventNodeComplete {
			continue
		}
		payload := ev.Data.(map[string]interface{})
		nodes = append(nodes, payload["node"].(string))
	}
	return nodes
}

// --- tests ---

func TestRun_BasicScenario(t *testing.T) {
	h := newHarness()
	model := &fakeModel{responses: []string{
		`{"analysis": "initial"}`,
		`{"analysis": "refined"}`,
		`{"solutions": [{"Technical Method": "compostable film", "Possible Results": "less waste"}]}`,
	}}
	state := &RunState{Query: "sustainable packaging"}

	events := runAndCollect(t, h, model, state)

	assert.Equal(t, []string{"rag", "domain_expert", "interdisciplinary", "evaluation", "persistence"}, nodeSequence(events))
	assert.Equal(t, []int{30, 60, 70, 80, 100}, progressValues(events))

	last := events[len(events)-1]
	assert.Equal(t, stream.EventEnd, last.Type)
	assert.Equal(t, stream.EndData, last.Data)

	assert.True(t, h.persister.called)
	assert.Zero(t, h.images.calls)
}

func TestRun_PaperBranchWinsOverExample(t *testing.T) {
	h := newHarness()
	model := &fakeModel{}
	state := &RunState{
		Query:       "q",
		WithPaper:   true,
		WithExample: true,
		PaperIds:    []string{"p1", "p2"},
		ExampleIds:  []string{"e1"},
	}

	runAndCollect(t, h, model, state)

	assert.Equal(t, int32(2), atomic.LoadInt32(&h.papers.calls))
	assert.Zero(t, atomic.LoadInt32(&h.examples.calls))
}

func TestRun_ExampleBranchAppendsToRetrievedHits(t *testing.T) {
	h := newHarness()
	model := &fakeModel{}
	state := &RunState{
		Query:       "q",
		WithExample: true,
		ExampleIds:  []string{"e1", "e2"},
	}

	runAndCollect(t, h, model, state)

	hits := state.DomainKnowledge["hits"].([]interface{})
	// 1 retrieved hit plus 2 example solutions
	assert.Len(t, hits, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(&h.examples.calls))
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	h := newHarness()
	model := &fakeModel{responses: []string{
		`{}`,
		`{}`,
		`{"solutions": [{"Technical Method": "a"}, {"Technical Method": "b"}, {"Technical Method": "c"}]}`,
	}}
	state := &RunState{Query: "q", IsDrawing: true}

	events := runAndCollect(t, h, model, state)

	values := progressValues(events)
	require.NotEmpty(t, values)
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1], "progress went backwards at index %d: %v", i, values)
	}
	assert.Equal(t, 100, values[len(values)-1])
}

func TestRun_ImageFailureIsIsolatedPerCandidate(t *testing.T) {
	h := newHarness()
	h.images.failIndex = 1
	model := &fakeModel{responses: []string{
		`{}`,
		`{}`,
		`{"solutions": [{"Technical Method": "a"}, {"Technical Method": "b"}, {"Technical Method": "c"}]}`,
	}}
	state := &RunState{Query: "q", IsDrawing: true}

	events := runAndCollect(t, h, model, state)

	solutions := state.FinalSolution["solutions"].([]interface{})
	require.Len(t, solutions, 3)

	withImage := 0
	for _, s := range solutions {
		if _, ok := s.(map[string]interface{})["image_url"]; ok {
			withImage++
		}
	}
	assert.Equal(t, 2, withImage)

	// The run still persists and terminates normally
	assert.True(t, h.persister.called)
	assert.Equal(t, stream.EventEnd, events[len(events)-1].Type)
	for _, ev := range events {
		assert.NotEqual(t, stream.EventError, ev.Type)
	}
}

func TestRun_DrawingAbortsOnStructurallyInvalidSolution(t *testing.T) {
	h := newHarness()
	model := &fakeModel{responses: []string{
		`{}`,
		`{}`,
		"plain prose with no solutions at all",
	}}
	state := &RunState{Query: "q", IsDrawing: true}

	events := runAndCollect(t, h, model, state)

	assert.Equal(t, "final_solution error", state.Err)
	assert.Zero(t, h.images.calls)
	assert.Contains(t, progressValues(events), 85)

	var statuses []string
	for _, ev := range events {
		if ev.Type == stream.EventStatus {
			statuses = append(statuses, ev.Data.(string))
		}
	}
	assert.Contains(t, statuses, "Image generation failed")

	// Degraded, not fatal: persistence still runs and the run ends cleanly
	assert.True(t, h.persister.called)
	assert.Equal(t, stream.EventEnd, events[len(events)-1].Type)
}

func TestRun_StageErrorEmitsSingleErrorThenEnd(t *testing.T) {
	h := newHarness()
	h.retriever.err = errors.New("both indices unreachable")
	model := &fakeModel{}
	state := &RunState{Query: "q"}

	events := runAndCollect(t, h, model, state)

	require.Len(t, events, 2)
	assert.Equal(t, stream.EventError, events[0].Type)
	assert.Contains(t, events[0].Data.(string), "both indices unreachable")
	assert.Equal(t, stream.EventEnd, events[1].Type)
	assert.False(t, h.persister.called)
}

func TestRun_PersistenceFailureDegradesToInMemoryPayload(t *testing.T) {
	h := newHarness()
	h.persister.err = errors.New("db down")
	model := &fakeModel{responses: []string{
		`{}`,
		`{}`,
		`{"solutions": [{"Technical Method": "a"}]}`,
	}}
	state := &RunState{Query: "q"}

	events := runAndCollect(t, h, model, state)

	nodes := nodeSequence(events)
	assert.Contains(t, nodes, "persistence")

	// No error event, the pre-persistence payload is streamed instead
	for _, ev := range events {
		assert.NotEqual(t, stream.EventError, ev.Type)
	}
	assert.Contains(t, state.FinalSolution, "solutions")
	assert.Equal(t, 100, state.Progress)
}

func TestRun_PersistenceSubstitutesCanonicalRecords(t *testing.T) {
	h := newHarness()
	h.persister.canonical = map[string]interface{}{
		"solutions": []interface{}{map[string]interface{}{"id": "persisted-1"}},
	}
	model := &fakeModel{responses: []string{`{}`, `{}`, `{"solutions": [{"Technical Method": "a"}]}`}}
	state := &RunState{Query: "q"}

	runAndCollect(t, h, model, state)

	solutions := state.FinalSolution["solutions"].([]interface{})
	require.Len(t, solutions, 1)
	assert.Equal(t, "persisted-1", solutions[0].(map[string]interface{})["id"])
}

func TestRun_ChunkEventsCarryText(t *testing.T) {
	h := newHarness()
	model := &fakeModel{responses: []string{`{"analysis": "x"}`}}
	state := &RunState{Query: "q"}

	events := runAndCollect(t, h, model, state)

	sawChunk := false
	for _, ev := range events {
		if ev.Type != stream.EventChunk {
			continue
		}
		sawChunk = true
		payload, ok := ev.Data.(map[string]interface{})
		require.True(t, ok)
		assert.NotEmpty(t, payload["text"])
	}
	assert.True(t, sawChunk)
}

func TestRun_CancellationStopsPipeline(t *testing.T) {
	h := newHarness()

	st := stream.New(context.Background())
	blocked := make(chan struct{})
	model := &blockingModel{entered: blocked}
	state := &RunState{Query: "q"}

	st.Run(func(ctx context.Context) error {
		return h.engine.Run(ctx, model, state, st)
	})

	// Drain until the model stage is reached, then disconnect
	go func() {
		<-blocked
		st.Cancel()
	}()

	var events []stream.Event
	timeout := time.After(5 * time.Second)
drain:
	for {
		select {
		case ev, ok := <-st.Events():
			if !ok {
				break drain
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("cancellation did not unwind the run")
		}
	}

	// Cancellation is not an error and persistence never runs
	for _, ev := range events {
		assert.NotEqual(t, stream.EventError, ev.Type)
	}
	assert.False(t, h.persister.called)
	assert.Equal(t, stream.EventEnd, events[len(events)-1].Type)
}

// blockingModel blocks in ChatStream until its context is canceled.
type blockingModel struct {
	entered chan struct{}
	once    bool
}

func (b *blockingModel) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return "", ctx.Err()
}

func (b *blockingModel) ChatStream(ctx context.Context, history []llm.Message, onChunk llm.ChunkHandler, opts ...llm.Option) (string, error) {
	if !b.once {
		b.once = true
		close(b.entered)
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func (b *blockingModel) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return "", ctx.Err()
}
