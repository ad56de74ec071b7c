package service

import (
	"testing"

	"ai-research-be/internal/config"
	"ai-research-be/internal/entity"
	"ai-research-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdList_ReadsLooselyTypedIds(t *testing.T) {
	qa := map[string]interface{}{
		"paper_ids": []interface{}{"a", "", "b", 42},
	}

	ids := idList(qa, "paper_ids")

	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestIdList_MissingKeyOrNilAnalysis(t *testing.T) {
	assert.Nil(t, idList(nil, "paper_ids"))
	assert.Nil(t, idList(map[string]interface{}{}, "paper_ids"))
	assert.Nil(t, idList(map[string]interface{}{"paper_ids": "not-a-list"}, "paper_ids"))
}

func TestBuildModel_UserCredentialsWin(t *testing.T) {
	svc := &researchService{
		aiConfig: config.AIConfig{
			LLMProvider: "ollama",
			LLMBaseURL:  "http://localhost:11434",
			LLMModel:    "llama3",
		},
	}

	user := &entity.User{
		ApiKey:    "sk-user",
		ApiUrl:    "https://api.example.com/v1",
		ModelName: "custom-model",
	}

	model, err := svc.buildModel(user)
	require.NoError(t, err)
	assert.NotNil(t, model)
}

func TestBuildModel_FallsBackToConfiguredProvider(t *testing.T) {
	svc := &researchService{
		aiConfig: config.AIConfig{
			LLMProvider: "openai",
			LLMBaseURL:  "https://api.deepseek.com/v1",
			LLMModel:    "deepseek-chat",
			LLMAPIKey:   "sk-default",
		},
	}

	model, err := svc.buildModel(&entity.User{})
	require.NoError(t, err)
	assert.NotNil(t, model)
}

func TestCandidatePayloads_SolutionsArray(t *testing.T) {
	final := map[string]interface{}{
		"evaluation": "ok",
		"solutions": []interface{}{
			map[string]interface{}{"Technical Method": "a"},
			"not-an-object",
			map[string]interface{}{"Technical Method": "b"},
		},
	}

	candidates := candidatePayloads(final)

	require.Len(t, candidates, 2)
	assert.Equal(t, "a", candidates[0]["Technical Method"])
	assert.Equal(t, "b", candidates[1]["Technical Method"])
}

func TestCandidatePayloads_UnstructuredOutputBecomesOneRecord(t *testing.T) {
	final := map[string]interface{}{"text": "free-form model answer"}

	candidates := candidatePayloads(final)

	require.Len(t, candidates, 1)
	assert.Equal(t, final, candidates[0])
}

func TestCitedPaperIds_DeduplicatesAndSkipsNonPapers(t *testing.T) {
	paperA := uuid.New()
	paperB := uuid.New()

	dk := map[string]interface{}{
		"hits": []interface{}{
			&retrieval.Hit{DocID: paperA.String()},
			map[string]interface{}{"paper_id": paperB.String(), "content": "x"},
			map[string]interface{}{"paper_id": paperA.String()},
			map[string]interface{}{"solution_id": uuid.NewString()},
			map[string]interface{}{"paper_id": "not-a-uuid"},
		},
	}

	ids := citedPaperIds(dk)

	assert.Equal(t, []uuid.UUID{paperA, paperB}, ids)
}

func TestCitedPaperIds_NoHits(t *testing.T) {
	assert.Nil(t, citedPaperIds(nil))
	assert.Nil(t, citedPaperIds(map[string]interface{}{"hits": "nope"}))
}

func TestSplitAuthors_RoundTrip(t *testing.T) {
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, splitAuthors("Ada Lovelace, Alan Turing"))
	assert.Equal(t, []string{"Solo"}, splitAuthors("Solo"))
	assert.Nil(t, splitAuthors(""))
	assert.Equal(t, []string{"A"}, splitAuthors(" A , , "))
}
