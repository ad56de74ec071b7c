package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModelOutput_DirectJSON(t *testing.T) {
	out := ParseModelOutput(`{"solutions": [{"Technical Method": "membrane"}]}`)
	assert.Contains(t, out, "solutions")
}

func TestParseModelOutput_FencedBlock(t *testing.T) {
	content := "Here is my answer:\n```json\n{\"score\": 9}\n```\nHope it helps."
	out := ParseModelOutput(content)
	assert.Equal(t, float64(9), out["score"])
}

func TestParseModelOutput_PlainProseFallsBackToText(t *testing.T) {
	content := "The best approach is compostable film."
	out := ParseModelOutput(content)
	assert.Equal(t, map[string]interface{}{"text": content}, out)
}

func TestParseModelOutput_MalformedFencedBlockFallsBackToText(t *testing.T) {
	content := "```json\n{not valid json\n```"
	out := ParseModelOutput(content)
	assert.Equal(t, content, out["text"])
}
