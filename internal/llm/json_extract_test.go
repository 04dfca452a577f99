package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromCodeBlock(t *testing.T) {
	response := "Here are the entities:\n```json\n[{\"text\": \"Reliance\", \"label\": \"ORG\"}]\n```\nDone."
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `[{"text": "Reliance", "label": "ORG"}]`, got)
}

func TestExtractJSONFromUntaggedBlock(t *testing.T) {
	response := "```\n{\"a\": 1}\n```"
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestExtractJSONRaw(t *testing.T) {
	response := `The answer is [{"text": "TCS", "label": "ORG"}] as requested.`
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `[{"text": "TCS", "label": "ORG"}]`, got)
}

func TestExtractJSONHandlesNestingAndStrings(t *testing.T) {
	response := `{"outer": {"inner": "has } brace", "list": [1, 2]}}`
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, response, got)
}

func TestExtractJSONNoJSON(t *testing.T) {
	_, err := ExtractJSON("nothing structured here")
	assert.Error(t, err)
}

func TestExtractJSONSkipsNonJSONBlocks(t *testing.T) {
	response := "```go\nfunc main() {}\n```\n```json\n[1, 2]\n```"
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, "[1, 2]", got)
}
