package evaluator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"result": []}`, CleanJSON("```json\n{\"result\": []}\n```"))
	assert.Equal(t, `[1]`, CleanJSON("```\n[1]\n```"))
	assert.Equal(t, `texto`, CleanJSON("  texto \n"))
}

func TestLooksWrapped(t *testing.T) {
	assert.True(t, LooksWrapped(`{"result": [{"dimension": "主线"}]}`, "result"))
	assert.True(t, LooksWrapped("```json\n{\"result\": []}\n```", "result"))
	assert.False(t, LooksWrapped(`[{"dimension": "主线"}]`, "result"))
	assert.False(t, LooksWrapped(`{"result": "通过"}`, "result"))
	assert.False(t, LooksWrapped(`{"result": [`, "result"))
	assert.False(t, LooksWrapped(`{"result": []}`, "evaluation"))
}

func TestItem_HumanResult(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{`"[{\"dimension\": \"主线\"}]"`, `[{"dimension": "主线"}]`},
		{`[{"dimension": "主线"}]`, `[{"dimension": "主线"}]`},
		{`null`, ``},
		{``, ``},
	}
	for _, tt := range tests {
		item := Item{Instruction: "i", Input: "x", Output: json.RawMessage(tt.output)}
		assert.Equal(t, tt.want, item.HumanResult())
		assert.Equal(t, "ix", item.Prompt())
	}
}
