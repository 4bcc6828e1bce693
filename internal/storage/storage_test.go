package storage

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Instruction string `json:"instruction"`
	Output      string `json:"output"`
}

func newTestStorage(t *testing.T) (*Storage, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := New(fs, "out", "script_review")
	require.NoError(t, err)
	return s, fs
}

func TestFilePath(t *testing.T) {
	s, _ := newTestStorage(t)

	assert.Regexp(t, regexp.MustCompile(`^out/script_review_alpaca_\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}\.json$`), s.FilePath("alpaca", LayoutList))
	assert.True(t, strings.HasSuffix(s.FilePath("dpo", LayoutJSONL), ".jsonl"))
	assert.Contains(t, s.FilePath("a/b", LayoutList), "script_review_a_b_")
}

func TestSaveDataset_List(t *testing.T) {
	s, fs := newTestStorage(t)
	entries := []entry{{Instruction: "<任务>评估</任务>", Output: "[]"}, {Instruction: "b", Output: "c"}}

	path, err := SaveDataset(s, "alpaca", entries, LayoutList)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<任务>评估</任务>")

	var back []entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, entries, back)
}

func TestSaveDataset_EmptyList(t *testing.T) {
	s, fs := newTestStorage(t)

	path, err := SaveDataset[entry](s, "dpo", nil, LayoutList)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestSaveDataset_JSONLRoundTrip(t *testing.T) {
	s, fs := newTestStorage(t)
	entries := []entry{{Instruction: "主线", Output: "通过"}, {Instruction: "人设", Output: "不通过"}}

	path, err := SaveDataset(s, "chat", entries, LayoutJSONL)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"instruction": "主线", "output": "通过"}`, lines[0])

	back, err := LoadJSON[entry](s, path)
	require.NoError(t, err)
	assert.Equal(t, entries, back)
}

func TestLoadJSON_List(t *testing.T) {
	s, fs := newTestStorage(t)
	require.NoError(t, afero.WriteFile(fs, "alpaca.json", []byte(`[{"instruction": "a", "output": "b"}]`), 0644))

	back, err := LoadJSON[entry](s, "alpaca.json")
	require.NoError(t, err)
	assert.Equal(t, []entry{{Instruction: "a", Output: "b"}}, back)

	_, err = LoadJSON[entry](s, "nada.json")
	assert.Error(t, err)
}

func TestSaveCSV(t *testing.T) {
	s, fs := newTestStorage(t)

	err := s.SaveCSV("test_result/llm.csv", []string{"prompt", "llm_result"}, [][]string{{"p1", `{"result": "a,b"}`}})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "test_result/llm.csv")
	require.NoError(t, err)
	assert.Equal(t, "prompt,llm_result\np1,\"{\"\"result\"\": \"\"a,b\"\"}\"\n", string(data))
}
