package dataset

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhelGc/furina-dataset/internal/logger"
	"github.com/PhelGc/furina-dataset/internal/review"
)

const (
	testInstruction = "<任务>评估</任务>"
	humanCell       = "[{'dimension': '主线', 'description': 'ok', 'result': '通过'}]"
	llmCell         = `{"result": [{"dimension": "主线", "description": "节奏拖沓", "result": "不通过"}]}`
)

func newTestConverter(opts Options) (*Converter, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "warn", Output: &buf})
	return NewConverter(testInstruction, opts, log), &buf
}

func TestAlpaca_SingleQuotedRow(t *testing.T) {
	c, _ := newTestConverter(DefaultOptions())

	entries, stats := c.Alpaca([]Row{{Outline: "少年重生复仇", Human: humanCell}})
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, testInstruction, e.Instruction)
	assert.Equal(t, "<短剧大纲>少年重生复仇</短剧大纲>", e.Input)
	assert.Equal(t, `[{"dimension": "主线", "analysis": "ok", "result": "通过"}]`, e.Output)
	require.NotNil(t, e.System)
	assert.Equal(t, "", *e.System)
	assert.Equal(t, Stats{Rows: 1, Written: 1}, stats)
}

func TestAlpaca_SkipsMissingAndMalformed(t *testing.T) {
	c, logs := newTestConverter(DefaultOptions())

	rows := []Row{
		{Index: 0, Outline: "a", Human: "nan"},
		{Index: 1, Outline: "b", Human: ""},
		{Index: 2, Outline: "c", Human: `[{"dimension": `},
		{Index: 3, Outline: "d", Human: `[{"dimension": "主线", "result": "通过"}]`},
		{Index: 4, Outline: "e", Human: humanCell},
	}

	entries, stats := c.Alpaca(rows)
	require.Len(t, entries, 1)
	assert.Equal(t, "<短剧大纲>e</短剧大纲>", entries[0].Input)
	assert.Equal(t, Stats{Rows: 5, Written: 1, Malformed: 2}, stats)

	out := logs.String()
	assert.Contains(t, out, "no se pudo interpretar la evaluación")
	assert.Contains(t, out, "fila=2")
	assert.Contains(t, out, "fila=3")
	assert.NotContains(t, out, "fila=0")
	assert.NotContains(t, out, "fila=1")
}

func TestAlpaca_StructuredOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.Form = review.FormStructured
	opts.WrapOutline = false
	opts.IncludeSystem = false
	c, _ := newTestConverter(opts)

	entries, _ := c.Alpaca([]Row{{Outline: "大纲", Human: humanCell}})
	require.Len(t, entries, 1)

	data, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"instruction": "<任务>评估</任务>",
		"input": "大纲",
		"output": [{"dimension": "主线", "analysis": "ok", "result": "通过"}]
	}`, string(data))
}

func TestDPO(t *testing.T) {
	c, _ := newTestConverter(DefaultOptions())

	rows := []Row{
		{Index: 0, Outline: "双全", Human: humanCell, LLM: llmCell},
		{Index: 1, Outline: "无模型", Human: humanCell, LLM: "nan"},
		{Index: 2, Outline: "无人工", Human: "", LLM: llmCell},
		{Index: 3, Outline: "模型坏", Human: humanCell, LLM: `{"result": `},
		{Index: 4, Outline: "未包裹", Human: humanCell, LLM: humanCell},
	}

	entries, stats := c.DPO(rows)
	require.Len(t, entries, 1)
	assert.Equal(t, Stats{Rows: 5, Written: 1, Malformed: 2}, stats)

	e := entries[0]
	assert.Equal(t, testInstruction, e.Instruction)
	assert.Equal(t, "<短剧大纲>双全</短剧大纲>", e.Input)
	assert.Equal(t, `[{"dimension": "主线", "analysis": "ok", "result": "通过"}]`, e.Chosen)
	assert.Equal(t, `[{"dimension": "主线", "analysis": "节奏拖沓", "result": "不通过"}]`, e.Rejected)

	alpaca, _ := c.Alpaca(rows[:1])
	assert.Equal(t, alpaca[0].Instruction, e.Instruction)
	assert.Equal(t, alpaca[0].Input, e.Input)
	assert.Equal(t, alpaca[0].Output, e.Chosen)
}

func TestChat(t *testing.T) {
	opts := DefaultOptions()
	opts.Form = review.FormStructured
	c, _ := newTestConverter(opts)

	entries, stats := c.Chat([]Row{{Outline: "少年重生复仇", Human: humanCell}, {Human: "nan"}})
	require.Len(t, entries, 1)
	assert.Equal(t, Stats{Rows: 2, Written: 1}, stats)

	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: testInstruction},
		{Role: RoleUser, Content: "<短剧大纲>少年重生复仇</短剧大纲>"},
		{Role: RoleAssistant, Content: `[{"dimension": "主线", "analysis": "ok", "result": "通过"}]`},
	}, entries[0].Messages)
}

func TestNanRowProducesNothing(t *testing.T) {
	c, _ := newTestConverter(DefaultOptions())
	rows := []Row{{Outline: "少年重生复仇", Human: "nan", LLM: "nan"}}

	alpaca, _ := c.Alpaca(rows)
	dpo, _ := c.DPO(rows)
	chat, _ := c.Chat(rows)

	assert.Empty(t, alpaca)
	assert.Empty(t, dpo)
	assert.Empty(t, chat)
}

func TestNewConverter_NilLogger(t *testing.T) {
	c := NewConverter(testInstruction, DefaultOptions(), nil)

	entries, stats := c.Alpaca([]Row{{Human: "[{"}})
	assert.Empty(t, entries)
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, testInstruction, c.Instruction())
}
