package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruction_Default(t *testing.T) {
	instruction := Default().Instruction()

	assert.True(t, strings.HasPrefix(instruction, "<任务>依据给定评估标准, 对用户提供的短剧大纲"))
	assert.Contains(t, instruction, "</任务><目标>按规定格式给出评估结果和改进建议</目标>\n<评估标准>")
	assert.Contains(t, instruction, "1.主线(核心故事线):")
	assert.Contains(t, instruction, `{"dimension":"投流","analysis":...,"result":"通过/不通过"}`)
	assert.True(t, strings.HasSuffix(instruction, "</输出格式>"))

	rubric := instruction[strings.Index(instruction, "<评估标准>"):]
	assert.NotContains(t, rubric, " ")
}

func TestLoadPrompts_Overrides(t *testing.T) {
	dir := t.TempDir()
	standardPath := filepath.Join(dir, "standard.txt")
	require.NoError(t, os.WriteFile(standardPath, []byte("<评估标准> 只看 主线 </评估标准>\n"), 0644))

	p, err := LoadPrompts("", standardPath)
	require.NoError(t, err)

	assert.Equal(t, strings.TrimSpace(defaultTask)+"\n<评估标准>只看主线</评估标准>", p.Instruction())
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "nada.txt"), "")
	assert.Error(t, err)
}

func TestWrapOutline(t *testing.T) {
	assert.Equal(t, "<短剧大纲>少年重生复仇</短剧大纲>", WrapOutline("少年重生复仇"))
}
