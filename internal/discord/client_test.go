package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummaryEmbed(t *testing.T) {
	embed := buildSummaryEmbed(&Summary{
		Command: "convert",
		Source:  "raw_data/llm_dataset_post.csv",
		Sections: []Section{
			{Name: "alpaca", Written: 10},
			{Name: "dpo", Written: 7, Malformed: 2},
		},
		Files:    []string{"script_review_alpaca.json", "script_review_dpo.json"},
		Duration: 1500 * time.Millisecond,
	})

	assert.Equal(t, "furina-dataset convert", embed.Title)
	assert.Contains(t, embed.Description, "raw_data/llm_dataset_post.csv")
	assert.Equal(t, 0xF39C12, embed.Color)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "dpo", embed.Fields[1].Name)
	assert.Equal(t, "7 escritos, 2 inválidos", embed.Fields[1].Value)
	assert.Equal(t, "script_review_alpaca.json\nscript_review_dpo.json", embed.Fields[2].Value)
}

func TestBuildSummaryEmbed_Clean(t *testing.T) {
	embed := buildSummaryEmbed(&Summary{Command: "generate", Sections: []Section{{Name: "generate", Written: 3}}})

	assert.Equal(t, 0x2ECC71, embed.Color)
	assert.Len(t, embed.Fields, 1)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(&Config{BotToken: "token", ChannelID: "123"})
	require.NoError(t, err)
	assert.NotNil(t, c.session)
	assert.Equal(t, "123", c.config.ChannelID)
}
