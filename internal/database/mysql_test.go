package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/PhelGc/furina-dataset/internal/dataset"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE llm_dataset_post (
		id INTEGER PRIMARY KEY,
		outline TEXT,
		human_result_data TEXT,
		llm_result_data TEXT
	)`)
	require.NoError(t, err)
	return db
}

func TestLoadRows(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO llm_dataset_post (outline, human_result_data, llm_result_data) VALUES
		('少年重生复仇', '[]', '{"result": []}'),
		('豪门千金归来', NULL, NULL)`)
	require.NoError(t, err)

	rows, err := NewFromDB(db).LoadRows(context.Background(), "llm_dataset_post", dataset.DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, []dataset.Row{
		{Index: 0, Outline: "少年重生复仇", Human: "[]", LLM: `{"result": []}`},
		{Index: 1, Outline: "豪门千金归来"},
	}, rows)
}

func TestLoadRows_WithoutLLMColumn(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO llm_dataset_post (outline, human_result_data, llm_result_data) VALUES ('大纲', '[]', 'x')`)
	require.NoError(t, err)

	cols := dataset.DefaultColumns()
	cols.LLM = ""
	rows, err := NewFromDB(db).LoadRows(context.Background(), "llm_dataset_post", cols)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].LLM)
}

func TestLoadRows_UnknownTable(t *testing.T) {
	db := openTestDB(t)

	_, err := NewFromDB(db).LoadRows(context.Background(), "otra_tabla", dataset.DefaultColumns())
	assert.Error(t, err)
}

func TestSelectQuery(t *testing.T) {
	query, err := selectQuery("llm_dataset_post", dataset.DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, "SELECT `outline`, `human_result_data`, `llm_result_data` FROM `llm_dataset_post`", query)

	_, err = selectQuery("posts; DROP TABLE x", dataset.DefaultColumns())
	assert.Error(t, err)

	cols := dataset.DefaultColumns()
	cols.Human = "human result"
	_, err = selectQuery("llm_dataset_post", cols)
	assert.Error(t, err)
}
