package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	require.NoError(t, Migrate(db))
	// Running again must be a no-op.
	require.NoError(t, Migrate(db))

	var tables []string
	require.NoError(t, db.Select(&tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"))
	assert.Equal(t, []string{
		"choices", "generated_images", "learning_logs", "learning_sessions", "questions", "users",
	}, tables)
}

func TestMigrate_uniqueConstraints(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
	require.NoError(t, Migrate(db))

	_, err = db.Exec(`INSERT INTO questions (image_id, caption_id, caption, lemma, pos, cefr, answer, blanked_tokens, lemmatized_tokens)
		VALUES ('1', '100', 'A cat', 'cat', 'noun', 'A1', 'cat', '[]', '[]')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO questions (image_id, caption_id, caption, lemma, pos, cefr, answer, blanked_tokens, lemmatized_tokens)
		VALUES ('2', '101', 'Another cat', 'cat', 'noun', 'A1', 'cat', '[]', '[]')`)
	assert.Error(t, err)
}
