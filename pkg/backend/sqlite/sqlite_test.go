package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := Open(filepath.Join(t.TempDir(), "test.sqlite"), "")
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func drain(ch <-chan domain.Document) []domain.Document {
	var docs []domain.Document
	for doc := range ch {
		docs = append(docs, doc)
	}
	return docs
}

func TestCollection_ReplaceOneAndFindOne(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")
	ctx := context.Background()

	require.NoError(t, coll.ReplaceOne(ctx, "1", domain.Document{"title": "Dune"}, true))

	doc, err := coll.FindOne(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", doc["title"])
	assert.Equal(t, "1", doc["_id"])
}

func TestCollection_FindOne_NotFound(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")

	_, err := coll.FindOne(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_ReplaceOne_NoUpsertOnMissingKey(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")
	ctx := context.Background()

	require.NoError(t, coll.ReplaceOne(ctx, "ghost", domain.Document{"x": 1}, false))

	_, err := coll.FindOne(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_CollectionsAreIsolated(t *testing.T) {
	engine := openTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.Collection("books").ReplaceOne(ctx, "1", domain.Document{"title": "Dune"}, true))

	_, err := engine.Collection("users").FindOne(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_Find_KeyOrderAndFilter(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")
	ctx := context.Background()

	require.NoError(t, coll.ReplaceOne(ctx, "c", domain.Document{"genre": "scifi"}, true))
	require.NoError(t, coll.ReplaceOne(ctx, "a", domain.Document{"genre": "scifi"}, true))
	require.NoError(t, coll.ReplaceOne(ctx, "b", domain.Document{"genre": "fantasy"}, true))

	ch, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	all := drain(ch)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0]["_id"])
	assert.Equal(t, "b", all[1]["_id"])
	assert.Equal(t, "c", all[2]["_id"])

	ch, err = coll.Find(ctx, domain.Filter{"genre": "scifi"})
	require.NoError(t, err)
	assert.Len(t, drain(ch), 2)
}

func TestCollection_Filter_NumericCoercion(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")
	ctx := context.Background()

	// Stored as int, read back from JSON as float64; filtering must still
	// match through numeric coercion
	require.NoError(t, coll.ReplaceOne(ctx, "1", domain.Document{"pages": 412}, true))

	ch, err := coll.Find(ctx, domain.Filter{"pages": 412})
	require.NoError(t, err)
	assert.Len(t, drain(ch), 1)
}

func TestCollection_UpdateOne(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")
	ctx := context.Background()

	require.NoError(t, coll.ReplaceOne(ctx, "1", domain.Document{
		"a": "kept",
		"meta": map[string]interface{}{
			"pages": 412,
			"lang":  "en",
		},
	}, true))

	cmd := domain.UpdateCommand{
		Set:   map[string]interface{}{"meta.pages": 500},
		Unset: []string{"a"},
	}
	require.NoError(t, coll.UpdateOne(ctx, "1", cmd, false))

	doc, err := coll.FindOne(ctx, "1")
	require.NoError(t, err)
	_, exists := doc["a"]
	assert.False(t, exists)

	meta, ok := doc["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 500, meta["pages"])
	assert.Equal(t, "en", meta["lang"])
}

func TestCollection_UpdateOne_MissingKeyNoUpsert(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")
	ctx := context.Background()

	cmd := domain.UpdateCommand{Set: map[string]interface{}{"a": 1}}
	require.NoError(t, coll.UpdateOne(ctx, "ghost", cmd, false))

	_, err := coll.FindOne(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_DeleteOperations(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")
	ctx := context.Background()

	for _, key := range []string{"1", "2", "3", "4"} {
		require.NoError(t, coll.ReplaceOne(ctx, key, domain.Document{"genre": "scifi"}, true))
	}

	deleted, err := coll.DeleteOne(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = coll.DeleteKeys(ctx, []string{"2", "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = coll.DeleteMany(ctx, domain.Filter{"genre": "scifi"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestCollection_InsertMany_DuplicateFailsWholeBatch(t *testing.T) {
	engine := openTestEngine(t)
	coll := engine.Collection("books")
	ctx := context.Background()

	require.NoError(t, coll.ReplaceOne(ctx, "dup", domain.Document{"x": 1}, true))

	err := coll.InsertMany(ctx, []domain.Document{
		{"_id": "new", "x": 2},
		{"_id": "dup", "x": 3},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)

	// The transaction rolled back, so the first document is gone too
	_, err = coll.FindOne(ctx, "new")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.sqlite")
	ctx := context.Background()

	engine, err := Open(path, "")
	require.NoError(t, err)
	require.NoError(t, engine.Collection("books").ReplaceOne(ctx, "1", domain.Document{"title": "Dune"}, true))
	require.NoError(t, engine.Close())

	reopened, err := Open(path, "")
	require.NoError(t, err)
	defer reopened.Close()

	doc, err := reopened.Collection("books").FindOne(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", doc["title"])
}
