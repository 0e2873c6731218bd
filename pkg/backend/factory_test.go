package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

func TestNew_AllKinds(t *testing.T) {
	for _, kind := range []string{"", "memory", "bolt", "sqlite"} {
		t.Run("kind="+kind, func(t *testing.T) {
			engine, err := New(Config{Kind: kind, DataDir: t.TempDir()})
			require.NoError(t, err)
			defer engine.Close()

			coll := engine.Collection("books")
			ctx := context.Background()
			require.NoError(t, coll.ReplaceOne(ctx, "1", domain.Document{"title": "Dune"}, true))

			doc, err := coll.FindOne(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, "Dune", doc["title"])
		})
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(Config{Kind: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestNew_MemoryImplementsIndexCreator(t *testing.T) {
	engine, err := New(Config{Kind: "memory", DataDir: t.TempDir()})
	require.NoError(t, err)
	defer engine.Close()

	creator, ok := engine.(IndexCreator)
	require.True(t, ok)
	assert.NoError(t, creator.CreateIndex("books", "genre"))
}
