package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

func TestRegistry_Translate(t *testing.T) {
	byGenre := domain.FieldEquals("genre")
	byAuthor := domain.FieldEquals("author")

	registry := NewRegistry().
		Register(byGenre, "genre").
		Register(byAuthor, "author")

	filter, err := registry.Translate(byGenre, "scifi")
	require.NoError(t, err)
	assert.Equal(t, domain.Filter{"genre": "scifi"}, filter)

	filter, err = registry.Translate(byAuthor, "Herbert")
	require.NoError(t, err)
	assert.Equal(t, domain.Filter{"author": "Herbert"}, filter)
}

func TestRegistry_Translate_Unregistered(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Translate(domain.FieldEquals("rating"), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedIndex)
	assert.Contains(t, err.Error(), "by_rating")
}

func TestRegistry_Register_Rebind(t *testing.T) {
	pred := domain.NamedPredicate{Name: "by_title"}
	registry := NewRegistry().Register(pred, "title")

	// Re-registering the same name replaces the binding
	registry.Register(pred, "name")

	filter, err := registry.Translate(pred, "Dune")
	require.NoError(t, err)
	assert.Equal(t, domain.Filter{"name": "Dune"}, filter)
}

func TestRegistry_Registered(t *testing.T) {
	pred := domain.FieldEquals("genre")
	registry := NewRegistry()

	assert.False(t, registry.Registered(pred))
	registry.Register(pred, "genre")
	assert.True(t, registry.Registered(pred))
}
