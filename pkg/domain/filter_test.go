package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Matches(t *testing.T) {
	doc := Document{
		"name":  "Alice",
		"age":   30,
		"score": 99.5,
		"tag":   nil,
	}

	tests := []struct {
		name     string
		filter   Filter
		expected bool
	}{
		{
			name:     "nil filter matches everything",
			filter:   nil,
			expected: true,
		},
		{
			name:     "single field match",
			filter:   Filter{"name": "Alice"},
			expected: true,
		},
		{
			name:     "string comparison is case sensitive",
			filter:   Filter{"name": "alice"},
			expected: false,
		},
		{
			name:     "numeric coercion int vs float64",
			filter:   Filter{"age": float64(30)},
			expected: true,
		},
		{
			name:     "numeric coercion int64 vs float",
			filter:   Filter{"score": 99.5},
			expected: true,
		},
		{
			name:     "conjunction requires all fields",
			filter:   Filter{"name": "Alice", "age": 31},
			expected: false,
		},
		{
			name:     "absent field never matches",
			filter:   Filter{"missing": "x"},
			expected: false,
		},
		{
			name:     "nil matches nil",
			filter:   Filter{"tag": nil},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(doc))
		})
	}
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(int64(5), 5.0))
	assert.True(t, ValuesEqual(uint8(5), 5))
	assert.False(t, ValuesEqual(5, "5"))
	assert.False(t, ValuesEqual(nil, 0))
	assert.True(t, ValuesEqual(nil, nil))
}

func TestFieldEquals(t *testing.T) {
	pred := FieldEquals("genre")
	assert.Equal(t, "by_genre", pred.Name)

	assert.True(t, pred.Match("scifi", Document{"genre": "scifi"}))
	assert.False(t, pred.Match("scifi", Document{"genre": "fantasy"}))
	assert.False(t, pred.Match("scifi", Document{}))
}

func TestDocument_Clone(t *testing.T) {
	original := Document{
		"name": "Alice",
		"meta": map[string]interface{}{
			"tags": []interface{}{"a", "b"},
		},
	}

	clone := original.Clone()
	clone["name"] = "Bob"
	clone["meta"].(map[string]interface{})["tags"].([]interface{})[0] = "z"

	assert.Equal(t, "Alice", original["name"])
	assert.Equal(t, "a", original["meta"].(map[string]interface{})["tags"].([]interface{})[0])
}
