package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateCommand_Apply(t *testing.T) {
	tests := []struct {
		name     string
		doc      Document
		cmd      UpdateCommand
		expected Document
	}{
		{
			name: "set top-level field",
			doc:  Document{"a": 1},
			cmd:  UpdateCommand{Set: map[string]interface{}{"b": "pizza"}},
			expected: Document{
				"a": 1,
				"b": "pizza",
			},
		},
		{
			name: "set nested path preserves siblings",
			doc: Document{
				"meta": map[string]interface{}{"pages": 412, "lang": "en"},
			},
			cmd: UpdateCommand{Set: map[string]interface{}{"meta.pages": 500}},
			expected: Document{
				"meta": map[string]interface{}{"pages": 500, "lang": "en"},
			},
		},
		{
			name: "set creates intermediate maps",
			doc:  Document{},
			cmd:  UpdateCommand{Set: map[string]interface{}{"a.b.c": true}},
			expected: Document{
				"a": map[string]interface{}{
					"b": map[string]interface{}{"c": true},
				},
			},
		},
		{
			name: "set overwrites non-map intermediate",
			doc:  Document{"a": "scalar"},
			cmd:  UpdateCommand{Set: map[string]interface{}{"a.b": 1}},
			expected: Document{
				"a": map[string]interface{}{"b": 1},
			},
		},
		{
			name:     "unset top-level field",
			doc:      Document{"a": 1, "b": 2},
			cmd:      UpdateCommand{Unset: []string{"b"}},
			expected: Document{"a": 1},
		},
		{
			name: "unset nested path",
			doc: Document{
				"meta": map[string]interface{}{"draft": true, "pages": 412},
			},
			cmd: UpdateCommand{Unset: []string{"meta.draft"}},
			expected: Document{
				"meta": map[string]interface{}{"pages": 412},
			},
		},
		{
			name:     "unset absent path is a no-op",
			doc:      Document{"a": 1},
			cmd:      UpdateCommand{Unset: []string{"x.y.z"}},
			expected: Document{"a": 1},
		},
		{
			name: "set then unset in one command",
			doc:  Document{"old": 1},
			cmd: UpdateCommand{
				Set:   map[string]interface{}{"new": 2},
				Unset: []string{"old"},
			},
			expected: Document{"new": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cmd.Apply(tt.doc)
			assert.Equal(t, tt.expected, tt.doc)
		})
	}
}

func TestUpdateCommand_IsEmpty(t *testing.T) {
	assert.True(t, UpdateCommand{}.IsEmpty())
	assert.False(t, UpdateCommand{Set: map[string]interface{}{"a": 1}}.IsEmpty())
	assert.False(t, UpdateCommand{Unset: []string{"a"}}.IsEmpty())
}
