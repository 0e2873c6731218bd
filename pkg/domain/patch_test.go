package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatch_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		patch    Patch
		expected string
	}{
		{
			name:     "replace with string",
			patch:    Replace("pizza"),
			expected: `{"op":"replace","value":"pizza"}`,
		},
		{
			name:     "replace with false survives encoding",
			patch:    Replace(false),
			expected: `{"op":"replace","value":false}`,
		},
		{
			name:     "replace with null survives encoding",
			patch:    Replace(nil),
			expected: `{"op":"replace","value":null}`,
		},
		{
			name:     "delete",
			patch:    Delete(),
			expected: `{"op":"delete"}`,
		},
		{
			name: "merge with nested replace",
			patch: Merge(map[string]Patch{
				"b": Replace("pizza"),
			}),
			expected: `{"op":"merge","fields":{"b":{"op":"replace","value":"pizza"}}}`,
		},
		{
			name:     "merge with no fields",
			patch:    Merge(nil),
			expected: `{"op":"merge","fields":{}}`,
		},
		{
			name:     "insert",
			patch:    Insert(map[string]interface{}{"name": "Alice"}),
			expected: `{"op":"insert","value":{"name":"Alice"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.patch)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestPatch_UnmarshalJSON(t *testing.T) {
	input := `{"op":"merge","fields":{
		"title":{"op":"replace","value":"Dune"},
		"draft":{"op":"delete"},
		"meta":{"op":"merge","fields":{"pages":{"op":"replace","value":412}}}
	}}`

	var p Patch
	require.NoError(t, json.Unmarshal([]byte(input), &p))

	assert.Equal(t, PatchMerge, p.Kind)
	require.Len(t, p.Fields, 3)
	assert.Equal(t, PatchReplace, p.Fields["title"].Kind)
	assert.Equal(t, "Dune", p.Fields["title"].Value)
	assert.Equal(t, PatchDelete, p.Fields["draft"].Kind)

	meta := p.Fields["meta"]
	assert.Equal(t, PatchMerge, meta.Kind)
	assert.Equal(t, PatchReplace, meta.Fields["pages"].Kind)
}

func TestPatch_UnmarshalJSON_UnknownOp(t *testing.T) {
	var p Patch
	err := json.Unmarshal([]byte(`{"op":"increment","value":1}`), &p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "increment")
}

func TestBatchPatch_RoundTrip(t *testing.T) {
	batch := BatchPatch{
		{Key: "a", Patch: Merge(map[string]Patch{"x": Replace(1)})},
		{Key: "b", Patch: Insert(map[string]interface{}{"name": "Bob"})},
		{Key: "c", Patch: Delete()},
	}

	data, err := json.Marshal(batch)
	require.NoError(t, err)

	var decoded BatchPatch
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)

	// Order must survive the round trip
	assert.Equal(t, "a", decoded[0].Key)
	assert.Equal(t, PatchMerge, decoded[0].Patch.Kind)
	assert.Equal(t, "b", decoded[1].Key)
	assert.Equal(t, PatchInsert, decoded[1].Patch.Kind)
	assert.Equal(t, "c", decoded[2].Key)
	assert.Equal(t, PatchDelete, decoded[2].Patch.Kind)
}

func TestPatchKind_String(t *testing.T) {
	assert.Equal(t, "replace", PatchReplace.String())
	assert.Equal(t, "delete", PatchDelete.String())
	assert.Equal(t, "merge", PatchMerge.String())
	assert.Equal(t, "insert", PatchInsert.String())
}
