package domain

import (
	"encoding/json"
	"fmt"
)

// PatchKind tags the variant of a Patch.
type PatchKind int

const (
	PatchReplace PatchKind = iota
	PatchDelete
	PatchMerge
	PatchInsert
)

// String returns the wire name of the patch kind.
func (k PatchKind) String() string {
	switch k {
	case PatchReplace:
		return "replace"
	case PatchDelete:
		return "delete"
	case PatchMerge:
		return "merge"
	case PatchInsert:
		return "insert"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Patch is a tagged description of one change to an entity or to a field:
//
//   - Replace: the field (or root) is fully overwritten by Value.
//   - Delete: the field (or root) is removed.
//   - Merge: Fields maps field names to nested patches, applied recursively;
//     fields not mentioned are untouched.
//   - Insert: Value is a brand-new entity to add.
//
// Patches are immutable once handed to the store.
type Patch struct {
	Kind   PatchKind
	Value  interface{}      // payload for Replace and Insert
	Fields map[string]Patch // children for Merge
}

// Replace builds a patch that overwrites the target with v.
func Replace(v interface{}) Patch {
	return Patch{Kind: PatchReplace, Value: v}
}

// Delete builds a patch that removes the target.
func Delete() Patch {
	return Patch{Kind: PatchDelete}
}

// Merge builds a patch that applies the given field patches recursively.
func Merge(fields map[string]Patch) Patch {
	return Patch{Kind: PatchMerge, Fields: fields}
}

// Insert builds a patch that adds v as a new entity.
func Insert(v interface{}) Patch {
	return Patch{Kind: PatchInsert, Value: v}
}

// BatchEntry pairs an entity key with the patch to apply to it.
type BatchEntry struct {
	Key   string `json:"key"`
	Patch Patch  `json:"patch"`
}

// BatchPatch is an ordered key -> patch mapping describing a full
// synchronization of a collection. The slice preserves the caller's order;
// a key must appear at most once.
type BatchPatch []BatchEntry

type patchWire struct {
	Op     string           `json:"op"`
	Value  interface{}      `json:"value,omitempty"`
	Fields map[string]Patch `json:"fields,omitempty"`
}

// MarshalJSON encodes the patch in its tagged wire form,
// e.g. {"op":"merge","fields":{"b":{"op":"replace","value":"pizza"}}}.
func (p Patch) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PatchReplace:
		// Value is encoded explicitly so false/0/null survive the round trip.
		return json.Marshal(struct {
			Op    string      `json:"op"`
			Value interface{} `json:"value"`
		}{"replace", p.Value})
	case PatchDelete:
		return json.Marshal(patchWire{Op: "delete"})
	case PatchMerge:
		fields := p.Fields
		if fields == nil {
			fields = map[string]Patch{}
		}
		return json.Marshal(struct {
			Op     string           `json:"op"`
			Fields map[string]Patch `json:"fields"`
		}{"merge", fields})
	case PatchInsert:
		return json.Marshal(struct {
			Op    string      `json:"op"`
			Value interface{} `json:"value"`
		}{"insert", p.Value})
	}
	return nil, fmt.Errorf("cannot marshal patch kind %s", p.Kind)
}

// UnmarshalJSON decodes the tagged wire form produced by MarshalJSON.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var wire patchWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Op {
	case "replace":
		*p = Replace(wire.Value)
	case "delete":
		*p = Delete()
	case "merge":
		fields := wire.Fields
		if fields == nil {
			fields = map[string]Patch{}
		}
		*p = Merge(fields)
	case "insert":
		*p = Insert(wire.Value)
	default:
		return fmt.Errorf("unknown patch op %q", wire.Op)
	}
	return nil
}
