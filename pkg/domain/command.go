package domain

import "strings"

// UpdateCommand is a backend-native partial-update instruction: a set of
// fully-qualified dotted-path assignments plus a set of removals. A command
// never carries a nested replacement of a sub-object, so siblings of a merged
// field are preserved when it is applied.
//
// An empty group is left nil so downstream code can tell a no-op command
// apart from one that only sets or only unsets.
type UpdateCommand struct {
	Set   map[string]interface{} `json:"set,omitempty"`
	Unset []string               `json:"unset,omitempty"`
}

// IsEmpty reports whether the command would change nothing. Callers must
// treat an empty command as a no-op, not an error.
func (c UpdateCommand) IsEmpty() bool {
	return len(c.Set) == 0 && len(c.Unset) == 0
}

// Apply mutates doc in place: assignments first, then removals. Intermediate
// maps are created on demand for assignments; removals of absent paths are
// no-ops.
func (c UpdateCommand) Apply(doc Document) {
	for path, value := range c.Set {
		setPath(doc, path, value)
	}
	for _, path := range c.Unset {
		unsetPath(doc, path)
	}
}

// setPath walks the dotted path, creating intermediate maps as needed. A
// non-map value standing where an intermediate map belongs is overwritten.
func setPath(doc Document, path string, value interface{}) {
	parts := strings.Split(path, ".")
	current := map[string]interface{}(doc)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(current[part])
		if !ok {
			next = make(map[string]interface{})
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func unsetPath(doc Document, path string) {
	parts := strings.Split(path, ".")
	current := map[string]interface{}(doc)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(current[part])
		if !ok {
			return
		}
		current = next
	}
	delete(current, parts[len(parts)-1])
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch val := v.(type) {
	case map[string]interface{}:
		return val, true
	case Document:
		return val, true
	default:
		return nil, false
	}
}
