package domain

// Document represents a single backend document: the raw record form of an
// entity. The store is agnostic to every field except the configured key.
type Document map[string]interface{}

// Clone returns a field-by-field copy of the document. Nested maps produced
// by JSON or msgpack decoding are copied recursively so a caller can mutate
// the result without affecting stored state.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Document:
		return val.Clone()
	case map[string]interface{}:
		// Keep the plain map type so callers asserting on decoded shapes
		// see what the codec produced.
		return map[string]interface{}(Document(val).Clone())
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
