package domain

// Filter is backend-native equality criteria: a conjunction of field
// equalities. The predicate registry only ever produces single-field
// filters, but backends accept any number of fields.
type Filter map[string]interface{}

// Matches checks whether a document satisfies every filter criterion.
func (f Filter) Matches(doc Document) bool {
	for field, expected := range f {
		actual, exists := doc[field]
		if !exists {
			return false
		}
		if !ValuesEqual(actual, expected) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two values for equality. Numeric types are coerced to
// float64 first since JSON decoding produces float64 while msgpack and
// application code produce concrete integer types.
func ValuesEqual(actual, expected interface{}) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}

	if actualNum, ok1 := toFloat64(actual); ok1 {
		if expectedNum, ok2 := toFloat64(expected); ok2 {
			return actualNum == expectedNum
		}
	}

	return actual == expected
}

func toFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
