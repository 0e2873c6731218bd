package domain

// NamedPredicate is an immutable predicate descriptor: a stable name plus the
// boolean filter it denotes. The name is the only part the registry consults
// when translating a predicate to backend criteria; Match is executed solely
// by explicit full-scan paths.
type NamedPredicate struct {
	Name  string
	Match func(value interface{}, doc Document) bool
}

// FieldEquals returns the predicate "by_<field>" matching documents whose
// field equals the probed value. This is the shape every registry binding
// translates to, so it is the natural predicate to register alongside an
// index on that field.
func FieldEquals(field string) NamedPredicate {
	return NamedPredicate{
		Name: "by_" + field,
		Match: func(value interface{}, doc Document) bool {
			actual, exists := doc[field]
			return exists && ValuesEqual(actual, value)
		},
	}
}
