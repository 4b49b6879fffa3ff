package reactive

import "reflect"

// defaultEqual returns the equality used when no custom function is set.
//
// Comparable types compare with ==. Types that may hold interface values
// (interfaces, or structs and arrays containing them) compare with == only
// when both dynamic values are comparable. Non-comparable types (slices,
// maps, funcs and aggregates of them) return nil: every write or
// recomputation counts as a change. The last rule is the skip-if-equal
// trade-off; supply WithEquals to opt such types into suppression.
func defaultEqual[T any]() func(a, b T) bool {
	typ := reflect.TypeFor[T]()
	if !typ.Comparable() {
		return nil
	}
	if mayHoldInterface(typ) {
		return func(a, b T) bool {
			return dynamicEqual(any(a), any(b))
		}
	}
	return func(a, b T) bool {
		return any(a) == any(b)
	}
}

// dynamicEqual compares two values whose dynamic types may not be
// comparable. A runtime comparison panic counts as "not equal".
func dynamicEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// mayHoldInterface reports whether values of typ can contain an interface
// whose dynamic type is not comparable.
func mayHoldInterface(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Interface:
		return true
	case reflect.Array:
		return mayHoldInterface(typ.Elem())
	case reflect.Struct:
		for i := range typ.NumField() {
			if mayHoldInterface(typ.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
