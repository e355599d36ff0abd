package compiler

type Scope[T any] struct {
	Elems map[string]T
}

func NewScope[T any]() Scope[T] {
	return Scope[T]{
		Elems: make(map[string]T),
	}
}

func PushScope[T any](scopes *[]Scope[T]) {
	*scopes = append(*scopes, NewScope[T]())
}

func PopScope[T any](scopes *[]Scope[T]) {
	if len(*scopes) == 1 {
		panic("cannot pop global scope")
	}
	*scopes = (*scopes)[:len(*scopes)-1]
}

// Put does not need a pointer, as it modifies the map within a scope, not the slice itself.
func Put[T any](scopes []Scope[T], name string, elem T) {
	scopes[len(scopes)-1].Elems[name] = elem
}

// Local reports whether name is bound in the innermost scope.
func Local[T any](scopes []Scope[T], name string) bool {
	_, ok := scopes[len(scopes)-1].Elems[name]
	return ok
}

func Get[T any](scopes []Scope[T], name string) (T, bool) {
	// Search from innermost scope outward
	for i := len(scopes) - 1; i >= 0; i-- {
		if e, ok := scopes[i].Elems[name]; ok {
			return e, true
		}
	}

	var zero T
	return zero, false
}
