package types

import "fmt"

// Kind is a source-level type. Lists and strings carry no element or
// length information.
type Kind int

const (
	Invalid Kind = iota
	Int
	Bool
	Str
	List
	ID  // an unresolved name inside a constant, resolved by the checker
	Any // matches every kind; only the builtin print parameter uses it
)

var kindNames = [...]string{
	Invalid: "invalid",
	Int:     "int",
	Bool:    "bool",
	Str:     "str",
	List:    "list",
	ID:      "id",
	Any:     "any",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FromName maps a type spelled in source to its Kind.
func FromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && Kind(k) != Invalid {
			return Kind(k), true
		}
	}
	return Invalid, false
}

// Equal is the checker's notion of type equality: Any absorbs everything,
// otherwise the kinds must match.
func Equal(a, b Kind) bool {
	if a == Any || b == Any {
		return true
	}
	return a == b
}

// Iterable reports whether k can be indexed or sliced.
func Iterable(k Kind) bool {
	return Equal(k, List) || Equal(k, Str)
}
