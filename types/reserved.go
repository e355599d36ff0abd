package types

import "strings"

// GeneratedPrefix starts every identifier minted by the compiler.
const GeneratedPrefix = "__"

// Names the emitted C unit already binds: the entry point and its
// parameters plus every runtime library function and macro.
var reservedNames = []string{
	"main",
	"argc",
	"argv",
	"new_list",
	"push",
	"getInt",
	"getList",
	"getShort",
	"getString",
	"slice",
	"concat_lists",
	"concat_strings",
	"new_string",
	"stringInsert",
	"insert",
	"pushInt",
	"pushShort",
	"pushList",
	"pushString",
	"getNode",
	"getStringFromList",
	"getStringFromString",
	"sliceList",
	"sliceString",
	"printInt",
	"printShort",
	"printList",
	"printString",
	"printf",
	"String",
	"List",
	"Node",
	"python_type",
	"python_string",
	"p_int",
	"p_bool",
	"p_list",
	"p_string",
}

// C keywords that are valid identifiers in source programs.
var cKeywords = []string{
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "enum", "extern", "float", "for", "goto", "inline", "long",
	"register", "restrict", "short", "signed", "sizeof", "static", "struct",
	"switch", "typedef", "union", "unsigned", "void", "volatile",
}

var reservedSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(reservedNames)+len(cKeywords))
	for _, n := range reservedNames {
		m[n] = struct{}{}
	}
	for _, n := range cKeywords {
		m[n] = struct{}{}
	}
	return m
}()

// ReservedNames returns a copy of the identifiers source programs may not bind.
func ReservedNames() []string {
	out := append([]string(nil), reservedNames...)
	return append(out, cKeywords...)
}

// IsReservedName reports whether name clashes with a generated, runtime or C name.
func IsReservedName(name string) bool {
	if strings.HasPrefix(name, GeneratedPrefix) {
		return true
	}
	_, ok := reservedSet[name]
	return ok
}
