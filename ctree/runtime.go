package ctree

// Runtime library entry points the lowered code calls by name.
const (
	NewList       = "new_list"
	Push          = "push"
	GetInt        = "getInt"
	GetList       = "getList"
	GetShort      = "getShort"
	GetString     = "getString"
	Slice         = "slice"
	ConcatLists   = "concat_lists"
	ConcatStrings = "concat_strings"
	NewString     = "new_string"
	StringInsert  = "stringInsert"
)

// Headers are included, in order, at the top of every emitted unit.
var Headers = []string{
	"python_print.h",
	"python_list.h",
	"python_string.h",
	"slicing.h",
}

// RuntimeSources are the C files the runtime library is built from. The
// driver copies them, with Headers, next to the emitted units.
var RuntimeSources = []string{
	"python_print.c",
	"python_list.c",
	"python_string.c",
	"slicing.c",
}
