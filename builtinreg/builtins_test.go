package builtinreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFixedSignatures(t *testing.T) {
	tests := []struct {
		tag      Tag
		name     string
		variadic bool
	}{
		{IsTrue, "python_is_true", false},
		{BinaryAdd, "binary_add", false},
		{PythonCall, "python_call", true},
		{PythonCallMethod, "python_call_method", true},
		{PythonClass, "python_class", false},
		{PythonClassConstructor, "python_class_constructor", true},
		{PythonIter, "python_iter", false},
		{PythonIterNext, "python_iter_next", false},
		{PythonLoadMethod, "python_load_method", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Lookup(tt.tag)
			assert.Equal(t, tt.name, sig.Name)
			assert.Equal(t, tt.variadic, sig.Variadic)
		})
	}
}

func TestDeclsOnlyIncludesSeenTagsAndAlwaysIncludesPrimitiveWrappers(t *testing.T) {
	r := New()
	decls := r.Decls()
	require.Len(t, decls, 4, "nothing marked yet: only the four primitive wrappers")

	r.Mark(BinaryAdd)
	decls = r.Decls()
	require.Len(t, decls, 5)
	assert.Equal(t, "binary_add", decls[0].Name)
}

func TestDeclsOrdersHostBuiltinsBetweenShimsAndWrappers(t *testing.T) {
	r := New()
	r.Mark(PythonCall)
	r.MarkHost("range")
	r.MarkHost("print")

	decls := r.Decls()
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"python_call", "print", "range", "python_int", "python_bool", "python_string", "python_tuple"}, names)
}

func TestSeenHostReportsOnlyMarkedNames(t *testing.T) {
	r := New()
	assert.False(t, r.SeenHost("print"))
	r.MarkHost("print")
	assert.True(t, r.SeenHost("print"))
	assert.False(t, r.SeenHost("len"))
}

func TestReferenceIsUnconditional(t *testing.T) {
	// Reference lists everything regardless of Mark/MarkHost state, for the
	// `builtins` CLI subcommand's documentation output.
	decls := Reference()
	assert.Len(t, decls, len(orderedTags)+4)
}
