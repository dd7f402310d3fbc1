package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ir8co/pyssa/irtype"
)

func TestLookupLocalThenGlobalPrefersLocal(t *testing.T) {
	r := New()
	r.Register(true, "x", Info{QualifiedName: irtype.QualifiedName{Value: "m::x"}, Type: irtype.Info{Typ: irtype.ObjectType}})
	r.Register(false, "x", Info{QualifiedName: irtype.QualifiedName{Value: "x"}, Type: irtype.Info{Typ: irtype.Type{Kind: irtype.Int}}})

	info, ok := r.LookupLocalThenGlobal("x")
	require.True(t, ok)
	assert.Equal(t, irtype.Type{Kind: irtype.Int}, info.Type.Typ)
}

func TestResetLocalsClearsOnlyLocalScope(t *testing.T) {
	r := New()
	r.Register(true, "g", Info{QualifiedName: irtype.QualifiedName{Value: "m::g"}})
	r.Register(false, "l", Info{QualifiedName: irtype.QualifiedName{Value: "l"}})

	r.ResetLocals()

	_, ok := r.Lookup(false, "l")
	assert.False(t, ok)
	_, ok = r.Lookup(true, "g")
	assert.True(t, ok)
}

func TestFunctionSignatureIsScopedByEnclosingClass(t *testing.T) {
	r := New()
	r.RegisterFunction("", "f", Signature{Returns: irtype.ObjectType})
	r.RegisterMethod("C", "f", Signature{Returns: irtype.Type{Kind: irtype.Int}})

	plain, ok := r.LookupSignature("", "f")
	require.True(t, ok)
	assert.Equal(t, irtype.ObjectType, plain.Returns)

	method, ok := r.LookupSignature("C", "f")
	require.True(t, ok)
	assert.Equal(t, irtype.Type{Kind: irtype.Int}, method.Returns)
}

func TestRegisterClassIsIdempotentAndOrderPreserving(t *testing.T) {
	r := New()
	r.RegisterClass("B")
	r.RegisterClass("A")
	r.RegisterClass("B")

	assert.Equal(t, []string{"B", "A"}, r.Classes())
	assert.True(t, r.IsClass("A"))
	assert.False(t, r.IsClass("Z"))
}

func TestGlobalsReturnsASnapshotNotALiveView(t *testing.T) {
	r := New()
	r.Register(true, "x", Info{QualifiedName: irtype.QualifiedName{Value: "m::x"}})

	snapshot := r.Globals()
	r.Register(true, "y", Info{QualifiedName: irtype.QualifiedName{Value: "m::y"}})

	_, hasY := snapshot["y"]
	assert.False(t, hasY)
	assert.Len(t, snapshot, 1)
}
