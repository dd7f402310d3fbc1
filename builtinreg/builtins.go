// Package builtinreg implements the Builtin Registry (spec §4.2): the set
// of internal "shim" builtins the translator may reference while lowering
// instructions, each with a fixed IR signature, plus the always-emitted
// primitive wrapper declarations.
//
// This mirrors the teacher's two-part builtin story: [object/builtins.go]'s
// Builtins table of named, fixed-arity host functions, and
// [code/code.go]'s Definition/Lookup table of fixed opcode shapes. Here
// the two ideas merge into one: every shim tag has both a name (for the
// `$builtins.<name>` reference the instruction lowering rules emit) and a
// fixed [Signature] (for the `declare` item the assembler emits).
package builtinreg

import (
	"sort"

	"github.com/ir8co/pyssa/irtype"
)

// Tag identifies one of the fixed builtin shims the translator can emit a
// reference to.
type Tag int

//nolint:revive
const (
	IsTrue Tag = iota
	BinaryAdd
	PythonCall
	PythonCallMethod
	PythonClass
	PythonClassConstructor
	PythonCode
	PythonIter
	PythonIterNext
	PythonLoadMethod
)

// Signature is a builtin's fixed, non-variadic operand/return shape.
// Builtins whose real arity varies by call site (python_call,
// python_call_method, python_class_constructor) record only their fixed
// leading operands here; the instruction-lowering rule appends the
// variable argument list when it knows the actual call.
type Signature struct {
	Name     string
	Operands []irtype.Type
	Returns  irtype.Type
	// Variadic marks a signature whose declared operand list is a prefix;
	// additional Object-typed arguments are accepted at call sites.
	Variadic bool
}

var signatures = map[Tag]Signature{
	IsTrue:                 {Name: "python_is_true", Operands: []irtype.Type{irtype.ObjectType}, Returns: irtype.Type{Kind: irtype.Int}},
	BinaryAdd:              {Name: "binary_add", Operands: []irtype.Type{irtype.ObjectType, irtype.ObjectType}, Returns: irtype.ObjectType},
	PythonCall:             {Name: "python_call", Operands: []irtype.Type{irtype.ObjectType}, Returns: irtype.ObjectType, Variadic: true},
	PythonCallMethod:       {Name: "python_call_method", Operands: []irtype.Type{irtype.Type{Kind: irtype.Method}}, Returns: irtype.ObjectType, Variadic: true},
	PythonClass:            {Name: "python_class", Operands: []irtype.Type{{Kind: irtype.String}}, Returns: irtype.Type{Kind: irtype.Class}},
	PythonClassConstructor: {Name: "python_class_constructor", Operands: []irtype.Type{{Kind: irtype.String}}, Returns: irtype.ObjectType, Variadic: true},
	PythonCode:             {Name: "python_code", Operands: []irtype.Type{{Kind: irtype.Code}}, Returns: irtype.ObjectType},
	PythonIter:             {Name: "python_iter", Operands: []irtype.Type{irtype.ObjectType}, Returns: irtype.ObjectType},
	PythonIterNext:         {Name: "python_iter_next", Operands: []irtype.Type{irtype.ObjectType}, Returns: irtype.Type{Kind: irtype.PyIterItem}},
	PythonLoadMethod:       {Name: "python_load_method", Operands: []irtype.Type{irtype.ObjectType, {Kind: irtype.String}}, Returns: irtype.Type{Kind: irtype.Method}},
}

// Lookup returns the fixed signature for a builtin tag.
func Lookup(t Tag) Signature {
	return signatures[t]
}

// primitiveWrapper is one of the four primitive-constructor builtins that
// are always declared regardless of whether the translator referenced
// them, per spec §4.2/§4.7(e).
type primitiveWrapper struct {
	Name    string
	Operand irtype.Type
	Returns irtype.Type
}

var primitiveWrappers = []primitiveWrapper{
	{Name: "python_int", Operand: irtype.Type{Kind: irtype.Int}, Returns: irtype.ObjectType},
	{Name: "python_bool", Operand: irtype.Type{Kind: irtype.Int}, Returns: irtype.ObjectType},
	{Name: "python_string", Operand: irtype.Type{Kind: irtype.String}, Returns: irtype.ObjectType},
	{Name: "python_tuple", Operand: irtype.ObjectType, Returns: irtype.ObjectType},
}

// Decl is a builtin declaration as the assembler emits it:
// `declare $builtins.<name>(operands...) : *Returns`.
type Decl struct {
	Name     string
	Operands []irtype.Type
	Returns  irtype.Type
	Variadic bool
}

// Registry tracks which builtin tags were referenced during translation
// of a module (spec's `builtins_seen`), plus any host-language builtins
// (print, range, len, ...) referenced by name but outside the fixed shim
// set — the instruction lowering rules reach for these whenever a CALL_
// FUNCTION's callee is an unbound name recognized as a host builtin
// (spec §4.6, Calls).
type Registry struct {
	seen     map[Tag]bool
	seenHost map[string]bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{seen: make(map[Tag]bool), seenHost: make(map[string]bool)}
}

// Mark records that tag was referenced somewhere in the emitted IR.
func (r *Registry) Mark(tag Tag) {
	r.seen[tag] = true
}

// Seen reports whether tag has been referenced.
func (r *Registry) Seen(tag Tag) bool {
	return r.seen[tag]
}

// MarkHost records that a host builtin was referenced by name.
func (r *Registry) MarkHost(name string) {
	r.seenHost[name] = true
}

// SeenHost reports whether a host builtin name has been referenced.
func (r *Registry) SeenHost(name string) bool {
	return r.seenHost[name]
}

// Decls returns the transitive closure of referenced builtin declarations
// plus the unconditional primitive wrappers (spec §4.7(e)), in a stable
// order: referenced shims first (declaration order of the Tag enum), then
// referenced host builtins (sorted by name, for determinism), then the
// always-emitted wrappers. Host builtins have no fixed signature in this
// model, so they declare a single variadic Object-typed operand.
func (r *Registry) Decls() []Decl {
	var out []Decl
	for _, tag := range orderedTags {
		if !r.seen[tag] {
			continue
		}
		sig := signatures[tag]
		out = append(out, Decl{Name: sig.Name, Operands: sig.Operands, Returns: sig.Returns, Variadic: sig.Variadic})
	}
	hostNames := make([]string, 0, len(r.seenHost))
	for name := range r.seenHost {
		hostNames = append(hostNames, name)
	}
	sort.Strings(hostNames)
	for _, name := range hostNames {
		out = append(out, Decl{Name: name, Operands: []irtype.Type{irtype.ObjectType}, Returns: irtype.ObjectType, Variadic: true})
	}
	for _, w := range primitiveWrappers {
		out = append(out, Decl{Name: w.Name, Operands: []irtype.Type{w.Operand}, Returns: w.Returns})
	}
	return out
}

// Reference returns every fixed-signature shim plus the always-emitted
// primitive wrappers, regardless of whether any were referenced — used by
// the CLI's `builtins` subcommand to print the full registry as
// documentation rather than one translation's closure.
func Reference() []Decl {
	var out []Decl
	for _, tag := range orderedTags {
		sig := signatures[tag]
		out = append(out, Decl{Name: sig.Name, Operands: sig.Operands, Returns: sig.Returns, Variadic: sig.Variadic})
	}
	for _, w := range primitiveWrappers {
		out = append(out, Decl{Name: w.Name, Operands: []irtype.Type{w.Operand}, Returns: w.Returns})
	}
	return out
}

var orderedTags = []Tag{
	IsTrue, BinaryAdd, PythonCall, PythonCallMethod, PythonClass,
	PythonClassConstructor, PythonCode, PythonIter, PythonIterNext, PythonLoadMethod,
}
