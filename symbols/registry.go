// Package symbols implements the Symbol & Type Registry (spec §4.1): a
// two-scope (global, local) mapping from short names to symbol info, plus
// the function/method signature table and class registry the Module
// Assembler consults when emitting record types.
//
// Unlike the teacher compiler's arbitrarily-nested [SymbolTable] chain
// (global → enclosing functions → local, supporting closures), this
// registry only ever has the two scopes spec.md §3 describes: a symbol is
// either module-global or local to the one procedure currently being
// translated. Re-registering a name in the same scope overwrites the
// previous entry — this models the source language's shadowing semantics,
// not an error.
package symbols

import "github.com/ir8co/pyssa/irtype"

// Info is the registry entry for one symbol: its qualified name, whether
// it resolves to a builtin, and its coarse type info.
type Info struct {
	QualifiedName irtype.QualifiedName
	IsBuiltin     bool
	Type          irtype.Info
}

// Signature is an annotated parameter/return shape recorded for a
// function or method declaration.
type Signature struct {
	Params  []irtype.Type
	Returns irtype.Type
}

// sigKey identifies a function or method by its enclosing scope (the
// empty string for a module-level function) and its own name.
type sigKey struct {
	enclosing string
	name      string
}

// Registry holds the global and local symbol scopes for one module pass,
// plus the module-scoped function/method signature table and class list.
type Registry struct {
	global map[string]Info
	local  map[string]Info

	signatures map[sigKey]Signature
	classes    []string
	classSet   map[string]bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		global:     make(map[string]Info),
		local:      make(map[string]Info),
		signatures: make(map[sigKey]Signature),
		classSet:   make(map[string]bool),
	}
}

// ResetLocals clears the local scope; called on entry to a new procedure
// (spec §4.5's enter_proc). Globals, signatures, and classes persist
// across procedures since they are module-scoped.
func (r *Registry) ResetLocals() {
	r.local = make(map[string]Info)
}

// Register inserts name into the global or local scope, overwriting any
// existing entry for the same (scope, name) pair.
func (r *Registry) Register(isGlobal bool, name string, info Info) {
	if isGlobal {
		r.global[name] = info
	} else {
		r.local[name] = info
	}
}

// Lookup resolves name in the requested scope only; it does not fall back
// to the other scope. Callers that want "local shadows global" ordering
// call LookupLocalThenGlobal instead.
func (r *Registry) Lookup(isGlobal bool, name string) (Info, bool) {
	if isGlobal {
		info, ok := r.global[name]
		return info, ok
	}
	info, ok := r.local[name]
	return info, ok
}

// LookupLocalThenGlobal resolves name against the local scope first, then
// the global scope — the ordering the instruction-lowering rules use for
// LOAD_NAME.
func (r *Registry) LookupLocalThenGlobal(name string) (Info, bool) {
	if info, ok := r.local[name]; ok {
		return info, true
	}
	info, ok := r.global[name]
	return info, ok
}

// Globals returns a snapshot of every registered global symbol, used by
// the Module Assembler to emit `global` declarations.
func (r *Registry) Globals() map[string]Info {
	out := make(map[string]Info, len(r.global))
	for k, v := range r.global {
		out[k] = v
	}
	return out
}

// RegisterFunction records a function's or method's annotated signature,
// keyed by its enclosing class (empty for a plain module function) and
// name.
func (r *Registry) RegisterFunction(enclosing, name string, sig Signature) {
	r.signatures[sigKey{enclosing: enclosing, name: name}] = sig
}

// RegisterMethod is RegisterFunction with clearer intent at call sites
// that are definitely lowering a class method.
func (r *Registry) RegisterMethod(class, name string, sig Signature) {
	r.RegisterFunction(class, name, sig)
}

// LookupSignature finds a previously registered function or method
// signature.
func (r *Registry) LookupSignature(enclosing, name string) (Signature, bool) {
	sig, ok := r.signatures[sigKey{enclosing: enclosing, name: name}]
	return sig, ok
}

// RegisterClass appends name to the ordered list of known classes, unless
// it is already present.
func (r *Registry) RegisterClass(name string) {
	if r.classSet[name] {
		return
	}
	r.classSet[name] = true
	r.classes = append(r.classes, name)
}

// Classes returns the classes registered so far, in registration order.
func (r *Registry) Classes() []string {
	out := make([]string, len(r.classes))
	copy(out, r.classes)
	return out
}

// IsClass reports whether name has been registered as a class.
func (r *Registry) IsClass(name string) bool {
	return r.classSet[name]
}
