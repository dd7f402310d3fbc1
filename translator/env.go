// Package translator implements the specification's core: the Environment
// (spec §4.5), the per-opcode Instruction Lowering rules (spec §4.6), and
// the Module Assembler (spec §4.7) that drives translation of a top-level
// code object and every nested code object into a Textual IR module.
//
// The shape of [Env] mirrors the teacher's [compiler.Compiler] /
// [compiler.CompilationScope]: a mutable builder threaded imperatively
// through one procedure's translation, reset on entry to each new
// procedure (spec's enter_proc), with module-scoped state (global symbols,
// builtins seen, registered functions and classes) surviving across
// procedures the way the teacher's top-level [compiler.SymbolTable] and
// constant pool survive across nested function scopes.
package translator

import (
	"github.com/ir8co/pyssa/builtinreg"
	"github.com/ir8co/pyssa/datastack"
	"github.com/ir8co/pyssa/irtype"
	"github.com/ir8co/pyssa/label"
	"github.com/ir8co/pyssa/module"
	"github.com/ir8co/pyssa/symbols"
)

// Env is the state threaded through translation of one module. Most
// fields are procedure-scoped and reset by EnterProc; Symbols' global
// scope, Builtins, and the registered function/class tables are
// module-scoped and persist across EnterProc calls.
type Env struct {
	lastLoc irtype.SourceLoc

	stack    *datastack.Stack
	instrBuf []module.Instr

	freshIDCtr int
	tempInfo   map[int]irtype.Info

	labels *label.Registry

	Symbols  *symbols.Registry
	Builtins *builtinreg.Registry

	isToplevel bool

	// moduleName prefixes every qualified name this translation unit
	// produces, e.g. "main" for "main::f".
	moduleName string

	// currentClass is the class currently being translated (its body or
	// one of its methods), empty outside a class. Used to infer record
	// fields from `self.x = v` stores (spec §4.6, Attribute access).
	currentClass string
	// classFields accumulates, per class name, the fields inferred from
	// self-attribute stores seen anywhere in that class's methods.
	classFields map[string][]module.Field
	classFieldSeen map[string]map[string]bool
}

// NewEnv creates a fresh, module-scoped Env for translating moduleName.
func NewEnv(moduleName string) *Env {
	return &Env{
		stack:          datastack.New(),
		tempInfo:       make(map[int]irtype.Info),
		labels:         label.New(),
		Symbols:        symbols.New(),
		Builtins:       builtinreg.New(),
		moduleName:     moduleName,
		classFields:    make(map[string][]module.Field),
		classFieldSeen: make(map[string]map[string]bool),
	}
}

// EnterProc resets every procedure-scoped piece of state: the data stack,
// the instruction buffer, the fresh-identifier counter, the label
// registry, and the local symbol scope. Globals, builtins_seen, function
// signatures, and classes persist (spec §3, Lifecycles).
func (e *Env) EnterProc(isToplevel bool, class string) {
	e.stack.Reset()
	e.instrBuf = nil
	e.freshIDCtr = 0
	e.tempInfo = make(map[int]irtype.Info)
	e.labels = label.New()
	e.Symbols.ResetLocals()
	e.isToplevel = isToplevel
	e.currentClass = class
}

// EnterNode resets only the instruction buffer; kept for parity with
// spec §4.5's enter_node. The translator itself does not call it: the
// buffer is emptied by DrainInstrs when a block is closed.
func (e *Env) EnterNode() {
	e.instrBuf = nil
}

// FreshIdent mints a new SSA identifier and records its type info.
func (e *Env) FreshIdent(info irtype.Info) int {
	id := e.freshIDCtr
	e.freshIDCtr++
	e.tempInfo[id] = info
	return id
}

// IdentInfo returns the recorded type info for a previously minted
// identifier.
func (e *Env) IdentInfo(id int) (irtype.Info, bool) {
	info, ok := e.tempInfo[id]
	return info, ok
}

// Push appends a cell to the data stack.
func (e *Env) Push(c datastack.Cell) {
	e.stack.Push(c)
}

// Pop removes and returns the top data stack cell. It is a translation
// error (spec §4.3) to pop an empty stack.
func (e *Env) Pop() (datastack.Cell, bool) {
	return e.stack.Pop()
}

// StackSnapshot returns the live stack cells, bottom first.
func (e *Env) StackSnapshot() []datastack.Cell {
	return e.stack.Snapshot()
}

// ResetStack empties the data stack (spec's reset_stack), used once a
// block's live cells have been materialized as SSA parameters.
func (e *Env) ResetStack() {
	e.stack.Reset()
}

// ReplaceStack discards the current stack and pushes cells in order —
// used when a new block is entered and its SSA parameters are
// materialized back onto the stack as TempCells.
func (e *Env) ReplaceStack(cells []datastack.Cell) {
	e.stack.ReplaceAll(cells)
}

// PushInstr appends an instruction to the current block's buffer.
func (e *Env) PushInstr(i module.Instr) {
	e.instrBuf = append(e.instrBuf, i)
}

// DrainInstrs returns the buffered instructions and resets the buffer,
// used when a block is closed.
func (e *Env) DrainInstrs() []module.Instr {
	out := e.instrBuf
	e.instrBuf = nil
	return out
}

// UpdateLastLine records the most recently seen source line, used for
// diagnostics.
func (e *Env) UpdateLastLine(line int) {
	if line != 0 {
		e.lastLoc.Line = line
	}
}

// Loc returns the current source location.
func (e *Env) Loc() irtype.SourceLoc {
	return e.lastLoc
}

// IsToplevel reports whether the procedure currently being translated is
// the module's top-level code object.
func (e *Env) IsToplevel() bool {
	return e.isToplevel
}

// Labels returns the current procedure's Label/Block Manager.
func (e *Env) Labels() *label.Registry {
	return e.labels
}

// QualifyLocal builds the qualified name for a module-level or
// class-enclosed symbol given its short name.
func (e *Env) QualifyLocal(name string) string {
	if e.currentClass != "" {
		return irtype.Join(irtype.Join(e.moduleName, e.currentClass), name)
	}
	return irtype.Join(e.moduleName, name)
}

// RecordSelfField notes that class's record type has a field named
// attr with type t, inferred from a `self.attr = v: *T` store (spec
// §4.6/§8 Class fields). Re-recording the same field name keeps the
// first-seen type, matching the assembler's "first registration defines
// the shape" convention used elsewhere.
func (e *Env) RecordSelfField(class, attr string, t irtype.Type) {
	seen, ok := e.classFieldSeen[class]
	if !ok {
		seen = make(map[string]bool)
		e.classFieldSeen[class] = seen
	}
	if seen[attr] {
		return
	}
	seen[attr] = true
	e.classFields[class] = append(e.classFields[class], module.Field{Name: attr, Type: t})
}

// ClassFields returns the inferred record fields for class, in
// first-seen order.
func (e *Env) ClassFields(class string) []module.Field {
	return e.classFields[class]
}

// CurrentClass returns the class currently being translated, or "" if
// translating a plain function or the module top level.
func (e *Env) CurrentClass() string {
	return e.currentClass
}

// ModuleName returns the name this translation unit's qualified names are
// prefixed with.
func (e *Env) ModuleName() string {
	return e.moduleName
}
