// Package module is the Textual IR output model (spec §6): typed
// procedure declarations, global variable declarations, record type
// declarations, and external builtin declarations, built from basic
// blocks of a small typed instruction grammar.
//
// This is the structural counterpart of the teacher's compiled-artifact
// types ([object.CompiledFunction], [object.Closure]): where the teacher
// bundles a flat [code.Instructions] byte stream with a local count and a
// parameter count, a [Proc] here bundles a list of [Block]s, each with
// its own SSA parameters, because the output of this translator is
// basic-block structured rather than a flat instruction tape.
package module

import "github.com/ir8co/pyssa/irtype"

// Value is an operand appearing on the right-hand side of an instruction:
// a previously bound temporary, a global/local/builtin reference, a
// literal, a call, or the null constant.
type Value interface {
	value()
}

// TempRef references a previously bound SSA identifier.
type TempRef struct{ ID int }

func (TempRef) value() {}

// GlobalRef is `&module::x`.
type GlobalRef struct{ Name string }

func (GlobalRef) value() {}

// LocalRef is `&x`.
type LocalRef struct{ Name string }

func (LocalRef) value() {}

// BuiltinRef is `$builtins.<name>`.
type BuiltinRef struct{ Name string }

func (BuiltinRef) value() {}

// IntLit, BoolLit, and StringLit are literal operands, used only as call
// arguments: the payload of a primitive-wrapper call (e.g.
// `python_int(42)`) and the string operand of python_class,
// python_class_constructor and python_load_method.
type IntLit struct{ N int64 }

func (IntLit) value() {}

type FloatLit struct{ F float64 }

func (FloatLit) value() {}

type BoolLit struct{ B bool }

func (BoolLit) value() {}

type StringLit struct{ S string }

func (StringLit) value() {}

// NullLit is the `null` constant.
type NullLit struct{}

func (NullLit) value() {}

// Call is a call expression: `callee(args...)`.
type Call struct {
	Callee Value
	Args   []Value
}

func (Call) value() {}

// Lval is the target of a store or the source of a load: a global or
// local reference.
type Lval struct {
	Global bool
	Name   string
}

// String renders an lval as `&module::x` or `&x`.
func (l Lval) String() string {
	if l.Global {
		return "&" + l.Name
	}
	return "&" + l.Name
}

// Instr is one instruction in a block's body.
type Instr interface {
	instr()
}

// Store is `store &lval <- rhs: *T`.
type Store struct {
	Lval Lval
	Rhs  Value
	Type irtype.Type
}

func (Store) instr() {}

// Bind is `n = rhs`, the untyped id-binding form (used for call results
// whose type is carried by the callee's declared signature).
type Bind struct {
	ID  int
	Rhs Value
}

func (Bind) instr() {}

// Load is `n:*T = load &lval`.
type Load struct {
	ID   int
	Type irtype.Type
	Lval Lval
}

func (Load) instr() {}

// AttrLoad is `n = base.?.attr`.
type AttrLoad struct {
	ID   int
	Base Value
	Attr string
}

func (AttrLoad) instr() {}

// AttrStore is `store base.?.attr <- v:*T`.
type AttrStore struct {
	Base Value
	Attr string
	Rhs  Value
	Type irtype.Type
}

func (AttrStore) instr() {}

// JmpTarget is one successor of a Jmp: the block label and the SSA
// arguments supplied to it.
type JmpTarget struct {
	Label string
	Args  []Value
}

// Jmp is `jmp label(args...)` with one target (unconditional/fall-through)
// or two (a conditional's true/false arms).
type Jmp struct {
	Targets []JmpTarget
}

func (Jmp) instr() {}

// Prune is `prune e` or, when Negate is set, `prune __sil_lnot(e)`.
type Prune struct {
	Operand Value
	Negate  bool
}

func (Prune) instr() {}

// Ret is `ret e`.
type Ret struct {
	Value Value
}

func (Ret) instr() {}

// BlockParam is one SSA parameter of a block.
type BlockParam struct {
	ID   int
	Type irtype.Type
}

// Block is `#label(params): instr...`.
type Block struct {
	Label  string
	Params []BlockParam
	Instrs []Instr
}

// ProcParam is one declared parameter of a procedure.
type ProcParam struct {
	Name string
	Type irtype.Type
}

// Proc is `define <qualified_name>(param: *T, ...) : *R { <blocks> }`.
type Proc struct {
	Name    string
	Params  []ProcParam
	Returns irtype.Type
	Blocks  []*Block
}

// Global is `global <qualified_name>: *T`.
type Global struct {
	Name string
	Type irtype.Type
}

// Field is one member of a record type declaration.
type Field struct {
	Name string
	Type irtype.Type
}

// TypeDecl is `type Name = {field: *T; ...}`.
type TypeDecl struct {
	Name   string
	Fields []Field
}

// BuiltinDecl is `declare $builtins.<name>(params) : *T`.
type BuiltinDecl struct {
	Name     string
	Operands []irtype.Type
	Returns  irtype.Type
	Variadic bool
}

// Module is the full Textual IR translation unit.
type Module struct {
	SourceLanguage string
	Procs          []*Proc
	Globals        []Global
	Types          []TypeDecl
	Builtins       []BuiltinDecl
}
