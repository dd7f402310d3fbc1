// Package irtype defines the small closed set of types the Textual IR
// assigns to values, plus the qualified-name and source-location values
// threaded through the rest of the translator.
//
// Every value flowing through translation — a stack cell, a symbol, a
// temporary — eventually carries one of these types. User classes get a
// named record [Type] minted by [NewRecord]; everything else is one of the
// fixed primitive kinds.
package irtype

import "fmt"

// Kind distinguishes the fixed IR primitive types from named user records.
type Kind int

// The fixed set of primitive IR kinds. KindRecord is never used directly;
// a [Type] with Kind == KindRecord always carries a non-empty Name.
const (
	Object Kind = iota
	Int
	Float
	Bool
	String
	None
	Code
	Class
	PyIterItem
	Method
	KindRecord
)

//nolint:revive
func (k Kind) String() string {
	switch k {
	case Object:
		return "Object"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case None:
		return "None"
	case Code:
		return "Code"
	case Class:
		return "Class"
	case PyIterItem:
		return "PyIterItem"
	case Method:
		return "Method"
	case KindRecord:
		return "<record>"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is an IR type: one of the fixed primitive kinds, or a named record
// type standing in for a user-defined class.
type Type struct {
	Kind Kind
	// Name holds the record's name when Kind == KindRecord; empty otherwise.
	Name string
}

// ObjectType is the default IR type assigned when nothing more specific is known.
var ObjectType = Type{Kind: Object}

// NewRecord returns the named record type for a user class.
func NewRecord(name string) Type {
	return Type{Kind: KindRecord, Name: name}
}

// String renders the type the way it appears in Textual IR signatures,
// e.g. "*Object", "*PyIterItem", "*C".
func (t Type) String() string {
	if t.Kind == KindRecord {
		return "*" + t.Name
	}
	return "*" + t.Kind.String()
}

// IsRecord reports whether t names a user-class record type.
func (t Type) IsRecord() bool { return t.Kind == KindRecord }

// SourceLoc is a source location attached to qualified names and
// instructions for diagnostics; the line is the bytecode "starts_line"
// annotation when known, else 0.
type SourceLoc struct {
	File string
	Line int
}

// String renders a location as "file:line" (or just "file" when Line is 0).
func (l SourceLoc) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// QualifiedName is a dotted identifier locating a symbol within a module
// or class, e.g. "Module::fn" or "Module::Class::method".
type QualifiedName struct {
	Value string
	Loc   SourceLoc
}

// Join builds a qualified name by appending a segment to an existing one
// with the "::" separator the Textual IR grammar uses.
func Join(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + "::" + segment
}

// Info is the coarse type classification attached to symbols and
// temporaries.
type Info struct {
	IsCode  bool
	IsClass bool
	Typ     Type
}

// ObjectInfo is the default Info for a value whose type is not yet refined.
var ObjectInfo = Info{Typ: ObjectType}
