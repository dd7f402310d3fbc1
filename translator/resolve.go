package translator

import (
	"fmt"

	"github.com/ir8co/pyssa/bytecode"
	"github.com/ir8co/pyssa/datastack"
	"github.com/ir8co/pyssa/irtype"
	"github.com/ir8co/pyssa/module"
	"github.com/ir8co/pyssa/symbols"
)

// resolveForUse turns a data stack cell into the Value and Info it denotes
// in an expression position, emitting whatever load instructions are
// needed along the way (spec §4.6: constant loads and name resolution are
// both deferred until the cell is actually consumed).
func resolveForUse(env *Env, co *bytecode.CodeObject, c datastack.Cell) (module.Value, irtype.Info, error) {
	switch cell := c.(type) {
	case datastack.ConstCell:
		return resolveConst(env, co, cell.Index)

	case datastack.NameCell:
		name, err := co.Name(cell.Index)
		if err != nil {
			return nil, irtype.Info{}, err
		}
		return resolveName(env, name)

	case datastack.VarNameCell:
		name, err := co.VarName(cell.Index)
		if err != nil {
			return nil, irtype.Info{}, err
		}
		info, ok := env.Symbols.Lookup(false, name)
		typ := irtype.ObjectType
		if ok {
			typ = info.Type.Typ
		}
		id := env.FreshIdent(irtype.Info{Typ: typ})
		env.PushInstr(module.Load{ID: id, Type: typ, Lval: module.Lval{Name: name}})
		return module.TempRef{ID: id}, irtype.Info{Typ: typ}, nil

	case datastack.TempCell:
		info, ok := env.IdentInfo(cell.ID)
		if !ok {
			return nil, irtype.Info{}, fmt.Errorf("temp n%d used before its type was recorded", cell.ID)
		}
		return module.TempRef{ID: cell.ID}, info, nil

	case datastack.CodeRef:
		return nil, irtype.Info{}, fmt.Errorf("code object %q used directly in an expression position", cell.QualifiedName)

	case datastack.BuildClassMarkerCell:
		return nil, irtype.Info{}, fmt.Errorf("__build_class__ marker used outside a class-build call")

	case datastack.MapCell:
		return nil, irtype.Info{}, fmt.Errorf("map cell used outside an annotation tuple")

	default:
		return nil, irtype.Info{}, fmt.Errorf("unresolvable stack cell %T", c)
	}
}

// resolveConst resolves a constant-pool entry into its IR value, wrapping
// primitives in the matching python_* primitive constructor (spec §4.6,
// Constant loads).
func resolveConst(env *Env, co *bytecode.CodeObject, idx int) (module.Value, irtype.Info, error) {
	k, err := co.Const(idx)
	if err != nil {
		return nil, irtype.Info{}, err
	}
	switch k.Kind {
	case bytecode.ConstInt:
		return module.Call{Callee: module.BuiltinRef{Name: "python_int"}, Args: []module.Value{module.IntLit{N: k.Int}}},
			irtype.Info{Typ: irtype.ObjectType}, nil
	case bytecode.ConstFloat:
		// No separate float wrapper is declared (spec §4.2 names only
		// int/bool/string/tuple primitive wrappers); float constants
		// are outside the modeled primitive subset.
		return nil, irtype.Info{}, fmt.Errorf("float constants are not part of the modeled primitive subset")
	case bytecode.ConstBool:
		b := int64(0)
		if k.Bool {
			b = 1
		}
		return module.Call{Callee: module.BuiltinRef{Name: "python_bool"}, Args: []module.Value{module.IntLit{N: b}}},
			irtype.Info{Typ: irtype.ObjectType}, nil
	case bytecode.ConstString:
		return module.Call{Callee: module.BuiltinRef{Name: "python_string"}, Args: []module.Value{module.StringLit{S: k.Str}}},
			irtype.Info{Typ: irtype.ObjectType}, nil
	case bytecode.ConstNone:
		return module.NullLit{}, irtype.Info{Typ: irtype.Type{Kind: irtype.None}}, nil
	case bytecode.ConstCode:
		return nil, irtype.Info{}, fmt.Errorf("nested code constant %d used directly in an expression position; it must be consumed by a store or the class-build sequence", idx)
	default:
		return nil, irtype.Info{}, fmt.Errorf("unknown constant kind %d", k.Kind)
	}
}

// resolveName resolves a global-name-table reference through the Symbol
// Registry: local, then global, then a builtin reference (spec §4.6, Name
// resolution). Host builtins (print, range, len, ...) not otherwise bound
// resolve to a builtin reference too, tracked generically in the Builtin
// Registry's host-name set (spec's "every referenced builtin is recorded").
func resolveName(env *Env, name string) (module.Value, irtype.Info, error) {
	if info, ok := env.Symbols.Lookup(false, name); ok {
		return loadSymbol(env, false, name, info), info.Type, nil
	}
	if info, ok := env.Symbols.Lookup(true, name); ok {
		if info.IsBuiltin {
			return module.BuiltinRef{Name: name}, info.Type, nil
		}
		return loadSymbol(env, true, name, info), info.Type, nil
	}
	if isHostBuiltin(name) {
		env.Builtins.MarkHost(name)
		return module.BuiltinRef{Name: name}, irtype.Info{Typ: irtype.ObjectType}, nil
	}
	// Unknown name: still a valid reference in this deliberately
	// best-effort translator — most likely a global defined later in
	// module order than it is read (e.g. mutual recursion). Treat it as
	// an as-yet-unregistered global load rather than failing the whole
	// translation.
	lval := module.Lval{Global: true, Name: irtype.Join(env.ModuleName(), name)}
	id := env.FreshIdent(irtype.ObjectInfo)
	env.PushInstr(module.Load{ID: id, Type: irtype.ObjectType, Lval: lval})
	return module.TempRef{ID: id}, irtype.ObjectInfo, nil
}

// loadSymbol emits the load instruction for a resolved, non-builtin
// symbol and returns the fresh temp referencing it.
func loadSymbol(env *Env, isGlobal bool, name string, info symbols.Info) module.Value {
	lval := module.Lval{Global: isGlobal, Name: qualifiedOrLocal(env, isGlobal, name)}
	id := env.FreshIdent(info.Type)
	env.PushInstr(module.Load{ID: id, Type: info.Type.Typ, Lval: lval})
	return module.TempRef{ID: id}
}

func qualifiedOrLocal(env *Env, isGlobal bool, name string) string {
	if isGlobal {
		return irtype.Join(env.ModuleName(), name)
	}
	return name
}

// isHostBuiltin reports whether name is one of the source language's
// built-in functions the translator recognizes as a direct $builtins.name
// callee (spec §4.6, Calls: "a known host builtin (e.g., print, range)").
func isHostBuiltin(name string) bool {
	switch name {
	case "print", "range", "len", "str", "int", "bool", "repr":
		return true
	default:
		return false
	}
}
