package translator

import (
	"fmt"

	"github.com/ir8co/pyssa/builtinreg"
	"github.com/ir8co/pyssa/bytecode"
	"github.com/ir8co/pyssa/datastack"
	"github.com/ir8co/pyssa/irtype"
	"github.com/ir8co/pyssa/module"
)

// lowerBuildClass recognizes the BuildClassMarker call sequence (spec
// §4.6, Class building / §9's open question on the handshake): the
// popped argument list must be (code-object, name, ...bases). Base
// classes are accepted but not modeled further (spec's Non-goals exclude
// metaclass protocols). A malformed sequence is reported rather than
// silently miscompiled.
func lowerBuildClass(env *Env, pb *procBuilder, co *bytecode.CodeObject, argCells []datastack.Cell) error {
	if len(argCells) < 2 {
		return fmt.Errorf("malformed __build_class__ sequence: expected (code, name, ...bases), got %d argument(s)", len(argCells))
	}
	codeCell, ok := argCells[0].(datastack.CodeRef)
	if !ok {
		return fmt.Errorf("malformed __build_class__ sequence: first argument is not a code object")
	}
	nameCell, ok := argCells[1].(datastack.ConstCell)
	if !ok {
		return fmt.Errorf("malformed __build_class__ sequence: second argument is not a constant class name")
	}
	nameConst, err := co.Const(nameCell.Index)
	if err != nil {
		return err
	}
	if nameConst.Kind != bytecode.ConstString {
		return fmt.Errorf("malformed __build_class__ sequence: class name constant is not a string")
	}
	className := nameConst.Str

	bodyConst, err := co.Const(codeCell.Const)
	if err != nil {
		return err
	}
	if bodyConst.Kind != bytecode.ConstCode || bodyConst.Code == nil {
		return fmt.Errorf("malformed __build_class__ sequence: class body argument is not a code object")
	}

	env.Symbols.RegisterClass(className)
	pb.nested = append(pb.nested, procWork{
		co:          bodyConst.Code,
		qualifiedName: className,
		class:       className,
		isClassBody: true,
	})

	env.Builtins.Mark(builtinreg.PythonClass)
	id := env.FreshIdent(irtype.Info{Typ: irtype.Type{Kind: irtype.Class}, IsClass: true})
	env.PushInstr(module.Bind{ID: id, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.PythonClass).Name},
		Args:   []module.Value{module.StringLit{S: className}},
	}})
	env.Push(datastack.TempCell{ID: id})
	return nil
}

// lowerClassConstruction lowers a call whose callee names a known class
// (spec §4.6: "at construction sites python_class_constructor(\"Name\",
// args…) produces an instance typed as the class record").
func lowerClassConstruction(env *Env, co *bytecode.CodeObject, className string, argCells []datastack.Cell) error {
	args := make([]module.Value, len(argCells))
	for i, c := range argCells {
		v, _, err := resolveForUse(env, co, c)
		if err != nil {
			return err
		}
		args[i] = v
	}
	env.Builtins.Mark(builtinreg.PythonClassConstructor)
	id := env.FreshIdent(irtype.Info{Typ: irtype.NewRecord(className)})
	env.PushInstr(module.Bind{ID: id, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.PythonClassConstructor).Name},
		Args:   append([]module.Value{module.StringLit{S: className}}, args...),
	}})
	env.Push(datastack.TempCell{ID: id})
	return nil
}
