package translator

import (
	"fmt"

	"github.com/ir8co/pyssa/builtinreg"
	"github.com/ir8co/pyssa/bytecode"
	"github.com/ir8co/pyssa/datastack"
	"github.com/ir8co/pyssa/irtype"
	"github.com/ir8co/pyssa/label"
	"github.com/ir8co/pyssa/module"
	"github.com/ir8co/pyssa/symbols"
)

// procWork is one unit of the Module Assembler's work list: a code object
// still waiting to be translated into a procedure, together with the
// qualified name it was bound to and the class that encloses it, if any.
// It plays the role the teacher's [vm.Frame] plays for the VM's call
// stack, generalized from "one frame of execution" to "one code object
// still owed a translation".
type procWork struct {
	co            *bytecode.CodeObject
	qualifiedName string
	class         string
	isToplevel    bool

	// isClassBody marks a code object that is a class's __build_class__
	// body rather than a real procedure: it is still translated (its
	// STORE_NAME sequence is what discovers the class's methods) but its
	// resulting Proc is discarded by the assembler rather than emitted.
	isClassBody bool
}

// translateProc lowers one code object's instructions into a *module.Proc,
// returning any nested code objects discovered along the way (function
// definitions and class bodies) for the assembler to enqueue.
func translateProc(env *Env, w procWork) (*module.Proc, []procWork, error) {
	co := w.co
	if len(co.Instrs) == 0 {
		return nil, nil, fmt.Errorf("code object %q has no instructions", w.qualifiedName)
	}

	env.EnterProc(w.isToplevel, w.class)
	pb := &procBuilder{env: env, co: co}

	entryInfo, err := env.Labels().Register(co.Instrs[0].Offset, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := pb.openBlockAt(co.Instrs[0].Offset, entryInfo); err != nil {
		return nil, nil, err
	}

	blockOpen := true
	for i := 0; i < len(co.Instrs); i++ {
		ins := co.Instrs[i]
		env.UpdateLastLine(ins.Line)

		if !blockOpen {
			info, ok := env.Labels().LabelAt(ins.Offset)
			if !ok {
				info, err = env.Labels().Register(ins.Offset, nil, nil)
				if err != nil {
					return nil, nil, err
				}
			}
			if env.Labels().IsProcessed(ins.Offset) {
				// A back-edge re-targets an already-lowered block
				// (spec's "processed" guard); nothing further to do —
				// every preceding instruction already jumped here.
				blockOpen = false
				continue
			}
			if err := pb.openBlockAt(ins.Offset, info); err != nil {
				return nil, nil, err
			}
			blockOpen = true
		} else if info, ok := env.Labels().LabelAt(ins.Offset); ok && !info.Processed {
			if err := pb.closeWithJump(ins.Offset); err != nil {
				return nil, nil, err
			}
			if err := pb.openBlockAt(ins.Offset, info); err != nil {
				return nil, nil, err
			}
		} else if ins.Op == "FOR_ITER" {
			// FOR_ITER is a loop header re-entered by a later back-edge
			// (JUMP_ABSOLUTE to this same offset); give it its own block
			// on first encounter too, instead of lowering it inline and
			// leaving the eventual back-edge registering a label that
			// nothing would ever open.
			if err := pb.closeWithJump(ins.Offset); err != nil {
				return nil, nil, err
			}
			info, ok := env.Labels().LabelAt(ins.Offset)
			if !ok {
				return nil, nil, fmt.Errorf("internal: FOR_ITER label missing at offset %d", ins.Offset)
			}
			if err := pb.openBlockAt(ins.Offset, info); err != nil {
				return nil, nil, err
			}
		}

		nextOffset := -1
		if i+1 < len(co.Instrs) {
			nextOffset = co.Instrs[i+1].Offset
		}
		closed, err := lowerInstr(env, pb, co, ins, nextOffset)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: offset %d (%s): %w", w.qualifiedName, ins.Offset, ins.Op, err)
		}
		blockOpen = !closed
	}

	if blockOpen {
		env.PushInstr(module.Ret{Value: module.NullLit{}})
		pb.closeBlock()
	}

	sig, _ := env.Symbols.LookupSignature(w.class, shortName(w.qualifiedName))
	params := make([]module.ProcParam, co.ArgCount)
	for i := 0; i < co.ArgCount; i++ {
		name := "arg"
		if i < len(co.VarNames) {
			name = co.VarNames[i]
		}
		typ := irtype.ObjectType
		if i < len(sig.Params) {
			typ = sig.Params[i]
		}
		params[i] = module.ProcParam{Name: name, Type: typ}
		env.Symbols.Register(false, name, symbols.Info{
			QualifiedName: irtype.QualifiedName{Value: name},
			Type:          irtype.Info{Typ: typ},
		})
	}
	returns := irtype.ObjectType
	if sig.Returns.Kind != irtype.Object || sig.Returns.Name != "" {
		returns = sig.Returns
	}

	return &module.Proc{
		Name:    w.qualifiedName,
		Params:  params,
		Returns: returns,
		Blocks:  pb.blocks,
	}, pb.nested, nil
}

func shortName(qualified string) string {
	for i := len(qualified) - 1; i >= 1; i-- {
		if qualified[i] == ':' && qualified[i-1] == ':' {
			return qualified[i+1:]
		}
	}
	return qualified
}

// lowerInstr lowers one instruction, returning whether it closed the
// current block (a jump or return).
func lowerInstr(env *Env, pb *procBuilder, co *bytecode.CodeObject, ins bytecode.Instruction, nextOffset int) (bool, error) {
	switch ins.Op {
	case "LOAD_CONST":
		return false, lowerLoadConst(env, co, ins)
	case "LOAD_NAME", "LOAD_GLOBAL":
		env.Push(datastack.NameCell{Index: ins.Arg})
		return false, nil
	case "LOAD_FAST":
		env.Push(datastack.VarNameCell{Index: ins.Arg})
		return false, nil
	case "STORE_NAME", "STORE_GLOBAL", "STORE_FAST":
		return false, lowerStore(env, pb, co, ins)
	case "LOAD_ATTR":
		return false, lowerLoadAttr(env, co, ins)
	case "STORE_ATTR":
		return false, lowerStoreAttr(env, co, ins)
	case "BINARY_ADD":
		return false, lowerBinaryAdd(env, co)
	case "CALL_FUNCTION":
		return false, lowerCallFunction(env, pb, co, ins)
	case "LOAD_METHOD":
		return false, lowerLoadMethod(env, co, ins)
	case "CALL_METHOD":
		return false, lowerCallMethod(env, co, ins)
	case "GET_ITER":
		return false, lowerGetIter(env, co)
	case "FOR_ITER":
		if nextOffset < 0 {
			return true, fmt.Errorf("FOR_ITER at offset %d has no following instruction", ins.Offset)
		}
		return true, lowerForIter(env, pb, co, ins, nextOffset)
	case "POP_JUMP_IF_FALSE":
		if nextOffset < 0 {
			return true, fmt.Errorf("%s at offset %d has no following instruction", ins.Op, ins.Offset)
		}
		return true, lowerPopJumpIf(env, pb, co, ins, false, nextOffset)
	case "POP_JUMP_IF_TRUE":
		if nextOffset < 0 {
			return true, fmt.Errorf("%s at offset %d has no following instruction", ins.Op, ins.Offset)
		}
		return true, lowerPopJumpIf(env, pb, co, ins, true, nextOffset)
	case "JUMP_ABSOLUTE", "JUMP_FORWARD":
		return true, pb.closeWithJump(ins.Arg)
	case "JUMP_IF_TRUE_OR_POP":
		if nextOffset < 0 {
			return true, fmt.Errorf("%s at offset %d has no following instruction", ins.Op, ins.Offset)
		}
		return true, lowerJumpIfOrPop(env, pb, co, ins, true, nextOffset)
	case "JUMP_IF_FALSE_OR_POP":
		if nextOffset < 0 {
			return true, fmt.Errorf("%s at offset %d has no following instruction", ins.Op, ins.Offset)
		}
		return true, lowerJumpIfOrPop(env, pb, co, ins, false, nextOffset)
	case "RETURN_VALUE":
		return true, lowerReturn(env, pb, co)
	case "POP_TOP":
		_, ok := env.Pop()
		if !ok {
			return false, fmt.Errorf("POP_TOP on empty stack")
		}
		return false, nil
	case "LOAD_BUILD_CLASS":
		env.Push(datastack.BuildClassMarkerCell{})
		return false, nil
	default:
		return false, fmt.Errorf("unsupported construct: opcode %s", ins.Op)
	}
}

func lowerLoadConst(env *Env, co *bytecode.CodeObject, ins bytecode.Instruction) error {
	k, err := co.Const(ins.Arg)
	if err != nil {
		return err
	}
	if k.Kind == bytecode.ConstCode && k.Code != nil {
		nested := k.Code
		qname := env.QualifyLocal(nested.Name)
		env.Push(datastack.CodeRef{
			IsFunOrClass:  nested.IsFunction || nested.IsClass,
			QualifiedName: qname,
			Const:         ins.Arg,
		})
		return nil
	}
	env.Push(datastack.ConstCell{Index: ins.Arg})
	return nil
}

func lowerStore(env *Env, pb *procBuilder, co *bytecode.CodeObject, ins bytecode.Instruction) error {
	isGlobal := ins.Op != "STORE_FAST"
	var name string
	var err error
	if isGlobal {
		name, err = co.Name(ins.Arg)
	} else {
		name, err = co.VarName(ins.Arg)
	}
	if err != nil {
		return err
	}
	if ins.Op == "STORE_NAME" {
		isGlobal = env.IsToplevel()
	}

	cell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("%s on empty stack", ins.Op)
	}

	if ref, isCode := cell.(datastack.CodeRef); isCode && ref.IsFunOrClass {
		constEntry, err := co.Const(ref.Const)
		if err != nil {
			return err
		}
		nested := constEntry.Code
		if nested.IsClass {
			return fmt.Errorf("class %q bound via plain store instead of the __build_class__ sequence", name)
		}
		sig := functionSignature(nested)
		enclosing := env.CurrentClass()
		env.Symbols.RegisterFunction(enclosing, name, sig)
		env.Symbols.Register(isGlobal, name, symbols.Info{
			QualifiedName: irtype.QualifiedName{Value: ref.QualifiedName, Loc: irtype.SourceLoc{File: co.Filename, Line: ins.Line}},
			Type:          irtype.Info{IsCode: true, Typ: irtype.ObjectType},
		})
		pb.nested = append(pb.nested, procWork{co: nested, qualifiedName: ref.QualifiedName, class: enclosing})
		return nil
	}

	val, info, err := resolveForUse(env, co, cell)
	if err != nil {
		return err
	}
	env.Symbols.Register(isGlobal, name, symbols.Info{
		QualifiedName: irtype.QualifiedName{Value: qualifiedOrLocal(env, isGlobal, name)},
		Type:          info,
	})
	env.PushInstr(module.Store{
		Lval: module.Lval{Global: isGlobal, Name: qualifiedOrLocal(env, isGlobal, name)},
		Rhs:  val,
		Type: info.Typ,
	})
	return nil
}

func functionSignature(co *bytecode.CodeObject) symbols.Signature {
	params := make([]irtype.Type, co.ArgCount)
	for i := 0; i < co.ArgCount; i++ {
		name := ""
		if i < len(co.VarNames) {
			name = co.VarNames[i]
		}
		params[i] = annotationType(co.Annotations[name])
	}
	return symbols.Signature{
		Params:  params,
		Returns: annotationType(co.Annotations["return"]),
	}
}

// annotationType maps a bytecode annotation string to its IR type,
// defaulting to Object when unannotated or unrecognized.
func annotationType(s string) irtype.Type {
	switch s {
	case "Int":
		return irtype.Type{Kind: irtype.Int}
	case "Float":
		return irtype.Type{Kind: irtype.Float}
	case "Bool":
		return irtype.Type{Kind: irtype.Bool}
	case "String":
		return irtype.Type{Kind: irtype.String}
	case "None":
		return irtype.Type{Kind: irtype.None}
	case "", "Object":
		return irtype.ObjectType
	default:
		return irtype.NewRecord(s)
	}
}

func lowerLoadAttr(env *Env, co *bytecode.CodeObject, ins bytecode.Instruction) error {
	attr, err := co.Name(ins.Arg)
	if err != nil {
		return err
	}
	cell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("LOAD_ATTR on empty stack")
	}
	base, _, err := resolveForUse(env, co, cell)
	if err != nil {
		return err
	}
	id := env.FreshIdent(irtype.ObjectInfo)
	env.PushInstr(module.AttrLoad{ID: id, Base: base, Attr: attr})
	env.Push(datastack.TempCell{ID: id})
	return nil
}

func lowerStoreAttr(env *Env, co *bytecode.CodeObject, ins bytecode.Instruction) error {
	attr, err := co.Name(ins.Arg)
	if err != nil {
		return err
	}
	baseCell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("STORE_ATTR on empty stack")
	}
	valCell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("STORE_ATTR on empty stack")
	}
	val, info, err := resolveForUse(env, co, valCell)
	if err != nil {
		return err
	}
	base, _, err := resolveForUse(env, co, baseCell)
	if err != nil {
		return err
	}
	if vn, isVarName := baseCell.(datastack.VarNameCell); isVarName && env.CurrentClass() != "" {
		selfName, _ := co.VarName(vn.Index)
		if selfName == "self" {
			env.RecordSelfField(env.CurrentClass(), attr, info.Typ)
		}
	}
	env.PushInstr(module.AttrStore{Base: base, Attr: attr, Rhs: val, Type: info.Typ})
	return nil
}

func lowerBinaryAdd(env *Env, co *bytecode.CodeObject) error {
	rightCell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("BINARY_ADD on empty stack")
	}
	leftCell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("BINARY_ADD on empty stack")
	}
	left, _, err := resolveForUse(env, co, leftCell)
	if err != nil {
		return err
	}
	right, _, err := resolveForUse(env, co, rightCell)
	if err != nil {
		return err
	}
	env.Builtins.Mark(builtinreg.BinaryAdd)
	id := env.FreshIdent(irtype.ObjectInfo)
	env.PushInstr(module.Bind{ID: id, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.BinaryAdd).Name},
		Args:   []module.Value{left, right},
	}})
	env.Push(datastack.TempCell{ID: id})
	return nil
}

func popN(env *Env, n int) ([]datastack.Cell, error) {
	cells := make([]datastack.Cell, n)
	for i := n - 1; i >= 0; i-- {
		c, ok := env.Pop()
		if !ok {
			return nil, fmt.Errorf("call with %d args on a stack with fewer live cells", n)
		}
		cells[i] = c
	}
	return cells, nil
}

func lowerCallFunction(env *Env, pb *procBuilder, co *bytecode.CodeObject, ins bytecode.Instruction) error {
	argCells, err := popN(env, ins.Arg)
	if err != nil {
		return err
	}
	calleeCell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("CALL_FUNCTION on empty stack (no callee)")
	}

	if _, isMarker := calleeCell.(datastack.BuildClassMarkerCell); isMarker {
		return lowerBuildClass(env, pb, co, argCells)
	}

	if nameCell, ok := calleeCell.(datastack.NameCell); ok {
		if name, err := co.Name(nameCell.Index); err == nil {
			if env.Symbols.IsClass(name) {
				return lowerClassConstruction(env, co, name, argCells)
			}
		}
	}

	callee, directSig, isDirect, err := resolveCallee(env, co, calleeCell)
	if err != nil {
		return err
	}
	args := make([]module.Value, len(argCells))
	for i, c := range argCells {
		v, _, err := resolveForUse(env, co, c)
		if err != nil {
			return err
		}
		args[i] = v
	}

	returns := irtype.ObjectType
	if isDirect {
		returns = directSig.Returns
	}
	id := env.FreshIdent(irtype.Info{Typ: returns})
	if !isDirect {
		if _, isBuiltinRef := callee.(module.BuiltinRef); !isBuiltinRef {
			env.Builtins.Mark(builtinreg.PythonCall)
			callee = module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.PythonCall).Name}
			args = append([]module.Value{calleeCellFallback(env, co, calleeCell)}, args...)
		}
	}
	env.PushInstr(module.Bind{ID: id, Rhs: module.Call{Callee: callee, Args: args}})
	env.Push(datastack.TempCell{ID: id})
	return nil
}

// calleeCellFallback re-resolves a callee cell that did not resolve to a
// direct function or host builtin reference, for use as python_call's
// first argument.
func calleeCellFallback(env *Env, co *bytecode.CodeObject, cell datastack.Cell) module.Value {
	v, _, err := resolveForUse(env, co, cell)
	if err != nil {
		return module.NullLit{}
	}
	return v
}

// resolveCallee resolves a CALL_FUNCTION callee cell, recognizing a known
// user function or method by name and returning a direct reference with
// no load instruction emitted (spec §4.6, Calls), or a host builtin
// reference, or reporting that neither applied (isDirect=false,
// callee=nil) so the caller falls back to python_call.
func resolveCallee(env *Env, co *bytecode.CodeObject, cell datastack.Cell) (module.Value, symbols.Signature, bool, error) {
	nameCell, ok := cell.(datastack.NameCell)
	if !ok {
		return nil, symbols.Signature{}, false, nil
	}
	name, err := co.Name(nameCell.Index)
	if err != nil {
		return nil, symbols.Signature{}, false, err
	}
	if info, ok := env.Symbols.LookupLocalThenGlobal(name); ok {
		if info.Type.IsCode {
			sig, _ := env.Symbols.LookupSignature(env.CurrentClass(), name)
			return module.GlobalRef{Name: info.QualifiedName.Value}, sig, true, nil
		}
		if info.IsBuiltin {
			env.Builtins.MarkHost(name)
			return module.BuiltinRef{Name: name}, symbols.Signature{}, false, nil
		}
		return nil, symbols.Signature{}, false, nil
	}
	if isHostBuiltin(name) {
		env.Builtins.MarkHost(name)
		return module.BuiltinRef{Name: name}, symbols.Signature{}, false, nil
	}
	return nil, symbols.Signature{}, false, nil
}

func lowerLoadMethod(env *Env, co *bytecode.CodeObject, ins bytecode.Instruction) error {
	name, err := co.Name(ins.Arg)
	if err != nil {
		return err
	}
	cell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("LOAD_METHOD on empty stack")
	}
	base, _, err := resolveForUse(env, co, cell)
	if err != nil {
		return err
	}
	env.Builtins.Mark(builtinreg.PythonLoadMethod)
	methodType := irtype.Type{Kind: irtype.Method}
	id := env.FreshIdent(irtype.Info{Typ: methodType})
	env.PushInstr(module.Bind{ID: id, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.PythonLoadMethod).Name},
		Args:   []module.Value{base, module.StringLit{S: name}},
	}})
	env.Push(datastack.TempCell{ID: id})
	return nil
}

func lowerCallMethod(env *Env, co *bytecode.CodeObject, ins bytecode.Instruction) error {
	argCells, err := popN(env, ins.Arg)
	if err != nil {
		return err
	}
	methodCell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("CALL_METHOD on empty stack (no method handle)")
	}
	method, _, err := resolveForUse(env, co, methodCell)
	if err != nil {
		return err
	}
	args := make([]module.Value, len(argCells))
	for i, c := range argCells {
		v, _, err := resolveForUse(env, co, c)
		if err != nil {
			return err
		}
		args[i] = v
	}
	env.Builtins.Mark(builtinreg.PythonCallMethod)
	id := env.FreshIdent(irtype.ObjectInfo)
	env.PushInstr(module.Bind{ID: id, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.PythonCallMethod).Name},
		Args:   append([]module.Value{method}, args...),
	}})
	env.Push(datastack.TempCell{ID: id})
	return nil
}

func lowerGetIter(env *Env, co *bytecode.CodeObject) error {
	cell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("GET_ITER on empty stack")
	}
	v, _, err := resolveForUse(env, co, cell)
	if err != nil {
		return err
	}
	env.Builtins.Mark(builtinreg.PythonIter)
	id := env.FreshIdent(irtype.ObjectInfo)
	env.PushInstr(module.Bind{ID: id, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.PythonIter).Name},
		Args:   []module.Value{v},
	}})
	env.Push(datastack.TempCell{ID: id})
	return nil
}

// pyIterItemType is the record type FOR_ITER's pair value carries.
var pyIterItemType = irtype.Type{Kind: irtype.PyIterItem}

func lowerForIter(env *Env, pb *procBuilder, co *bytecode.CodeObject, ins bytecode.Instruction, nextOffset int) error {
	iterCell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("FOR_ITER on empty stack")
	}
	iterVal, iterInfo, err := resolveForUse(env, co, iterCell)
	if err != nil {
		return err
	}
	env.Builtins.Mark(builtinreg.PythonIterNext)
	pairID := env.FreshIdent(irtype.Info{Typ: pyIterItemType})
	env.PushInstr(module.Bind{ID: pairID, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.PythonIterNext).Name},
		Args:   []module.Value{iterVal},
	}})
	hasItemID := env.FreshIdent(irtype.Info{Typ: irtype.Type{Kind: irtype.Int}})
	env.PushInstr(module.AttrLoad{ID: hasItemID, Base: module.TempRef{ID: pairID}, Attr: "has_item"})
	nextItemID := env.FreshIdent(irtype.ObjectInfo)
	env.PushInstr(module.AttrLoad{ID: nextItemID, Base: module.TempRef{ID: pairID}, Attr: "next_item"})

	// The true (loop-continues) edge re-feeds the iterator itself — so
	// the eventual back-edge can hand it to this same header again — and
	// additionally carries the already unwrapped item value, so the body
	// block can bind it (STORE_FAST/STORE_NAME) like any other live stack
	// cell. The false (loop-exit) edge needs neither, only the remaining
	// live stack.
	live := env.StackSnapshot()
	restArgs, restInfos, err := pb.resolveLive(live)
	if err != nil {
		return err
	}
	restTypes := infoTypes(restInfos)

	trueArgs := append(append(append([]module.Value{}, restArgs...), iterVal), module.TempRef{ID: nextItemID})
	trueTypes := append(append(append([]irtype.Type{}, restTypes...), iterInfo.Typ), irtype.ObjectType)

	falseArgs := append([]module.Value{}, restArgs...)
	falseTypes := append([]irtype.Type{}, restTypes...)

	return pb.closeTwoWayJump(
		nextOffset, trueArgs, trueTypes,
		[]label.PreludeStep{{Kind: label.PrunePrelude, Operand: datastack.TempCell{ID: hasItemID}}},
		ins.Arg, falseArgs, falseTypes,
		[]label.PreludeStep{{Kind: label.PruneNotPrelude, Operand: datastack.TempCell{ID: hasItemID}}},
	)
}

func lowerPopJumpIf(env *Env, pb *procBuilder, co *bytecode.CodeObject, ins bytecode.Instruction, jumpOnTrue bool, nextOffset int) error {
	cell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("%s on empty stack", ins.Op)
	}
	v, _, err := resolveForUse(env, co, cell)
	if err != nil {
		return err
	}
	env.Builtins.Mark(builtinreg.IsTrue)
	condID := env.FreshIdent(irtype.Info{Typ: irtype.Type{Kind: irtype.Int}})
	env.PushInstr(module.Bind{ID: condID, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.IsTrue).Name},
		Args:   []module.Value{v},
	}})

	return pb.closeWithConditionalJump(condID, nextOffset, ins.Arg, jumpOnTrue)
}

// lowerJumpIfOrPop lowers the short-circuit and/or opcodes: the condition
// cell is popped and resolved once; the jump edge passes that value on as
// a trailing argument (the "or pop" case never fires there) while the
// fallthrough edge drops it,
// mirroring the differing per-edge live-stack shape FOR_ITER already needs
// (lowerForIter) via closeTwoWayJump. jumpOnTrue selects
// JUMP_IF_TRUE_OR_POP (true) vs. JUMP_IF_FALSE_OR_POP (false).
func lowerJumpIfOrPop(env *Env, pb *procBuilder, co *bytecode.CodeObject, ins bytecode.Instruction, jumpOnTrue bool, nextOffset int) error {
	cell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("%s on empty stack", ins.Op)
	}
	v, info, err := resolveForUse(env, co, cell)
	if err != nil {
		return err
	}
	env.Builtins.Mark(builtinreg.IsTrue)
	condID := env.FreshIdent(irtype.Info{Typ: irtype.Type{Kind: irtype.Int}})
	env.PushInstr(module.Bind{ID: condID, Rhs: module.Call{
		Callee: module.BuiltinRef{Name: builtinreg.Lookup(builtinreg.IsTrue).Name},
		Args:   []module.Value{v},
	}})

	live := env.StackSnapshot()
	restArgs, restInfos, err := pb.resolveLive(live)
	if err != nil {
		return err
	}
	restTypes := infoTypes(restInfos)

	// The jump edge carries the popped condition value again after the
	// rest of the live stack; the fallthrough edge carries just the rest.
	jumpArgs := append(append([]module.Value{}, restArgs...), v)
	jumpTypes := append(append([]irtype.Type{}, restTypes...), info.Typ)

	jumpPrelude, fallPrelude := label.PrunePrelude, label.PruneNotPrelude
	if !jumpOnTrue {
		jumpPrelude, fallPrelude = label.PruneNotPrelude, label.PrunePrelude
	}

	return pb.closeTwoWayJump(
		ins.Arg, jumpArgs, jumpTypes, []label.PreludeStep{{Kind: jumpPrelude, Operand: datastack.TempCell{ID: condID}}},
		nextOffset, restArgs, restTypes, []label.PreludeStep{{Kind: fallPrelude, Operand: datastack.TempCell{ID: condID}}},
	)
}

func lowerReturn(env *Env, pb *procBuilder, co *bytecode.CodeObject) error {
	cell, ok := env.Pop()
	if !ok {
		return fmt.Errorf("RETURN_VALUE on empty stack")
	}
	v, _, err := resolveForUse(env, co, cell)
	if err != nil {
		return err
	}
	env.PushInstr(module.Ret{Value: v})
	pb.closeBlock()
	return nil
}
