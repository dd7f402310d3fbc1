package translator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ir8co/pyssa/bytecode"
	"github.com/ir8co/pyssa/module"
	"github.com/ir8co/pyssa/translator"
)

// TestSimpleGlobalStoreProducesATypedStore covers the simplest of spec
// §8's scenarios: a single global assignment compiles to one entry block
// with a typed store and an implicit `ret null`.
func TestSimpleGlobalStoreProducesATypedStore(t *testing.T) {
	co := &bytecode.CodeObject{
		Name:  "m",
		Names: []string{"x"},
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstInt, Int: 42},
		},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_CONST", Arg: 0, Offset: 0},
			{Op: "STORE_NAME", Arg: 0, Offset: 1},
		},
	}

	mod, err := translator.ToModule("t.yaml", "m", co)
	require.NoError(t, err)

	require.Len(t, mod.Procs, 1)
	proc := mod.Procs[0]
	require.Len(t, proc.Blocks, 1)
	assert.Len(t, proc.Blocks[0].Instrs, 2, "store + implicit ret null")

	store, ok := proc.Blocks[0].Instrs[0].(module.Store)
	require.True(t, ok)
	assert.True(t, store.Lval.Global)
	assert.Equal(t, "m::x", store.Lval.Name)

	require.Len(t, mod.Globals, 1)
	assert.Equal(t, "m::x", mod.Globals[0].Name)
}

// TestIfElseBothReturnLeavesAnUnreachableOrphanBlock is spec §8's scenario
// covering a dead trailing epilogue: a bytecode compiler emits a final
// `LOAD_CONST None; RETURN_VALUE` pair after every branch of an if/else has
// already returned, and nothing ever jumps to or falls into it, so it must
// still surface as its own unreachable block rather than being dropped or
// causing a translation error.
func TestIfElseBothReturnLeavesAnUnreachableOrphanBlock(t *testing.T) {
	co := &bytecode.CodeObject{
		Name:  "m",
		Names: []string{"x"},
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstInt, Int: 5},
			{Kind: bytecode.ConstInt, Int: 1},
			{Kind: bytecode.ConstInt, Int: 2},
			{Kind: bytecode.ConstNone},
		},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_CONST", Arg: 0, Offset: 0},
			{Op: "STORE_NAME", Arg: 0, Offset: 1},
			{Op: "LOAD_NAME", Arg: 0, Offset: 2},
			{Op: "POP_JUMP_IF_FALSE", Arg: 6, Offset: 3},
			{Op: "LOAD_CONST", Arg: 1, Offset: 4},
			{Op: "RETURN_VALUE", Offset: 5},
			{Op: "LOAD_CONST", Arg: 2, Offset: 6},
			{Op: "RETURN_VALUE", Offset: 7},
			{Op: "LOAD_CONST", Arg: 3, Offset: 8},
			{Op: "RETURN_VALUE", Offset: 9},
		},
	}

	mod, err := translator.ToModule("t.yaml", "m", co)
	require.NoError(t, err)

	require.Len(t, mod.Procs, 1)
	blocks := mod.Procs[0].Blocks
	require.Len(t, blocks, 4, "entry, true-branch, false-branch, orphan")

	reachable := map[string]bool{}
	for _, b := range blocks {
		jmp, ok := lastInstr(b.Instrs).(module.Jmp)
		if !ok {
			continue
		}
		for _, target := range jmp.Targets {
			reachable[target.Label] = true
		}
	}

	orphan := blocks[len(blocks)-1]
	assert.False(t, reachable[orphan.Label], "the trailing dead block must not be a jump target")
	assert.Empty(t, orphan.Params)
	ret, ok := lastInstr(orphan.Instrs).(module.Ret)
	require.True(t, ok)
	assert.Equal(t, module.NullLit{}, ret.Value)
}

func lastInstr(instrs []module.Instr) module.Instr {
	if len(instrs) == 0 {
		return nil
	}
	return instrs[len(instrs)-1]
}

// TestGlobalCallChainsThroughABinaryOp covers spec §8's scenario of a
// host-builtin call (print) over a binary op (x + y) on two previously
// stored globals: a single block, no control flow, but three builtins
// referenced (binary_add, print, plus the python_int wrappers).
func TestGlobalCallChainsThroughABinaryOp(t *testing.T) {
	co := &bytecode.CodeObject{
		Name:  "m",
		Names: []string{"x", "y", "print"},
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstInt, Int: 42},
			{Kind: bytecode.ConstInt, Int: 10},
			{Kind: bytecode.ConstNone},
		},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_CONST", Arg: 0, Offset: 0},
			{Op: "STORE_NAME", Arg: 0, Offset: 1},
			{Op: "LOAD_CONST", Arg: 1, Offset: 2},
			{Op: "STORE_NAME", Arg: 1, Offset: 3},
			{Op: "LOAD_NAME", Arg: 2, Offset: 4},
			{Op: "LOAD_NAME", Arg: 0, Offset: 5},
			{Op: "LOAD_NAME", Arg: 1, Offset: 6},
			{Op: "BINARY_ADD", Offset: 7},
			{Op: "CALL_FUNCTION", Arg: 1, Offset: 8},
			{Op: "POP_TOP", Offset: 9},
			{Op: "LOAD_CONST", Arg: 2, Offset: 10},
			{Op: "RETURN_VALUE", Offset: 11},
		},
	}

	mod, err := translator.ToModule("t.yaml", "m", co)
	require.NoError(t, err)

	require.Len(t, mod.Procs, 1)
	instrs := mod.Procs[0].Blocks[0].Instrs
	require.Len(t, instrs, 7, "2 stores, 2 loads, binary_add bind, print bind, ret null")

	storeX, ok := instrs[0].(module.Store)
	require.True(t, ok)
	assert.Equal(t, "m::x", storeX.Lval.Name)

	storeY, ok := instrs[1].(module.Store)
	require.True(t, ok)
	assert.Equal(t, "m::y", storeY.Lval.Name)

	loadX, ok := instrs[2].(module.Load)
	require.True(t, ok)
	assert.Equal(t, module.Lval{Global: true, Name: "m::x"}, loadX.Lval)

	loadY, ok := instrs[3].(module.Load)
	require.True(t, ok)
	assert.Equal(t, module.Lval{Global: true, Name: "m::y"}, loadY.Lval)

	add, ok := instrs[4].(module.Bind)
	require.True(t, ok)
	addCall, ok := add.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "binary_add"}, addCall.Callee)
	assert.Equal(t, []module.Value{module.TempRef{ID: loadX.ID}, module.TempRef{ID: loadY.ID}}, addCall.Args)

	printBind, ok := instrs[5].(module.Bind)
	require.True(t, ok)
	printCall, ok := printBind.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "print"}, printCall.Callee)
	assert.Equal(t, []module.Value{module.TempRef{ID: add.ID}}, printCall.Args)

	ret, ok := instrs[6].(module.Ret)
	require.True(t, ok)
	assert.Equal(t, module.NullLit{}, ret.Value)
}

// TestForLoopProducesAReentrantHeaderBlock covers spec §8's for-loop
// scenario: `for x in range(10): print(x)` must lower to a loop header
// block that is its own re-entrant jump target (so the JUMP_ABSOLUTE
// back-edge has somewhere valid to land), a body block, and an exit
// block — with the iterator re-fed on the back-edge and the unwrapped
// item, not the raw iterator pair, bound to the loop variable.
func TestForLoopProducesAReentrantHeaderBlock(t *testing.T) {
	co := &bytecode.CodeObject{
		Name:  "m",
		Names: []string{"range", "x", "print"},
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstInt, Int: 10},
			{Kind: bytecode.ConstNone},
		},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_NAME", Arg: 0, Offset: 0},
			{Op: "LOAD_CONST", Arg: 0, Offset: 1},
			{Op: "CALL_FUNCTION", Arg: 1, Offset: 2},
			{Op: "GET_ITER", Offset: 3},
			{Op: "FOR_ITER", Arg: 11, Offset: 4},
			{Op: "STORE_NAME", Arg: 1, Offset: 5},
			{Op: "LOAD_NAME", Arg: 2, Offset: 6},
			{Op: "LOAD_NAME", Arg: 1, Offset: 7},
			{Op: "CALL_FUNCTION", Arg: 1, Offset: 8},
			{Op: "POP_TOP", Offset: 9},
			{Op: "JUMP_ABSOLUTE", Arg: 4, Offset: 10},
			{Op: "LOAD_CONST", Arg: 1, Offset: 11},
			{Op: "RETURN_VALUE", Offset: 12},
		},
	}

	mod, err := translator.ToModule("t.yaml", "m", co)
	require.NoError(t, err)

	require.Len(t, mod.Procs, 1)
	blocks := mod.Procs[0].Blocks
	require.Len(t, blocks, 4, "entry, loop header, body, exit")

	entry, header, body, exit := blocks[0], blocks[1], blocks[2], blocks[3]
	require.Len(t, header.Params, 1, "the iterator")
	require.Len(t, body.Params, 2, "re-fed iterator plus the unwrapped item")
	require.Empty(t, exit.Params)

	entryJmp, ok := lastInstr(entry.Instrs).(module.Jmp)
	require.True(t, ok)
	require.Len(t, entryJmp.Targets, 1)
	assert.Equal(t, header.Label, entryJmp.Targets[0].Label)

	require.Len(t, header.Instrs, 4, "iter_next bind, has_item load, next_item load, jmp")
	pairBind, ok := header.Instrs[0].(module.Bind)
	require.True(t, ok)
	pairCall, ok := pairBind.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_iter_next"}, pairCall.Callee)

	hasItem, ok := header.Instrs[1].(module.AttrLoad)
	require.True(t, ok)
	assert.Equal(t, "has_item", hasItem.Attr)

	nextItem, ok := header.Instrs[2].(module.AttrLoad)
	require.True(t, ok)
	assert.Equal(t, "next_item", nextItem.Attr)

	headerJmp, ok := header.Instrs[3].(module.Jmp)
	require.True(t, ok)
	require.Len(t, headerJmp.Targets, 2)
	assert.Equal(t, body.Label, headerJmp.Targets[0].Label)
	assert.Equal(t, []module.Value{module.TempRef{ID: header.Params[0].ID}, module.TempRef{ID: nextItem.ID}}, headerJmp.Targets[0].Args)
	assert.Equal(t, exit.Label, headerJmp.Targets[1].Label)
	assert.Empty(t, headerJmp.Targets[1].Args)

	bodyPrune, ok := body.Instrs[0].(module.Prune)
	require.True(t, ok)
	assert.False(t, bodyPrune.Negate)

	var bodyStore module.Store
	foundStore := false
	for _, in := range body.Instrs {
		if s, ok := in.(module.Store); ok {
			bodyStore, foundStore = s, true
		}
	}
	require.True(t, foundStore, "STORE_NAME x must bind the unwrapped item, not the raw pair")
	assert.Equal(t, module.TempRef{ID: body.Params[1].ID}, bodyStore.Rhs)

	bodyJmp, ok := lastInstr(body.Instrs).(module.Jmp)
	require.True(t, ok)
	require.Len(t, bodyJmp.Targets, 1)
	assert.Equal(t, header.Label, bodyJmp.Targets[0].Label)
	assert.Equal(t, []module.Value{module.TempRef{ID: body.Params[0].ID}}, bodyJmp.Targets[0].Args, "the back-edge re-feeds the iterator, not the item")

	exitPrune, ok := exit.Instrs[0].(module.Prune)
	require.True(t, ok)
	assert.True(t, exitPrune.Negate)
	exitRet, ok := lastInstr(exit.Instrs).(module.Ret)
	require.True(t, ok)
	assert.Equal(t, module.NullLit{}, exitRet.Value)
}

// TestTernaryJoinsADifferentlyTypedValueAlongsideALiveFunctionRef covers
// spec §8's hardest scenario: `foo(1 if x else 0)` inside a function that
// closes over the module-level `foo`. The callee reference is loaded once,
// before the branch, and must cross the SSA join on both edges unchanged
// while the ternary's own value differs per predecessor — and because the
// callee becomes an opaque joined temporary by the time CALL_FUNCTION
// fires, the call can no longer resolve as direct and must fall back to
// python_call.
func TestTernaryJoinsADifferentlyTypedValueAlongsideALiveFunctionRef(t *testing.T) {
	top := &bytecode.CodeObject{
		Name:  "m",
		Names: []string{"foo", "f"},
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstCode, Code: &bytecode.CodeObject{
				Name:       "foo",
				IsFunction: true,
				ArgCount:   1,
				VarNames:   []string{"x"},
				Consts:     []bytecode.Const{{Kind: bytecode.ConstNone}},
				Instrs: []bytecode.Instruction{
					{Op: "LOAD_CONST", Arg: 0, Offset: 0},
					{Op: "RETURN_VALUE", Offset: 1},
				},
			}},
			{Kind: bytecode.ConstCode, Code: &bytecode.CodeObject{
				Name:       "f",
				IsFunction: true,
				ArgCount:   1,
				VarNames:   []string{"x"},
				Names:      []string{"foo"},
				Consts: []bytecode.Const{
					{Kind: bytecode.ConstInt, Int: 1},
					{Kind: bytecode.ConstInt, Int: 0},
					{Kind: bytecode.ConstNone},
				},
				Instrs: []bytecode.Instruction{
					{Op: "LOAD_GLOBAL", Arg: 0, Offset: 0},
					{Op: "LOAD_FAST", Arg: 0, Offset: 1},
					{Op: "POP_JUMP_IF_FALSE", Arg: 5, Offset: 2},
					{Op: "LOAD_CONST", Arg: 0, Offset: 3},
					{Op: "JUMP_FORWARD", Arg: 6, Offset: 4},
					{Op: "LOAD_CONST", Arg: 1, Offset: 5},
					{Op: "CALL_FUNCTION", Arg: 1, Offset: 6},
					{Op: "POP_TOP", Offset: 7},
					{Op: "LOAD_CONST", Arg: 2, Offset: 8},
					{Op: "RETURN_VALUE", Offset: 9},
				},
			}},
			{Kind: bytecode.ConstNone},
		},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_CONST", Arg: 0, Offset: 0},
			{Op: "STORE_NAME", Arg: 0, Offset: 1},
			{Op: "LOAD_CONST", Arg: 1, Offset: 2},
			{Op: "STORE_NAME", Arg: 1, Offset: 3},
			{Op: "LOAD_CONST", Arg: 2, Offset: 4},
			{Op: "RETURN_VALUE", Offset: 5},
		},
	}

	mod, err := translator.ToModule("t.yaml", "m", top)
	require.NoError(t, err)
	require.Len(t, mod.Procs, 3)

	var f *module.Proc
	for _, p := range mod.Procs {
		if p.Name == "m::f" {
			f = p
		}
	}
	require.NotNil(t, f, "m::f must be among the translated procs")
	require.Len(t, f.Blocks, 4, "entry, then, else, merge")

	entry, then, els, merge := f.Blocks[0], f.Blocks[1], f.Blocks[2], f.Blocks[3]
	require.Len(t, merge.Params, 2, "the joined foo reference and the joined ternary value")
	require.Len(t, then.Params, 1)
	require.Len(t, els.Params, 1)

	require.Len(t, entry.Instrs, 4, "load x, is_true bind, load foo, two-way jmp")
	loadX, ok := entry.Instrs[0].(module.Load)
	require.True(t, ok)
	assert.False(t, loadX.Lval.Global)
	assert.Equal(t, "x", loadX.Lval.Name)

	isTrue, ok := entry.Instrs[1].(module.Bind)
	require.True(t, ok)
	isTrueCall, ok := isTrue.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_is_true"}, isTrueCall.Callee)
	assert.Equal(t, []module.Value{module.TempRef{ID: loadX.ID}}, isTrueCall.Args)

	loadFoo, ok := entry.Instrs[2].(module.Load)
	require.True(t, ok)
	assert.Equal(t, module.Lval{Global: true, Name: "m::foo"}, loadFoo.Lval)

	entryJmp, ok := entry.Instrs[3].(module.Jmp)
	require.True(t, ok)
	require.Len(t, entryJmp.Targets, 2)
	assert.Equal(t, then.Label, entryJmp.Targets[0].Label)
	assert.Equal(t, els.Label, entryJmp.Targets[1].Label)
	assert.Equal(t, []module.Value{module.TempRef{ID: loadFoo.ID}}, entryJmp.Targets[0].Args,
		"the same foo reference, resolved once, crosses both branch edges unchanged")
	assert.Equal(t, []module.Value{module.TempRef{ID: loadFoo.ID}}, entryJmp.Targets[1].Args)

	thenJmp, ok := lastInstr(then.Instrs).(module.Jmp)
	require.True(t, ok)
	require.Len(t, thenJmp.Targets, 1)
	assert.Equal(t, merge.Label, thenJmp.Targets[0].Label)
	assert.Equal(t, module.TempRef{ID: then.Params[0].ID}, thenJmp.Targets[0].Args[0])
	thenVal, ok := thenJmp.Targets[0].Args[1].(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_int"}, thenVal.Callee)
	assert.Equal(t, module.IntLit{N: 1}, thenVal.Args[0])

	elsJmp, ok := lastInstr(els.Instrs).(module.Jmp)
	require.True(t, ok)
	require.Len(t, elsJmp.Targets, 1)
	assert.Equal(t, merge.Label, elsJmp.Targets[0].Label)
	assert.Equal(t, module.TempRef{ID: els.Params[0].ID}, elsJmp.Targets[0].Args[0])
	elsVal, ok := elsJmp.Targets[0].Args[1].(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_int"}, elsVal.Callee)
	assert.Equal(t, module.IntLit{N: 0}, elsVal.Args[0])

	call, ok := merge.Instrs[0].(module.Bind)
	require.True(t, ok)
	callExpr, ok := call.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_call"}, callExpr.Callee,
		"foo became an opaque joined value, so the call can no longer resolve direct")
	assert.Equal(t, []module.Value{
		module.TempRef{ID: merge.Params[0].ID},
		module.TempRef{ID: merge.Params[1].ID},
	}, callExpr.Args)
}

// TestClassConstructionAndMethodDispatchGoThroughTheRuntimeShims covers
// spec §8's class scenario: a class with an `__init__` that writes a
// self field, a construction call site, and a zero-argument method call,
// proving python_class / python_class_constructor / python_load_method /
// python_call_method are all wired and that STORE_ATTR binds the field to
// the object being constructed, not the value being assigned to it.
func TestClassConstructionAndMethodDispatchGoThroughTheRuntimeShims(t *testing.T) {
	initCode := &bytecode.CodeObject{
		Name:       "__init__",
		IsFunction: true,
		ArgCount:   2,
		VarNames:   []string{"self", "x"},
		Names:      []string{"x"},
		Consts:     []bytecode.Const{{Kind: bytecode.ConstNone}},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_FAST", Arg: 1, Offset: 0},
			{Op: "LOAD_FAST", Arg: 0, Offset: 1},
			{Op: "STORE_ATTR", Arg: 0, Offset: 2},
			{Op: "LOAD_CONST", Arg: 0, Offset: 3},
			{Op: "RETURN_VALUE", Offset: 4},
		},
	}
	getCode := &bytecode.CodeObject{
		Name:       "get",
		IsFunction: true,
		ArgCount:   1,
		VarNames:   []string{"self"},
		Names:      []string{"x"},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_FAST", Arg: 0, Offset: 0},
			{Op: "LOAD_ATTR", Arg: 0, Offset: 1},
			{Op: "RETURN_VALUE", Offset: 2},
		},
	}
	classBody := &bytecode.CodeObject{
		Name:    "C",
		IsClass: true,
		Names:   []string{"__init__", "get"},
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstCode, Code: initCode},
			{Kind: bytecode.ConstCode, Code: getCode},
			{Kind: bytecode.ConstNone},
		},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_CONST", Arg: 0, Offset: 0},
			{Op: "STORE_NAME", Arg: 0, Offset: 1},
			{Op: "LOAD_CONST", Arg: 1, Offset: 2},
			{Op: "STORE_NAME", Arg: 1, Offset: 3},
			{Op: "LOAD_CONST", Arg: 2, Offset: 4},
			{Op: "RETURN_VALUE", Offset: 5},
		},
	}
	top := &bytecode.CodeObject{
		Name:  "m",
		Names: []string{"C", "c", "get"},
		Consts: []bytecode.Const{
			{Kind: bytecode.ConstCode, Code: classBody},
			{Kind: bytecode.ConstString, Str: "C"},
			{Kind: bytecode.ConstInt, Int: 5},
			{Kind: bytecode.ConstNone},
		},
		Instrs: []bytecode.Instruction{
			{Op: "LOAD_BUILD_CLASS", Offset: 0},
			{Op: "LOAD_CONST", Arg: 0, Offset: 1},
			{Op: "LOAD_CONST", Arg: 1, Offset: 2},
			{Op: "CALL_FUNCTION", Arg: 2, Offset: 3},
			{Op: "STORE_NAME", Arg: 0, Offset: 4},
			{Op: "LOAD_NAME", Arg: 0, Offset: 5},
			{Op: "LOAD_CONST", Arg: 2, Offset: 6},
			{Op: "CALL_FUNCTION", Arg: 1, Offset: 7},
			{Op: "STORE_NAME", Arg: 1, Offset: 8},
			{Op: "LOAD_NAME", Arg: 1, Offset: 9},
			{Op: "LOAD_METHOD", Arg: 2, Offset: 10},
			{Op: "CALL_METHOD", Arg: 0, Offset: 11},
			{Op: "POP_TOP", Offset: 12},
			{Op: "LOAD_CONST", Arg: 3, Offset: 13},
			{Op: "RETURN_VALUE", Offset: 14},
		},
	}

	mod, err := translator.ToModule("t.yaml", "m", top)
	require.NoError(t, err)
	require.Len(t, mod.Procs, 3, "module top level, __init__, get (the class body itself is discarded)")

	var mProc, initProc, getProc *module.Proc
	for _, p := range mod.Procs {
		switch p.Name {
		case "m":
			mProc = p
		case "m::C::__init__":
			initProc = p
		case "m::C::get":
			getProc = p
		}
	}
	require.NotNil(t, mProc)
	require.NotNil(t, initProc)
	require.NotNil(t, getProc)

	require.Len(t, mProc.Blocks, 1)
	mi := mProc.Blocks[0].Instrs
	require.Len(t, mi, 8)

	buildClass, ok := mi[0].(module.Bind)
	require.True(t, ok)
	buildCall, ok := buildClass.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_class"}, buildCall.Callee)
	assert.Equal(t, []module.Value{module.StringLit{S: "C"}}, buildCall.Args)

	storeC, ok := mi[1].(module.Store)
	require.True(t, ok)
	assert.Equal(t, "m::C", storeC.Lval.Name)
	assert.Equal(t, module.TempRef{ID: buildClass.ID}, storeC.Rhs)

	construct, ok := mi[2].(module.Bind)
	require.True(t, ok)
	constructCall, ok := construct.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_class_constructor"}, constructCall.Callee)
	require.Len(t, constructCall.Args, 2)
	assert.Equal(t, module.StringLit{S: "C"}, constructCall.Args[0])
	intArg, ok := constructCall.Args[1].(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.IntLit{N: 5}, intArg.Args[0])

	storeC2, ok := mi[3].(module.Store)
	require.True(t, ok)
	assert.Equal(t, "m::c", storeC2.Lval.Name)
	assert.True(t, storeC2.Type.IsRecord())
	assert.Equal(t, "C", storeC2.Type.Name)

	loadC, ok := mi[4].(module.Load)
	require.True(t, ok)
	assert.Equal(t, "m::c", loadC.Lval.Name)

	loadMethod, ok := mi[5].(module.Bind)
	require.True(t, ok)
	loadMethodCall, ok := loadMethod.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_load_method"}, loadMethodCall.Callee)
	assert.Equal(t, []module.Value{module.TempRef{ID: loadC.ID}, module.StringLit{S: "get"}}, loadMethodCall.Args)

	callMethod, ok := mi[6].(module.Bind)
	require.True(t, ok)
	callMethodCall, ok := callMethod.Rhs.(module.Call)
	require.True(t, ok)
	assert.Equal(t, module.BuiltinRef{Name: "python_call_method"}, callMethodCall.Callee)
	assert.Equal(t, []module.Value{module.TempRef{ID: loadMethod.ID}}, callMethodCall.Args)

	ret, ok := mi[7].(module.Ret)
	require.True(t, ok)
	assert.Equal(t, module.NullLit{}, ret.Value)

	require.Len(t, initProc.Blocks, 1)
	ii := initProc.Blocks[0].Instrs
	require.Len(t, ii, 4)
	loadXArg, ok := ii[0].(module.Load)
	require.True(t, ok)
	assert.Equal(t, "x", loadXArg.Lval.Name)
	loadSelf, ok := ii[1].(module.Load)
	require.True(t, ok)
	assert.Equal(t, "self", loadSelf.Lval.Name)
	attrStore, ok := ii[2].(module.AttrStore)
	require.True(t, ok)
	assert.Equal(t, module.TempRef{ID: loadSelf.ID}, attrStore.Base,
		"STORE_ATTR must bind the field on self (TOS), not on the value being assigned")
	assert.Equal(t, module.TempRef{ID: loadXArg.ID}, attrStore.Rhs)
	assert.Equal(t, "x", attrStore.Attr)

	var cType *module.TypeDecl
	for _, decl := range mod.Types {
		if decl.Name == "C" {
			cType = &decl
		}
	}
	require.NotNil(t, cType)
	require.Len(t, cType.Fields, 1)
	assert.Equal(t, "x", cType.Fields[0].Name)

	require.Len(t, getProc.Blocks, 1)
	gi := getProc.Blocks[0].Instrs
	require.Len(t, gi, 3)
	gLoadSelf, ok := gi[0].(module.Load)
	require.True(t, ok)
	assert.Equal(t, "self", gLoadSelf.Lval.Name)
	attrLoad, ok := gi[1].(module.AttrLoad)
	require.True(t, ok)
	assert.Equal(t, module.TempRef{ID: gLoadSelf.ID}, attrLoad.Base)
	assert.Equal(t, "x", attrLoad.Attr)
	getRet, ok := gi[2].(module.Ret)
	require.True(t, ok)
	assert.Equal(t, module.TempRef{ID: attrLoad.ID}, getRet.Value)
}
