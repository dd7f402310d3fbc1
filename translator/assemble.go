// Package translator's assemble.go implements the Module Assembler (spec
// §4.7): a work-list driver over the top-level code object and every
// nested code object it discovers (function bodies, class bodies, method
// bodies), producing one complete Textual IR [module.Module].
package translator

import (
	"fmt"
	"sort"

	"github.com/ir8co/pyssa/builtinreg"
	"github.com/ir8co/pyssa/bytecode"
	"github.com/ir8co/pyssa/irtype"
	"github.com/ir8co/pyssa/module"
)

// ToModule translates top (a module's top-level code object) and every
// code object transitively reachable from it into a Textual IR module.
// filename is recorded for diagnostics only; moduleName prefixes every
// qualified name the translator mints.
func ToModule(filename, moduleName string, top *bytecode.CodeObject) (*module.Module, error) {
	if top == nil {
		return nil, fmt.Errorf("%s: no top-level code object", filename)
	}

	env := NewEnv(moduleName)
	worklist := []procWork{{co: top, qualifiedName: moduleName, isToplevel: true}}

	var procs []*module.Proc
	for len(worklist) > 0 {
		w := worklist[0]
		worklist = worklist[1:]

		proc, nested, err := translateProc(env, w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if !w.isClassBody {
			procs = append(procs, proc)
		}
		worklist = append(worklist, nested...)
	}

	globals := assembleGlobals(env)
	types := assembleTypes(env)
	builtinDecls := assembleBuiltins(env)

	return &module.Module{
		SourceLanguage: "python",
		Procs:          procs,
		Globals:        globals,
		Types:          types,
		Builtins:       builtinDecls,
	}, nil
}

// assembleGlobals emits a `global` declaration for every symbol the
// Symbol Registry recorded in the module scope, sorted by name for a
// deterministic rendering. Every global is declared with type Object.
func assembleGlobals(env *Env) []module.Global {
	snapshot := env.Symbols.Globals()
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]module.Global, 0, len(names))
	for _, name := range names {
		info := snapshot[name]
		out = append(out, module.Global{Name: info.QualifiedName.Value, Type: irtype.ObjectType})
	}
	return out
}

// assembleTypes emits a record TypeDecl for every class the Symbol
// Registry saw, in registration order (spec §4.7(c)), plus the PyIterItem
// and PyMethod record declarations when their respective builtins were
// referenced (spec §4.7(d)).
func assembleTypes(env *Env) []module.TypeDecl {
	var out []module.TypeDecl
	for _, class := range env.Symbols.Classes() {
		out = append(out, module.TypeDecl{Name: class, Fields: env.ClassFields(class)})
	}
	if env.Builtins.Seen(builtinreg.PythonIterNext) {
		out = append(out, module.TypeDecl{Name: "PyIterItem", Fields: []module.Field{
			{Name: "has_item", Type: irtype.Type{Kind: irtype.Int}},
			{Name: "next_item", Type: irtype.ObjectType},
		}})
	}
	if env.Builtins.Seen(builtinreg.PythonLoadMethod) {
		out = append(out, module.TypeDecl{Name: "PyMethod", Fields: []module.Field{
			{Name: "receiver", Type: irtype.ObjectType},
			{Name: "name", Type: irtype.Type{Kind: irtype.String}},
		}})
	}
	return out
}

// assembleBuiltins converts the Builtin Registry's transitive closure of
// referenced shims and host builtins, plus the always-emitted primitive
// wrappers, into module-level declarations.
func assembleBuiltins(env *Env) []module.BuiltinDecl {
	decls := env.Builtins.Decls()
	out := make([]module.BuiltinDecl, len(decls))
	for i, d := range decls {
		out[i] = module.BuiltinDecl{Name: d.Name, Operands: d.Operands, Returns: d.Returns, Variadic: d.Variadic}
	}
	return out
}
