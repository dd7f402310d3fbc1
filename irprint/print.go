// Package irprint renders a [module.Module] as Textual IR text (spec
// §6.2). It performs no verification — that is a separate, unmodeled
// external collaborator (spec §1b) — it is a direct structural walk over
// the module, the same shape as the teacher's [code.Instructions.String],
// which walks a flat instruction stream formatting one opcode at a time.
package irprint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ir8co/pyssa/module"
)

// Print renders m using the grammar from spec §6: `.source_language`
// first, then procedures, globals, type declarations, and builtin
// declarations.
func Print(m *module.Module) string {
	var out strings.Builder

	lang := m.SourceLanguage
	if lang == "" {
		lang = "python"
	}
	fmt.Fprintf(&out, ".source_language = %q\n\n", lang)

	for _, p := range m.Procs {
		printProc(&out, p)
		out.WriteString("\n")
	}

	for _, g := range m.Globals {
		fmt.Fprintf(&out, "global %s: %s\n", g.Name, g.Type)
	}
	if len(m.Globals) > 0 {
		out.WriteString("\n")
	}

	for _, t := range m.Types {
		printType(&out, t)
	}
	if len(m.Types) > 0 {
		out.WriteString("\n")
	}

	for _, b := range m.Builtins {
		printBuiltinDecl(&out, b)
	}

	return out.String()
}

// PrintProc renders a single procedure in isolation, used by the CLI's
// `explore` subcommand to show one proc at a time without re-rendering the
// whole module.
func PrintProc(p *module.Proc) string {
	var out strings.Builder
	printProc(&out, p)
	return out.String()
}

func printProc(out *strings.Builder, p *module.Proc) {
	params := make([]string, len(p.Params))
	for i, pp := range p.Params {
		params[i] = fmt.Sprintf("%s: %s", pp.Name, pp.Type)
	}
	fmt.Fprintf(out, "define %s(%s) : %s {\n", p.Name, strings.Join(params, ", "), p.Returns)
	for _, b := range p.Blocks {
		printBlock(out, b)
	}
	out.WriteString("}\n")
}

func printBlock(out *strings.Builder, b *module.Block) {
	params := make([]string, len(b.Params))
	for i, bp := range b.Params {
		params[i] = fmt.Sprintf("n%d: %s", bp.ID, bp.Type)
	}
	fmt.Fprintf(out, "  #%s(%s):\n", b.Label, strings.Join(params, ", "))
	for _, ins := range b.Instrs {
		fmt.Fprintf(out, "    %s\n", formatInstr(ins))
	}
}

func formatInstr(ins module.Instr) string {
	switch i := ins.(type) {
	case module.Store:
		return fmt.Sprintf("store %s <- %s: %s", i.Lval, formatValue(i.Rhs), i.Type)
	case module.Bind:
		return fmt.Sprintf("n%d = %s", i.ID, formatValue(i.Rhs))
	case module.Load:
		return fmt.Sprintf("n%d:%s = load %s", i.ID, i.Type, i.Lval)
	case module.AttrLoad:
		return fmt.Sprintf("n%d = %s.?.%s", i.ID, formatValue(i.Base), i.Attr)
	case module.AttrStore:
		return fmt.Sprintf("store %s.?.%s <- %s: %s", formatValue(i.Base), i.Attr, formatValue(i.Rhs), i.Type)
	case module.Jmp:
		targets := make([]string, len(i.Targets))
		for j, t := range i.Targets {
			args := make([]string, len(t.Args))
			for k, a := range t.Args {
				args[k] = formatValue(a)
			}
			targets[j] = fmt.Sprintf("%s(%s)", t.Label, strings.Join(args, ", "))
		}
		return "jmp " + strings.Join(targets, ", ")
	case module.Prune:
		if i.Negate {
			return fmt.Sprintf("prune __sil_lnot(%s)", formatValue(i.Operand))
		}
		return fmt.Sprintf("prune %s", formatValue(i.Operand))
	case module.Ret:
		return fmt.Sprintf("ret %s", formatValue(i.Value))
	default:
		return fmt.Sprintf("<unknown instruction %T>", ins)
	}
}

func formatValue(v module.Value) string {
	switch val := v.(type) {
	case module.TempRef:
		return "n" + strconv.Itoa(val.ID)
	case module.GlobalRef:
		return "&" + val.Name
	case module.LocalRef:
		return "&" + val.Name
	case module.BuiltinRef:
		return "$builtins." + val.Name
	case module.IntLit:
		return strconv.FormatInt(val.N, 10)
	case module.FloatLit:
		return strconv.FormatFloat(val.F, 'g', -1, 64)
	case module.BoolLit:
		if val.B {
			return "1"
		}
		return "0"
	case module.StringLit:
		return strconv.Quote(val.S)
	case module.NullLit:
		return "null"
	case module.Call:
		args := make([]string, len(val.Args))
		for i, a := range val.Args {
			args[i] = formatValue(a)
		}
		return fmt.Sprintf("%s(%s)", formatValue(val.Callee), strings.Join(args, ", "))
	default:
		return fmt.Sprintf("<unknown value %T>", v)
	}
}

func printType(out *strings.Builder, t module.TypeDecl) {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	fmt.Fprintf(out, "type %s = {%s}\n", t.Name, strings.Join(fields, "; "))
}

func printBuiltinDecl(out *strings.Builder, b module.BuiltinDecl) {
	operands := make([]string, len(b.Operands))
	for i, o := range b.Operands {
		operands[i] = o.String()
	}
	if b.Variadic {
		operands = append(operands, "...")
	}
	fmt.Fprintf(out, "declare $builtins.%s(%s) : %s\n", b.Name, strings.Join(operands, ", "), b.Returns)
}

// SortedGlobalNames is a small test helper returning the module's global
// names in sorted order. Print itself writes globals in the order
// m.Globals holds them.
func SortedGlobalNames(m *module.Module) []string {
	names := make([]string, len(m.Globals))
	for i, g := range m.Globals {
		names[i] = g.Name
	}
	sort.Strings(names)
	return names
}
