// Package bytecode models the loaded code object the translator consumes:
// a constants pool, names tables, and a linear instruction stream with byte
// offsets. Producing a CodeObject from a real serialized bytecode file is
// the bytecode loader's job and is explicitly out of scope here (spec §1a);
// this package only goes far enough to hand the translator something to
// work with, backed by a small YAML fixture format read by the CLI's
// "translate"/"explore" subcommands.
package bytecode

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConstKind tags the variant a [Const] holds.
type ConstKind int

//nolint:revive
const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstString
	ConstNone
	ConstCode
)

// Const is one entry of a code object's constants pool: an int, float,
// bool, string, None, or a nested code object.
type Const struct {
	Kind ConstKind
	Int  int64
	Flt  float64
	Bool bool
	Str  string
	Code *CodeObject
}

// Instruction is one bytecode instruction: an opcode name, an optional
// operand, and its byte offset in the enclosing code object.
type Instruction struct {
	Op     string
	Arg    int
	HasArg bool
	Offset int
	Line   int
}

// CodeObject is a single compiled unit: a module, function, or class body.
type CodeObject struct {
	Filename    string
	Name        string
	Consts      []Const
	Names       []string
	VarNames    []string
	ArgCount    int
	Flags       uint32
	Instrs      []Instruction
	IsFunction  bool
	IsClass     bool
	Annotations map[string]string
}

// Const returns the i'th constant, erroring if the index is out of range.
func (c *CodeObject) Const(i int) (Const, error) {
	if i < 0 || i >= len(c.Consts) {
		return Const{}, fmt.Errorf("constant index %d out of range (pool has %d entries)", i, len(c.Consts))
	}
	return c.Consts[i], nil
}

// Name returns the i'th entry of the names table.
func (c *CodeObject) Name(i int) (string, error) {
	if i < 0 || i >= len(c.Names) {
		return "", fmt.Errorf("name index %d out of range (table has %d entries)", i, len(c.Names))
	}
	return c.Names[i], nil
}

// VarName returns the i'th entry of the local-variable-names table.
func (c *CodeObject) VarName(i int) (string, error) {
	if i < 0 || i >= len(c.VarNames) {
		return "", fmt.Errorf("varname index %d out of range (table has %d entries)", i, len(c.VarNames))
	}
	return c.VarNames[i], nil
}

// yamlConst and yamlCodeObject mirror CodeObject/Const in a shape
// convenient for hand-written YAML fixtures: constants are written as
// `{kind: int, int: 42}` etc., and a nested code constant embeds a full
// code object under `code:`.
type yamlConst struct {
	Kind  string         `yaml:"kind"`
	Int   int64          `yaml:"int,omitempty"`
	Float float64        `yaml:"float,omitempty"`
	Bool  bool           `yaml:"bool,omitempty"`
	Str   string         `yaml:"str,omitempty"`
	Code  *yamlCodeObject `yaml:"code,omitempty"`
}

type yamlInstruction struct {
	Op     string `yaml:"op"`
	Arg    int    `yaml:"arg"`
	HasArg bool   `yaml:"has_arg"`
	Offset int    `yaml:"offset"`
	Line   int    `yaml:"line,omitempty"`
}

type yamlCodeObject struct {
	Name        string            `yaml:"name"`
	Consts      []yamlConst       `yaml:"consts"`
	Names       []string          `yaml:"names"`
	VarNames    []string          `yaml:"varnames"`
	ArgCount    int               `yaml:"argcount"`
	Flags       uint32            `yaml:"flags"`
	Instrs      []yamlInstruction `yaml:"instrs"`
	IsFunction  bool              `yaml:"is_function"`
	IsClass     bool              `yaml:"is_class"`
	Annotations map[string]string `yaml:"annotations"`
}

// LoadFixture reads a YAML-encoded code object from path. It stands in for
// the bytecode loader (spec §1a, §6.1): it does not parse any real
// marshalled bytecode format, only the fixture shape used by this repo's
// CLI.
func LoadFixture(path string) (*CodeObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bytecode fixture: %w", err)
	}
	var doc yamlCodeObject
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing bytecode fixture %s: %w", path, err)
	}
	co := fromYAML(&doc)
	co.Filename = path
	return co, nil
}

func fromYAML(y *yamlCodeObject) *CodeObject {
	co := &CodeObject{
		Name:        y.Name,
		Names:       y.Names,
		VarNames:    y.VarNames,
		ArgCount:    y.ArgCount,
		Flags:       y.Flags,
		IsFunction:  y.IsFunction,
		IsClass:     y.IsClass,
		Annotations: y.Annotations,
	}
	for _, c := range y.Consts {
		co.Consts = append(co.Consts, constFromYAML(c))
	}
	for _, ins := range y.Instrs {
		co.Instrs = append(co.Instrs, Instruction{
			Op: ins.Op, Arg: ins.Arg, HasArg: ins.HasArg, Offset: ins.Offset, Line: ins.Line,
		})
	}
	return co
}

func constFromYAML(y yamlConst) Const {
	switch y.Kind {
	case "int":
		return Const{Kind: ConstInt, Int: y.Int}
	case "float":
		return Const{Kind: ConstFloat, Flt: y.Float}
	case "bool":
		return Const{Kind: ConstBool, Bool: y.Bool}
	case "str":
		return Const{Kind: ConstString, Str: y.Str}
	case "code":
		return Const{Kind: ConstCode, Code: fromYAML(y.Code)}
	default:
		return Const{Kind: ConstNone}
	}
}

// Dump re-serializes a code object's tables to YAML for debugging, the
// reverse of LoadFixture.
func Dump(co *CodeObject) (string, error) {
	y := toYAML(co)
	out, err := yaml.Marshal(y)
	if err != nil {
		return "", fmt.Errorf("dumping code object: %w", err)
	}
	return string(out), nil
}

func toYAML(co *CodeObject) *yamlCodeObject {
	y := &yamlCodeObject{
		Name:        co.Name,
		Names:       co.Names,
		VarNames:    co.VarNames,
		ArgCount:    co.ArgCount,
		Flags:       co.Flags,
		IsFunction:  co.IsFunction,
		IsClass:     co.IsClass,
		Annotations: co.Annotations,
	}
	for _, c := range co.Consts {
		y.Consts = append(y.Consts, constToYAML(c))
	}
	for _, ins := range co.Instrs {
		y.Instrs = append(y.Instrs, yamlInstruction{
			Op: ins.Op, Arg: ins.Arg, HasArg: ins.HasArg, Offset: ins.Offset, Line: ins.Line,
		})
	}
	return y
}

func constToYAML(c Const) yamlConst {
	switch c.Kind {
	case ConstInt:
		return yamlConst{Kind: "int", Int: c.Int}
	case ConstFloat:
		return yamlConst{Kind: "float", Float: c.Flt}
	case ConstBool:
		return yamlConst{Kind: "bool", Bool: c.Bool}
	case ConstString:
		return yamlConst{Kind: "str", Str: c.Str}
	case ConstCode:
		return yamlConst{Kind: "code", Code: toYAML(c.Code)}
	default:
		return yamlConst{Kind: "none"}
	}
}
