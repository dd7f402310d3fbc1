// Package label implements the Label/Block Manager (spec §4.4): it maps
// bytecode offsets to pending labels, records each label's SSA parameter
// types and deferred prelude, and prevents a label's block body from
// being lowered more than once.
//
// The teacher's compiler resolves forward jumps by emitting a placeholder
// operand and patching it once the real position is known
// ([compiler.Compiler.changeOperand]). Textual IR has no linear
// instruction stream to patch — jumps target named blocks — so this
// package instead *registers* a label the first time a jump targets an
// offset that hasn't been lowered yet, and *materializes* it (mints a
// block name and SSA parameter identifiers) the first time the translator
// reaches that offset while lowering forward.
package label

import (
	"fmt"

	"github.com/ir8co/pyssa/datastack"
	"github.com/ir8co/pyssa/irtype"
)

// PreludeKind tags what a deferred prelude step does to the value that
// enters a block.
type PreludeKind int

//nolint:revive
const (
	PreludeIdentity PreludeKind = iota
	PrunePrelude
	PruneNotPrelude
)

// PreludeStep is one deferred transformation applied when a label is
// materialized — typically inserting a `prune` instruction for a
// conditional arm. Encoded as plain data (kind + operand) rather than a
// closure, per spec §9's "non-closure encoding" design note: this keeps
// Info loggable and comparable for tests.
type PreludeStep struct {
	Kind    PreludeKind
	Operand datastack.Cell
}

// Info is the per-label state: its IR block name, the ordered SSA
// parameter types live at the join, the deferred prelude steps to apply
// once materialized, and whether it has already been lowered.
type Info struct {
	Name          string
	SSAParamTypes []irtype.Type
	Prelude       []PreludeStep
	Processed     bool
}

// Registry tracks labels by the bytecode offset they're pending at.
// Labels are procedure-scoped: a fresh Registry is created per procedure
// (translator.Env.EnterProc).
type Registry struct {
	byOffset  map[int]*Info
	nextLabel int
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byOffset: make(map[int]*Info)}
}

// freshName mints the next block label in this procedure, "b0", "b1", ...
func (r *Registry) freshName() string {
	name := fmt.Sprintf("b%d", r.nextLabel)
	r.nextLabel++
	return name
}

// Register places a label at offset with the given SSA parameter types
// and prelude steps. If a label already exists at that offset — the jump
// target has already been registered by an earlier jump site — the
// arities must agree (spec §4.4); the new prelude steps are appended to
// the existing ones and the existing Info is returned. Otherwise a fresh
// label is minted, the first registration's SSA parameter types become
// authoritative, and the new Info is returned.
func (r *Registry) Register(offset int, ssaTypes []irtype.Type, prelude []PreludeStep) (*Info, error) {
	if existing, ok := r.byOffset[offset]; ok {
		if len(existing.SSAParamTypes) != len(ssaTypes) {
			return nil, fmt.Errorf(
				"label at offset %d registered with %d SSA parameters, re-registered with %d",
				offset, len(existing.SSAParamTypes), len(ssaTypes),
			)
		}
		existing.Prelude = append(existing.Prelude, prelude...)
		return existing, nil
	}
	info := &Info{
		Name:          r.freshName(),
		SSAParamTypes: append([]irtype.Type(nil), ssaTypes...),
		Prelude:       append([]PreludeStep(nil), prelude...),
	}
	r.byOffset[offset] = info
	return info, nil
}

// LabelAt returns the label registered at offset, if any.
func (r *Registry) LabelAt(offset int) (*Info, bool) {
	info, ok := r.byOffset[offset]
	return info, ok
}

// Process marks a label as lowered, so the translator's main loop can
// refuse to lower its block body a second time (guards against
// re-entering a back-edge target).
func (r *Registry) Process(offset int) error {
	info, ok := r.byOffset[offset]
	if !ok {
		return fmt.Errorf("no label registered at offset %d", offset)
	}
	info.Processed = true
	return nil
}

// IsProcessed reports whether the label at offset has already been
// lowered.
func (r *Registry) IsProcessed(offset int) bool {
	info, ok := r.byOffset[offset]
	return ok && info.Processed
}

// Materialize mints fresh SSA parameter identifiers for a label's block
// using mkTemp (typically translator.Env.FreshIdent), returning the block
// name and the minted identifiers in parameter order. The caller is
// responsible for turning info.Prelude into actual IR instructions
// emitted at the top of the new block and for pushing the minted
// identifiers back onto the data stack as TempCells.
func Materialize(info *Info, mkTemp func(irtype.Type) int) (name string, params []int) {
	params = make([]int, len(info.SSAParamTypes))
	for i, t := range info.SSAParamTypes {
		params[i] = mkTemp(t)
	}
	return info.Name, params
}
