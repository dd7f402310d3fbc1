package translator

import (
	"github.com/ir8co/pyssa/bytecode"
	"github.com/ir8co/pyssa/datastack"
	"github.com/ir8co/pyssa/irtype"
	"github.com/ir8co/pyssa/label"
	"github.com/ir8co/pyssa/module"
)

// procBuilder accumulates the blocks of one procedure as the translator
// walks its instructions.
type procBuilder struct {
	env    *Env
	co     *bytecode.CodeObject
	blocks []*module.Block

	currentLabel  string
	currentParams []module.BlockParam

	nested []procWork
}

// resolveLive resolves every cell of a stack snapshot into jump arguments
// and their Info (used as SSA parameter types when registering a label).
func (pb *procBuilder) resolveLive(cells []datastack.Cell) ([]module.Value, []irtype.Info, error) {
	vals := make([]module.Value, len(cells))
	infos := make([]irtype.Info, len(cells))
	for i, c := range cells {
		v, info, err := resolveForUse(pb.env, pb.co, c)
		if err != nil {
			return nil, nil, err
		}
		vals[i] = v
		infos[i] = info
	}
	return vals, infos, nil
}

// infoTypes projects the Typ field out of a slice of Info, for passing to
// label.Registry.Register as the SSA parameter types.
func infoTypes(infos []irtype.Info) []irtype.Type {
	out := make([]irtype.Type, len(infos))
	for i, info := range infos {
		out[i] = info.Typ
	}
	return out
}

// openBlockAt materializes a label's SSA parameters, applies its deferred
// prelude, and starts accumulating a new block under that label. offset is
// the bytecode offset the label was registered at, used to mark it
// processed.
func (pb *procBuilder) openBlockAt(offset int, info *label.Info) error {
	name, params := label.Materialize(info, func(t irtype.Type) int {
		return pb.env.FreshIdent(irtype.Info{Typ: t})
	})
	cells := make([]datastack.Cell, len(params))
	blockParams := make([]module.BlockParam, len(params))
	for i, id := range params {
		cells[i] = datastack.TempCell{ID: id}
		blockParams[i] = module.BlockParam{ID: id, Type: info.SSAParamTypes[i]}
	}
	pb.env.ReplaceStack(cells)
	pb.currentLabel = name
	pb.currentParams = blockParams

	for _, step := range info.Prelude {
		v, _, err := resolveForUse(pb.env, pb.co, step.Operand)
		if err != nil {
			return err
		}
		switch step.Kind {
		case label.PrunePrelude:
			pb.env.PushInstr(module.Prune{Operand: v})
		case label.PruneNotPrelude:
			pb.env.PushInstr(module.Prune{Operand: v, Negate: true})
		case label.PreludeIdentity:
		}
	}
	return pb.env.Labels().Process(offset)
}

// closeBlock drains the buffered instructions into a finished Block and
// appends it to pb.blocks.
func (pb *procBuilder) closeBlock() {
	pb.blocks = append(pb.blocks, &module.Block{
		Label:  pb.currentLabel,
		Params: pb.currentParams,
		Instrs: pb.env.DrainInstrs(),
	})
	pb.env.ResetStack()
}

// closeWithJump resolves the live stack, emits a Jmp with a single target,
// registers (or reuses) a label at targetOffset with matching SSA types,
// and closes the current block.
func (pb *procBuilder) closeWithJump(targetOffset int) error {
	live := pb.env.StackSnapshot()
	args, infos, err := pb.resolveLive(live)
	if err != nil {
		return err
	}
	info, err := pb.env.Labels().Register(targetOffset, infoTypes(infos), nil)
	if err != nil {
		return err
	}
	pb.env.PushInstr(module.Jmp{Targets: []module.JmpTarget{{Label: info.Name, Args: args}}})
	pb.closeBlock()
	return nil
}

// closeWithConditionalJump resolves the live stack (after the condition
// cell has already been popped by the caller), registers both successor
// labels with matching SSA types and prune/prune-not preludes, and closes
// the current block with a two-way Jmp. When fallthroughIsPruneNot is
// true (POP_JUMP_IF_TRUE), the fallthrough arm gets the negated prelude
// and the jump target gets the positive one; otherwise (POP_JUMP_IF_FALSE)
// it is the other way around.
func (pb *procBuilder) closeWithConditionalJump(condID int, fallthroughOffset, targetOffset int, fallthroughIsPruneNot bool) error {
	live := pb.env.StackSnapshot()
	args, infos, err := pb.resolveLive(live)
	if err != nil {
		return err
	}
	types := infoTypes(infos)
	fallthroughKind, targetKind := label.PrunePrelude, label.PruneNotPrelude
	if fallthroughIsPruneNot {
		fallthroughKind, targetKind = label.PruneNotPrelude, label.PrunePrelude
	}
	fallthroughInfo, err := pb.env.Labels().Register(fallthroughOffset, types, []label.PreludeStep{
		{Kind: fallthroughKind, Operand: datastack.TempCell{ID: condID}},
	})
	if err != nil {
		return err
	}
	targetInfo, err := pb.env.Labels().Register(targetOffset, types, []label.PreludeStep{
		{Kind: targetKind, Operand: datastack.TempCell{ID: condID}},
	})
	if err != nil {
		return err
	}
	pb.env.PushInstr(module.Jmp{Targets: []module.JmpTarget{
		{Label: fallthroughInfo.Name, Args: args},
		{Label: targetInfo.Name, Args: args},
	}})
	pb.closeBlock()
	return nil
}

// closeTwoWayJump is the variant used by FOR_ITER and the
// JUMP_IF_*_OR_POP opcodes: the two edges carry distinct argument lists
// and distinct SSA parameter type lists (for FOR_ITER, the true edge
// additionally passes the iterator and the unwrapped item).
func (pb *procBuilder) closeTwoWayJump(trueOffset int, trueArgs []module.Value, trueTypes []irtype.Type, truePrelude []label.PreludeStep,
	falseOffset int, falseArgs []module.Value, falseTypes []irtype.Type, falsePrelude []label.PreludeStep) error {
	trueInfo, err := pb.env.Labels().Register(trueOffset, trueTypes, truePrelude)
	if err != nil {
		return err
	}
	falseInfo, err := pb.env.Labels().Register(falseOffset, falseTypes, falsePrelude)
	if err != nil {
		return err
	}
	pb.env.PushInstr(module.Jmp{Targets: []module.JmpTarget{
		{Label: trueInfo.Name, Args: trueArgs},
		{Label: falseInfo.Name, Args: falseArgs},
	}})
	pb.closeBlock()
	return nil
}
