package instr

import "github.com/saicheems/bfscript/internal/gen"

// If runs Body at most once, gated on CondCell being nonzero, using the
// execute-then-clear idiom: cond[ body cond[-] ]. The guard loop can iterate
// at most once because the body unconditionally zeroes the cell it tested.
//
// When CondCell's compile-time value is known, the body's memory effects are
// simulated exactly (skipped entirely if the value is 0, applied once if
// nonzero) since a known condition can't disagree with what the interpreter
// will actually do. When it's dirty, the body is simulated once as a
// representative pass and every cell it or the recheck touched is then
// marked dirty relative to a pre-body snapshot -- the conservative
// over-approximation spec.md §4.3 requires.
type If struct {
	CondCell int
	Body     *Block
}

// NewIf returns an If gated on condCell, running body at most once.
func NewIf(condCell int, body *Block) *If {
	return &If{CondCell: condCell, Body: body}
}

func (i *If) Emit(g *gen.Generator) string {
	m := g.Memory
	condDirty := m.IsDirty(i.CondCell)
	var condVal byte
	if !condDirty {
		condVal = m.Get(i.CondCell)
	}
	takeBranch := condDirty || condVal != 0

	var snapshot []byte
	if condDirty {
		snapshot = m.Snapshot()
	}

	out := g.Goto(i.CondCell) + "["
	for _, ins := range i.Body.Instructions {
		out += ins.Emit(g)
		if takeBranch {
			ins.Simulate(g)
		}
	}
	out += g.Goto(i.CondCell) + "[-]"
	out += "]"

	if condDirty {
		m.DirtyChanged(snapshot)
	}
	m.Set(i.CondCell, 0)
	return out
}

// Simulate is a no-op: Emit already applied every memory effect this
// instruction has, mirroring Goto.
func (i *If) Simulate(g *gen.Generator) {}

// While repeatedly runs Body for as long as re-evaluating Cond leaves
// CondCell nonzero: cond[ body cond ]. Cond is the block of instructions
// that (re)computes the loop condition into CondCell -- it's emitted once
// before the loop and once more at the end of the body, matching how the
// idiom re-checks on every iteration.
//
// A BF "[...]" loop always exits with its tested cell at 0, so CondCell is
// known-0 after a While regardless of how conservatively the body was
// treated. The body and condition recompute are simulated once as a
// representative pass and diffed against a pre-loop snapshot to mark
// whatever they may have touched dirty -- the compiler can't bound how many
// times a real run executes the loop, so it never claims to know the exact
// post-loop state of any cell the body reaches.
type While struct {
	CondCell int
	Cond     *Block
	Body     *Block
}

// NewWhile returns a While whose condition is (re)computed by cond into
// condCell and whose body is body.
func NewWhile(condCell int, cond, body *Block) *While {
	return &While{CondCell: condCell, Cond: cond, Body: body}
}

func (w *While) Emit(g *gen.Generator) string {
	m := g.Memory
	out := w.Cond.Emit(g)
	out += g.Goto(w.CondCell) + "["

	snapshot := m.Snapshot()
	for _, ins := range w.Body.Instructions {
		out += ins.Emit(g)
		ins.Simulate(g)
	}
	for _, ins := range w.Cond.Instructions {
		out += ins.Emit(g)
		ins.Simulate(g)
	}
	out += g.Goto(w.CondCell)
	out += "]"

	m.DirtyChanged(snapshot)
	m.Set(w.CondCell, 0)
	return out
}

// Simulate is a no-op for the same reason as If.Simulate.
func (w *While) Simulate(g *gen.Generator) {}
