package instr

import (
	"fmt"

	"github.com/saicheems/bfscript/internal/gen"
)

// transfer emits the canonical "consume src, accumulate into dst" BF loop:
// goto(src) [- goto(dst) <sign> goto(src)]. Add and Move both reduce to
// this shape; Sub uses sign '-' at dst instead of '+'.
func transfer(g *gen.Generator, dst, src int, sign byte) string {
	out := g.Goto(src)
	out += "["
	out += "-"
	out += g.Goto(dst)
	out += string(sign)
	out += g.Goto(src)
	out += "]"
	return out
}

// Add consumes b into a: cells[a] += cells[b] (mod 256), cells[b] = 0.
type Add struct {
	A, B int
}

// NewAdd validates that a and b are distinct cells -- aliasing Add's
// operands is a programmer error per spec.md §7 (the loop idiom can't
// express "add a cell to itself").
func NewAdd(a, b int) (*Add, error) {
	if a == b {
		return nil, fmt.Errorf("add: source and destination cells alias at %d", a)
	}
	return &Add{A: a, B: b}, nil
}

func (i *Add) Emit(g *gen.Generator) string {
	return transfer(g, i.A, i.B, '+')
}

func (i *Add) Simulate(g *gen.Generator) {
	g.Cursor = i.B
	m := g.Memory
	if m.IsDirty(i.A) {
		m.Set(i.B, 0)
		return
	}
	if m.IsDirty(i.B) {
		m.Dirty(i.A)
		m.Set(i.B, 0)
		return
	}
	m.Set(i.A, m.Get(i.A)+m.Get(i.B))
	m.Set(i.B, 0)
}

// Sub consumes b out of a: cells[a] -= cells[b] (mod 256), cells[b] = 0.
type Sub struct {
	A, B int
}

// NewSub validates a != b for the same reason as NewAdd.
func NewSub(a, b int) (*Sub, error) {
	if a == b {
		return nil, fmt.Errorf("sub: source and destination cells alias at %d", a)
	}
	return &Sub{A: a, B: b}, nil
}

func (i *Sub) Emit(g *gen.Generator) string {
	return transfer(g, i.A, i.B, '-')
}

func (i *Sub) Simulate(g *gen.Generator) {
	g.Cursor = i.B
	m := g.Memory
	if m.IsDirty(i.A) {
		m.Set(i.B, 0)
		return
	}
	if m.IsDirty(i.B) {
		m.Dirty(i.A)
		m.Set(i.B, 0)
		return
	}
	m.Set(i.A, m.Get(i.A)-m.Get(i.B))
	m.Set(i.B, 0)
}

// Move overwrites a with b's value and zeroes b: cells[a] = cells[b];
// cells[b] = 0. Emitted as Clear(a) followed by the Add transfer idiom.
type Move struct {
	A, B int
}

// NewMove validates a != b: moving a cell onto itself isn't expressible by
// the underlying idiom (it would clear the cell before reading it).
func NewMove(a, b int) (*Move, error) {
	if a == b {
		return nil, fmt.Errorf("move: source and destination cells alias at %d", a)
	}
	return &Move{A: a, B: b}, nil
}

func (i *Move) Emit(g *gen.Generator) string {
	out := Clear{i.A}.Emit(g)
	out += transfer(g, i.A, i.B, '+')
	return out
}

func (i *Move) Simulate(g *gen.Generator) {
	g.Cursor = i.B
	m := g.Memory
	if m.IsDirty(i.B) {
		m.Dirty(i.A)
		m.Set(i.B, 0)
		return
	}
	m.Set(i.A, m.Get(i.B))
	m.Set(i.B, 0)
}

// Copy leaves a holding b's value while preserving b, using tmp as scratch:
// cells[a] = cells[b]; cells[b] unchanged; cells[tmp] = 0. The caller frees
// tmp once done with it -- Copy doesn't own it (spec.md §4.5: lowering an
// Identifier expression reuses one temp cell across every offset copied).
type Copy struct {
	A, Tmp, B int
}

func NewCopy(a, tmp, b int) *Copy {
	return &Copy{A: a, Tmp: tmp, B: b}
}

func (i *Copy) Emit(g *gen.Generator) string {
	out := Clear{i.A}.Emit(g)
	out += (&Move{i.Tmp, i.B}).Emit(g)
	out += g.Goto(i.Tmp)
	out += "["
	out += "-"
	out += g.Goto(i.A)
	out += "+"
	out += g.Goto(i.B)
	out += "+"
	out += g.Goto(i.Tmp)
	out += "]"
	out += g.Goto(i.A)
	return out
}

func (i *Copy) Simulate(g *gen.Generator) {
	g.Cursor = i.A
	m := g.Memory
	m.Set(i.Tmp, 0)
	if m.IsDirty(i.B) {
		m.Dirty(i.A)
		return
	}
	m.Set(i.A, m.Get(i.B))
}

// BoolNegate flips a between 0 and 1 using tmp as scratch: a==0 becomes 1,
// any nonzero a becomes 0. Self-inverse on {0,1}.
type BoolNegate struct {
	A, Tmp int
}

func NewBoolNegate(a, tmp int) *BoolNegate {
	return &BoolNegate{A: a, Tmp: tmp}
}

// Canonical idiom: temp[-]+ a[[-]temp- a] temp[-a+temp] a
func (i *BoolNegate) Emit(g *gen.Generator) string {
	out := g.Goto(i.Tmp)
	out += "[-]+"
	out += g.Goto(i.A)
	out += "[[-]"
	out += g.Goto(i.Tmp)
	out += "-"
	out += g.Goto(i.A)
	out += "]"
	out += g.Goto(i.Tmp)
	out += "[-"
	out += g.Goto(i.A)
	out += "+"
	out += g.Goto(i.Tmp)
	out += "]"
	out += g.Goto(i.A)
	return out
}

func (i *BoolNegate) Simulate(g *gen.Generator) {
	g.Cursor = i.A
	m := g.Memory
	if m.IsDirty(i.A) {
		m.Dirty(i.Tmp)
		return
	}
	v := m.Get(i.A)
	m.Set(i.Tmp, 0)
	if v == 0 {
		m.Set(i.A, 1)
	} else {
		m.Set(i.A, 0)
	}
}
