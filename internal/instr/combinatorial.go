package instr

import "github.com/saicheems/bfscript/internal/gen"

// Mul multiplies a and b, leaving the product in a freshly reserved 4-cell
// block (the product lives at Result(), block+3) and consuming a and b.
// The block is allocated once, at construction, since its relative offsets
// are baked into the emitted idiom.
type Mul struct {
	A, B  int
	Block int
}

// NewMul reserves the 4-cell working block and returns a Mul over a, b.
// Call Result() to get the cell the product will live in.
func NewMul(g *gen.Generator, a, b int) *Mul {
	return &Mul{A: a, B: b, Block: g.Memory.Alloc(4)}
}

// Result returns the cell the product occupies after this instruction runs.
func (i *Mul) Result() int {
	return i.Block + 3
}

// https://www.codingame.com/playgrounds/50426/getting-started-with-brainfuck/multiplication
func (i *Mul) Emit(g *gen.Generator) string {
	out := (&Move{i.Block + 0, i.A}).Emit(g)
	out += (&Move{i.Block + 1, i.B}).Emit(g)
	out += g.Goto(i.Block)
	out += "[>[->+>+<<]>[-<+>]<<-]"
	return out
}

func (i *Mul) Simulate(g *gen.Generator) {
	m := g.Memory
	loc := i.Block
	g.Cursor = loc

	aDirty, bDirty := m.IsDirty(i.A), m.IsDirty(i.B)

	m.Set(loc, 0)
	m.Set(loc+2, 0)

	if bDirty {
		m.Dirty(loc + 1)
	} else {
		m.Set(loc+1, m.Get(i.B))
	}

	if aDirty || bDirty {
		m.Dirty(loc + 3)
	} else {
		m.Set(loc+3, m.Get(i.A)*m.Get(i.B))
	}

	m.Set(i.A, 0)
	m.Set(i.B, 0)
}

// Div divides a by b, leaving the remainder at Block+1 and the quotient at
// Result() (Block+5), in a freshly reserved 6-cell block.
type Div struct {
	A, B  int
	Block int
}

// NewDiv reserves the 6-cell working block and returns a Div over a, b.
func NewDiv(g *gen.Generator, a, b int) *Div {
	return &Div{A: a, B: b, Block: g.Memory.Alloc(6)}
}

// Result returns the cell the quotient occupies after this instruction runs.
func (i *Div) Result() int {
	return i.Block + 5
}

// Remainder returns the cell the remainder occupies after this instruction
// runs.
func (i *Div) Remainder() int {
	return i.Block + 1
}

// A, 0, 0, 0, B, 0  ->  0, R, 0, 0, B', Q
func (i *Div) Emit(g *gen.Generator) string {
	out := (&Move{i.Block + 0, i.A}).Emit(g)
	out += (&Move{i.Block + 4, i.B}).Emit(g)
	out += Set{i.Block + 1, 0}.Emit(g)
	out += Set{i.Block + 2, 0}.Emit(g)
	out += Set{i.Block + 3, 0}.Emit(g)
	out += Set{i.Block + 5, 0}.Emit(g)
	out += g.Goto(i.Block)
	out += "[->+>>+>-[<-]<[<<[->>>+<<<]>>>>+<<-<]<<]"
	return out
}

func (i *Div) Simulate(g *gen.Generator) {
	m := g.Memory
	loc := i.Block
	g.Cursor = loc

	aDirty, bDirty := m.IsDirty(i.A), m.IsDirty(i.B)
	var a, b byte
	if !aDirty {
		a = m.Get(i.A)
	}
	if !bDirty {
		b = m.Get(i.B)
	}
	m.Set(i.A, 0)
	m.Set(i.B, 0)
	m.Set(loc, 0)
	m.Set(loc+2, 0)
	m.Set(loc+3, 0)

	if aDirty || bDirty || b == 0 {
		m.Dirty(loc + 1)
		m.Set(loc+4, b)
		m.Dirty(loc + 5)
		return
	}
	m.Set(loc+1, a%b)
	m.Set(loc+4, b)
	m.Set(loc+5, a/b)
}

// Distance computes the gap between a and b, leaving b-a at Lt() when a < b
// and a-b at Gt() when a > b (the other cell holds 0); both are 0 when
// equal. When b is 0 the idiom leaves Gt() one short, at a-1, so a=1, b=0
// reads as equal. Reserves a 7-cell working block at construction.
type Distance struct {
	A, B  int
	Block int
}

// NewDistance reserves the 7-cell working block and returns a Distance over
// a, b. Gt() and Lt() report the result cells.
func NewDistance(g *gen.Generator, a, b int) *Distance {
	return &Distance{A: a, B: b, Block: g.Memory.Alloc(7)}
}

// Gt returns the cell holding a-b when a > b (a-1 when b is 0), else 0.
func (i *Distance) Gt() int { return i.Block + 3 }

// Lt returns the cell holding the (b-a) distance when a < b, else 0.
func (i *Distance) Lt() int { return i.Block + 5 }

func (i *Distance) Emit(g *gen.Generator) string {
	var out string
	for k := 0; k < 6; k++ {
		out += Set{i.Block + k, 0}.Emit(g)
	}
	out += Set{i.Block + 0, 1}.Emit(g)
	out += Set{i.Block + 1, 1}.Emit(g)
	out += (&Move{i.Block + 3, i.A}).Emit(g)
	out += (&Move{i.Block + 5, i.B}).Emit(g)
	out += g.Goto(i.Block + 3)
	out += "[->>[-[<]]<]<<<[>]"
	return out
}

func (i *Distance) Simulate(g *gen.Generator) {
	m := g.Memory
	loc := i.Block
	g.Cursor = loc + 2

	m.Set(loc, 1)
	m.Set(loc+1, 1)

	if m.IsDirty(i.A) || m.IsDirty(i.B) {
		m.Set(i.A, 0)
		m.Set(i.B, 0)
		m.Dirty(loc + 3)
		m.Dirty(loc + 5)
		return
	}

	aval, bval := m.Get(i.A), m.Get(i.B)
	m.Set(i.A, 0)
	m.Set(i.B, 0)

	if aval > bval {
		gt := aval - bval
		if bval == 0 {
			gt = aval - 1
		}
		m.Set(loc+3, gt)
		m.Set(loc+5, 0)
		return
	}
	m.Set(loc+3, 0)
	m.Set(loc+5, bval-aval)
}
