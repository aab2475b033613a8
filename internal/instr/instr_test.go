package instr_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saicheems/bfscript/internal/bf"
	"github.com/saicheems/bfscript/internal/gen"
	"github.com/saicheems/bfscript/internal/instr"
)

// run emits block against a fresh generator, executes the result on a real
// BF machine, and returns the machine so tests can inspect cells the
// simulator claims to know.
func run(t *testing.T, build func(g *gen.Generator, b *instr.Block)) (*gen.Generator, *bf.Machine) {
	t.Helper()
	g := gen.New()
	b := instr.NewBlock()
	build(g, b)
	text := b.Emit(g)

	m := bf.NewMachine()
	require.NoError(t, m.Run(text, strings.NewReader(""), &strings.Builder{}))
	return g, m
}

func TestGotoMovesCursor(t *testing.T) {
	g, _ := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Goto{Cell: 3})
		b.Add(instr.Goto{Cell: 1})
	})
	assert.Equal(t, 1, g.Cursor)
}

func TestSetAndClear(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 2, Value: 5})
		b.Add(instr.Clear{Cell: 2})
	})
	assert.EqualValues(t, 0, m.CellAt(2))
	assert.EqualValues(t, 0, g.Memory.Get(2))
}

func TestAddKnownOperands(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 6})
		b.Add(instr.Set{Cell: 1, Value: 7})
		add, err := instr.NewAdd(0, 1)
		require.NoError(t, err)
		b.Add(add)
	})
	assert.EqualValues(t, 13, m.CellAt(0))
	assert.EqualValues(t, 0, m.CellAt(1))
	assert.EqualValues(t, 13, g.Memory.Get(0))
}

func TestAddRejectsAliasedOperands(t *testing.T) {
	_, err := instr.NewAdd(4, 4)
	assert.Error(t, err)
}

func TestSubWraps(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 3})
		b.Add(instr.Set{Cell: 1, Value: 5})
		sub, err := instr.NewSub(0, 1)
		require.NoError(t, err)
		b.Add(sub)
	})
	// 3 - 5 wraps to 254 in an 8-bit cell.
	assert.EqualValues(t, 254, m.CellAt(0))
	assert.EqualValues(t, 254, g.Memory.Get(0))
}

func TestMoveTransfersAndZeroesSource(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 9})
		b.Add(instr.Set{Cell: 1, Value: 4})
		mv, err := instr.NewMove(1, 0)
		require.NoError(t, err)
		b.Add(mv)
	})
	assert.EqualValues(t, 9, m.CellAt(1))
	assert.EqualValues(t, 0, m.CellAt(0))
	assert.EqualValues(t, 9, g.Memory.Get(1))
}

func TestCopyPreservesSource(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 11})
		b.Add(instr.NewCopy(1, 2, 0))
	})
	assert.EqualValues(t, 11, m.CellAt(1))
	assert.EqualValues(t, 11, m.CellAt(0))
	assert.EqualValues(t, 11, g.Memory.Get(1))
	assert.EqualValues(t, 11, g.Memory.Get(0))
}

// TestCopyLeavesCursorWhereSubsequentInstructionsExpect guards the
// emit/simulate coherence invariant (gen.go, instr.go) specifically across
// a Copy: a cell-targeted instruction placed right after a Copy must land
// on the cell it names, not wherever Copy's automaton happens to leave the
// real BF cursor.
func TestCopyLeavesCursorWhereSubsequentInstructionsExpect(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 11})
		b.Add(instr.NewCopy(1, 2, 0))
		b.Add(instr.Set{Cell: 3, Value: 42})
	})
	assert.EqualValues(t, 11, m.CellAt(1))
	assert.EqualValues(t, 11, m.CellAt(0))
	assert.EqualValues(t, 42, m.CellAt(3))
	assert.Equal(t, 3, g.Cursor)
}

func TestBoolNegateIsSelfInverse(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 0})
		b.Add(instr.NewBoolNegate(0, 1))
		b.Add(instr.NewBoolNegate(0, 1))
	})
	assert.EqualValues(t, 0, m.CellAt(0))
	assert.EqualValues(t, 0, g.Memory.Get(0))

	g, m = run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 5})
		b.Add(instr.NewBoolNegate(0, 1))
	})
	assert.EqualValues(t, 0, m.CellAt(0))
	assert.EqualValues(t, 0, g.Memory.Get(0))
}

// allocPair reserves two single cells through the pool's bump allocator
// before a combinatorial instruction (Mul/Div/Distance) reserves its own
// working block -- mirroring how the compiler always allocates operand
// cells before building the instruction that consumes them, so the block
// doesn't land on top of them.
func allocPair(g *gen.Generator) (int, int) {
	return g.Memory.Alloc(1), g.Memory.Alloc(1)
}

func TestMultiplication6x7(t *testing.T) {
	var mul *instr.Mul
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		a, bb := allocPair(g)
		b.Add(instr.Set{Cell: a, Value: 6})
		b.Add(instr.Set{Cell: bb, Value: 7})
		mul = instr.NewMul(g, a, bb)
		b.Add(mul)
	})
	assert.EqualValues(t, 42, m.CellAt(mul.Result()))
	assert.EqualValues(t, 42, g.Memory.Get(mul.Result()))
}

func TestDivision17By5(t *testing.T) {
	var div *instr.Div
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		a, bb := allocPair(g)
		b.Add(instr.Set{Cell: a, Value: 17})
		b.Add(instr.Set{Cell: bb, Value: 5})
		div = instr.NewDiv(g, a, bb)
		b.Add(div)
	})
	assert.EqualValues(t, 3, m.CellAt(div.Result()))
	assert.EqualValues(t, 2, m.CellAt(div.Remainder()))
	assert.EqualValues(t, 3, g.Memory.Get(div.Result()))
	assert.EqualValues(t, 2, g.Memory.Get(div.Remainder()))
}

func TestDistanceGreaterThan(t *testing.T) {
	var d *instr.Distance
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		a, bb := allocPair(g)
		b.Add(instr.Set{Cell: a, Value: 5})
		b.Add(instr.Set{Cell: bb, Value: 3})
		d = instr.NewDistance(g, a, bb)
		b.Add(d)
	})
	assert.NotZero(t, m.CellAt(d.Gt()))
	assert.Zero(t, m.CellAt(d.Lt()))
	assert.NotZero(t, g.Memory.Get(d.Gt()))
	assert.Zero(t, g.Memory.Get(d.Lt()))
}

func TestDistanceLessThan(t *testing.T) {
	var d *instr.Distance
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		a, bb := allocPair(g)
		b.Add(instr.Set{Cell: a, Value: 3})
		b.Add(instr.Set{Cell: bb, Value: 5})
		d = instr.NewDistance(g, a, bb)
		b.Add(d)
	})
	assert.Zero(t, m.CellAt(d.Gt()))
	assert.NotZero(t, m.CellAt(d.Lt()))
	assert.Zero(t, g.Memory.Get(d.Gt()))
	assert.NotZero(t, g.Memory.Get(d.Lt()))
}

func TestDistanceEqual(t *testing.T) {
	var d *instr.Distance
	_, m := run(t, func(g *gen.Generator, b *instr.Block) {
		a, bb := allocPair(g)
		b.Add(instr.Set{Cell: a, Value: 4})
		b.Add(instr.Set{Cell: bb, Value: 4})
		d = instr.NewDistance(g, a, bb)
		b.Add(d)
	})
	assert.Zero(t, m.CellAt(d.Gt()))
	assert.Zero(t, m.CellAt(d.Lt()))
}

func TestIfSkipsBodyWhenConditionIsZero(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 0})
		b.Add(instr.Set{Cell: 1, Value: 1})
		body := instr.NewBlock()
		body.Add(instr.Set{Cell: 1, Value: 99})
		b.Add(instr.NewIf(0, body))
	})
	assert.EqualValues(t, 1, m.CellAt(1))
	assert.EqualValues(t, 0, m.CellAt(0))
	assert.EqualValues(t, 1, g.Memory.Get(1))
}

func TestIfRunsBodyOnceWhenConditionIsNonzero(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 1})
		b.Add(instr.Set{Cell: 1, Value: 1})
		body := instr.NewBlock()
		body.Add(instr.Set{Cell: 1, Value: 99})
		b.Add(instr.NewIf(0, body))
	})
	assert.EqualValues(t, 99, m.CellAt(1))
	assert.EqualValues(t, 0, m.CellAt(0))
	assert.EqualValues(t, 99, g.Memory.Get(1))
}

func TestWhileCountdown(t *testing.T) {
	g, m := run(t, func(g *gen.Generator, b *instr.Block) {
		b.Add(instr.Set{Cell: 0, Value: 3})
		cond := instr.NewBlock()
		cond.Add(instr.Goto{Cell: 0})
		body := instr.NewBlock()
		body.Add(instr.Set{Cell: 1, Value: 1})
		sub, err := instr.NewSub(0, 1)
		require.NoError(t, err)
		body.Add(sub)
		body.Add(instr.Output{Cell: 0})
		b.Add(instr.NewWhile(0, cond, body))
	})
	assert.EqualValues(t, 0, m.CellAt(0))
	assert.EqualValues(t, 0, g.Memory.Get(0))
}

func TestInputMarksCellDirty(t *testing.T) {
	g := gen.New()
	b := instr.NewBlock()
	b.Add(instr.Input{Cell: 0})
	text := b.Emit(g)
	assert.Equal(t, ",", text)
	assert.True(t, g.Memory.IsDirty(0))
}

func TestCommandMarksCellDirty(t *testing.T) {
	g := gen.New()
	b := instr.NewBlock()
	b.Add(instr.Set{Cell: 0, Value: 1})
	b.Add(instr.NewCommand(0))
	b.Emit(g)
	assert.True(t, g.Memory.IsDirty(0))
}
