// Package instr implements the closed family of symbolic BF instructions and
// the Block container that owns them. Every instruction knows how to emit
// BF text against a Generator and how to simulate its effect on that
// Generator's cursor and memory pool, so that later instructions in the same
// block see an accurate compile-time picture of the tape.
package instr

import "github.com/saicheems/bfscript/internal/gen"

// Instruction is satisfied by every member of the symbolic instruction
// family (Set, Move, Copy, Add, Sub, Mul, Div, Distance, BoolNegate, If,
// While, Input, Output, Command, Goto, Clear). Emit produces the BF text for
// the instruction against the generator's current state, advancing its
// cursor as the text is built; Simulate then applies the instruction's
// cell-value effects (and reasserts the final cursor).
type Instruction interface {
	Emit(g *gen.Generator) string
	Simulate(g *gen.Generator)
}

// Block is an ordered, owned sequence of instructions. If and While own
// nested blocks; ownership is strict -- an instruction belongs to exactly
// one block.
type Block struct {
	Instructions []Instruction
}

// NewBlock returns an empty Block.
func NewBlock() *Block {
	return &Block{}
}

// Add appends an instruction to the block.
func (b *Block) Add(i Instruction) {
	b.Instructions = append(b.Instructions, i)
}

// Emit finalizes the block: for each instruction in order, it emits BF text
// against g and then simulates the instruction's effect, so that every
// subsequent instruction (including those in nested blocks) sees accurate
// cursor and cell state. This is the Compiler's Finalization step (spec.md
// §4.5) applied recursively -- nested blocks owned by If/While emit through
// their own Emit/Simulate pair, which in turn calls this method.
func (b *Block) Emit(g *gen.Generator) string {
	var out string
	for _, i := range b.Instructions {
		out += i.Emit(g)
		i.Simulate(g)
	}
	return out
}

// Goto moves the simulated cursor to a target cell, emitting the matching
// run of '>' or '<' characters.
type Goto struct {
	Cell int
}

func (g Goto) Emit(gn *gen.Generator) string {
	return gn.Goto(g.Cell)
}

// Simulate is a no-op: Emit already moved the cursor via gen.Generator.Goto,
// which is the single source of truth for cursor bookkeeping that every
// other instruction's Emit also goes through.
func (g Goto) Simulate(gn *gen.Generator) {}

// Clear zeroes a cell with the canonical "[-]" idiom.
type Clear struct {
	Cell int
}

func (c Clear) Emit(g *gen.Generator) string {
	return g.Goto(c.Cell) + "[-]"
}

func (c Clear) Simulate(g *gen.Generator) {
	g.Cursor = c.Cell
	g.Memory.Set(c.Cell, 0)
}

// Set clears a cell and increments it to a known constant value.
type Set struct {
	Cell  int
	Value byte
}

func (s Set) Emit(g *gen.Generator) string {
	out := Clear{s.Cell}.Emit(g)
	out += repeat('+', int(s.Value))
	return out
}

func (s Set) Simulate(g *gen.Generator) {
	g.Cursor = s.Cell
	g.Memory.Set(s.Cell, s.Value)
}

func repeat(ch byte, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = ch
	}
	return string(out)
}
