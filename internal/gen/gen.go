// Package gen implements the Generator: the compile-time model of the BF
// machine a program is being lowered against. It tracks the simulated
// cursor position and owns the memory pool every instruction threads
// through on its way from a symbolic operation to emitted BF text.
package gen

import "github.com/saicheems/bfscript/internal/pool"

// Generator is the mutable state every instruction's Emit/Simulate pair
// reads and updates. The central invariant of the backend (spec.md §4.2) is
// that emitting an instruction's BF text and then simulating it against a
// Generator leaves that Generator in the same state a real interpreter
// would reach by executing the emitted text against the pool's known
// values. Every instruction in package instr must uphold this.
type Generator struct {
	Cursor int // Simulated tape head after all instructions emitted so far.
	Indent int
	Memory *pool.Pool
}

// New returns a fresh Generator with cursor 0 and an empty memory pool.
func New() *Generator {
	return &Generator{Memory: pool.New()}
}

// Goto returns the BF cursor-movement text to move from g.Cursor to cell,
// and advances g.Cursor to cell. Every instruction that must reach a
// specific cell before acting goes through this so the cursor stays
// coherent with what the emitted text actually does.
func (g *Generator) Goto(cell int) string {
	diff := cell - g.Cursor
	g.Cursor = cell
	if diff == 0 {
		return ""
	}
	ch := byte('>')
	if diff < 0 {
		ch = '<'
		diff = -diff
	}
	out := make([]byte, diff)
	for i := range out {
		out[i] = ch
	}
	return string(out)
}

// Clone returns a deep copy of the Generator, used when an instruction (If,
// While) must tentatively simulate a nested block to learn which cells it
// may have touched without committing that state to the real Generator.
func (g *Generator) Clone() *Generator {
	return &Generator{
		Cursor: g.Cursor,
		Indent: g.Indent,
		Memory: g.Memory.Clone(),
	}
}
