package instr

import "github.com/saicheems/bfscript/internal/gen"

// Input reads one byte from the host into a cell. The value is never known
// at compile time.
type Input struct {
	Cell int
}

func (i Input) Emit(g *gen.Generator) string {
	return g.Goto(i.Cell) + ","
}

func (i Input) Simulate(g *gen.Generator) {
	g.Cursor = i.Cell
	g.Memory.Dirty(i.Cell)
}

// Output writes a cell's byte to the host. It has no memory effect.
type Output struct {
	Cell int
}

func (o Output) Emit(g *gen.Generator) string {
	return g.Goto(o.Cell) + "."
}

func (o Output) Simulate(g *gen.Generator) {}

// Command fires an extended host callback: the '@' symbol, read by the
// interpreter as an opcode byte at the current cell plus whatever argument
// cells the opcode's convention expects immediately after it (spec.md §6.3).
// Cell must already hold the opcode by the time Command runs -- callers
// build that layout with Set/Move/Copy before appending a Command.
type Command struct {
	Cell  int
	Dirty []int // cells the host call may overwrite with a runtime-only result.
}

// NewCommand returns a Command over cell, additionally marking dirty as
// host-mutated once it fires.
func NewCommand(cell int, dirty ...int) *Command {
	return &Command{Cell: cell, Dirty: dirty}
}

func (c *Command) Emit(g *gen.Generator) string {
	return g.Goto(c.Cell) + "@"
}

func (c *Command) Simulate(g *gen.Generator) {
	g.Memory.Dirty(c.Cell)
	for _, d := range c.Dirty {
		g.Memory.Dirty(d)
	}
}
