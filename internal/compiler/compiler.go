// Package compiler lowers a parsed bfscript program into BF source text. It
// walks the AST with a lexical scope of Variables, each bound to the cell
// (or, for strings, contiguous range of cells) that holds its value, and
// emits instructions from package instr that Finalize into the BF output.
package compiler

import (
	"fmt"
	"strings"

	"github.com/saicheems/bfscript/internal/analyzer"
	"github.com/saicheems/bfscript/internal/ast"
	"github.com/saicheems/bfscript/internal/bf"
	"github.com/saicheems/bfscript/internal/gen"
	"github.com/saicheems/bfscript/internal/instr"
)

// Variable is a name bound in some lexical scope to the cell its value
// lives in.
type Variable struct {
	Name string
	Cell int
	Info analyzer.ValueInfo
}

// scope is a lexical chain of variable bindings; If and While bodies
// compile against a child scope so declarations inside them don't leak out.
type scope struct {
	parent *scope
	vars   map[string]*Variable
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*Variable)}
}

func (s *scope) define(v *Variable) {
	s.vars[v.Name] = v
}

func (s *scope) get(name string) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Compiler walks statements and expressions, threading a single Generator
// through everything it emits so cursor and memory bookkeeping stay
// coherent across the whole program.
type Compiler struct {
	gen   *gen.Generator
	scope *scope
}

// New returns a Compiler with an empty top-level scope.
func New() *Compiler {
	return &Compiler{gen: gen.New(), scope: newScope(nil)}
}

// Compile runs the type/size analysis pass and, if it succeeds, lowers prog
// into BF source text.
func Compile(prog *ast.Program) (string, error) {
	if _, err := analyzer.Analyze(prog); err != nil {
		return "", err
	}
	c := New()
	block := instr.NewBlock()
	for _, stmt := range prog.Statements {
		if err := c.compileStmt(block, stmt); err != nil {
			return "", err
		}
	}
	return block.Emit(c.gen), nil
}

// result is the compile-time location and type of an expression's value.
type result struct {
	Cell int
	Info analyzer.ValueInfo
}

func (c *Compiler) free(r result) {
	for k := 0; k < r.Info.Size; k++ {
		c.gen.Memory.Free(r.Cell + k)
	}
}

func (c *Compiler) compileStmt(block *instr.Block, stmt *ast.Statement) error {
	switch {
	case stmt.VarDecl != nil:
		return c.compileVarDecl(block, stmt.VarDecl)
	case stmt.Assignment != nil:
		return c.compileAssignment(block, stmt.Assignment)
	case stmt.If != nil:
		return c.compileIf(block, stmt.If)
	case stmt.While != nil:
		return c.compileWhile(block, stmt.While)
	case stmt.Return != nil:
		// Return compiles to nothing: bfscript has no call stack or function
		// boundary for a return to unwind to.
		return nil
	case stmt.ExprStmt != nil:
		val, err := c.compileExpr(block, stmt.ExprStmt.Value)
		if err != nil {
			return err
		}
		c.free(val)
		return nil
	}
	return fmt.Errorf("%s: empty statement", stmt.Pos)
}

func (c *Compiler) compileVarDecl(block *instr.Block, d *ast.VarDecl) error {
	val, err := c.compileExpr(block, d.Value)
	if err != nil {
		return err
	}
	c.scope.define(&Variable{Name: d.Name, Cell: val.Cell, Info: val.Info})
	return nil
}

func (c *Compiler) compileAssignment(block *instr.Block, a *ast.Assignment) error {
	v, ok := c.scope.get(a.Name)
	if !ok {
		return fmt.Errorf("%s: assignment to undeclared variable %q", a.Pos, a.Name)
	}
	val, err := c.compileExpr(block, a.Value)
	if err != nil {
		return err
	}
	if val.Info.Size != v.Info.Size {
		return fmt.Errorf("%s: cannot assign a %d-byte %s to %q, which holds %d bytes", a.Pos, val.Info.Size, val.Info.TypeName, a.Name, v.Info.Size)
	}
	for k := 0; k < v.Info.Size; k++ {
		mv, err := instr.NewMove(v.Cell+k, val.Cell+k)
		if err != nil {
			return err
		}
		block.Add(mv)
	}
	v.Info = val.Info
	return nil
}

func (c *Compiler) compileIf(block *instr.Block, s *ast.If) error {
	cond, err := c.compileExpr(block, s.Cond)
	if err != nil {
		return err
	}
	body := instr.NewBlock()
	saved := c.scope
	c.scope = newScope(saved)
	for _, stmt := range s.Body {
		if err := c.compileStmt(body, stmt); err != nil {
			c.scope = saved
			return err
		}
	}
	c.scope = saved
	block.Add(instr.NewIf(cond.Cell, body))
	return nil
}

func (c *Compiler) compileWhile(block *instr.Block, s *ast.While) error {
	cond := instr.NewBlock()
	condResult, err := c.compileExpr(cond, s.Cond)
	if err != nil {
		return err
	}
	body := instr.NewBlock()
	saved := c.scope
	c.scope = newScope(saved)
	for _, stmt := range s.Body {
		if err := c.compileStmt(body, stmt); err != nil {
			c.scope = saved
			return err
		}
	}
	c.scope = saved
	block.Add(instr.NewWhile(condResult.Cell, cond, body))
	return nil
}

func (c *Compiler) compileExpr(block *instr.Block, e *ast.Expr) (result, error) {
	return c.compileComparison(block, e.Comparison)
}

func (c *Compiler) compileComparison(block *instr.Block, cmp *ast.Comparison) (result, error) {
	left, err := c.compileAdditive(block, cmp.Left)
	if err != nil {
		return result{}, err
	}
	if cmp.Op == "" {
		return left, nil
	}
	right, err := c.compileAdditive(block, cmp.Right)
	if err != nil {
		return result{}, err
	}
	if left.Info.TypeName != "int" || right.Info.TypeName != "int" {
		return result{}, fmt.Errorf("%s: operator %q requires int operands", cmp.Pos, cmp.Op)
	}

	// Distance's Lt cell is nonzero exactly when its first operand is below
	// its second. Gt is not the mirror image (for 1 against 0 it reads 0),
	// so '>' and '<=' hand Distance the operands swapped and every ordering
	// operator reads Lt.
	a, b := left.Cell, right.Cell
	if cmp.Op == ">" || cmp.Op == "<=" {
		a, b = b, a
	}

	d := instr.NewDistance(c.gen, a, b)
	block.Add(d)
	c.gen.Memory.Free(left.Cell)
	c.gen.Memory.Free(right.Cell)

	var out int
	switch cmp.Op {
	case ">=":
		out = c.negateOnce(block, d.Lt())
	case "<=":
		out = c.negateOnce(block, d.Lt())
	case ">":
		out = c.negateTwice(block, d.Lt())
	case "<":
		out = c.negateTwice(block, d.Lt())
	case "==":
		sum := c.sumInto(block, d.Gt(), d.Lt())
		out = c.negateOnce(block, sum)
	case "!=":
		sum := c.sumInto(block, d.Gt(), d.Lt())
		out = c.negateTwice(block, sum)
	default:
		return result{}, fmt.Errorf("%s: unknown comparison operator %q", cmp.Pos, cmp.Op)
	}
	return result{Cell: out, Info: analyzer.ValueInfo{TypeName: "int", Size: 1}}, nil
}

// sumInto adds b into a (via Add) and returns a, now holding the combined
// distance magnitude -- nonzero iff the two original operands differed.
func (c *Compiler) sumInto(block *instr.Block, a, b int) int {
	add, _ := instr.NewAdd(a, b)
	block.Add(add)
	return a
}

// negateOnce turns cell into a 1/0 flag for "was zero".
func (c *Compiler) negateOnce(block *instr.Block, cell int) int {
	tmp := c.gen.Memory.Alloc(1)
	block.Add(instr.NewBoolNegate(cell, tmp))
	c.gen.Memory.Free(tmp)
	return cell
}

// negateTwice turns cell into a 1/0 flag for "was nonzero".
func (c *Compiler) negateTwice(block *instr.Block, cell int) int {
	c.negateOnce(block, cell)
	c.negateOnce(block, cell)
	return cell
}

func (c *Compiler) compileAdditive(block *instr.Block, a *ast.Additive) (result, error) {
	left, err := c.compileTerm(block, a.Left)
	if err != nil {
		return result{}, err
	}
	for _, r := range a.Rest {
		right, err := c.compileTerm(block, r.Right)
		if err != nil {
			return result{}, err
		}
		if left.Info.TypeName != "int" || right.Info.TypeName != "int" {
			return result{}, fmt.Errorf("%s: operator %q requires int operands", r.Pos, r.Op)
		}
		switch r.Op {
		case "+":
			add, err := instr.NewAdd(left.Cell, right.Cell)
			if err != nil {
				return result{}, err
			}
			block.Add(add)
		case "-":
			sub, err := instr.NewSub(left.Cell, right.Cell)
			if err != nil {
				return result{}, err
			}
			block.Add(sub)
		}
	}
	return left, nil
}

func (c *Compiler) compileTerm(block *instr.Block, t *ast.Term) (result, error) {
	left, err := c.compileAtom(block, t.Left)
	if err != nil {
		return result{}, err
	}
	for _, r := range t.Rest {
		right, err := c.compileAtom(block, r.Right)
		if err != nil {
			return result{}, err
		}
		if left.Info.TypeName != "int" || right.Info.TypeName != "int" {
			return result{}, fmt.Errorf("%s: operator %q requires int operands", r.Pos, r.Op)
		}
		switch r.Op {
		case "*":
			mul := instr.NewMul(c.gen, left.Cell, right.Cell)
			block.Add(mul)
			c.gen.Memory.Free(left.Cell)
			c.gen.Memory.Free(right.Cell)
			left = result{Cell: mul.Result(), Info: analyzer.ValueInfo{TypeName: "int", Size: 1}}
		case "/":
			div := instr.NewDiv(c.gen, left.Cell, right.Cell)
			block.Add(div)
			c.gen.Memory.Free(left.Cell)
			c.gen.Memory.Free(right.Cell)
			left = result{Cell: div.Result(), Info: analyzer.ValueInfo{TypeName: "int", Size: 1}}
		}
	}
	return left, nil
}

func (c *Compiler) compileAtom(block *instr.Block, a *ast.Atom) (result, error) {
	switch {
	case a.Number != nil:
		cell := c.gen.Memory.Alloc(1)
		block.Add(instr.Set{Cell: cell, Value: byte(*a.Number)})
		return result{Cell: cell, Info: analyzer.ValueInfo{TypeName: "int", Size: 1}}, nil
	case a.Char != nil:
		ch, err := decodeChar(*a.Char)
		if err != nil {
			return result{}, fmt.Errorf("%s: %w", a.Pos, err)
		}
		cell := c.gen.Memory.Alloc(1)
		block.Add(instr.Set{Cell: cell, Value: ch})
		return result{Cell: cell, Info: analyzer.ValueInfo{TypeName: "char", Size: 1}}, nil
	case a.String != nil:
		s := []byte(*a.String)
		base := c.gen.Memory.Alloc(len(s))
		for k, ch := range s {
			block.Add(instr.Set{Cell: base + k, Value: ch})
		}
		return result{Cell: base, Info: analyzer.ValueInfo{TypeName: "string", Size: len(s)}}, nil
	case a.Identifier != nil:
		return c.compileIdentifier(block, a)
	case a.Call != nil:
		return c.compileCall(block, a.Call)
	case a.Sub != nil:
		return c.compileExpr(block, a.Sub)
	}
	return result{}, fmt.Errorf("%s: empty expression", a.Pos)
}

func (c *Compiler) compileIdentifier(block *instr.Block, a *ast.Atom) (result, error) {
	v, ok := c.scope.get(*a.Identifier)
	if !ok {
		return result{}, fmt.Errorf("%s: reference to unknown variable %q", a.Pos, *a.Identifier)
	}
	dst := c.gen.Memory.Alloc(v.Info.Size)
	tmp := c.gen.Memory.Alloc(1)
	for k := 0; k < v.Info.Size; k++ {
		block.Add(instr.NewCopy(dst+k, tmp, v.Cell+k))
	}
	c.gen.Memory.Free(tmp)
	return result{Cell: dst, Info: v.Info}, nil
}

func (c *Compiler) compileCall(block *instr.Block, call *ast.Call) (result, error) {
	switch call.Name {
	case "print":
		return c.compilePrint(block, call)
	case "read":
		return c.compileRead(block, call)
	case "open":
		return c.compileOpen(block, call)
	case "write":
		return c.compileWrite(block, call)
	}
	return result{}, fmt.Errorf("%s: unknown intrinsic %q", call.Pos, call.Name)
}

func (c *Compiler) compilePrint(block *instr.Block, call *ast.Call) (result, error) {
	if len(call.Args) != 1 {
		return result{}, fmt.Errorf("%s: print expects exactly one argument", call.Pos)
	}
	arg, err := c.compileExpr(block, call.Args[0])
	if err != nil {
		return result{}, err
	}
	for k := 0; k < arg.Info.Size; k++ {
		block.Add(instr.Output{Cell: arg.Cell + k})
	}
	c.free(arg)
	ret := c.gen.Memory.Alloc(1)
	block.Add(instr.Set{Cell: ret, Value: 0})
	return result{Cell: ret, Info: analyzer.ValueInfo{TypeName: "int", Size: 1}}, nil
}

func (c *Compiler) compileRead(block *instr.Block, call *ast.Call) (result, error) {
	if len(call.Args) != 1 {
		return result{}, fmt.Errorf("%s: read expects exactly one argument", call.Pos)
	}
	n, ok := literalInt(call.Args[0])
	if !ok {
		return result{}, fmt.Errorf("%s: read() argument must be an integer literal", call.Pos)
	}
	base := c.gen.Memory.Alloc(n)
	for k := 0; k < n; k++ {
		block.Add(instr.Input{Cell: base + k})
	}
	return result{Cell: base, Info: analyzer.ValueInfo{TypeName: "string", Size: n}}, nil
}

// compileOpen lays out [opcode][path bytes...][NUL] contiguously, since the
// host's OpenFile handler (package bf) reads a NUL-terminated path starting
// right after the opcode cell, then writes the resulting handle back into
// the opcode cell itself.
func (c *Compiler) compileOpen(block *instr.Block, call *ast.Call) (result, error) {
	if len(call.Args) != 1 {
		return result{}, fmt.Errorf("%s: open expects exactly one argument", call.Pos)
	}
	path, err := c.compileExpr(block, call.Args[0])
	if err != nil {
		return result{}, err
	}
	if path.Info.TypeName != "string" {
		return result{}, fmt.Errorf("%s: open() path must be a string", call.Pos)
	}

	cell := c.gen.Memory.Alloc(1 + path.Info.Size + 1)
	block.Add(instr.Set{Cell: cell, Value: bf.OpOpenFile})
	tmp := c.gen.Memory.Alloc(1)
	for k := 0; k < path.Info.Size; k++ {
		block.Add(instr.NewCopy(cell+1+k, tmp, path.Cell+k))
	}
	block.Add(instr.Set{Cell: cell + 1 + path.Info.Size, Value: 0})
	c.gen.Memory.Free(tmp)
	c.free(path)

	block.Add(instr.NewCommand(cell))
	return result{Cell: cell, Info: analyzer.ValueInfo{TypeName: "int", Size: 1}}, nil
}

// compileWrite lays out [opcode][handle][byte], matching the host's Write
// handler: handle at pointer+1, the single byte to write at pointer+2,
// status written back into the opcode cell.
func (c *Compiler) compileWrite(block *instr.Block, call *ast.Call) (result, error) {
	if len(call.Args) != 2 {
		return result{}, fmt.Errorf("%s: write expects exactly two arguments", call.Pos)
	}
	handle, err := c.compileExpr(block, call.Args[0])
	if err != nil {
		return result{}, err
	}
	if handle.Info.TypeName != "int" {
		return result{}, fmt.Errorf("%s: write() handle must be an int", call.Pos)
	}
	data, err := c.compileExpr(block, call.Args[1])
	if err != nil {
		return result{}, err
	}
	if data.Info.Size != 1 {
		return result{}, fmt.Errorf("%s: write() writes a single byte at a time", call.Pos)
	}

	cell := c.gen.Memory.Alloc(3)
	block.Add(instr.Set{Cell: cell, Value: bf.OpWrite})
	tmp := c.gen.Memory.Alloc(1)
	block.Add(instr.NewCopy(cell+1, tmp, handle.Cell))
	block.Add(instr.NewCopy(cell+2, tmp, data.Cell))
	c.gen.Memory.Free(tmp)
	c.free(handle)
	c.free(data)

	block.Add(instr.NewCommand(cell))
	return result{Cell: cell, Info: analyzer.ValueInfo{TypeName: "int", Size: 1}}, nil
}

// literalInt reports whether e is, syntactically, nothing more than an
// integer literal.
func literalInt(e *ast.Expr) (int, bool) {
	if e == nil || e.Comparison == nil || e.Comparison.Op != "" {
		return 0, false
	}
	add := e.Comparison.Left
	if add == nil || len(add.Rest) != 0 {
		return 0, false
	}
	term := add.Left
	if term == nil || len(term.Rest) != 0 {
		return 0, false
	}
	if term.Left == nil || term.Left.Number == nil {
		return 0, false
	}
	return int(*term.Left.Number), true
}

// decodeChar strips the surrounding quotes from a char literal and resolves
// the handful of escapes bfscript recognizes.
func decodeChar(lit string) (byte, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(lit, "'"), "'")
	switch {
	case len(inner) == 1:
		return inner[0], nil
	case len(inner) == 2 && inner[0] == '\\':
		switch inner[1] {
		case 'n':
			return '\n', nil
		case 't':
			return '\t', nil
		case 'r':
			return '\r', nil
		case '0':
			return 0, nil
		case '\\':
			return '\\', nil
		case '\'':
			return '\'', nil
		}
	}
	return 0, fmt.Errorf("invalid char literal %s", lit)
}
