// Package analyzer runs a lightweight type/size pre-pass over a parsed
// program before compilation, binding every variable to a ValueInfo the
// compiler consults when it needs to know how many cells an expression's
// result will occupy.
package analyzer

import (
	"fmt"

	"github.com/saicheems/bfscript/internal/ast"
)

// ValueInfo records what the analyzer could determine about an expression's
// result: its declared type name ("int", "char", or "string") and, for
// strings, how many cells its backing buffer needs.
type ValueInfo struct {
	TypeName string
	Size     int
}

type scope struct {
	vars map[string]ValueInfo
}

func newScope() *scope {
	return &scope{vars: make(map[string]ValueInfo)}
}

func (s *scope) get(name string) (ValueInfo, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *scope) set(name string, v ValueInfo) {
	s.vars[name] = v
}

// Analyze walks prog and returns every variable's ValueInfo keyed by name,
// or the first fatal type error encountered.
func Analyze(prog *ast.Program) (map[string]ValueInfo, error) {
	s := newScope()
	for _, stmt := range prog.Statements {
		if err := analyzeStmt(s, stmt); err != nil {
			return nil, err
		}
	}
	return s.vars, nil
}

func analyzeStmt(s *scope, stmt *ast.Statement) error {
	switch {
	case stmt.VarDecl != nil:
		d := stmt.VarDecl
		info, err := analyzeExpr(s, d.Value)
		if err != nil {
			return err
		}
		if info.TypeName != d.TypeName {
			return fmt.Errorf("%s: cannot declare %q as %s: initializer has type %s", d.Pos, d.Name, d.TypeName, info.TypeName)
		}
		s.set(d.Name, info)
		return nil
	case stmt.Assignment != nil:
		a := stmt.Assignment
		existing, ok := s.get(a.Name)
		if !ok {
			return fmt.Errorf("%s: assignment to undeclared variable %q", a.Pos, a.Name)
		}
		info, err := analyzeExpr(s, a.Value)
		if err != nil {
			return err
		}
		if info.TypeName != existing.TypeName {
			return fmt.Errorf("%s: cannot assign %s to variable %q of type %s", a.Pos, info.TypeName, a.Name, existing.TypeName)
		}
		s.set(a.Name, info)
		return nil
	case stmt.If != nil:
		if _, err := analyzeExpr(s, stmt.If.Cond); err != nil {
			return err
		}
		return analyzeBlock(s, stmt.If.Body)
	case stmt.While != nil:
		if _, err := analyzeExpr(s, stmt.While.Cond); err != nil {
			return err
		}
		return analyzeBlock(s, stmt.While.Body)
	case stmt.Return != nil:
		_, err := analyzeExpr(s, stmt.Return.Value)
		return err
	case stmt.ExprStmt != nil:
		_, err := analyzeExpr(s, stmt.ExprStmt.Value)
		return err
	}
	return fmt.Errorf("%s: empty statement", stmt.Pos)
}

func analyzeBlock(s *scope, stmts []*ast.Statement) error {
	for _, stmt := range stmts {
		if err := analyzeStmt(s, stmt); err != nil {
			return err
		}
	}
	return nil
}

func analyzeExpr(s *scope, e *ast.Expr) (ValueInfo, error) {
	return analyzeComparison(s, e.Comparison)
}

func analyzeComparison(s *scope, c *ast.Comparison) (ValueInfo, error) {
	left, err := analyzeAdditive(s, c.Left)
	if err != nil {
		return ValueInfo{}, err
	}
	if c.Op == "" {
		return left, nil
	}
	if _, err := analyzeAdditive(s, c.Right); err != nil {
		return ValueInfo{}, err
	}
	return ValueInfo{TypeName: "int", Size: 1}, nil
}

func analyzeAdditive(s *scope, a *ast.Additive) (ValueInfo, error) {
	left, err := analyzeTerm(s, a.Left)
	if err != nil {
		return ValueInfo{}, err
	}
	for _, r := range a.Rest {
		if _, err := analyzeTerm(s, r.Right); err != nil {
			return ValueInfo{}, err
		}
		left = ValueInfo{TypeName: "int", Size: 1}
	}
	return left, nil
}

func analyzeTerm(s *scope, t *ast.Term) (ValueInfo, error) {
	left, err := analyzeAtom(s, t.Left)
	if err != nil {
		return ValueInfo{}, err
	}
	for _, r := range t.Rest {
		if _, err := analyzeAtom(s, r.Right); err != nil {
			return ValueInfo{}, err
		}
		left = ValueInfo{TypeName: "int", Size: 1}
	}
	return left, nil
}

func analyzeAtom(s *scope, a *ast.Atom) (ValueInfo, error) {
	switch {
	case a.Number != nil:
		return ValueInfo{TypeName: "int", Size: 1}, nil
	case a.Char != nil:
		return ValueInfo{TypeName: "char", Size: 1}, nil
	case a.String != nil:
		return ValueInfo{TypeName: "string", Size: len(*a.String)}, nil
	case a.Identifier != nil:
		v, ok := s.get(*a.Identifier)
		if !ok {
			return ValueInfo{}, fmt.Errorf("%s: reference to unknown variable %q", a.Pos, *a.Identifier)
		}
		return v, nil
	case a.Call != nil:
		return analyzeCall(s, a.Call)
	case a.Sub != nil:
		return analyzeExpr(s, a.Sub)
	}
	return ValueInfo{}, fmt.Errorf("%s: empty expression", a.Pos)
}

// analyzeCall type-checks one of the four intrinsics bfscript recognizes.
// There are no user-defined functions, so this table is exhaustive.
func analyzeCall(s *scope, c *ast.Call) (ValueInfo, error) {
	switch c.Name {
	case "print":
		if len(c.Args) != 1 {
			return ValueInfo{}, fmt.Errorf("%s: print expects exactly one argument", c.Pos)
		}
		if _, err := analyzeExpr(s, c.Args[0]); err != nil {
			return ValueInfo{}, err
		}
		return ValueInfo{TypeName: "int", Size: 1}, nil
	case "open":
		if len(c.Args) != 1 {
			return ValueInfo{}, fmt.Errorf("%s: open expects exactly one argument", c.Pos)
		}
		if _, err := analyzeExpr(s, c.Args[0]); err != nil {
			return ValueInfo{}, err
		}
		return ValueInfo{TypeName: "int", Size: 1}, nil
	case "write":
		if len(c.Args) != 2 {
			return ValueInfo{}, fmt.Errorf("%s: write expects exactly two arguments", c.Pos)
		}
		if _, err := analyzeExpr(s, c.Args[0]); err != nil {
			return ValueInfo{}, err
		}
		if _, err := analyzeExpr(s, c.Args[1]); err != nil {
			return ValueInfo{}, err
		}
		return ValueInfo{TypeName: "int", Size: 1}, nil
	case "read":
		if len(c.Args) != 1 {
			return ValueInfo{}, fmt.Errorf("%s: read expects exactly one argument", c.Pos)
		}
		n, ok := literalInt(c.Args[0])
		if !ok {
			return ValueInfo{}, fmt.Errorf("%s: read() argument must be an integer literal", c.Pos)
		}
		return ValueInfo{TypeName: "string", Size: n}, nil
	default:
		return ValueInfo{}, fmt.Errorf("%s: unknown intrinsic %q", c.Pos, c.Name)
	}
}

// literalInt reports whether e is, syntactically, nothing more than an
// integer literal -- the only form read()'s argument may take.
func literalInt(e *ast.Expr) (int, bool) {
	a := atomOf(e)
	if a == nil || a.Number == nil {
		return 0, false
	}
	return int(*a.Number), true
}

func atomOf(e *ast.Expr) *ast.Atom {
	if e == nil || e.Comparison == nil || e.Comparison.Op != "" {
		return nil
	}
	add := e.Comparison.Left
	if add == nil || len(add.Rest) != 0 {
		return nil
	}
	term := add.Left
	if term == nil || len(term.Rest) != 0 {
		return nil
	}
	return term.Left
}
