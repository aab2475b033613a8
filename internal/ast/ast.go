// Package ast defines the grammar bfscript source is parsed into. The struct
// tags double as the participle grammar -- there's no separate parse tree,
// the same types the compiler walks are what the parser builds.
package ast

import "github.com/alecthomas/participle/v2/lexer"

// Program is a sequence of top-level statements.
type Program struct {
	Pos        lexer.Position
	Statements []*Statement `@@*`
}

// Statement is the closed set of things that can appear in a statement
// position: a variable declaration, an assignment, a conditional, a loop, a
// return, or a bare expression.
type Statement struct {
	Pos        lexer.Position
	VarDecl    *VarDecl    `  @@`
	Assignment *Assignment `| @@`
	If         *If         `| @@`
	While      *While      `| @@`
	Return     *Return     `| @@`
	ExprStmt   *ExprStmt   `| @@`
}

// VarDecl introduces a new name in the current scope: `type name = expr;`.
type VarDecl struct {
	Pos      lexer.Position
	TypeName string `@Ident`
	Name     string `@Ident "="`
	Value    *Expr  `@@ ";"`
}

// Assignment rebinds an already-declared name: `name = expr;`.
type Assignment struct {
	Pos   lexer.Position
	Name  string `@Ident "="`
	Value *Expr  `@@ ";"`
}

// If runs Body once if Cond is nonzero. There are no parens around the
// condition -- `if cond { ... }`, not `if (cond) { ... }`.
type If struct {
	Pos  lexer.Position
	Cond *Expr       `"if" @@`
	Body []*Statement `"{" @@* "}"`
}

// While re-evaluates Cond and runs Body for as long as it's nonzero.
type While struct {
	Pos  lexer.Position
	Cond *Expr       `"while" @@`
	Body []*Statement `"{" @@* "}"`
}

// Return is accepted but, per the backend's design, compiles to nothing --
// the function-call machinery it would require is out of scope.
type Return struct {
	Pos   lexer.Position
	Value *Expr `"return" @@ ";"`
}

// ExprStmt is an expression evaluated for its side effects and discarded.
type ExprStmt struct {
	Pos   lexer.Position
	Value *Expr `@@ ";"`
}

// Expr is the entry point into the precedence chain: comparisons bind
// loosest, then addition/subtraction, then multiplication/division.
type Expr struct {
	Pos        lexer.Position
	Comparison *Comparison `@@`
}

// Comparison optionally compares two additive expressions. bfscript has no
// boolean operators to chain comparisons with, so at most one comparison
// operator ever appears.
type Comparison struct {
	Pos   lexer.Position
	Left  *Additive `@@`
	Op    string    `( @("==" | "!=" | ">=" | "<=" | ">" | "<")`
	Right *Additive `  @@ )?`
}

// Additive is a left-associative chain of +/- terms.
type Additive struct {
	Pos  lexer.Position
	Left *Term          `@@`
	Rest []*AdditiveTerm `@@*`
}

// AdditiveTerm is one (operator, operand) link in an Additive chain.
type AdditiveTerm struct {
	Pos   lexer.Position
	Op    string `@("+" | "-")`
	Right *Term  `@@`
}

// Term is a left-associative chain of * / factors.
type Term struct {
	Pos  lexer.Position
	Left *Atom          `@@`
	Rest []*TermFactor `@@*`
}

// TermFactor is one (operator, operand) link in a Term chain.
type TermFactor struct {
	Pos   lexer.Position
	Op    string `@("*" | "/")`
	Right *Atom  `@@`
}

// Atom is a single leaf of an expression: a literal, a call, an identifier
// reference, or a parenthesized sub-expression.
type Atom struct {
	Pos        lexer.Position
	Number     *int64  `(  @Int`
	Char       *string ` | @Char`
	String     *string ` | @String`
	Call       *Call   ` | @@`
	Identifier *string ` | @Ident`
	Sub        *Expr   ` | "(" @@ ")" )`
}

// Call invokes one of the intrinsics (print, read, open, write) by name;
// bfscript has no user-defined functions.
type Call struct {
	Pos  lexer.Position
	Name string  `@Ident "("`
	Args []*Expr `( @@ ( "," @@ )* )? ")"`
}
