// Package parser turns bfscript source text into an *ast.Program using a
// participle grammar built directly over the ast package's struct tags.
package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/saicheems/bfscript/internal/ast"
)

var bfscriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\n\r]+`},
	{Name: "Char", Pattern: `'(\\.|[^'\\])'`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Operator", Pattern: `==|!=|>=|<=|[-+*/=<>]`},
	{Name: "Punct", Pattern: `[{}(),;]`},
})

var bfscriptParser = buildParser()

func buildParser() *participle.Parser[ast.Program] {
	p, err := participle.Build[ast.Program](
		participle.Lexer(bfscriptLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
		participle.Unquote("String"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build bfscript parser: %w", err))
	}
	return p
}

// Parse compiles src (named filename, for error messages) into an
// *ast.Program.
func Parse(filename, src string) (*ast.Program, error) {
	return bfscriptParser.ParseString(filename, src)
}
