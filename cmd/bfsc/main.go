// Command bfsc compiles a bfscript source file into BF.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"github.com/saicheems/bfscript/internal/compiler"
	"github.com/saicheems/bfscript/internal/parser"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: bfsc <file.bfs>")
		os.Exit(1)
	}
	path := os.Args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		die("could not read %s: %s", path, err)
	}

	prog, err := parser.Parse(path, string(source))
	if err != nil {
		printSyntaxError(string(source), err)
		os.Exit(1)
	}

	out, err := compiler.Compile(prog)
	if err != nil {
		die("%s", err)
	}

	dst := strings.TrimSuffix(path, filepath.Ext(path)) + ".bf"
	if err := os.WriteFile(dst, []byte(out), 0644); err != nil {
		die("could not write %s: %s", dst, err)
	}

	color.Green("wrote %s (%d bytes of BF)", dst, len(out))
}

func die(format string, args ...any) {
	color.Red(format, args...)
	os.Exit(1)
}

// printSyntaxError renders a parse failure as the offending source line with
// a caret under the column the parser stopped at.
func printSyntaxError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("parse error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("parse error (unknown position): %s", err)
		return
	}

	var report strings.Builder
	fmt.Fprintf(&report, "%s:%d:%d: %s\n", pos.Filename, pos.Line, pos.Column, pe.Message())
	report.WriteString(lines[pos.Line-1])
	report.WriteByte('\n')
	report.WriteString(strings.Repeat(" ", pos.Column-1))
	report.WriteByte('^')

	color.Red("%s", report.String())
}
