// Command bfvm interprets a BF source file, including the extended host
// opcodes bfsc emits for file I/O.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/saicheems/bfscript/internal/bf"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: bfvm <file.bf>")
		os.Exit(1)
	}

	path := os.Args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	m := bf.NewMachine()
	defer m.Files.Close()

	if err := m.Run(string(source), os.Stdin, os.Stdout); err != nil {
		color.Red("❌ %s", err)
		os.Exit(1)
	}
}
