package bf_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saicheems/bfscript/internal/bf"
)

func TestLiteralBytesAreOutputInOrder(t *testing.T) {
	m := bf.NewMachine()
	var out strings.Builder
	program := strings.Repeat("+", 'H') + "." + ">" + strings.Repeat("+", 'i') + "."
	require.NoError(t, m.Run(program, strings.NewReader(""), &out))
	assert.Equal(t, "Hi", out.String())
}

func TestInputIsEchoed(t *testing.T) {
	m := bf.NewMachine()
	var out strings.Builder
	require.NoError(t, m.Run(",.", strings.NewReader("Z"), &out))
	assert.Equal(t, "Z", out.String())
}

func TestCursorGrowsLeftAndRight(t *testing.T) {
	m := bf.NewMachine()
	var out strings.Builder
	require.NoError(t, m.Run("<<<+>>>>+", strings.NewReader(""), &out))
	assert.EqualValues(t, 1, m.CellAt(-3))
	assert.EqualValues(t, 1, m.CellAt(1))
}

func TestUnmatchedBracketIsAnError(t *testing.T) {
	m := bf.NewMachine()
	err := m.Run("[+", strings.NewReader(""), &strings.Builder{})
	assert.Error(t, err)
	m2 := bf.NewMachine()
	err = m2.Run("+]", strings.NewReader(""), &strings.Builder{})
	assert.Error(t, err)
}

func TestLoopSkippedWhenConditionIsZero(t *testing.T) {
	m := bf.NewMachine()
	var out strings.Builder
	require.NoError(t, m.Run("[+++++.]", strings.NewReader(""), &out))
	assert.Equal(t, "", out.String())
}

func TestOpenFileWritesHandleBackToCell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	m := bf.NewMachine()
	defer m.Files.Close()

	// Cell layout: [opcode=1][path bytes...][NUL]. Build it with '+'/'>' by
	// hand the way a compiled program would via Set.
	var program strings.Builder
	program.WriteString(strings.Repeat("+", int(bf.OpOpenFile)))
	for _, c := range []byte(path) {
		program.WriteString(">")
		program.WriteString(strings.Repeat("+", int(c)))
	}
	program.WriteString(">") // NUL terminator cell, left at 0
	program.WriteString("<" + strings.Repeat("<", len(path)))
	program.WriteString("@")

	require.NoError(t, m.Run(program.String(), strings.NewReader(""), &strings.Builder{}))
	assert.EqualValues(t, 0, m.CellAt(0)) // first opened file gets handle 0
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteAppendsByteAndReportsStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	m := bf.NewMachine()
	defer m.Files.Close()
	handle, err := m.Files.Open(path)
	require.NoError(t, err)

	// Cell layout: [opcode=2][handle][byte='A'].
	var program strings.Builder
	program.WriteString(strings.Repeat("+", int(bf.OpWrite)))
	program.WriteString(">")
	program.WriteString(strings.Repeat("+", handle))
	program.WriteString(">")
	program.WriteString(strings.Repeat("+", 'A'))
	program.WriteString("<<@")

	require.NoError(t, m.Run(program.String(), strings.NewReader(""), &strings.Builder{}))
	assert.EqualValues(t, 1, m.CellAt(0))
	require.NoError(t, m.Files.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A", string(contents))
}

func TestWriteToInvalidHandleReportsFailure(t *testing.T) {
	m := bf.NewMachine()
	defer m.Files.Close()

	var program strings.Builder
	program.WriteString(strings.Repeat("+", int(bf.OpWrite)))
	program.WriteString(">")
	program.WriteString(strings.Repeat("+", 7)) // no such handle
	program.WriteString(">+<<@")

	require.NoError(t, m.Run(program.String(), strings.NewReader(""), &strings.Builder{}))
	assert.EqualValues(t, 0, m.CellAt(0))
}

func TestReadOpcodeIsReserved(t *testing.T) {
	m := bf.NewMachine()
	program := strings.Repeat("+", int(bf.OpRead)) + "@"
	err := m.Run(program, strings.NewReader(""), &strings.Builder{})
	assert.Error(t, err)
}
