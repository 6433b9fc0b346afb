package compiler_test

import (
	"flag"
	"os"
	"strings"
	"testing"

	"github.com/lox-lang/loxvm/internal/filetest"
	"github.com/lox-lang/loxvm/lang/compiler"
	"github.com/lox-lang/loxvm/lang/object"
	"github.com/stretchr/testify/require"
)

var updateGolden = flag.Bool("test.update-disasm-tests", false, "update lang/compiler golden disassembly files")

// TestDisassembleGoldenFiles compiles each testdata/*.lox file and checks
// its top-level opcode sequence (mnemonics only, operands omitted) against
// a checked-in golden file, the same golden-file convention the teacher's
// internal/filetest helper drives its own compiler tests with.
func TestDisassembleGoldenFiles(t *testing.T) {
	dents := filetest.SourceFiles(t, "testdata", ".lox")
	require.NotEmpty(t, dents)

	for _, dent := range dents {
		t.Run(dent.Name(), func(t *testing.T) {
			src, err := os.ReadFile("testdata/" + dent.Name())
			require.NoError(t, err)

			fn, err := compiler.Compile(string(src), object.NewTable())
			require.NoError(t, err)

			got := strings.Join(mnemonics(fn.Chunk), "\n") + "\n"
			filetest.DiffOutput(t, dent.Name(), got, "testdata", updateGolden)
		})
	}
}

func mnemonics(c object.Chunk) []string {
	var names []string
	for offset := 0; offset < len(c.Code); {
		op := object.OpCode(c.Code[offset])
		names = append(names, op.String())
		_, offset = c.DisassembleInstruction(offset)
	}
	return names
}
