package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/lox-lang/loxvm/lang/vm"
)

// runFile compiles and runs a single script, mapping the result to the
// exit codes documented on ExitDataErr, ExitSoftwareErr and ExitIOErr: a
// read failure is an I/O error, a
// compile error and a runtime error are reported with distinct codes so
// a caller can tell them apart.
func (c *Cmd) runFile(_ context.Context, stdio mainer.Stdio, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return ExitIOErr
	}

	m := vm.New(stdio.Stdout)
	result, err := m.Interpret(string(src))
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}

	switch result {
	case vm.InterpretCompileError:
		return ExitDataErr
	case vm.InterpretRuntimeError:
		return ExitSoftwareErr
	default:
		return mainer.Success
	}
}
