package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/lox-lang/loxvm/lang/vm"
)

// repl reads one line at a time from stdio.Stdin, compiling and running
// each as its own top-level program. A single VM instance is reused for
// the whole session so that globals and the string-intern table persist
// across lines, the same way the reference implementation's REPL does.
//
// A compile or runtime error on one line is reported and the prompt
// continues; the REPL's own exit code is always Success, since it only
// stops on EOF or cancellation.
func (c *Cmd) repl(ctx context.Context, stdio mainer.Stdio) mainer.ExitCode {
	m := vm.New(stdio.Stdout)
	scan := bufio.NewScanner(stdio.Stdin)

	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if ctx.Err() != nil {
			return mainer.Success
		}
		if !scan.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return mainer.Success
		}
		line := scan.Text()
		if line == "" {
			continue
		}

		if _, err := m.Interpret(line); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
		}
	}
}
