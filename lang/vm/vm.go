// Package vm implements the stack-based virtual machine that executes the
// bytecode produced by lang/compiler: the value stack, the call-frame
// stack, the globals table, the string-intern table, and the open-upvalue
// list, all owned exclusively by one VM (the machine is single-threaded and
// synchronous, per the specification: no locks, no suspension points).
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/lox-lang/loxvm/lang/compiler"
	"github.com/lox-lang/loxvm/lang/object"
)

// FramesMax and StackMax are the VM's fixed resource bounds (§5): exceeding
// either is a runtime error with a distinct message, never a silent
// reallocation. The stack is a fixed array (not a growable slice)
// specifically so that ObjUpvalue.Location pointers into it are never
// invalidated by a reallocation.
const (
	FramesMax = 64
	StackMax  = FramesMax * 256
)

// callFrame records one call to a closure: which closure, the instruction
// pointer into its chunk, and the stack index of slot 0 (the receiver or
// the closure itself).
type callFrame struct {
	closure *object.ObjClosure
	ip      int
	slots   int
}

type methodCacheKey struct {
	class *object.ObjClass
	name  *object.ObjString
}

// VM is one bytecode virtual machine instance. Construct it with New; a VM
// is reusable across many Interpret calls (each REPL prompt is one call),
// since globals and the string-intern table are owned by the VM and persist
// across calls.
type VM struct {
	stack    [StackMax]object.Value
	stackTop int

	frames     [FramesMax]callFrame
	frameCount int

	globals      *object.Table
	strings      *object.Table
	openUpvalues *object.ObjUpvalue // sorted strictly by descending StackSlot

	initString *object.ObjString

	stdout io.Writer

	// DebugTraceExecution, when set, writes a disassembly of each
	// instruction to stderr immediately before it executes. Mirrors clox's
	// DEBUG_TRACE_EXECUTION build flag.
	DebugTraceExecution bool

	// methodCache memoizes (class, method name) -> closure lookups for
	// OP_INVOKE/OP_SUPER_INVOKE. It is purely a VM-internal optimization:
	// classes never mutate their method table after the class body finishes
	// executing, so the cache never needs invalidation. Backed by
	// dolthub/swiss rather than object.Table because it has none of the
	// spec-mandated tombstone/probe-order obligations that globals, fields
	// and method tables do.
	methodCache *swiss.Map[methodCacheKey, *object.ObjClosure]
}

// New creates a VM that writes `print` output to stdout, with the clock
// native function already defined as a global.
func New(stdout io.Writer) *VM {
	if stdout == nil {
		stdout = os.Stdout
	}
	vm := &VM{
		globals:     object.NewTable(),
		strings:     object.NewTable(),
		stdout:      stdout,
		methodCache: swiss.NewMap[methodCacheKey, *object.ObjClosure](8),
	}
	vm.initString = vm.strings.Intern("init")
	vm.defineNatives()
	return vm
}

// Strings returns the VM's string-intern table, to be passed to
// compiler.Compile so compile-time string/identifier constants intern into
// the same table the VM uses at runtime.
func (vm *VM) Strings() *object.Table { return vm.strings }

// Globals returns the VM's global-variable table, exposed mainly for tests
// and for the REPL to inspect session state.
func (vm *VM) Globals() *object.Table { return vm.globals }

// InterpretResult classifies how an Interpret call ended.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// CompileError wraps the accumulated compile diagnostics.
type CompileError struct{ Errors error }

func (e *CompileError) Error() string { return e.Errors.Error() }
func (e *CompileError) Unwrap() error { return e.Errors }

// RuntimeError is a Lox runtime error: a message plus the call-stack trace
// captured at the point of failure, newest frame first.
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	s := e.Message
	for _, line := range e.Trace {
		s += "\n" + line
	}
	return s
}

// Interpret compiles and runs source as one top-level script. Globals and
// the intern table persist in vm across calls, so a REPL can call
// Interpret once per prompt and see prior definitions.
func (vm *VM) Interpret(source string) (InterpretResult, error) {
	fn, err := compiler.Compile(source, vm.strings)
	if err != nil {
		return InterpretCompileError, &CompileError{Errors: err}
	}

	closure := &object.ObjClosure{Function: fn}
	vm.push(object.ObjVal(closure))
	if rerr := vm.callClosure(closure, 0); rerr != nil {
		vm.resetStack()
		return InterpretRuntimeError, rerr
	}

	if err := vm.run(); err != nil {
		vm.resetStack()
		if rerr, ok := err.(*RuntimeError); ok {
			return InterpretRuntimeError, rerr
		}
		return InterpretRuntimeError, &RuntimeError{Message: err.Error()}
	}
	return InterpretOK, nil
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

func (vm *VM) push(v object.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() object.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) object.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// runtimeError builds the stack-trace-bearing RuntimeError described in
// §4.3: frames newest-to-oldest, each with its function name and the
// source line the chunk's line array maps its current instruction pointer
// to.
func (vm *VM) runtimeError(format string, args ...any) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	trace := make([]string, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		fn := fr.closure.Function
		line := 0
		if fr.ip-1 >= 0 && fr.ip-1 < len(fn.Chunk.Lines) {
			line = fn.Chunk.Lines[fr.ip-1]
		}
		name := fn.Name
		if name == "" {
			trace = append(trace, fmt.Sprintf("[line %d] in script", line))
		} else {
			trace = append(trace, fmt.Sprintf("[line %d] in %s()", line, name))
		}
	}
	return &RuntimeError{Message: msg, Trace: trace}
}
