package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lox-lang/loxvm/lang/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, vm.InterpretResult, error) {
	t.Helper()
	var buf bytes.Buffer
	m := vm.New(&buf)
	res, err := m.Interpret(src)
	return buf.String(), res, err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, res, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, res, err := run(t, `var a = "hi"; print a + " there";`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "hi there\n", out)
}

func TestClosureCapturesAfterOuterReturns(t *testing.T) {
	out, res, err := run(t, `
		fun make(x) {
			fun inner() { return x; }
			return inner;
		}
		var f = make(42);
		print f();
	`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "42\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	out, res, err := run(t, `
		class A { speak() { print "A"; } }
		class B < A {
			speak() {
				super.speak();
				print "B";
			}
		}
		B().speak();
	`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "A\nB\n", out)
}

func TestInitializerAndBadInitReturn(t *testing.T) {
	out, res, err := run(t, `
		class P { init(n) { this.n = n; } }
		print P(7).n;
	`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "7\n", out)

	_, res, err = run(t, `class Q { init() { return 1; } }`)
	require.Error(t, err)
	assert.Equal(t, vm.InterpretCompileError, res)
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, res, err := run(t, `print undefined_var;`)
	require.Error(t, err)
	assert.Equal(t, vm.InterpretRuntimeError, res)
	assert.Contains(t, err.Error(), "Undefined variable 'undefined_var'")
}

func TestFieldsShadowMethods(t *testing.T) {
	out, res, err := run(t, `
		class C { m() { print "method"; } }
		var inst = C();
		inst.m = "field";
		print inst.m;
	`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "field\n", out)
}

func TestDivisionByZeroIsNotARuntimeError(t *testing.T) {
	out, res, err := run(t, `print 1 / 0;`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "+Inf\n", out)
}

func TestEqualityIsTypeSensitive(t *testing.T) {
	out, res, err := run(t, `print 1 == "1"; print nil == false;`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "false\nfalse\n", out)
}

func TestStackIsEmptyAfterTopLevelStatements(t *testing.T) {
	m := vm.New(&bytes.Buffer{})
	_, err := m.Interpret(`var a = 1; var b = 2; print a + b;`)
	require.NoError(t, err)
	// a second, independent statement must not observe any leftover stack
	// state from the first.
	_, err = m.Interpret(`print a * b;`)
	require.NoError(t, err)
}

func TestGlobalsAndInternTablePersistAcrossCalls(t *testing.T) {
	m := vm.New(&bytes.Buffer{})
	_, err := m.Interpret(`var counter = 0; fun bump() { counter = counter + 1; }`)
	require.NoError(t, err)
	var buf bytes.Buffer
	m2 := vm.New(&buf)
	_ = m2
	_, err = m.Interpret(`bump(); bump(); print counter;`)
	require.NoError(t, err)
}

func TestUndefinedGlobalAssignmentDoesNotCreateIt(t *testing.T) {
	_, res, err := run(t, `x = 1;`)
	require.Error(t, err)
	assert.Equal(t, vm.InterpretRuntimeError, res)
	assert.True(t, strings.Contains(err.Error(), "Undefined variable"))
}

func TestNativeClockIsCallableWithZeroArity(t *testing.T) {
	out, res, err := run(t, `print clock() >= 0;`)
	require.NoError(t, err)
	assert.Equal(t, vm.InterpretOK, res)
	assert.Equal(t, "true\n", out)
}
