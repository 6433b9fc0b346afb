package compiler_test

import (
	"testing"

	"github.com/lox-lang/loxvm/lang/compiler"
	"github.com/lox-lang/loxvm/lang/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEmitsExpectedOpcodes(t *testing.T) {
	strings := object.NewTable()
	fn, err := compiler.Compile(`print 1 + 2;`, strings)
	require.NoError(t, err)
	require.NotNil(t, fn)

	ops := opcodesOf(fn.Chunk)
	assert.Contains(t, ops, object.OpConstant)
	assert.Contains(t, ops, object.OpAdd)
	assert.Contains(t, ops, object.OpPrint)
	assert.Contains(t, ops, object.OpReturn)
}

func TestCompileReportsSyntaxError(t *testing.T) {
	strings := object.NewTable()
	fn, err := compiler.Compile(`print 1 +;`, strings)
	require.Error(t, err)
	assert.Nil(t, fn)
}

func TestCompileRejectsReturnValueFromInitializer(t *testing.T) {
	strings := object.NewTable()
	fn, err := compiler.Compile(`class A { init() { return 1; } }`, strings)
	require.Error(t, err)
	assert.Nil(t, fn)
	assert.Contains(t, err.Error(), "Can't return a value from an initializer.")
}

func TestCompileRejectsReturnFromTopLevel(t *testing.T) {
	strings := object.NewTable()
	_, err := compiler.Compile(`return 1;`, strings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return from top-level code.")
}

func TestCompileRejectsInvalidAssignmentTarget(t *testing.T) {
	strings := object.NewTable()
	_, err := compiler.Compile(`a + b = 3;`, strings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestCompileRejectsSelfInheritance(t *testing.T) {
	strings := object.NewTable()
	_, err := compiler.Compile(`class A < A {}`, strings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A class can't inherit from itself.")
}

func TestCompileRejectsSuperOutsideSubclass(t *testing.T) {
	strings := object.NewTable()
	_, err := compiler.Compile(`class A { m() { super.m(); } }`, strings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'super' in a class with no superclass.")
}

func TestCompileInternsDuplicateStringsIdentically(t *testing.T) {
	strings := object.NewTable()
	fn, err := compiler.Compile(`print "hi" == "hi";`, strings)
	require.NoError(t, err)

	var strs []*object.ObjString
	for _, c := range fn.Chunk.Constants {
		if s, ok := c.Obj.(*object.ObjString); ok {
			strs = append(strs, s)
		}
	}
	require.Len(t, strs, 2)
	assert.Same(t, strs[0], strs[1])
}

func TestCompileRecoversAfterErrorAndReportsMultiple(t *testing.T) {
	strings := object.NewTable()
	_, err := compiler.Compile(`
		var a = ;
		var b = ;
	`, strings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expect expression.")
	assert.Contains(t, err.Error(), "(and 1 more errors)")
}

func opcodesOf(c object.Chunk) []object.OpCode {
	var ops []object.OpCode
	for offset := 0; offset < len(c.Code); {
		op := object.OpCode(c.Code[offset])
		ops = append(ops, op)
		_, next := c.DisassembleInstruction(offset)
		offset = next
	}
	return ops
}
