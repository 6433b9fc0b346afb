package object_test

import (
	"fmt"
	"testing"

	"github.com/lox-lang/loxvm/lang/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSetGetDelete(t *testing.T) {
	tbl := object.NewTable()
	strs := object.NewTable()
	key := strs.Intern("greeting")

	isNew := tbl.Set(key, object.NumberVal(42))
	assert.True(t, isNew)

	v, ok := tbl.Get(key)
	require.True(t, ok)
	assert.Equal(t, 42.0, v.Number)

	isNew = tbl.Set(key, object.NumberVal(7))
	assert.False(t, isNew, "re-setting an existing key is not a new key")

	require.True(t, tbl.Delete(key))
	_, ok = tbl.Get(key)
	assert.False(t, ok)

	// a second key that would probe into the tombstone's slot must still be
	// reachable
	other := strs.Intern("other")
	tbl.Set(other, object.NumberVal(1))
	v, ok = tbl.Get(other)
	require.True(t, ok)
	assert.Equal(t, 1.0, v.Number)
}

func TestTableGrowsAndPreservesEntries(t *testing.T) {
	tbl := object.NewTable()
	strs := object.NewTable()

	const n = 200
	keys := make([]*object.ObjString, n)
	for i := 0; i < n; i++ {
		keys[i] = strs.Intern(fmt.Sprintf("key%d", i))
		tbl.Set(keys[i], object.NumberVal(float64(i)))
	}
	for i := 0; i < n; i++ {
		v, ok := tbl.Get(keys[i])
		require.True(t, ok, "key%d", i)
		assert.Equal(t, float64(i), v.Number)
	}
	assert.Equal(t, n, tbl.Count())
}

func TestTableAddAll(t *testing.T) {
	src := object.NewTable()
	dst := object.NewTable()
	strs := object.NewTable()

	a, b := strs.Intern("a"), strs.Intern("b")
	src.Set(a, object.NumberVal(1))
	src.Set(b, object.NumberVal(2))

	src.AddAll(dst)

	v, ok := dst.Get(a)
	require.True(t, ok)
	assert.Equal(t, 1.0, v.Number)
	v, ok = dst.Get(b)
	require.True(t, ok)
	assert.Equal(t, 2.0, v.Number)
}

func TestTableInterningIdentity(t *testing.T) {
	strs := object.NewTable()
	a := strs.Intern("hello there")
	b := strs.Intern("hello there")
	assert.Same(t, a, b, "two equal-content strings must intern to the same handle")

	c := strs.Intern("hello" + " there")
	assert.Same(t, a, c)
}

func TestValueEqualityAndTruthiness(t *testing.T) {
	assert.True(t, object.Equal(object.NumberVal(1), object.NumberVal(1)))
	assert.False(t, object.Equal(object.NumberVal(1), object.BoolVal(true)))
	assert.True(t, object.Equal(object.Nil, object.Nil))
	assert.False(t, object.Equal(object.Nil, object.BoolVal(false)))

	assert.True(t, object.Nil.IsFalsey())
	assert.True(t, object.BoolVal(false).IsFalsey())
	assert.False(t, object.BoolVal(true).IsFalsey())
	assert.False(t, object.NumberVal(0).IsFalsey())

	strs := object.NewTable()
	s := object.ObjVal(strs.Intern(""))
	assert.False(t, s.IsFalsey(), "empty string is truthy")
}
