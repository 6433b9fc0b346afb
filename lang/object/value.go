// Package object is the runtime data model shared by the compiler and the
// virtual machine: tagged Values, heap Objects (strings, functions,
// closures, classes, ...), the bytecode Chunk that stores and indexes them,
// and the open-addressed Table used for globals, fields, method tables, and
// string interning.
//
// These pieces live in one package rather than several because they are, by
// design, bit-exactly coupled: a Chunk's constant pool holds Values: a
// Function constant embeds another Chunk; the VM's dispatch loop and the
// compiler's emitted operands must agree on every layout. Splitting them
// across packages would either force that coupling through an interface
// (losing the compile-time layout guarantee) or create an import cycle.
package object

import (
	"fmt"
	"strconv"
)

// Kind identifies which alternative of the Value tagged union is active.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a tagged union: a number, a bool, nil, or a handle to a heap
// Object. It is always passed and stored by value; heap data is reached
// through the Obj field, which holds a normal Go pointer (Go's tracing
// collector is the "tracing garbage collector" referenced as optional in the
// specification — every root enumerated there, stack slots, frame closures,
// open upvalues, globals and intern tables, is an ordinary reachable Go
// reference, so no separate collector needs to be written).
type Value struct {
	Kind   Kind
	Number float64
	Bool   bool
	Obj    Object
}

// Nil is the singleton nil value.
var Nil = Value{Kind: KindNil}

// NumberVal wraps a float64 as a Value.
func NumberVal(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// BoolVal wraps a bool as a Value.
func BoolVal(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ObjVal wraps a heap Object as a Value.
func ObjVal(o Object) Value { return Value{Kind: KindObj, Obj: o} }

// IsNil reports whether v is the nil value.
func (v Value) IsNil() bool { return v.Kind == KindNil }

// IsFalsey reports whether v is falsey: only nil and false are falsey, every
// number (including zero) and every string (including "") is truthy.
func (v Value) IsFalsey() bool {
	return v.Kind == KindNil || (v.Kind == KindBool && !v.Bool)
}

// Equal implements Lox's `==`: different Kinds are never equal; numbers and
// bools compare by value; nil equals only nil; objects compare by identity,
// except strings, which are interned so identical content is always the same
// handle and identity comparison already implements content comparison.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindObj:
		return a.Obj == b.Obj
	default:
		return false
	}
}

// String renders v the way the `print` statement and string concatenation
// of a non-string operand would.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number)
	case KindObj:
		return v.Obj.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Type returns a short name for v's runtime type, used in error messages.
func (v Value) Type() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObj:
		return v.Obj.ObjType().String()
	default:
		return "invalid"
	}
}

// ObjType identifies the concrete kind of a heap Object.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
	ObjTypeNative
)

func (t ObjType) String() string {
	switch t {
	case ObjTypeString:
		return "string"
	case ObjTypeFunction:
		return "function"
	case ObjTypeClosure:
		return "closure"
	case ObjTypeUpvalue:
		return "upvalue"
	case ObjTypeClass:
		return "class"
	case ObjTypeInstance:
		return "instance"
	case ObjTypeBoundMethod:
		return "bound method"
	case ObjTypeNative:
		return "native function"
	default:
		return fmt.Sprintf("ObjType(%d)", t)
	}
}

// Object is implemented by every heap-allocated runtime value.
type Object interface {
	ObjType() ObjType
	// String is the human-readable form used by `print` and by error
	// messages; it is not the byte content of a string object (use
	// (*ObjString).Chars for that).
	String() string
}
