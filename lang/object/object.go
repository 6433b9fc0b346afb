package object

import "fmt"

// ObjString is an immutable, interned byte sequence. Two ObjStrings with
// equal content are always the same pointer: construct them only through
// Table.Intern so that invariant holds.
type ObjString struct {
	Chars string
	Hash  uint32
}

func (s *ObjString) ObjType() ObjType { return ObjTypeString }
func (s *ObjString) String() string   { return s.Chars }

// hashString computes the FNV-1a hash of s, the same algorithm clox uses for
// its string table.
func hashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// HashString exposes hashString, the hash Intern and FindString probe by,
// to callers outside this package.
func HashString(s string) uint32 { return hashString(s) }

// FunctionKind distinguishes the handful of compiler contexts that shape
// how a compiled function's implicit return behaves.
type FunctionKind uint8

const (
	FunctionScript FunctionKind = iota
	FunctionFunction
	FunctionMethod
	FunctionInitializer
)

// ObjFunction is a compiled function: its own chunk, its declared arity and
// upvalue count, and a name (empty for the implicit top-level script
// function).
type ObjFunction struct {
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         string
}

func (f *ObjFunction) ObjType() ObjType { return ObjTypeFunction }
func (f *ObjFunction) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// ObjUpvalue is a runtime indirection to a captured variable. While Open it
// refers to a VM stack slot (by index, via Location and a fixed stack
// array so the pointer remains valid); once Closed, it owns a private copy
// of the value. The Next field threads the VM's open-upvalue list, which is
// always kept sorted by descending StackSlot.
type ObjUpvalue struct {
	Location  *Value // points into the VM's stack array while open
	Closed    Value  // owns the value once closed
	StackSlot int    // slot index while open, for open-list ordering
	Next      *ObjUpvalue
	open      bool
}

func (u *ObjUpvalue) ObjType() ObjType { return ObjTypeUpvalue }
func (u *ObjUpvalue) String() string   { return "upvalue" }

// IsOpen reports whether the upvalue still refers to a live stack slot.
func (u *ObjUpvalue) IsOpen() bool { return u.open }

// NewOpenUpvalue creates an upvalue referring to the given stack slot.
func NewOpenUpvalue(location *Value, slot int) *ObjUpvalue {
	return &ObjUpvalue{Location: location, StackSlot: slot, open: true}
}

// Close copies the current value out of the stack slot and detaches the
// upvalue from it.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
	u.open = false
}

// Get returns the upvalue's current value, whether open or closed.
func (u *ObjUpvalue) Get() Value { return *u.Location }

// Set stores v into the upvalue's current storage, whether open or closed.
func (u *ObjUpvalue) Set(v Value) { *u.Location = v }

// ObjClosure pairs a compiled Function with the upvalues it captured at
// creation time. Calling a closure always goes through the VM's call
// machinery (callValue/callClosure in lang/vm).
type ObjClosure struct {
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) ObjType() ObjType { return ObjTypeClosure }
func (c *ObjClosure) String() string   { return (&ObjFunction{Name: c.Function.Name}).String() }

// ObjClass is a class: a name and a method table mapping method name to
// closure.
type ObjClass struct {
	Name    *ObjString
	Methods *Table
}

func NewClass(name *ObjString) *ObjClass {
	return &ObjClass{Name: name, Methods: NewTable()}
}

func (c *ObjClass) ObjType() ObjType { return ObjTypeClass }
func (c *ObjClass) String() string   { return c.Name.Chars }

// ObjInstance is an instance of a class: the class plus its own field table.
type ObjInstance struct {
	Class  *ObjClass
	Fields *Table
}

func NewInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{Class: class, Fields: NewTable()}
}

func (i *ObjInstance) ObjType() ObjType { return ObjTypeInstance }
func (i *ObjInstance) String() string   { return i.Class.Name.Chars + " instance" }

// ObjBoundMethod pairs a receiver (always an instance) with the method
// closure it was bound to; calling it sets call-frame slot 0 to Receiver.
type ObjBoundMethod struct {
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) ObjType() ObjType { return ObjTypeBoundMethod }
func (b *ObjBoundMethod) String() string   { return b.Method.String() }

// NativeFn is a Go function exposed to Lox as a native callable. It receives
// exactly Arity arguments (already checked by the VM) and returns the
// result, or an error to raise as a Lox runtime error.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a NativeFn with the name and arity the VM needs to
// enforce the call convention.
type ObjNative struct {
	Name  string
	Arity int
	Fn    NativeFn
}

func (n *ObjNative) ObjType() ObjType { return ObjTypeNative }
func (n *ObjNative) String() string   { return fmt.Sprintf("<native fn %s>", n.Name) }
