package vm

import (
	"time"

	"github.com/lox-lang/loxvm/lang/object"
)

// defineNatives installs the VM's built-in native functions as globals,
// the same way clox's defineNative does: a native is just another global
// value, resolved and called exactly like a user-defined function.
func (vm *VM) defineNatives() {
	vm.defineNative("clock", 0, nativeClock)
}

func (vm *VM) defineNative(name string, arity int, fn object.NativeFn) {
	native := &object.ObjNative{Name: name, Arity: arity, Fn: fn}
	vm.globals.Set(vm.strings.Intern(name), object.ObjVal(native))
}

// nativeClock returns the number of seconds since an unspecified epoch with
// sub-second resolution, per §6.
func nativeClock(_ []object.Value) (object.Value, error) {
	return object.NumberVal(float64(time.Now().UnixNano()) / 1e9), nil
}
