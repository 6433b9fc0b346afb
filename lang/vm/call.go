package vm

import "github.com/lox-lang/loxvm/lang/object"

// callValue implements the call convention of §4.3: dispatch on the
// runtime type of the callee, already sitting at stack slot
// (stackTop-argc-1) with its argc arguments above it.
func (vm *VM) callValue(callee object.Value, argc int) *RuntimeError {
	if callee.Kind != object.KindObj {
		return vm.runtimeError("Can only call functions and classes.")
	}

	switch c := callee.Obj.(type) {
	case *object.ObjClosure:
		return vm.callClosure(c, argc)
	case *object.ObjBoundMethod:
		vm.stack[vm.stackTop-argc-1] = c.Receiver
		return vm.callClosure(c.Method, argc)
	case *object.ObjClass:
		instance := object.NewInstance(c)
		vm.stack[vm.stackTop-argc-1] = object.ObjVal(instance)
		if initializer, ok := c.Methods.Get(vm.initString); ok {
			return vm.callClosure(initializer.Obj.(*object.ObjClosure), argc)
		} else if argc != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argc)
		}
		return nil
	case *object.ObjNative:
		if argc != c.Arity {
			return vm.runtimeError("Expected %d arguments but got %d.", c.Arity, argc)
		}
		args := vm.stack[vm.stackTop-argc : vm.stackTop]
		result, err := c.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.stackTop -= argc + 1
		vm.push(result)
		return nil
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

func (vm *VM) callClosure(closure *object.ObjClosure, argc int) *RuntimeError {
	if argc != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if vm.frameCount == FramesMax {
		return vm.runtimeError("Stack overflow.")
	}

	fr := &vm.frames[vm.frameCount]
	vm.frameCount++
	fr.closure = closure
	fr.ip = 0
	fr.slots = vm.stackTop - argc - 1
	return nil
}

// invoke fuses a property lookup with a call (OP_INVOKE): it avoids
// materializing an intermediate ObjBoundMethod when the receiver's class
// defines the method directly, falling back to a field lookup first since
// fields shadow methods.
func (vm *VM) invoke(name *object.ObjString, argc int) *RuntimeError {
	receiver := vm.peek(argc)
	if receiver.Kind != object.KindObj {
		return vm.runtimeError("Only instances have methods.")
	}
	instance, ok := receiver.Obj.(*object.ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argc-1] = field
		return vm.callValue(field, argc)
	}

	method, rerr := vm.resolveMethod(instance.Class, name)
	if rerr != nil {
		return rerr
	}
	return vm.callClosure(method, argc)
}

func (vm *VM) resolveMethod(class *object.ObjClass, name *object.ObjString) (*object.ObjClosure, *RuntimeError) {
	key := methodCacheKey{class: class, name: name}
	if closure, ok := vm.methodCache.Get(key); ok {
		return closure, nil
	}
	v, ok := class.Methods.Get(name)
	if !ok {
		return nil, vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	closure := v.Obj.(*object.ObjClosure)
	vm.methodCache.Put(key, closure)
	return closure, nil
}

func (vm *VM) bindMethod(class *object.ObjClass, name *object.ObjString) *RuntimeError {
	method, rerr := vm.resolveMethod(class, name)
	if rerr != nil {
		return rerr
	}
	bound := &object.ObjBoundMethod{Receiver: vm.peek(0), Method: method}
	vm.pop()
	vm.push(object.ObjVal(bound))
	return nil
}

// captureUpvalue returns the open upvalue for the given stack slot,
// reusing an existing one if present, otherwise inserting a new one into
// vm.openUpvalues keeping it sorted by strictly descending StackSlot.
func (vm *VM) captureUpvalue(slot int) *object.ObjUpvalue {
	var prev *object.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.StackSlot > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.StackSlot == slot {
		return cur
	}

	created := object.NewOpenUpvalue(&vm.stack[slot], slot)
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above the given stack
// slot, removing them from vm.openUpvalues.
func (vm *VM) closeUpvalues(fromSlot int) {
	for vm.openUpvalues != nil && vm.openUpvalues.StackSlot >= fromSlot {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.Next
	}
}
