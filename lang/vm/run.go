package vm

import (
	"fmt"
	"os"

	"github.com/lox-lang/loxvm/lang/object"
)

func (fr *callFrame) readByte() byte {
	b := fr.closure.Function.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (fr *callFrame) readShort() uint16 {
	hi := fr.closure.Function.Chunk.Code[fr.ip]
	lo := fr.closure.Function.Chunk.Code[fr.ip+1]
	fr.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (fr *callFrame) readConstant() object.Value {
	return fr.closure.Function.Chunk.Constants[fr.readByte()]
}

func (fr *callFrame) readStringConst() *object.ObjString {
	return fr.readConstant().Obj.(*object.ObjString)
}

// run executes instructions from the current call frame until the script
// frame returns (successful completion) or a runtime error occurs. The
// dispatch loop re-fetches the current frame pointer after any opcode that
// may push or pop a call frame (OP_CALL/OP_INVOKE/OP_SUPER_INVOKE/
// OP_RETURN) rather than caching it across the whole loop.
func (vm *VM) run() error {
	if vm.frameCount == 0 {
		return nil
	}
	frame := &vm.frames[vm.frameCount-1]

	for {
		if vm.DebugTraceExecution {
			text, _ := frame.closure.Function.Chunk.DisassembleInstruction(frame.ip)
			fmt.Fprint(os.Stderr, text)
		}
		op := object.OpCode(frame.readByte())

		switch op {
		case object.OpConstant:
			vm.push(frame.readConstant())

		case object.OpNil:
			vm.push(object.Nil)
		case object.OpTrue:
			vm.push(object.BoolVal(true))
		case object.OpFalse:
			vm.push(object.BoolVal(false))
		case object.OpPop:
			vm.pop()

		case object.OpGetLocal:
			slot := frame.readByte()
			vm.push(vm.stack[frame.slots+int(slot)])
		case object.OpSetLocal:
			slot := frame.readByte()
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case object.OpGetGlobal:
			name := frame.readStringConst()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case object.OpDefineGlobal:
			name := frame.readStringConst()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case object.OpSetGlobal:
			name := frame.readStringConst()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case object.OpGetUpvalue:
			slot := frame.readByte()
			vm.push(frame.closure.Upvalues[slot].Get())
		case object.OpSetUpvalue:
			slot := frame.readByte()
			frame.closure.Upvalues[slot].Set(vm.peek(0))

		case object.OpGetProperty:
			if vm.peek(0).Kind != object.KindObj {
				return vm.runtimeError("Only instances have properties.")
			}
			instance, ok := vm.peek(0).Obj.(*object.ObjInstance)
			if !ok {
				return vm.runtimeError("Only instances have properties.")
			}
			name := frame.readStringConst()
			if v, ok := instance.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			if rerr := vm.bindMethod(instance.Class, name); rerr != nil {
				return rerr
			}

		case object.OpSetProperty:
			if vm.peek(1).Kind != object.KindObj {
				return vm.runtimeError("Only instances have fields.")
			}
			instance, ok := vm.peek(1).Obj.(*object.ObjInstance)
			if !ok {
				return vm.runtimeError("Only instances have fields.")
			}
			name := frame.readStringConst()
			instance.Fields.Set(name, vm.peek(0))
			value := vm.pop()
			vm.pop()
			vm.push(value)

		case object.OpGetSuper:
			name := frame.readStringConst()
			superclass := vm.pop().Obj.(*object.ObjClass)
			if rerr := vm.bindMethod(superclass, name); rerr != nil {
				return rerr
			}

		case object.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(object.BoolVal(object.Equal(a, b)))

		case object.OpGreater, object.OpLess:
			if vm.peek(0).Kind != object.KindNumber || vm.peek(1).Kind != object.KindNumber {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().Number
			a := vm.pop().Number
			if op == object.OpGreater {
				vm.push(object.BoolVal(a > b))
			} else {
				vm.push(object.BoolVal(a < b))
			}

		case object.OpAdd:
			if rerr := vm.add(); rerr != nil {
				return rerr
			}

		case object.OpSubtract, object.OpMultiply, object.OpDivide:
			if vm.peek(0).Kind != object.KindNumber || vm.peek(1).Kind != object.KindNumber {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().Number
			a := vm.pop().Number
			switch op {
			case object.OpSubtract:
				vm.push(object.NumberVal(a - b))
			case object.OpMultiply:
				vm.push(object.NumberVal(a * b))
			case object.OpDivide:
				vm.push(object.NumberVal(a / b))
			}

		case object.OpNot:
			vm.push(object.BoolVal(vm.pop().IsFalsey()))

		case object.OpNegate:
			if vm.peek(0).Kind != object.KindNumber {
				return vm.runtimeError("Operand must be a number.")
			}
			v := vm.pop()
			vm.push(object.NumberVal(-v.Number))

		case object.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case object.OpJump:
			offset := frame.readShort()
			frame.ip += int(offset)
		case object.OpJumpIfFalse:
			offset := frame.readShort()
			if vm.peek(0).IsFalsey() {
				frame.ip += int(offset)
			}
		case object.OpLoop:
			offset := frame.readShort()
			frame.ip -= int(offset)

		case object.OpCall:
			argc := int(frame.readByte())
			if rerr := vm.callValue(vm.peek(argc), argc); rerr != nil {
				return rerr
			}
			frame = &vm.frames[vm.frameCount-1]

		case object.OpInvoke:
			name := frame.readStringConst()
			argc := int(frame.readByte())
			if rerr := vm.invoke(name, argc); rerr != nil {
				return rerr
			}
			frame = &vm.frames[vm.frameCount-1]

		case object.OpSuperInvoke:
			name := frame.readStringConst()
			argc := int(frame.readByte())
			superclass := vm.pop().Obj.(*object.ObjClass)
			method, rerr := vm.resolveMethod(superclass, name)
			if rerr != nil {
				return rerr
			}
			if rerr := vm.callClosure(method, argc); rerr != nil {
				return rerr
			}
			frame = &vm.frames[vm.frameCount-1]

		case object.OpClosure:
			fn := frame.readConstant().Obj.(*object.ObjFunction)
			closure := &object.ObjClosure{Function: fn, Upvalues: make([]*object.ObjUpvalue, fn.UpvalueCount)}
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := frame.readByte()
				index := frame.readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			vm.push(object.ObjVal(closure))

		case object.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case object.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case object.OpClass:
			name := frame.readStringConst()
			vm.push(object.ObjVal(object.NewClass(name)))

		case object.OpInherit:
			superVal := vm.peek(1)
			superclass, ok := superVal.Obj.(*object.ObjClass)
			if !ok || superVal.Kind != object.KindObj {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).Obj.(*object.ObjClass)
			superclass.Methods.AddAll(subclass.Methods)
			vm.pop() // subclass

		case object.OpMethod:
			name := frame.readStringConst()
			method := vm.peek(0)
			class := vm.peek(1).Obj.(*object.ObjClass)
			class.Methods.Set(name, method)
			vm.pop()

		default:
			return vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (vm *VM) add() *RuntimeError {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.Kind == object.KindNumber && b.Kind == object.KindNumber:
		vm.pop()
		vm.pop()
		vm.push(object.NumberVal(a.Number + b.Number))
		return nil
	case isString(a) && isString(b):
		vm.pop()
		vm.pop()
		as := a.Obj.(*object.ObjString).Chars
		bs := b.Obj.(*object.ObjString).Chars
		vm.push(object.ObjVal(vm.strings.Intern(as + bs)))
		return nil
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

func isString(v object.Value) bool {
	if v.Kind != object.KindObj {
		return false
	}
	_, ok := v.Obj.(*object.ObjString)
	return ok
}
