package object

import "fmt"

// OpCode is one instruction in a Chunk's bytecode stream. The set is fixed
// and versioned; each opcode's operand shape and stack effect are part of
// its contract and are exercised by the disassembler and the VM dispatch
// loop alike.
type OpCode uint8

//nolint:revive
const (
	OpConstant OpCode = iota // 1 operand: constant index
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal  // 1 operand: stack slot
	OpSetLocal  // 1 operand: stack slot
	OpGetGlobal // 1 operand: name constant index
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue // 1 operand: upvalue index
	OpSetUpvalue
	OpGetProperty // 1 operand: name constant index
	OpSetProperty
	OpGetSuper
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump       // 2-byte operand: forward offset
	OpJumpIfFalse
	OpLoop       // 2-byte operand: backward offset
	OpCall       // 1 operand: argument count
	OpInvoke     // 2 operands: name constant index, argument count
	OpSuperInvoke
	OpClosure // 1 operand: function constant index, then 2*upvalueCount descriptor bytes
	OpCloseUpvalue
	OpReturn
	OpClass // 1 operand: name constant index
	OpInherit
	OpMethod // 1 operand: name constant index
)

var opcodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpGetSuper:     "OP_GET_SUPER",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpSuperInvoke:  "OP_SUPER_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpInherit:      "OP_INHERIT",
	OpMethod:       "OP_METHOD",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OpCode(%d)", op)
}
