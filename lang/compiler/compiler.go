// Package compiler implements the single-pass Pratt compiler that turns a
// token stream directly into bytecode: there is no intermediate AST. A
// stack of funcCompiler contexts (one per nested function literal or
// method being compiled) tracks locals, upvalues and scope depth; a
// parallel stack of classCompiler contexts tracks whether the class
// currently being compiled has a superclass, which governs whether `super`
// is a legal expression.
package compiler

import (
	"fmt"
	"os"

	"github.com/lox-lang/loxvm/lang/object"
	"github.com/lox-lang/loxvm/lang/scanner"
	"github.com/lox-lang/loxvm/lang/token"
)

// DebugPrintCode, when set, makes Compile write the disassembly of every
// function chunk (innermost first, since each is finished before its
// enclosing one) to stderr as it finishes compiling it. Mirrors clox's
// DEBUG_PRINT_CODE build flag.
var DebugPrintCode bool

// MaxLocals and MaxUpvalues are fixed by the single-byte GET_LOCAL/
// GET_UPVALUE operands.
const (
	MaxLocals   = 256
	MaxUpvalues = 256
)

type local struct {
	name       string
	depth      int // -1 means "declared but not yet initialized"
	isCaptured bool
}

type upvalueRef struct {
	index   uint8
	isLocal bool
}

// funcCompiler holds per-function compilation state. funcCompilers form a
// parent chain (via enclosing), not a tree: only the innermost one is ever
// being written to, and upvalue resolution walks the chain outward.
type funcCompiler struct {
	enclosing *funcCompiler

	function *object.ObjFunction
	kind     object.FunctionKind

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

func newFuncCompiler(enclosing *funcCompiler, name string, kind object.FunctionKind) *funcCompiler {
	fc := &funcCompiler{
		enclosing: enclosing,
		function:  &object.ObjFunction{Name: name},
		kind:      kind,
	}
	// Slot 0 is reserved: it holds the receiver for methods/initializers
	// (named "this") and the called closure itself for plain functions and
	// the top-level script (unnamed, inaccessible by source).
	slotName := ""
	if kind == object.FunctionMethod || kind == object.FunctionInitializer {
		slotName = "this"
	}
	fc.locals = append(fc.locals, local{name: slotName, depth: 0})
	return fc
}

type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// parser drives the single-pass compile: it owns the scanner, the current
// and previous tokens, the chain of funcCompiler/classCompiler contexts,
// and the shared string-intern table so that identifier and string
// constants it emits intern into the same table the VM uses at runtime
// (required for the REPL, where globals and interned strings persist
// across prompts using the same table instance).
type parser struct {
	scan *scanner.Scanner

	current  token.Token
	previous token.Token

	errors    token.ErrorList
	panicking bool

	fc    *funcCompiler
	class *classCompiler

	strings *object.Table
}

// Compile compiles source into a top-level script function. strings is the
// intern table shared with the VM that will execute the result (and reused
// across REPL prompts); pass the same *object.Table the VM was constructed
// with. On a non-nil error (a token.ErrorList), the returned function is
// nil: the contract in §4.2 is that no bytecode is emitted when any compile
// error was reported.
func Compile(source string, strings *object.Table) (*object.ObjFunction, error) {
	p := &parser{
		scan:    scanner.New([]byte(source)),
		strings: strings,
	}
	p.fc = newFuncCompiler(nil, "", object.FunctionScript)

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	fn := p.endFunction()

	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return fn, nil
}

// --- token stream helpers ---

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scan.Scan()
		if p.current.Kind != token.ERROR {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(kind token.Kind) bool { return p.current.Kind == kind }

func (p *parser) match(kind token.Kind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(kind token.Kind, msg string) {
	if p.current.Kind == kind {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *parser) errorAtPrevious(msg string) { p.errorAt(p.previous, msg) }

func (p *parser) errorAt(tok token.Token, msg string) {
	if p.panicking {
		return
	}
	p.panicking = true
	if tok.Kind == token.EOF {
		p.errors.Add(tok.Line, "at end: %s", msg)
	} else if tok.Kind == token.ERROR {
		p.errors.Add(tok.Line, "%s", msg)
	} else {
		p.errors.Add(tok.Line, "at '%s': %s", tok.Lexeme, msg)
	}
}

func (p *parser) errorAtCurrentf(format string, args ...any) { p.errorAtCurrent(fmt.Sprintf(format, args...)) }
func (p *parser) errorf(format string, args ...any)          { p.errorAtPrevious(fmt.Sprintf(format, args...)) }

// synchronize skips tokens until it reaches a statement boundary, so the
// parser can keep reporting independent errors instead of cascading.
func (p *parser) synchronize() {
	p.panicking = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.SEMICOLON {
			return
		}
		switch p.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// --- emission helpers ---

func (p *parser) chunk() *object.Chunk { return &p.fc.function.Chunk }

func (p *parser) emitByte(b byte) { p.chunk().Write(b, p.previous.Line) }
func (p *parser) emitOp(op object.OpCode) { p.chunk().WriteOp(op, p.previous.Line) }
func (p *parser) emitOps(op1, op2 object.OpCode) {
	p.emitOp(op1)
	p.emitOp(op2)
}

func (p *parser) emitConstant(v object.Value) {
	p.emitOp(object.OpConstant)
	p.emitByte(p.makeConstant(v))
}

func (p *parser) makeConstant(v object.Value) byte {
	idx := p.chunk().AddConstant(v)
	if idx >= object.MaxConstants {
		p.errorf("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

// emitJump emits a jump opcode with a placeholder 16-bit offset and returns
// the offset of the first placeholder byte, to be patched once the target
// is known.
func (p *parser) emitJump(op object.OpCode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.chunk().Code) - 2
}

func (p *parser) patchJump(at int) {
	jump := len(p.chunk().Code) - at - 2
	if jump > 0xffff {
		p.errorf("Too much code to jump over.")
	}
	p.chunk().Code[at] = byte(uint16(jump) >> 8)
	p.chunk().Code[at+1] = byte(uint16(jump))
}

func (p *parser) emitLoop(loopStart int) {
	p.emitOp(object.OpLoop)
	offset := len(p.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		p.errorf("Loop body too large.")
	}
	p.emitByte(byte(uint16(offset) >> 8))
	p.emitByte(byte(uint16(offset)))
}

func (p *parser) emitReturn() {
	if p.fc.kind == object.FunctionInitializer {
		// implicit return from init() returns `this` (slot 0), not nil.
		p.emitOp(object.OpGetLocal)
		p.emitByte(0)
	} else {
		p.emitOp(object.OpNil)
	}
	p.emitOp(object.OpReturn)
}

func (p *parser) endFunction() *object.ObjFunction {
	p.emitReturn()
	fn := p.fc.function
	if DebugPrintCode && len(p.errors) == 0 {
		name := fn.Name
		if name == "" {
			name = "<script>"
		}
		fmt.Fprint(os.Stderr, fn.Chunk.Disassemble(name))
	}
	p.fc = p.fc.enclosing
	return fn
}

// --- scopes ---

func (p *parser) beginScope() { p.fc.scopeDepth++ }

func (p *parser) endScope() {
	p.fc.scopeDepth--
	for len(p.fc.locals) > 0 && p.fc.locals[len(p.fc.locals)-1].depth > p.fc.scopeDepth {
		last := p.fc.locals[len(p.fc.locals)-1]
		if last.isCaptured {
			p.emitOp(object.OpCloseUpvalue)
		} else {
			p.emitOp(object.OpPop)
		}
		p.fc.locals = p.fc.locals[:len(p.fc.locals)-1]
	}
}

// --- identifier / constant helpers ---

func (p *parser) identifierConstant(tok token.Token) byte {
	s := p.strings.Intern(tok.Lexeme)
	return p.makeConstant(object.ObjVal(s))
}

func identifiersEqual(a, b string) bool { return a == b }

func (p *parser) resolveLocal(fc *funcCompiler, name string) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if identifiersEqual(fc.locals[i].name, name) {
			if fc.locals[i].depth == -1 {
				p.errorf("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *parser) addUpvalue(fc *funcCompiler, index uint8, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) >= MaxUpvalues {
		p.errorf("Too many closure variables in function.")
		return 0
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	fc.function.UpvalueCount = len(fc.upvalues)
	return len(fc.upvalues) - 1
}

func (p *parser) resolveUpvalue(fc *funcCompiler, name string) int {
	if fc.enclosing == nil {
		return -1
	}
	if local := p.resolveLocal(fc.enclosing, name); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return p.addUpvalue(fc, uint8(local), true)
	}
	if uv := p.resolveUpvalue(fc.enclosing, name); uv != -1 {
		return p.addUpvalue(fc, uint8(uv), false)
	}
	return -1
}

func (p *parser) addLocal(name string) {
	if len(p.fc.locals) >= MaxLocals {
		p.errorf("Too many local variables in function.")
		return
	}
	p.fc.locals = append(p.fc.locals, local{name: name, depth: -1})
}

func (p *parser) declareVariable() {
	if p.fc.scopeDepth == 0 {
		return
	}
	name := p.previous.Lexeme
	for i := len(p.fc.locals) - 1; i >= 0; i-- {
		l := p.fc.locals[i]
		if l.depth != -1 && l.depth < p.fc.scopeDepth {
			break
		}
		if identifiersEqual(l.name, name) {
			p.errorf("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) parseVariable(msg string) byte {
	p.consume(token.IDENTIFIER, msg)
	p.declareVariable()
	if p.fc.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *parser) markInitialized() {
	if p.fc.scopeDepth == 0 {
		return
	}
	p.fc.locals[len(p.fc.locals)-1].depth = p.fc.scopeDepth
}

func (p *parser) defineVariable(global byte) {
	if p.fc.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOp(object.OpDefineGlobal)
	p.emitByte(global)
}

func (p *parser) argumentList() byte {
	argc := 0
	if !p.check(token.RIGHT_PAREN) {
		for {
			p.expression()
			if argc == 255 {
				p.errorf("Can't have more than 255 arguments.")
			}
			argc++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return byte(argc)
}
