package compiler

import (
	"github.com/lox-lang/loxvm/lang/object"
	"github.com/lox-lang/loxvm/lang/token"
)

func (p *parser) declaration() {
	switch {
	case p.match(token.CLASS):
		p.classDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicking {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.LEFT_BRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) block() {
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	p.emitOp(object.OpPrint)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	p.emitOp(object.OpPop)
}

func (p *parser) ifStatement() {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(object.OpJumpIfFalse)
	p.emitOp(object.OpPop)
	p.statement()

	elseJump := p.emitJump(object.OpJump)
	p.patchJump(thenJump)
	p.emitOp(object.OpPop)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(object.OpJumpIfFalse)
	p.emitOp(object.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(object.OpPop)
}

func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.chunk().Code)
	exitJump := -1
	if !p.match(token.SEMICOLON) {
		p.expression()
		p.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = p.emitJump(object.OpJumpIfFalse)
		p.emitOp(object.OpPop)
	}

	if !p.match(token.RIGHT_PAREN) {
		bodyJump := p.emitJump(object.OpJump)
		incrementStart := len(p.chunk().Code)
		p.expression()
		p.emitOp(object.OpPop)
		p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(object.OpPop)
	}

	p.endScope()
}

func (p *parser) returnStatement() {
	if p.fc.kind == object.FunctionScript {
		p.errorAtPrevious("Can't return from top-level code.")
	}

	if p.match(token.SEMICOLON) {
		p.emitReturn()
		return
	}

	if p.fc.kind == object.FunctionInitializer {
		p.errorAtPrevious("Can't return a value from an initializer.")
	}

	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	p.emitOp(object.OpReturn)
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.EQUAL) {
		p.expression()
	} else {
		p.emitOp(object.OpNil)
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(object.FunctionFunction)
	p.defineVariable(global)
}

// function compiles a nested function body in its own funcCompiler, then
// emits OP_CLOSURE (with its trailing upvalue descriptor bytes) into the
// *enclosing* chunk.
func (p *parser) function(kind object.FunctionKind) {
	name := p.previous.Lexeme
	enclosing := p.fc
	p.fc = newFuncCompiler(enclosing, name, kind)
	p.beginScope()

	p.consume(token.LEFT_PAREN, "Expect '(' after function name.")
	if !p.check(token.RIGHT_PAREN) {
		for {
			p.fc.function.Arity++
			if p.fc.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	p.consume(token.LEFT_BRACE, "Expect '{' before function body.")
	p.block()

	upvalues := p.fc.upvalues
	fn := p.endFunction()

	idx := p.makeConstant(object.ObjVal(fn))
	enclosingChunk := &enclosing.function.Chunk
	enclosingChunk.WriteOp(object.OpClosure, p.previous.Line)
	enclosingChunk.Write(idx, p.previous.Line)
	for _, uv := range upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		enclosingChunk.Write(isLocal, p.previous.Line)
		enclosingChunk.Write(uv.index, p.previous.Line)
	}
}

func (p *parser) classDeclaration() {
	p.consume(token.IDENTIFIER, "Expect class name.")
	className := p.previous
	nameConstant := p.identifierConstant(className)
	p.declareVariable()

	p.emitOp(object.OpClass)
	p.emitByte(nameConstant)
	p.defineVariable(nameConstant)

	cc := &classCompiler{enclosing: p.class}
	p.class = cc

	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "Expect superclass name.")
		p.variable(false)
		if identifiersEqual(className.Lexeme, p.previous.Lexeme) {
			p.errorAtPrevious("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal("super")
		p.defineVariable(0)

		p.namedVariable(className, false)
		p.emitOp(object.OpInherit)
		cc.hasSuperclass = true
	}

	p.namedVariable(className, false)
	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")
	p.emitOp(object.OpPop) // pop the class itself

	if cc.hasSuperclass {
		p.endScope()
	}
	p.class = cc.enclosing
}

func (p *parser) method() {
	p.consume(token.IDENTIFIER, "Expect method name.")
	name := p.previous
	constant := p.identifierConstant(name)

	kind := object.FunctionMethod
	if name.Lexeme == "init" {
		kind = object.FunctionInitializer
	}
	p.function(kind)

	p.emitOp(object.OpMethod)
	p.emitByte(constant)
}
