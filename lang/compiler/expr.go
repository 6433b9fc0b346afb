package compiler

import (
	"strconv"

	"github.com/lox-lang/loxvm/lang/object"
	"github.com/lox-lang/loxvm/lang/token"
)

func (p *parser) expression() {
	p.parsePrecedence(PrecAssignment)
}

// parsePrecedence consumes a prefix expression, then folds in infix
// expressions whose precedence is at least minPrec. canAssign is threaded
// through so that `=` is only honored in assignment position (i.e. at
// PrecAssignment, the lowest level): an infix or prefix rule invoked at
// any tighter precedence must treat `=` as a syntax error rather than
// silently accepting a nonsensical assignment target.
func (p *parser) parsePrecedence(minPrec Precedence) {
	p.advance()
	prefix := getRule(p.previous.Kind).prefix
	if prefix == nil {
		p.errorAtPrevious("Expect expression.")
		return
	}

	canAssign := minPrec <= PrecAssignment
	prefix(p, canAssign)

	for minPrec <= getRule(p.current.Kind).precedence {
		p.advance()
		infix := getRule(p.previous.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQUAL) {
		p.errorAtPrevious("Invalid assignment target.")
	}
}

func (p *parser) grouping(_ bool) {
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (p *parser) number(_ bool) {
	n, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.errorf("Invalid number literal '%s'.", p.previous.Lexeme)
		return
	}
	p.emitConstant(object.NumberVal(n))
}

func (p *parser) string(_ bool) {
	// strip the surrounding quotes
	raw := p.previous.Lexeme
	s := p.strings.Intern(raw[1 : len(raw)-1])
	p.emitConstant(object.ObjVal(s))
}

func (p *parser) literal(_ bool) {
	switch p.previous.Kind {
	case token.FALSE:
		p.emitOp(object.OpFalse)
	case token.TRUE:
		p.emitOp(object.OpTrue)
	case token.NIL:
		p.emitOp(object.OpNil)
	}
}

func (p *parser) unary(_ bool) {
	opKind := p.previous.Kind
	p.parsePrecedence(PrecUnary)
	switch opKind {
	case token.BANG:
		p.emitOp(object.OpNot)
	case token.MINUS:
		p.emitOp(object.OpNegate)
	}
}

func (p *parser) binary(_ bool) {
	opKind := p.previous.Kind
	rule := getRule(opKind)
	p.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.BANG_EQUAL:
		p.emitOps(object.OpEqual, object.OpNot)
	case token.EQUAL_EQUAL:
		p.emitOp(object.OpEqual)
	case token.GREATER:
		p.emitOp(object.OpGreater)
	case token.GREATER_EQUAL:
		p.emitOps(object.OpLess, object.OpNot)
	case token.LESS:
		p.emitOp(object.OpLess)
	case token.LESS_EQUAL:
		p.emitOps(object.OpGreater, object.OpNot)
	case token.PLUS:
		p.emitOp(object.OpAdd)
	case token.MINUS:
		p.emitOp(object.OpSubtract)
	case token.STAR:
		p.emitOp(object.OpMultiply)
	case token.SLASH:
		p.emitOp(object.OpDivide)
	}
}

func (p *parser) and(_ bool) {
	endJump := p.emitJump(object.OpJumpIfFalse)
	p.emitOp(object.OpPop)
	p.parsePrecedence(PrecAnd)
	p.patchJump(endJump)
}

func (p *parser) or(_ bool) {
	elseJump := p.emitJump(object.OpJumpIfFalse)
	endJump := p.emitJump(object.OpJump)
	p.patchJump(elseJump)
	p.emitOp(object.OpPop)
	p.parsePrecedence(PrecOr)
	p.patchJump(endJump)
}

func (p *parser) call(_ bool) {
	argc := p.argumentList()
	p.emitOp(object.OpCall)
	p.emitByte(argc)
}

func (p *parser) dot(canAssign bool) {
	p.consume(token.IDENTIFIER, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous)

	switch {
	case canAssign && p.match(token.EQUAL):
		p.expression()
		p.emitOp(object.OpSetProperty)
		p.emitByte(name)
	case p.match(token.LEFT_PAREN):
		argc := p.argumentList()
		p.emitOp(object.OpInvoke)
		p.emitByte(name)
		p.emitByte(argc)
	default:
		p.emitOp(object.OpGetProperty)
		p.emitByte(name)
	}
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp object.OpCode
	arg := p.resolveLocal(p.fc, name.Lexeme)
	if arg != -1 {
		getOp, setOp = object.OpGetLocal, object.OpSetLocal
	} else if arg = p.resolveUpvalue(p.fc, name.Lexeme); arg != -1 {
		getOp, setOp = object.OpGetUpvalue, object.OpSetUpvalue
	} else {
		arg = int(p.identifierConstant(name))
		getOp, setOp = object.OpGetGlobal, object.OpSetGlobal
	}

	if canAssign && p.match(token.EQUAL) {
		p.expression()
		p.emitOp(setOp)
		p.emitByte(byte(arg))
	} else {
		p.emitOp(getOp)
		p.emitByte(byte(arg))
	}
}

var syntheticThis = token.Token{Kind: token.IDENTIFIER, Lexeme: "this"}
var syntheticSuper = token.Token{Kind: token.IDENTIFIER, Lexeme: "super"}

func (p *parser) this(_ bool) {
	if p.class == nil {
		p.errorAtPrevious("Can't use 'this' outside of a class.")
		return
	}
	p.variable(false)
}

func (p *parser) super(_ bool) {
	switch {
	case p.class == nil:
		p.errorAtPrevious("Can't use 'super' outside of a class.")
	case !p.class.hasSuperclass:
		p.errorAtPrevious("Can't use 'super' in a class with no superclass.")
	}

	p.consume(token.DOT, "Expect '.' after 'super'.")
	p.consume(token.IDENTIFIER, "Expect superclass method name.")
	name := p.identifierConstant(p.previous)

	p.namedVariable(syntheticThis, false)
	if p.match(token.LEFT_PAREN) {
		argc := p.argumentList()
		p.namedVariable(syntheticSuper, false)
		p.emitOp(object.OpSuperInvoke)
		p.emitByte(name)
		p.emitByte(argc)
	} else {
		p.namedVariable(syntheticSuper, false)
		p.emitOp(object.OpGetSuper)
		p.emitByte(name)
	}
}
