package compiler

import "github.com/lox-lang/loxvm/lang/token"

// Precedence orders Lox's binary operators, lowest first, for Pratt parsing.
type Precedence uint8

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

type (
	prefixFn func(p *parser, canAssign bool)
	infixFn  func(p *parser, canAssign bool)
)

type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence Precedence
}

var rules map[token.Kind]parseRule

// init builds the Pratt parse table. It is built in init (rather than a
// package-level composite literal) because several entries are (*parser)
// methods that call getRule, which reads rules: initializing rules with a
// composite literal would form an initialization cycle. There is no
// ordering dependency on anything outside this package.
func init() {
	rules = map[token.Kind]parseRule{
		token.LEFT_PAREN:    {(*parser).grouping, (*parser).call, PrecCall},
		token.RIGHT_PAREN:   {nil, nil, PrecNone},
		token.LEFT_BRACE:    {nil, nil, PrecNone},
		token.RIGHT_BRACE:   {nil, nil, PrecNone},
		token.COMMA:         {nil, nil, PrecNone},
		token.DOT:           {nil, (*parser).dot, PrecCall},
		token.MINUS:         {(*parser).unary, (*parser).binary, PrecTerm},
		token.PLUS:          {nil, (*parser).binary, PrecTerm},
		token.SEMICOLON:     {nil, nil, PrecNone},
		token.SLASH:         {nil, (*parser).binary, PrecFactor},
		token.STAR:          {nil, (*parser).binary, PrecFactor},
		token.BANG:          {(*parser).unary, nil, PrecNone},
		token.BANG_EQUAL:    {nil, (*parser).binary, PrecEquality},
		token.EQUAL:         {nil, nil, PrecNone},
		token.EQUAL_EQUAL:   {nil, (*parser).binary, PrecEquality},
		token.GREATER:       {nil, (*parser).binary, PrecComparison},
		token.GREATER_EQUAL: {nil, (*parser).binary, PrecComparison},
		token.LESS:          {nil, (*parser).binary, PrecComparison},
		token.LESS_EQUAL:    {nil, (*parser).binary, PrecComparison},
		token.IDENTIFIER:    {(*parser).variable, nil, PrecNone},
		token.STRING:        {(*parser).string, nil, PrecNone},
		token.NUMBER:        {(*parser).number, nil, PrecNone},
		token.AND:           {nil, (*parser).and, PrecAnd},
		token.CLASS:         {nil, nil, PrecNone},
		token.ELSE:          {nil, nil, PrecNone},
		token.FALSE:         {(*parser).literal, nil, PrecNone},
		token.FOR:           {nil, nil, PrecNone},
		token.FUN:           {nil, nil, PrecNone},
		token.IF:            {nil, nil, PrecNone},
		token.NIL:           {(*parser).literal, nil, PrecNone},
		token.OR:            {nil, (*parser).or, PrecOr},
		token.PRINT:         {nil, nil, PrecNone},
		token.RETURN:        {nil, nil, PrecNone},
		token.SUPER:         {(*parser).super, nil, PrecNone},
		token.THIS:          {(*parser).this, nil, PrecNone},
		token.TRUE:          {(*parser).literal, nil, PrecNone},
		token.VAR:           {nil, nil, PrecNone},
		token.WHILE:         {nil, nil, PrecNone},
		token.ERROR:         {nil, nil, PrecNone},
		token.EOF:           {nil, nil, PrecNone},
	}
}

func getRule(k token.Kind) parseRule {
	if r, ok := rules[k]; ok {
		return r
	}
	return parseRule{nil, nil, PrecNone}
}
