package dotpath

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseQuery parses a textual query with the default registry.
func ParseQuery(text string) (Node, error) {
	return Default().ParseQuery(text)
}

// ParseQuery parses the infix query language:
//
//	expr   := term ("or" term)*
//	term   := factor ("and" factor)*
//	factor := "not" factor | "(" expr ")" | "true" | "false" | leaf
//	leaf   := [any|all] path operator [operand]
//	        | (any|all) path "(" expr ")"
//
// Operands are quoted strings, numbers, true, false, null, @ or $ path
// references, or bare words taken as strings.
func (r *Registry) ParseQuery(text string) (Node, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}

	p := queryParser{reg: r, input: text, tokens: tokens}
	if p.current().typ == tokenEOF {
		return nil, p.errorf(0, "query is empty")
	}

	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.typ != tokenEOF {
		return nil, p.errorf(tok.pos, "unexpected %s", describe(tok))
	}
	return n, nil
}

type queryParser struct {
	reg    *Registry
	input  string
	tokens []token
	pos    int
}

func (p *queryParser) errorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Input: p.input, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *queryParser) parseOr() (Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	children := []Node{first}
	for p.isKeyword(p.current(), "or") {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}

	if len(children) == 1 {
		return first, nil
	}
	return Or{Children: children}, nil
}

func (p *queryParser) parseAnd() (Node, error) {
	first, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	children := []Node{first}
	for p.isKeyword(p.current(), "and") {
		p.advance()
		next, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}

	if len(children) == 1 {
		return first, nil
	}
	return And{Children: children}, nil
}

func (p *queryParser) parseFactor() (Node, error) {
	tok := p.current()
	switch {
	case p.isKeyword(tok, "not"):
		p.advance()
		child, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Not{Child: child}, nil
	case tok.typ == tokenLParen:
		p.advance()
		return p.parseGroup()
	case (p.isKeyword(tok, "true") || p.isKeyword(tok, "false")) && p.endsFactor(p.peek()):
		p.advance()
		if p.isKeyword(tok, "true") {
			return And{}, nil
		}
		return Or{}, nil
	case tok.typ == tokenWord:
		return p.parseLeaf()
	case tok.typ == tokenEOF:
		return nil, p.errorf(tok.pos, "unexpected end of query")
	default:
		return nil, p.errorf(tok.pos, "unexpected %s", describe(tok))
	}
}

// parseGroup parses an expression followed by the ')' closing an already consumed '('.
func (p *queryParser) parseGroup() (Node, error) {
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.typ != tokenRParen {
		return nil, p.errorf(tok.pos, "missing closing ')'")
	}
	p.advance()
	return n, nil
}

func (p *queryParser) parseLeaf() (Node, error) {
	var kind QuantifierKind
	if tok := p.current(); (p.isKeyword(tok, "any") || p.isKeyword(tok, "all")) && p.startsPath(p.peek()) {
		kind = QuantifierKind(strings.ToLower(tok.literal))
		p.advance()
	}

	pathTok := p.advance()
	path, err := p.reg.Parse(pathTok.literal)
	if err != nil {
		se := p.errorf(pathTok.pos, "invalid path %q", pathTok.literal)
		se.Err = err
		return nil, se
	}

	if kind != "" && p.current().typ == tokenLParen {
		p.advance()
		inner, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		return Quantifier{Kind: kind, Path: path, Inner: inner}, nil
	}

	opTok := p.current()
	if opTok.typ != tokenWord {
		return nil, p.errorf(opTok.pos, "expected operator after %q", pathTok.literal)
	}
	p.advance()
	op, ok := p.reg.Operator(opTok.literal)
	if !ok {
		return nil, &UnknownOperatorError{Name: opTok.literal, Pos: opTok.pos}
	}

	cmp := Comparison{Op: op.Name, Left: Ref{Path: path}}
	if kind != "" {
		cmp.Left = Ref{}
	}

	if !op.Unary {
		valueTok := p.current()
		switch valueTok.typ {
		case tokenString:
			cmp.Right = Literal{Value: valueTok.literal}
		case tokenWord:
			operand, err := operandFromWord(p.reg, valueTok.literal)
			if err != nil {
				se := p.errorf(valueTok.pos, "invalid operand %q", valueTok.literal)
				se.Err = err
				return nil, se
			}
			cmp.Right = operand
		default:
			return nil, p.errorf(valueTok.pos, "expected value after %q", opTok.literal)
		}
		p.advance()
	}

	if kind != "" {
		return Quantifier{Kind: kind, Path: path, Inner: cmp}, nil
	}
	return cmp, nil
}

// startsPath reports whether tok can follow a quantifier keyword as its path.
// A registered operator there means the keyword itself is the path.
func (p *queryParser) startsPath(tok token) bool {
	if tok.typ != tokenWord {
		return false
	}
	_, isOperator := p.reg.Operator(tok.literal)
	return !isOperator
}

func (p *queryParser) endsFactor(tok token) bool {
	return tok.typ == tokenEOF || tok.typ == tokenRParen || p.isKeyword(tok, "and") || p.isKeyword(tok, "or")
}

func (p *queryParser) isKeyword(tok token, keyword string) bool {
	return tok.typ == tokenWord && strings.EqualFold(tok.literal, keyword)
}

func (p *queryParser) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.input)}
	}
	return p.tokens[p.pos]
}

func (p *queryParser) peek() token {
	if p.pos+1 >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.input)}
	}
	return p.tokens[p.pos+1]
}

func (p *queryParser) advance() token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func describe(tok token) string {
	switch tok.typ {
	case tokenEOF:
		return "end of query"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	default:
		return strconv.Quote(tok.literal)
	}
}

// operandFromWord interprets an unquoted operand.
func operandFromWord(reg *Registry, word string) (Operand, error) {
	switch word {
	case "true":
		return Literal{Value: true}, nil
	case "false":
		return Literal{Value: false}, nil
	case "null":
		return Literal{Value: nil}, nil
	}

	if word[0] == '@' || word[0] == '$' {
		path, err := reg.Parse(word)
		if err != nil {
			return nil, err
		}
		return Ref{Path: path}, nil
	}

	if looksNumeric(word) {
		if i, err := strconv.ParseInt(word, 10, 64); err == nil {
			return Literal{Value: i}, nil
		}
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return Literal{Value: f}, nil
		}
	}
	return Literal{Value: word}, nil
}

func looksNumeric(s string) bool {
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	return s != "" && (s[0] >= '0' && s[0] <= '9' || s[0] == '.' && len(s) > 1 && s[1] >= '0' && s[1] <= '9')
}
