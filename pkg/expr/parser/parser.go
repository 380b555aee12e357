// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package parser is a hand-written recursive-descent parser for the
// supported host-language expression subset (spec §6). It never executes
// host-language code; it only produces the AST of pkg/expr/ast.
package parser

import (
	"fmt"

	"github.com/kro-run/celengine/pkg/compileerr"
	"github.com/kro-run/celengine/pkg/expr/ast"
	"github.com/kro-run/celengine/pkg/expr/lexer"
	"github.com/kro-run/celengine/pkg/hoststring"
)

// reservedWords names host-language constructs this subset explicitly does
// not support (spec §6 "Explicitly unsupported").
var reservedWords = map[string]string{
	"async":    "async functions",
	"await":    "await expressions",
	"class":    "class declarations",
	"function": "function/generator declarations",
	"yield":    "generator functions",
	"new":      "new expressions (e.g. new Function(...))",
	"with":     "with statements",
	"eval":     "eval(...) calls",
}

// Parse parses a single expression from src and returns its AST root.
func Parse(src string) (ast.Node, error) {
	p := &parser{}
	toks, err := lexer.Lex(src)
	if err != nil {
		if lexErr, ok := err.(*lexer.Error); ok {
			return nil, &compileerr.CompileTimeError{
				Category: compileerr.UnsupportedSyntax,
				Message:  lexErr.Message,
				Pos:      &compileerr.Position{Offset: lexErr.Pos},
			}
		}
		return nil, err
	}
	p.toks = toks

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.isPunct("=") {
		t := p.cur()
		return nil, &compileerr.CompileTimeError{
			Category: compileerr.UnsupportedSyntax,
			Message:  "assignment operators are not supported",
			Pos:      &compileerr.Position{Line: t.Line, Column: t.Column, Offset: t.Start},
		}
	}
	if p.cur().Kind != lexer.EOF {
		return nil, p.errorf(compileerr.CategoryUnknown, "unexpected trailing input %q", p.cur().Lexeme)
	}
	return node, nil
}

type parser struct {
	toks []lexer.Token
	pos  int
}

func (p *parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(lexeme string) bool {
	t := p.cur()
	return t.Kind == lexer.Punct && t.Lexeme == lexeme
}

func (p *parser) expectPunct(lexeme string) (lexer.Token, error) {
	if !p.isPunct(lexeme) {
		return lexer.Token{}, p.errorf(compileerr.CategoryUnknown, "expected %q, got %q", lexeme, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *parser) errorf(cat compileerr.ConversionErrorCategory, format string, args ...interface{}) error {
	t := p.cur()
	pos := &compileerr.Position{Line: t.Line, Column: t.Column, Offset: t.Start}
	return &compileerr.ConversionError{
		Expression: t.Lexeme,
		Category:   cat,
		Pos:        pos,
		Reason:     fmt.Sprintf(format, args...),
	}
}

func span(start, end lexer.Token) ast.Span {
	return ast.NewSpan(start.Line, start.Column, start.Start, end.End)
}

// parseExpr is the entry production: ternary has the lowest precedence.
func (p *parser) parseExpr() (ast.Node, error) {
	return p.parseTernary()
}

func (p *parser) parseTernary() (ast.Node, error) {
	start := p.cur()
	cond, err := p.parseNullish()
	if err != nil {
		return nil, err
	}
	if p.isPunct("?") {
		p.advance()
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewConditional(span(start, p.prevEndToken()), cond, then, els), nil
	}
	return cond, nil
}

// prevEndToken returns the last consumed token, used to close a span.
func (p *parser) prevEndToken() lexer.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *parser) parseNullish() (ast.Node, error) {
	start := p.cur()
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	for p.isPunct("??") {
		p.advance()
		right, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		left = ast.NewNullish(span(start, p.prevEndToken()), left, right)
	}
	return left, nil
}

func (p *parser) parseLogicalOr() (ast.Node, error) {
	start := p.cur()
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.isPunct("||") {
		p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewLogical(span(start, p.prevEndToken()), ast.OpOr, left, right)
	}
	return left, nil
}

func (p *parser) parseLogicalAnd() (ast.Node, error) {
	start := p.cur()
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.isPunct("&&") {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.NewLogical(span(start, p.prevEndToken()), ast.OpAnd, left, right)
	}
	return left, nil
}

func (p *parser) parseEquality() (ast.Node, error) {
	start := p.cur()
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.isPunct("==") || p.isPunct("!=") {
		opTok := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		op := ast.OpEq
		if opTok.Lexeme == "!=" {
			op = ast.OpNeq
		}
		left = ast.NewBinary(span(start, p.prevEndToken()), op, left, right)
	}
	return left, nil
}

func (p *parser) parseRelational() (ast.Node, error) {
	start := p.cur()
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.isPunct("<") || p.isPunct("<=") || p.isPunct(">") || p.isPunct(">=") {
		opTok := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(span(start, p.prevEndToken()), ast.BinaryOp(opTok.Lexeme), left, right)
	}
	return left, nil
}

func (p *parser) parseAdditive() (ast.Node, error) {
	start := p.cur()
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		opTok := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(span(start, p.prevEndToken()), ast.BinaryOp(opTok.Lexeme), left, right)
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	start := p.cur()
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") || p.isPunct("%") {
		opTok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(span(start, p.prevEndToken()), ast.BinaryOp(opTok.Lexeme), left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Node, error) {
	if p.isPunct("!") || p.isPunct("-") || p.isPunct("+") {
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(span(opTok, p.prevEndToken()), ast.UnaryOp(opTok.Lexeme), operand), nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Node, error) {
	start := p.cur()
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("?."):
			p.advance()
			if p.isPunct("(") {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				node = ast.NewCall(span(start, p.prevEndToken()), node, args, true)
				continue
			}
			nameTok := p.advance()
			if nameTok.Kind != lexer.Ident {
				return nil, p.errorf(compileerr.CategoryOptionalChaining, "expected property name after '?.'")
			}
			node = ast.NewMember(span(start, p.prevEndToken()), node, nameTok.Lexeme, true)
		case p.isPunct("."):
			p.advance()
			nameTok := p.advance()
			if nameTok.Kind != lexer.Ident {
				return nil, p.errorf(compileerr.CategoryMemberAccess, "expected property name after '.'")
			}
			node = ast.NewMember(span(start, p.prevEndToken()), node, nameTok.Lexeme, false)
		case p.isPunct("["):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			node = ast.NewIndex(span(start, p.prevEndToken()), node, idx)
		case p.isPunct("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			node = ast.NewCall(span(start, p.prevEndToken()), node, args, false)
		default:
			return node, nil
		}
	}
}

func (p *parser) parseArgs() ([]ast.Node, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Node
	if !p.isPunct(")") {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (ast.Node, error) {
	t := p.cur()
	switch t.Kind {
	case lexer.Ident:
		if reason, reserved := reservedWords[t.Lexeme]; reserved {
			p.advance()
			return nil, &compileerr.CompileTimeError{
				Category: compileerr.UnsupportedSyntax,
				Message:  fmt.Sprintf("%s are not supported", reason),
				Pos:      &compileerr.Position{Line: t.Line, Column: t.Column, Offset: t.Start},
			}
		}
		p.advance()
		return ast.NewIdentifier(span(t, t), t.Lexeme), nil
	case lexer.Number:
		p.advance()
		return ast.NewLiteral(span(t, t), ast.LiteralNumber, t.Value), nil
	case lexer.String:
		p.advance()
		return ast.NewLiteral(span(t, t), ast.LiteralString, t.Value), nil
	case lexer.Bool:
		p.advance()
		return ast.NewLiteral(span(t, t), ast.LiteralBool, t.Value), nil
	case lexer.Null:
		p.advance()
		return ast.NewLiteral(span(t, t), ast.LiteralNull, nil), nil
	case lexer.TemplateRaw:
		p.advance()
		return p.parseTemplate(t)
	case lexer.Punct:
		switch t.Lexeme {
		case "(":
			p.advance()
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return inner, nil
		case "[":
			return p.parseArray(t)
		case "{":
			return p.parseObject(t)
		case "=":
			return nil, &compileerr.CompileTimeError{
				Category: compileerr.UnsupportedSyntax,
				Message:  "assignment operators are not supported",
				Pos:      &compileerr.Position{Line: t.Line, Column: t.Column, Offset: t.Start},
			}
		}
	}
	return nil, p.errorf(compileerr.CategoryUnknown, "unexpected token %q", t.Lexeme)
}

func (p *parser) parseArray(start lexer.Token) (ast.Node, error) {
	p.advance() // '['
	var elements []ast.Node
	if !p.isPunct("]") {
		for {
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
			if p.isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return ast.NewArrayLiteral(span(start, p.prevEndToken()), elements), nil
}

func (p *parser) parseObject(start lexer.Token) (ast.Node, error) {
	p.advance() // '{'
	var props []ast.ObjectProperty
	if !p.isPunct("}") {
		for {
			keyTok := p.advance()
			var key string
			switch keyTok.Kind {
			case lexer.Ident:
				key = keyTok.Lexeme
			case lexer.String:
				key = keyTok.Value.(string)
			default:
				return nil, p.errorf(compileerr.CategoryUnknown, "expected object key, got %q", keyTok.Lexeme)
			}
			if _, err := p.expectPunct(":"); err != nil {
				return nil, err
			}
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			props = append(props, ast.ObjectProperty{Key: key, Value: val})
			if p.isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return ast.NewObjectLiteral(span(start, p.prevEndToken()), props), nil
}

// parseTemplate splits a backtick template's raw inner text into literal
// parts and interpolation expressions using the same "${...}" scanner as
// pkg/hoststring, then recursively parses each interpolation.
func (p *parser) parseTemplate(t lexer.Token) (ast.Node, error) {
	raw := t.Value.(string)
	exprs, err := hoststring.Extract(raw)
	if err != nil {
		return nil, &compileerr.ConversionError{
			Expression: raw,
			Category:   compileerr.CategoryTemplateLiteral,
			Reason:     err.Error(),
		}
	}
	parts := hoststring.Literals(raw, exprs)

	parsed := make([]ast.Node, 0, len(exprs))
	for _, e := range exprs {
		node, err := Parse(e.Source)
		if err != nil {
			return nil, &compileerr.ConversionError{
				Expression: e.Source,
				Category:   compileerr.CategoryTemplateLiteral,
				Reason:     err.Error(),
			}
		}
		parsed = append(parsed, node)
	}
	return ast.NewTemplateLiteral(span(t, t), parts, parsed), nil
}
