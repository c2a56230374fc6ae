// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"fmt"
	"strings"

	"github.com/ugbasic/ugbc/internal/cerr"
	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/token"
)

// expression is the `expression` production (spec.md §4.2): additive terms
// combined with + and -, no comparison operators -- this dialect has no
// boolean storage type, so relational operators are handled separately by
// condition, which branches directly instead of materializing a value.
func (p *Parser) expression() (*model.Variable, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.is("+") || p.is("-") {
		op := p.advance().Text
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			left, err = p.em.Add(left, right)
		} else {
			left, err = p.em.Sub(left, right)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// expressionsRaw is the `expressions_raw` production: a comma-separated
// expression list, used by PRINT, procedure-call argument lists, and
// multi-dimensional array subscripts.
func (p *Parser) expressionsRaw() ([]*model.Variable, error) {
	var out []*model.Variable
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	out = append(out, first)
	for p.is(",") {
		p.advance()
		next, err := p.expression()
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	return out, nil
}

func (p *Parser) term() (*model.Variable, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.is("*") || p.is("/") {
		op := p.advance().Text
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "*" {
			left, err = p.em.Mul(left, right)
		} else {
			left, err = p.em.Div(left, right)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) unary() (*model.Variable, error) {
	if p.is("-") {
		p.advance()
		v, err := p.unary()
		if err != nil {
			return nil, err
		}
		zero := p.immediate(0, v)
		return p.em.Sub(zero, v)
	}
	if p.cur().Is("NOT") {
		p.advance()
		v, err := p.unary()
		if err != nil {
			return nil, err
		}
		return p.em.Not(v)
	}
	return p.bitwise()
}

// bitwise handles AND/OR, which in this dialect are ordinary bitwise binary
// operators over numeric operands (there is no distinct boolean type).
func (p *Parser) bitwise() (*model.Variable, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.cur().Is("AND") || p.cur().Is("OR") {
		kw := p.advance().Text
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		if kw == "AND" {
			left, err = p.em.And(left, right)
		} else {
			left, err = p.em.Or(left, right)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// immediate returns an immediate-operand pseudo-variable for value,
// widened to like's promoted type so arithmetic against it never narrows
// unexpectedly.
func (p *Parser) immediate(value int64, like *model.Variable) *model.Variable {
	t := model.Byte
	if like != nil {
		t = like.Type
	}
	return &model.Variable{RealName: fmt.Sprintf("#%d", value), Type: t, InitInt: value}
}

func (p *Parser) primary() (*model.Variable, error) {
	t := p.cur()
	switch t.Kind {
	case token.IntLit:
		p.advance()
		width := model.Byte
		if t.Value > 255 || t.Value < -128 {
			width = model.Word
		}
		if t.Value > 65535 || t.Value < -32768 {
			width = model.DWord
		}
		return &model.Variable{RealName: fmt.Sprintf("#%d", t.Value), Type: width, InitInt: t.Value}, nil
	case token.StringLit:
		p.advance()
		s := p.em.Env.Strings.Intern(t.Text)
		return &model.Variable{RealName: s.Label(), Type: model.StaticStr, Size: len(t.Text)}, nil
	}

	if t.Kind == token.Punct && t.Text == "(" {
		p.advance()
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return v, nil
	}

	if t.Kind == token.Keyword {
		switch t.Text {
		case "TRUE":
			p.advance()
			return &model.Variable{RealName: "#1", Type: model.Byte, InitInt: 1}, nil
		case "FALSE":
			p.advance()
			return &model.Variable{RealName: "#0", Type: model.Byte, InitInt: 0}, nil
		}
		if stringFunctions[t.Text] {
			return p.callStringFunction(t.Text)
		}
		if t.Text == "RANDOM" {
			return p.randomExpression()
		}
		if t.Text == "PEEK" {
			return p.peekExpression()
		}
	}

	if t.Kind == token.Ident {
		p.advance()
		name := strings.TrimSuffix(t.Text, "$")
		v, ok := p.em.Env.LookupVariable(name)
		if !ok {
			return nil, cerr.New(p.em.Env.SourcePath, t.Line, cerr.E002)
		}
		return v, nil
	}

	return nil, fmt.Errorf("line %d: unexpected token %q in expression", t.Line, t.Text)
}

// stringFunctions is the set of keywords that open a string-operator call
// (spec.md §4.3).
var stringFunctions = map[string]bool{
	"LEFT": true, "RIGHT": true, "MID": true, "INSTR": true, "LEN": true,
	"CHR": true, "ASC": true, "STR": true, "VAL": true,
	"UPPER": true, "LOWER": true, "FLIP": true, "SPACE": true, "STRING": true,
}

// randomExpression parses the random_definition production (spec.md §4.2):
// RANDOM <type>, where type is one of BYTE/WORD/DWORD/POSITION/COLOR/WIDTH/
// HEIGHT.
func (p *Parser) randomExpression() (*model.Variable, error) {
	p.advance() // RANDOM
	kind := p.cur()
	if kind.Kind != token.Keyword {
		return nil, fmt.Errorf("line %d: expected a type after RANDOM, found %q", kind.Line, kind.Text)
	}
	p.advance()
	return p.em.Random(kind.Text)
}

// peekExpression parses PEEK(addr), a single-byte memory read.
func (p *Parser) peekExpression() (*model.Variable, error) {
	p.advance() // PEEK
	if err := p.expect("("); err != nil {
		return nil, err
	}
	addr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return p.em.Peek(addr)
}

func (p *Parser) callStringFunction(name string) (*model.Variable, error) {
	p.advance() // the function keyword
	if err := p.expect("("); err != nil {
		return nil, err
	}
	args, err := p.expressionsRaw()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	arg := func(i int) *model.Variable {
		if i < len(args) {
			return args[i]
		}
		return nil
	}
	switch name {
	case "LEFT":
		return p.em.Left(arg(0), arg(1))
	case "RIGHT":
		return p.em.Right(arg(0), arg(1))
	case "MID":
		return p.em.Mid(arg(0), arg(1), arg(2))
	case "INSTR":
		return p.em.Instr(arg(0), arg(1))
	case "LEN":
		return p.em.Len(arg(0))
	case "CHR":
		return p.em.Chr(arg(0))
	case "ASC":
		return p.em.Asc(arg(0))
	case "STR":
		return p.em.Str(arg(0))
	case "VAL":
		return p.em.Val(arg(0))
	case "UPPER":
		return p.em.Upper(arg(0))
	case "LOWER":
		return p.em.Lower(arg(0))
	case "FLIP":
		return p.em.Flip(arg(0))
	case "SPACE":
		return p.em.Space(arg(0))
	case "STRING":
		return p.em.StringRep(arg(0), arg(1))
	default:
		return nil, fmt.Errorf("unreachable: unknown string function %q", name)
	}
}
