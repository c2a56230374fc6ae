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

// Package parser implements ugbc's single-pass action dispatcher (spec.md §2
// component 2, §4.2): a hand-written recursive-descent/precedence-climbing
// reader that, for every recognized production, calls straight into
// internal/emit -- no AST is ever retained, matching spec.md §9's
// side-effecting-reductions design note and goat's own convertFunction,
// which walks a cc.FunctionDefinition directly into a Function value rather
// than retaining the cc tree.
package parser

import (
	"fmt"

	"github.com/ugbasic/ugbc/internal/emit"
	"github.com/ugbasic/ugbc/internal/token"
)

// Parser reads a fixed token slice (produced by internal/lexer.Tokenize)
// left to right, exactly once; Pos never moves backward.
type Parser struct {
	toks []token.Token
	pos  int
	em   *emit.Emitter
}

// New returns a Parser over toks, driving emission through em.
func New(toks []token.Token, em *emit.Emitter) *Parser {
	return &Parser{toks: toks, em: em}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	p.em.Env.Line = t.Line
	return t
}

// skipSeparators consumes Newline/Colon tokens between statements.
func (p *Parser) skipSeparators() {
	for p.cur().Kind == token.Newline || p.cur().Kind == token.Colon {
		p.advance()
	}
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

// is reports whether the current token is the named keyword or operator.
func (p *Parser) is(text string) bool {
	t := p.cur()
	return (t.Kind == token.Keyword || t.Kind == token.Operator || t.Kind == token.Punct) && t.Text == text
}

// expect consumes the current token if it matches text, or returns a parse
// error naming what was found instead.
func (p *Parser) expect(text string) error {
	if !p.is(text) {
		return fmt.Errorf("line %d: expected %q, found %q", p.cur().Line, text, p.cur().Text)
	}
	p.advance()
	return nil
}

// Run drives the whole token stream to completion: one parseStatement per
// logical line until a DONE statement or end of input (spec.md §4.2's
// "DONE (terminates parse)").
func (p *Parser) Run() error {
	for !p.atEOF() {
		p.skipSeparators()
		if p.atEOF() {
			break
		}
		if p.cur().Kind == token.Remark {
			p.advance()
			continue
		}
		done, err := p.parseStatement()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		p.skipSeparators()
	}
	return nil
}
