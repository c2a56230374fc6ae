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

	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/token"
)

// parseStatement recognizes and emits exactly one statement (spec.md §4.2,
// §4.4), returning done=true only for DONE, which terminates the parse the
// way Run's caller expects.
func (p *Parser) parseStatement() (bool, error) {
	t := p.cur()

	if t.Kind == token.Ident && p.peekAt(1).Kind == token.Colon {
		name := p.advance().Text
		p.advance() // ":"
		p.em.Label(name)
		return false, nil
	}
	if t.Kind == token.IntLit && p.peekAt(1).Kind == token.Colon {
		p.advance()
		p.advance() // ":"
		p.em.Label(lineLabel(t.Value))
		return false, nil
	}

	if t.Kind == token.Ident {
		return false, p.identStatement(t.Text)
	}

	if t.Kind != token.Keyword {
		return false, fmt.Errorf("line %d: unexpected token %q", t.Line, t.Text)
	}

	switch t.Text {
	case "IF":
		return false, p.ifStatement()
	case "DO":
		return false, p.doStatement()
	case "WHILE":
		return false, p.whileStatement()
	case "REPEAT":
		return false, p.repeatStatement()
	case "FOR":
		return false, p.forStatement()
	case "EXIT":
		return false, p.exitStatement()
	case "BEGIN":
		return false, p.gameLoopStatement()
	case "END":
		return false, p.endProc()
	case "GRAPHIC":
		p.advance()
		return false, p.em.Graphic()
	case "HALT":
		p.advance()
		p.em.Halt()
		return false, nil
	case "GOTO":
		return false, p.gotoStatement()
	case "GOSUB":
		return false, p.gosubStatement()
	case "RETURN":
		p.advance()
		p.em.Return()
		return false, nil
	case "POP":
		p.advance()
		p.em.Pop()
		return false, nil
	case "DONE":
		p.advance()
		return true, nil
	case "DEBUG":
		p.advance()
		p.em.Debug()
		return false, nil
	case "PRINT":
		return false, p.printStatement()
	case "ON":
		return false, p.onStatement()
	case "EVERY":
		return false, p.everyStatement()
	case "BANK":
		return false, p.bankDefinition()
	case "RASTER":
		return false, p.rasterDefinition()
	case "COLOR":
		return false, p.colorDefinition()
	case "WAIT":
		return false, p.waitDefinition()
	case "SPRITE":
		return false, p.spriteDefinition()
	case "BITMAP", "TEXT", "COLORMAP", "TILES":
		return false, p.screenLayerDefinition(t.Text)
	case "SCREEN":
		return false, p.screenDefinition()
	case "VAR":
		return false, p.varDefinition()
	case "POINT":
		return false, p.pointDefinition()
	case "PROC":
		return false, p.procDefinition()
	case "GLOBAL":
		return false, p.globalDefinition()
	case "SHARED":
		return false, p.sharedDefinition()
	case "LEFT", "RIGHT", "MID":
		return false, p.spliceStatement(t.Text)
	default:
		return false, fmt.Errorf("line %d: unexpected keyword %q", t.Line, t.Text)
	}
}

// lineLabel names a numeric line label the way goto/gosub targets refer back
// to it.
func lineLabel(n int64) string {
	return fmt.Sprintf("line_%d", n)
}

// labelRef consumes either an identifier or an integer line number and
// returns the label name it designates.
func (p *Parser) labelRef() (string, error) {
	t := p.cur()
	switch t.Kind {
	case token.Ident:
		p.advance()
		return t.Text, nil
	case token.IntLit:
		p.advance()
		return lineLabel(t.Value), nil
	default:
		return "", fmt.Errorf("line %d: expected a label, found %q", t.Line, t.Text)
	}
}

// isBlockEnd reports whether the current token is the END keyword followed
// by next, without consuming either -- used to stop a body loop that, unlike
// IF/DO/WHILE/REPEAT/FOR, shares its closer keyword (END) with other
// constructs.
func (p *Parser) isBlockEnd(next string) bool {
	return p.cur().Is("END") && p.peekAt(1).Text == next
}

// runBody parses statements until stop reports true, skipping separators
// between them.
func (p *Parser) runBody(stop func() bool) error {
	for !stop() {
		p.skipSeparators()
		if stop() || p.atEOF() {
			break
		}
		if p.cur().Kind == token.Remark {
			p.advance()
			continue
		}
		if _, err := p.parseStatement(); err != nil {
			return err
		}
		p.skipSeparators()
	}
	return nil
}

func (p *Parser) ifStatement() error {
	p.advance() // IF
	c := p.em.BeginIf()
	if err := p.condition(c.ElseLabel); err != nil {
		return err
	}
	if err := p.expect("THEN"); err != nil {
		return err
	}
	if err := p.runBody(func() bool { return p.cur().Is("ELSE") || p.cur().Is("ENDIF") }); err != nil {
		return err
	}
	if p.cur().Is("ELSE") {
		p.advance()
		if err := p.em.Else(); err != nil {
			return err
		}
		if err := p.runBody(func() bool { return p.cur().Is("ENDIF") }); err != nil {
			return err
		}
	}
	if err := p.expect("ENDIF"); err != nil {
		return err
	}
	return p.em.EndIf()
}

func (p *Parser) doStatement() error {
	p.advance() // DO
	p.em.BeginDo()
	if err := p.runBody(func() bool { return p.cur().Is("LOOP") }); err != nil {
		return err
	}
	if err := p.expect("LOOP"); err != nil {
		return err
	}
	return p.em.EndLoop()
}

func (p *Parser) whileStatement() error {
	p.advance() // WHILE
	l := p.em.BeginWhile()
	if err := p.condition(l.ExitLabel); err != nil {
		return err
	}
	if err := p.runBody(func() bool { return p.cur().Is("WEND") }); err != nil {
		return err
	}
	if err := p.expect("WEND"); err != nil {
		return err
	}
	return p.em.EndWhile()
}

func (p *Parser) repeatStatement() error {
	p.advance() // REPEAT
	p.em.BeginRepeat()
	if err := p.runBody(func() bool { return p.cur().Is("UNTIL") }); err != nil {
		return err
	}
	if err := p.expect("UNTIL"); err != nil {
		return err
	}
	l, err := p.em.RepeatTarget()
	if err != nil {
		return err
	}
	if err := p.condition(l.BeginLabel); err != nil {
		return err
	}
	return p.em.EndRepeat()
}

// forStatement: FOR <ident> = <expr> TO <expr> [STEP <expr>] ... NEXT [ident].
// The loop variable must already be declared via VAR. A STEP that is not an
// integer literal is passed to EndFor as a runtime operand, which always gets
// the ascending bound test whatever the value's sign.
func (p *Parser) forStatement() error {
	p.advance() // FOR
	name, err := p.ident()
	if err != nil {
		return err
	}
	idx, ok := p.em.Env.LookupVariable(name)
	if !ok {
		return fmt.Errorf("line %d: undefined variable %q in FOR", p.cur().Line, name)
	}
	if err := p.expect("="); err != nil {
		return err
	}
	start, err := p.expression()
	if err != nil {
		return err
	}
	if err := p.em.Assign(idx, start); err != nil {
		return err
	}
	if err := p.expect("TO"); err != nil {
		return err
	}
	limit, err := p.expression()
	if err != nil {
		return err
	}
	var stepOperand string
	stepConst := int64(1)
	hasStep := false
	if p.cur().Is("STEP") {
		p.advance()
		switch {
		case p.cur().Kind == token.IntLit:
			stepConst = p.advance().Value
		case p.is("-") && p.peekAt(1).Kind == token.IntLit:
			p.advance()
			stepConst = -p.advance().Value
		default:
			step, err := p.expression()
			if err != nil {
				return err
			}
			stepOperand = step.RealName
			hasStep = true
		}
	}
	var stepConstPtr *int64
	if !hasStep {
		stepConstPtr = &stepConst
	}
	p.em.BeginFor(idx, limit.RealName, stepOperand, stepConstPtr)
	if err := p.runBody(func() bool { return p.cur().Is("NEXT") }); err != nil {
		return err
	}
	if err := p.expect("NEXT"); err != nil {
		return err
	}
	if p.cur().Kind == token.Ident {
		p.advance() // optional loop-variable echo
	}
	return p.em.EndFor()
}

// exitStatement: EXIT [IF <condition>] [, n] (spec.md §3/§4.4).
func (p *Parser) exitStatement() error {
	p.advance() // EXIT
	if p.cur().Is("IF") {
		p.advance()
		skip := p.em.NewLabel("exit_skip")
		if err := p.condition(skip); err != nil {
			return err
		}
		n, err := p.exitDepth()
		if err != nil {
			return err
		}
		if err := p.em.Exit(n); err != nil {
			return err
		}
		p.em.Label(skip)
		return nil
	}
	n, err := p.exitDepth()
	if err != nil {
		return err
	}
	return p.em.Exit(n)
}

// exitDepth parses the optional `, n` suffix of EXIT, defaulting to 1.
func (p *Parser) exitDepth() (int, error) {
	if !p.is(",") {
		return 1, nil
	}
	p.advance()
	return p.intLiteral()
}

func (p *Parser) gameLoopStatement() error {
	p.advance() // BEGIN
	if err := p.expect("GAMELOOP"); err != nil {
		return err
	}
	p.em.BeginGameLoop()
	stop := func() bool { return p.isBlockEnd("GAMELOOP") || p.cur().Is("DONE") || p.atEOF() }
	if err := p.runBody(stop); err != nil {
		return err
	}
	if !p.isBlockEnd("GAMELOOP") {
		// DONE or EOF reached with no END GAMELOOP: leave the loop record on
		// the stack rather than popping it, so internal/compiler's cleanup
		// sees a still-open game loop and warns (spec.md §4.6) instead of
		// this silently matching a closer that was never there.
		return nil
	}
	p.advance() // END
	p.advance() // GAMELOOP
	return p.em.EndGameLoop()
}

func (p *Parser) gotoStatement() error {
	p.advance() // GOTO
	label, err := p.labelRef()
	if err != nil {
		return err
	}
	p.em.Goto(label)
	return nil
}

func (p *Parser) gosubStatement() error {
	p.advance() // GOSUB
	label, err := p.labelRef()
	if err != nil {
		return err
	}
	p.em.Gosub(label)
	return nil
}

// onStatement: ON <expr> GOTO <label, ...> | ON <expr> GOSUB <label, ...>.
func (p *Parser) onStatement() error {
	p.advance() // ON
	idx, err := p.expression()
	if err != nil {
		return err
	}
	kind := p.cur()
	if !kind.Is("GOTO") && !kind.Is("GOSUB") {
		return fmt.Errorf("line %d: expected GOTO or GOSUB after ON, found %q", kind.Line, kind.Text)
	}
	p.advance()
	var labels []string
	for {
		lbl, err := p.labelRef()
		if err != nil {
			return err
		}
		labels = append(labels, lbl)
		if p.is(",") {
			p.advance()
			continue
		}
		break
	}
	if kind.Text == "GOTO" {
		p.em.OnGoto(idx, labels)
	} else {
		p.em.OnGosub(idx, labels)
	}
	return nil
}

// everyStatement: EVERY <n> TICKS GOSUB <label> | EVERY ON | EVERY OFF.
func (p *Parser) everyStatement() error {
	p.advance() // EVERY
	if p.cur().Is("ON") {
		p.advance()
		p.em.EveryOn()
		return nil
	}
	if p.cur().Is("OFF") {
		p.advance()
		p.em.EveryOff()
		return nil
	}
	n, err := p.intLiteral()
	if err != nil {
		return err
	}
	if err := p.expect("TICKS"); err != nil {
		return err
	}
	if err := p.expect("GOSUB"); err != nil {
		return err
	}
	label, err := p.labelRef()
	if err != nil {
		return err
	}
	p.em.Every(int64(n), label)
	return nil
}

// printStatement: PRINT [expr[, expr...]][;] -- a trailing semicolon
// suppresses the newline the runtime routine otherwise appends.
func (p *Parser) printStatement() error {
	p.advance() // PRINT
	var args []*model.Variable
	if !p.atStatementEnd() && !p.is(";") {
		a, err := p.expressionsRaw()
		if err != nil {
			return err
		}
		args = a
	}
	trailing := false
	if p.is(";") {
		p.advance()
		trailing = true
	}
	return p.em.Print(args, trailing)
}

// atStatementEnd reports whether the current token closes a statement:
// newline, colon separator, or end of input.
func (p *Parser) atStatementEnd() bool {
	k := p.cur().Kind
	return k == token.Newline || k == token.Colon || k == token.EOF
}

// spliceStatement parses LEFT$(dst, n)=value / RIGHT$(dst, n)=value /
// MID$(dst, start[, length])=value (spec.md §4.4's in-place splice-assign
// form). The numeric bounds are validated by evaluating them but, matching
// emit.AssignSplice's signature, are not threaded further -- the runtime
// splice routines address the whole target string.
func (p *Parser) spliceStatement(form string) error {
	p.advance() // LEFT/RIGHT/MID
	if err := p.expect("("); err != nil {
		return err
	}
	name, err := p.ident()
	if err != nil {
		return err
	}
	dst, ok := p.em.Env.LookupVariable(name)
	if !ok {
		return fmt.Errorf("line %d: undefined variable %q", p.cur().Line, name)
	}
	if err := p.expect(","); err != nil {
		return err
	}
	if _, err := p.expression(); err != nil {
		return err
	}
	if form == "MID" && p.is(",") {
		p.advance()
		if _, err := p.expression(); err != nil {
			return err
		}
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	if err := p.expect("="); err != nil {
		return err
	}
	value, err := p.expression()
	if err != nil {
		return err
	}
	return p.em.AssignSplice(form, dst, value)
}

// identStatement dispatches a statement that starts with a bare identifier:
// a procedure call `name(args...)` or a scalar assignment `name[$] = expr`.
func (p *Parser) identStatement(text string) error {
	if p.peekAt(1).Kind == token.Punct && p.peekAt(1).Text == "(" {
		p.advance()
		return p.procCall(text)
	}
	p.advance()
	name := strings.TrimSuffix(text, "$")
	dst, ok := p.em.Env.LookupVariable(name)
	if !ok {
		return fmt.Errorf("line %d: undefined variable %q", p.cur().Line, name)
	}
	if err := p.expect("="); err != nil {
		return err
	}
	src, err := p.expression()
	if err != nil {
		return err
	}
	return p.em.Assign(dst, src)
}
