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

	"github.com/ugbasic/ugbc/internal/cerr"
	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/target"
	"github.com/ugbasic/ugbc/internal/token"
)

// The declarative productions (spec.md §4.2) are not named among
// internal/emit's arithmetic/statement primitives, so they call the
// emitter's collaborators -- Env, Sink, Backend, Deploy -- directly rather
// than going through a dedicated Emitter method per construct.

func (p *Parser) operandOf(v *model.Variable) target.Operand {
	return target.Operand(v.RealName)
}

func (p *Parser) intLiteral() (int, error) {
	t := p.cur()
	if t.Kind != token.IntLit {
		return 0, fmt.Errorf("line %d: expected an integer, found %q", t.Line, t.Text)
	}
	p.advance()
	return int(t.Value), nil
}

func (p *Parser) ident() (string, error) {
	t := p.cur()
	if t.Kind != token.Ident {
		return "", fmt.Errorf("line %d: expected an identifier, found %q", t.Line, t.Text)
	}
	p.advance()
	return t.Text, nil
}

// bankKind maps a bank-kind keyword to model.BankKind.
func bankKind(kw string) (model.BankKind, bool) {
	switch kw {
	case "CODE":
		return model.CodeBank, true
	case "VARIABLES":
		return model.VariablesBank, true
	case "TEMPORARY":
		return model.TemporaryBank, true
	case "DATA":
		return model.DataBank, true
	case "STRINGS":
		return model.StringsBank, true
	default:
		return 0, false
	}
}

// varType maps a var_definition type keyword to model.VarType. spec.md §4.1's
// keyword table exposes BYTE/WORD/DWORD/ADDRESS/POSITION/COLOR/STRING as type
// names; the signed/buffer/array forms have no surface syntax in this
// dialect's grammar fragment and are reachable only as temporary result
// types inside internal/emit.
func varType(kw string) (model.VarType, bool) {
	switch kw {
	case "BYTE":
		return model.Byte, true
	case "WORD":
		return model.Word, true
	case "DWORD":
		return model.DWord, true
	case "ADDRESS":
		return model.Address, true
	case "POSITION":
		return model.Position, true
	case "COLOR":
		return model.Color, true
	case "STRING":
		return model.DynamicStr, true
	default:
		return 0, false
	}
}

// bank_definition: BANK <name> AS <kind> [AT <addr>] [FROM <string>]
func (p *Parser) bankDefinition() error {
	p.advance() // BANK
	name, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.expect("AS"); err != nil {
		return err
	}
	kwTok := p.cur()
	kind, ok := bankKind(kwTok.Text)
	if !ok {
		return fmt.Errorf("line %d: unknown bank kind %q", kwTok.Line, kwTok.Text)
	}
	p.advance()
	bank := &model.Bank{Name: name, Kind: kind}
	if p.cur().Is("AT") {
		p.advance()
		addr, err := p.intLiteral()
		if err != nil {
			return err
		}
		bank.Address = addr
	}
	if p.cur().Is("FROM") {
		p.advance()
		if p.cur().Kind != token.StringLit {
			return fmt.Errorf("line %d: expected a filename string after FROM", p.cur().Line)
		}
		bank.File = p.advance().Text
	}
	p.em.Env.Banks.Add(bank)
	return nil
}

// raster_definition / next_raster_definition: RASTER AT <expr> GOSUB <label>.
// A handler that wants to chain to the next scanline simply issues the same
// statement again from inside its own body, rearming the interrupt before it
// returns -- there is no distinct "next" keyword needed.
func (p *Parser) rasterDefinition() error {
	p.advance() // RASTER
	if err := p.expect("AT"); err != nil {
		return err
	}
	scanline, err := p.expression()
	if err != nil {
		return err
	}
	if err := p.expect("GOSUB"); err != nil {
		return err
	}
	label, err := p.ident()
	if err != nil {
		return err
	}
	p.em.Sink.Line(p.em.Backend.RasterAt(p.operandOf(scanline), label))
	return nil
}

// color_definition: COLOR BORDER <expr> | COLOR BACKGROUND <n> TO <expr> |
// COLOR SPRITE <n> TO <expr>.
func (p *Parser) colorDefinition() error {
	p.advance() // COLOR
	switch {
	case p.cur().Is("BORDER"):
		p.advance()
		v, err := p.expression()
		if err != nil {
			return err
		}
		p.em.Sink.Line(p.em.Backend.ColorBorder(p.operandOf(v)))
		return nil
	case p.cur().Is("BACKGROUND"):
		p.advance()
		i, err := p.intLiteral()
		if err != nil {
			return err
		}
		if err := p.expect("TO"); err != nil {
			return err
		}
		v, err := p.expression()
		if err != nil {
			return err
		}
		p.em.Sink.Line(p.em.Backend.ColorBackground(i, p.operandOf(v)))
		return nil
	case p.cur().Is("SPRITE"):
		p.advance()
		i, err := p.intLiteral()
		if err != nil {
			return err
		}
		if err := p.expect("TO"); err != nil {
			return err
		}
		v, err := p.expression()
		if err != nil {
			return err
		}
		p.em.Sink.Line(p.em.Backend.ColorSprite(i, p.operandOf(v)))
		return nil
	default:
		return fmt.Errorf("line %d: expected BORDER, BACKGROUND or SPRITE after COLOR, found %q",
			p.cur().Line, p.cur().Text)
	}
}

// wait_definition: WAIT <expr> CYCLES|TICKS|MS.
func (p *Parser) waitDefinition() error {
	p.advance() // WAIT
	n, err := p.expression()
	if err != nil {
		return err
	}
	unit := p.cur()
	p.advance()
	switch unit.Text {
	case "CYCLES":
		p.em.Sink.Line(p.em.Backend.WaitCycles(p.operandOf(n)))
	case "TICKS":
		p.em.Sink.Line(p.em.Backend.WaitTicks(p.operandOf(n)))
	case "MS", "MILLISECOND", "MILLISECONDS":
		p.em.Sink.Line(p.em.Backend.WaitMs(p.operandOf(n)))
	default:
		return fmt.Errorf("line %d: expected CYCLES, TICKS or MS after WAIT, found %q", unit.Line, unit.Text)
	}
	return nil
}

// onOff parses an ON/OFF keyword and returns its boolean value.
func (p *Parser) onOff() (bool, error) {
	t := p.cur()
	switch t.Text {
	case "ON":
		p.advance()
		return true, nil
	case "OFF":
		p.advance()
		return false, nil
	default:
		return false, fmt.Errorf("line %d: expected ON or OFF, found %q", t.Line, t.Text)
	}
}

// sprite_definition: SPRITE <n> <LOAD FROM expr | AT expr,expr | COLOR TO
// expr | MULTICOLOR on_off | MONOCOLOR | COMPRESS | EXPAND HORIZONTAL on_off
// VERTICAL on_off | ENABLE | DISABLE>.
func (p *Parser) spriteDefinition() error {
	p.advance() // SPRITE
	index, err := p.intLiteral()
	if err != nil {
		return err
	}
	switch {
	case p.cur().Is("LOAD"):
		p.advance()
		if err := p.expect("FROM"); err != nil {
			return err
		}
		src, err := p.expression()
		if err != nil {
			return err
		}
		p.em.Sink.Line(p.em.Backend.SpriteLoad(index, p.operandOf(src)))
	case p.cur().Is("AT"):
		p.advance()
		x, err := p.expression()
		if err != nil {
			return err
		}
		if err := p.expect(","); err != nil {
			return err
		}
		y, err := p.expression()
		if err != nil {
			return err
		}
		p.em.Sink.Line(p.em.Backend.SpritePosition(index, p.operandOf(x), p.operandOf(y)))
	case p.cur().Is("COLOR"):
		p.advance()
		if err := p.expect("TO"); err != nil {
			return err
		}
		c, err := p.expression()
		if err != nil {
			return err
		}
		p.em.Sink.Line(p.em.Backend.SpriteColor(index, p.operandOf(c)))
	case p.cur().Is("MULTICOLOR"):
		p.advance()
		on, err := p.onOff()
		if err != nil {
			return err
		}
		p.em.Sink.Line(p.em.Backend.SpriteMulticolor(index, on))
	case p.cur().Is("MONOCOLOR"):
		p.advance()
		p.em.Sink.Line(p.em.Backend.SpriteMulticolor(index, false))
	case p.cur().Is("COMPRESS"):
		p.advance()
		p.em.Sink.Line(p.em.Backend.SpriteExpand(index, false, false))
	case p.cur().Is("EXPAND"):
		p.advance()
		if err := p.expect("HORIZONTAL"); err != nil {
			return err
		}
		h, err := p.onOff()
		if err != nil {
			return err
		}
		if err := p.expect("VERTICAL"); err != nil {
			return err
		}
		v, err := p.onOff()
		if err != nil {
			return err
		}
		p.em.Sink.Line(p.em.Backend.SpriteExpand(index, h, v))
	case p.cur().Is("ENABLE"):
		p.advance()
		p.em.Sink.Line(p.em.Backend.SpriteEnable(index, true))
	case p.cur().Is("DISABLE"):
		p.advance()
		p.em.Sink.Line(p.em.Backend.SpriteEnable(index, false))
	default:
		return fmt.Errorf("line %d: unrecognized SPRITE sub-command %q", p.cur().Line, p.cur().Text)
	}
	return nil
}

// screenLayerDefinition implements bitmap_definition / textmap_definition /
// colormap_definition / tiles_definition: <kind> ENABLE [AT <expr>] |
// <kind> DISABLE | <kind> CLEAR [WITH <expr>]. DISABLE and CLEAR share a
// single hardware register across every layer kind on each of these 8-bit
// chipsets, so all four keywords route to the one BitmapDisable/BitmapClear
// verb; only ENABLE dispatches per kind, since each layer has its own mode
// table entry.
func (p *Parser) screenLayerDefinition(kind string) error {
	p.advance() // BITMAP/TEXT/COLORMAP/TILES
	switch {
	case p.cur().Is("ENABLE"):
		p.advance()
		var at *target.Operand
		if p.cur().Is("AT") {
			p.advance()
			v, err := p.expression()
			if err != nil {
				return err
			}
			op := p.operandOf(v)
			at = &op
		}
		mode, err := p.em.Backend.ResolveScreenMode(target.ScreenRequest{Bitmap: kind == "BITMAP"})
		if err != nil {
			return err
		}
		switch kind {
		case "BITMAP":
			p.em.Sink.Line(p.em.Backend.BitmapEnable(mode, at))
		case "TEXT":
			p.em.Sink.Line(p.em.Backend.TextEnable(mode, at))
		case "COLORMAP":
			p.em.Sink.Line(p.em.Backend.ColormapEnable(mode, at))
		case "TILES":
			p.em.Sink.Line(p.em.Backend.TilesEnable(mode, at))
		}
		return nil
	case p.cur().Is("DISABLE"):
		p.advance()
		p.em.Sink.Line(p.em.Backend.BitmapDisable())
		return nil
	case p.cur().Is("CLEAR"):
		p.advance()
		var with *target.Operand
		if p.cur().Is("WITH") {
			p.advance()
			v, err := p.expression()
			if err != nil {
				return err
			}
			op := p.operandOf(v)
			with = &op
		}
		p.em.Sink.Line(p.em.Backend.BitmapClear(with))
		return nil
	default:
		return fmt.Errorf("line %d: expected ENABLE, DISABLE or CLEAR after %s, found %q",
			p.cur().Line, kind, p.cur().Text)
	}
}

// screen_definition: SCREEN ON | SCREEN OFF | SCREEN ROWS <expr> |
// SCREEN VERTICAL SCROLL <expr> | SCREEN HORIZONTAL SCROLL <expr>. None of
// these has a dedicated Backend verb (spec.md §6.5's verb table has no
// screen-power/scroll entry), so they route through the generic SysCall
// escape hatch the string operators already use for runtime calls, guarded
// by the shared scroll-text deployable for the two SCROLL forms.
func (p *Parser) screenDefinition() error {
	p.advance() // SCREEN
	switch {
	case p.cur().Is("ON"):
		p.advance()
		p.em.Sink.Line(p.em.Backend.SysCall("screen_on"))
		return nil
	case p.cur().Is("OFF"):
		p.advance()
		p.em.Sink.Line(p.em.Backend.SysCall("screen_off"))
		return nil
	case p.cur().Is("ROWS"):
		p.advance()
		n, err := p.expression()
		if err != nil {
			return err
		}
		p.em.Sink.Comment(fmt.Sprintf("SCREEN ROWS %s", n.RealName))
		p.em.Sink.Line(p.em.Backend.SysCall("screen_rows"))
		return nil
	case p.cur().Is("VERTICAL") || p.cur().Is("HORIZONTAL"):
		dir := p.advance().Text
		if err := p.expect("SCROLL"); err != nil {
			return err
		}
		if _, err := p.expression(); err != nil {
			return err
		}
		if err := p.em.Deploy.Use(p.em.Sink, deploy.VScrollText); err != nil {
			return err
		}
		if dir == "VERTICAL" {
			p.em.Sink.Line(p.em.Backend.SysCall("vscroll_text"))
		} else {
			p.em.Sink.Line(p.em.Backend.SysCall("hscroll_text"))
		}
		return nil
	default:
		return fmt.Errorf("line %d: unrecognized SCREEN sub-command %q", p.cur().Line, p.cur().Text)
	}
}

// var_definition: VAR <name> AS <type> ON <bank> [= <expr>].
func (p *Parser) varDefinition() error {
	p.advance() // VAR
	name, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.expect("AS"); err != nil {
		return err
	}
	typeTok := p.cur()
	t, ok := varType(typeTok.Text)
	if !ok {
		return fmt.Errorf("line %d: unknown variable type %q", typeTok.Line, typeTok.Text)
	}
	p.advance()
	if err := p.expect("ON"); err != nil {
		return err
	}
	bankName, err := p.ident()
	if err != nil {
		return err
	}
	bank, ok := p.em.Env.Banks.Find(bankName)
	if !ok {
		return fmt.Errorf("line %d: undefined bank %q", p.cur().Line, bankName)
	}
	v := &model.Variable{Name: name, RealName: name, Type: t}
	p.em.Env.DefineVariable(v, bank)
	if p.cur().Is("=") {
		p.advance()
		init, err := p.expression()
		if err != nil {
			return err
		}
		if err := p.em.Assign(v, init); err != nil {
			return err
		}
	}
	return nil
}

// point_definition: POINT AT (<expr>,<expr>).
func (p *Parser) pointDefinition() error {
	p.advance() // POINT
	if err := p.expect("AT"); err != nil {
		return err
	}
	if err := p.expect("("); err != nil {
		return err
	}
	x, err := p.expression()
	if err != nil {
		return err
	}
	if err := p.expect(","); err != nil {
		return err
	}
	y, err := p.expression()
	if err != nil {
		return err
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	p.em.Sink.Line(p.em.Backend.PointAt(p.operandOf(x), p.operandOf(y)))
	return nil
}

// procDefinition parses PROC <name> ... PARAM statements ... body ... END
// PROC (spec.md's Procedure model backs PARAM statements onto
// Env.PendingParams until the first non-PARAM statement finalizes them).
// Nested PROC definitions are rejected with E037.
func (p *Parser) procDefinition() error {
	p.advance() // PROC
	if p.em.Env.CurrentProc != nil {
		return cerr.New(p.em.Env.SourcePath, p.em.Env.Line, cerr.E037)
	}
	name, err := p.ident()
	if err != nil {
		return err
	}
	proc := &model.Procedure{Name: name}
	p.em.Env.CurrentProc = proc
	p.em.Env.PendingParams = nil
	p.em.Sink.Label("proc_" + name)
	p.skipSeparators()
	for p.cur().Is("PARAM") {
		p.advance()
		pname, err := p.ident()
		if err != nil {
			return err
		}
		if err := p.expect("AS"); err != nil {
			return err
		}
		typeTok := p.cur()
		t, ok := varType(typeTok.Text)
		if !ok {
			return fmt.Errorf("line %d: unknown parameter type %q", typeTok.Line, typeTok.Text)
		}
		p.advance()
		p.em.Env.PendingParams = append(p.em.Env.PendingParams, model.Parameter{Name: pname, Type: t})
		p.em.Env.DefineVariable(&model.Variable{Name: pname, RealName: name + "_" + pname, Type: t}, nil)
		p.skipSeparators()
	}
	proc.Params = p.em.Env.PendingParams
	p.em.Env.PendingParams = nil
	p.em.Env.DefineProcedure(proc)
	return nil
}

// endProc closes the body opened by PROC; E038 if none is open.
func (p *Parser) endProc() error {
	p.advance() // END
	if err := p.expect("PROC"); err != nil {
		return err
	}
	if p.em.Env.CurrentProc == nil {
		return cerr.New(p.em.Env.SourcePath, p.em.Env.Line, cerr.E038)
	}
	p.em.Sink.Line(p.em.Backend.Return())
	p.em.Env.CurrentProc = nil
	p.em.Env.ProcLocals = nil
	return nil
}

// procCall parses `<name>(args...)` as a statement: positionally assigns
// args into the callee's parameters, then calls it. E039 on an undefined
// name, E040 on an argument-count mismatch.
func (p *Parser) procCall(name string) error {
	proc, ok := p.em.Env.LookupProcedure(name)
	if !ok {
		return cerr.New(p.em.Env.SourcePath, p.em.Env.Line, cerr.E039)
	}
	if err := p.expect("("); err != nil {
		return err
	}
	var args []*model.Variable
	if !p.is(")") {
		a, err := p.expressionsRaw()
		if err != nil {
			return err
		}
		args = a
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	if len(args) != len(proc.Params) {
		return cerr.New(p.em.Env.SourcePath, p.em.Env.Line, cerr.E040)
	}
	for i, param := range proc.Params {
		dst := &model.Variable{RealName: name + "_" + param.Name, Type: param.Type}
		if err := p.em.Assign(dst, args[i]); err != nil {
			return err
		}
	}
	p.em.Sink.Line(p.em.Backend.Call("proc_" + name))
	return nil
}

// globalDefinition: GLOBAL <pattern>, valid only at top level (E042 inside a
// PROCEDURE). Registers a global-variable name pattern a procedure body may
// later reach via SHARED.
func (p *Parser) globalDefinition() error {
	p.advance() // GLOBAL
	if p.em.Env.CurrentProc != nil {
		return cerr.New(p.em.Env.SourcePath, p.em.Env.Line, cerr.E042)
	}
	name, err := p.ident()
	if err != nil {
		return err
	}
	p.em.Env.GlobalPatterns = append(p.em.Env.GlobalPatterns, name)
	return nil
}

// sharedDefinition: SHARED <name>, valid only inside a PROCEDURE (E041
// outside one). Confirms name already names an outer-scope variable --
// LookupVariable's own CurrentProc fallback already makes it reachable, so
// SHARED is a declared-visibility check, not a new binding mechanism.
func (p *Parser) sharedDefinition() error {
	p.advance() // SHARED
	if p.em.Env.CurrentProc == nil {
		return cerr.New(p.em.Env.SourcePath, p.em.Env.Line, cerr.E041)
	}
	name, err := p.ident()
	if err != nil {
		return err
	}
	if _, ok := p.em.Env.LookupVariable(name); !ok {
		return cerr.New(p.em.Env.SourcePath, p.em.Env.Line, cerr.E002)
	}
	return nil
}
