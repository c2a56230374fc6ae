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

package emit

import (
	"fmt"

	"github.com/ugbasic/ugbc/internal/cerr"
	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/target"
)

// Label emits a user-defined or numeric line label as a landing point.
func (em *Emitter) Label(name string) {
	em.Sink.Label(name)
}

// Goto emits an unconditional jump to a label (which may be a forward
// reference; internal/sink never resolves addresses itself, matching
// spec.md §9's "labels are left to the target assembler").
func (em *Emitter) Goto(label string) {
	em.Sink.Line(em.Backend.Jump(label))
}

// Gosub calls label as a subroutine; Return below pops back to it.
func (em *Emitter) Gosub(label string) {
	em.Sink.Line(em.Backend.Call(label))
}

// Return emits a subroutine return.
func (em *Emitter) Return() {
	em.Sink.Line(em.Backend.Return())
}

// Pop discards the topmost GOSUB return address without transferring
// control there (spec.md §4.4's POP statement).
func (em *Emitter) Pop() {
	em.Sink.Line(em.Backend.PopReturn())
}

// OnGoto emits a 1-based ordinal compare-and-branch chain: the i-th label is
// reached exactly when index equals i+1. Falling through the whole chain
// (index out of range) is the "end marker" spec.md §4.2 names -- execution
// simply continues at the next statement.
func (em *Emitter) OnGoto(index *model.Variable, labels []string) {
	for i, label := range labels {
		ordinal := target.Operand(fmt.Sprintf("#%d", i+1))
		em.Sink.Line(em.Backend.CompareBranch(operand(index), ordinal, target.CmpNE, label))
	}
}

// OnGosub is OnGoto's call-instead-of-jump counterpart: each ordinal
// branches past a Call when it doesn't match, and falls through the whole
// chain when index is out of range.
func (em *Emitter) OnGosub(index *model.Variable, labels []string) {
	for i, label := range labels {
		ordinal := target.Operand(fmt.Sprintf("#%d", i+1))
		skip := em.newLabel("on_gosub_skip")
		em.Sink.Line(em.Backend.CompareBranch(operand(index), ordinal, target.CmpEQ, skip))
		em.Sink.Line(em.Backend.Call(label))
		em.Sink.Label(skip)
	}
}

// Every records (or replaces) the single EVERY n TICKS GOSUB handler in
// model.EveryState. It emits no code, and internal/compiler does not read
// EveryState at cleanup, so no interrupt or timer installer is generated.
func (em *Emitter) Every(ticks int64, label string) {
	em.Env.Every = model.EveryState{Installed: true, Ticks: ticks, Label: label, On: true}
}

// EveryOn and EveryOff toggle the installed handler without reinstalling it.
func (em *Emitter) EveryOn()  { em.Env.Every.On = true }
func (em *Emitter) EveryOff() { em.Env.Every.On = false }

// Halt emits an infinite self-jump, the idiomatic "stop the machine" ending
// for an 8-bit program with no operating system to return to.
func (em *Emitter) Halt() {
	label := em.newLabel("halt")
	em.Sink.Label(label)
	em.Sink.Line(em.Backend.Jump(label))
}

// Debug emits a source-line marker comment; it never affects control flow or
// allocation (spec.md §4.4's DEBUG statement).
func (em *Emitter) Debug() {
	em.Sink.Comment(fmt.Sprintf("DEBUG at line %d", em.Env.Line))
}

// Graphic switches the target into its default bitmap screen mode.
func (em *Emitter) Graphic() error {
	mode, err := em.Backend.ResolveScreenMode(target.ScreenRequest{Bitmap: true})
	if err != nil {
		return err
	}
	em.Sink.Line(em.Backend.BitmapEnable(mode, nil))
	return nil
}

// Assign lowers a scalar assignment dst = src, including the `$`-suffixed
// forced-string form (dst and src both DynamicStr/StaticStr already, by the
// time the parser calls Assign). W002 fires whenever src's promoted width
// exceeds dst's (spec.md §4.3).
func (em *Emitter) Assign(dst, src *model.Variable) error {
	if dst.Type.Numeric() && src.Type.Numeric() && src.Type.Width() > dst.Type.Width() {
		em.warn(cerr.W002)
	}
	switch {
	case dst.Type.Numeric():
		if !src.Type.Numeric() {
			return em.errAtf(cerr.E009, "%s := %s", dst.Type, src.Type)
		}
		switch dst.Type.Width() {
		case 8:
			em.Sink.Line(em.Backend.Move8(operand(dst), operand(src)))
		case 16:
			em.Sink.Line(em.Backend.Move16(operand(dst), operand(src)))
		case 32:
			em.Sink.Line(em.Backend.Move32(operand(dst), operand(src)))
		}
		return nil
	case dst.Type.IsString():
		if !src.Type.IsString() {
			return em.errAtf(cerr.E009, "%s := %s", dst.Type, src.Type)
		}
		if err := em.Deploy.Use(em.Sink, deploy.DString); err != nil {
			return err
		}
		em.Sink.Line(em.Backend.AddressOf(operand(dst), src.RealName))
		em.Sink.Line(em.Backend.SysCall("str_copy"))
		return nil
	default:
		return em.errAtf(cerr.E009, "%s := %s", dst.Type, src.Type)
	}
}

// spliceRoutine maps a LEFT$/RIGHT$/MID$ in-place assignment form to its
// runtime routine name.
var spliceRoutine = map[string]string{
	"LEFT":  "str_splice_left",
	"RIGHT": "str_splice_right",
	"MID":   "str_splice_mid",
}

// AssignSplice lowers LEFT$(dst, n)=value / RIGHT$(dst, n)=value /
// MID$(dst, start[, length])=value as a call to the form's runtime splice
// routine. Only dst and value are loaded for the routine; the n, start and
// length bounds are not passed to it.
func (em *Emitter) AssignSplice(form string, dst, value *model.Variable) error {
	if !dst.Type.IsString() {
		return em.errAtf(cerr.E019, "%s", dst.Type)
	}
	if !value.Type.IsString() {
		return em.errAtf(cerr.E019, "%s", value.Type)
	}
	routine, ok := spliceRoutine[form]
	if !ok {
		return em.errAtf(cerr.E019, "unknown splice form %q", form)
	}
	if err := em.Deploy.Use(em.Sink, deploy.DString); err != nil {
		return err
	}
	em.Sink.Line(em.Backend.AddressOf(operand(dst), dst.RealName))
	em.Sink.Line(em.Backend.AddressOf(operand(value), value.RealName))
	em.Sink.Line(em.Backend.SysCall(target.Operand(routine)))
	return nil
}

// Print implements the PRINT extension noted in the parser's design doc:
// PRINT [expr[, expr...]][;] lowered through the shared dprint deployable, a
// newline suffix emitted unless the statement ends with a semicolon.
func (em *Emitter) Print(args []*model.Variable, trailingSemicolon bool) error {
	if err := em.Deploy.Use(em.Sink, deploy.DPrint); err != nil {
		return err
	}
	for _, a := range args {
		em.Sink.Line(em.Backend.AddressOf(target.Operand("dprint_buf"), a.RealName))
		em.Sink.Line(em.Backend.SysCall("dprint"))
	}
	if !trailingSemicolon {
		em.Sink.Line(em.Backend.SysCall("dprint_newline"))
	}
	return nil
}
