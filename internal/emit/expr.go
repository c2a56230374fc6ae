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
	"strings"

	"github.com/ugbasic/ugbc/internal/cerr"
	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/target"
)

// Add, Sub, Mul, Div, And, Or are the binary arithmetic primitives of
// spec.md §4.3: each allocates a result temporary of the promoted type and
// pushes the backend's verb text to the sink.

func (em *Emitter) Add(a, b *model.Variable) (*model.Variable, error) {
	t, err := em.resolveArith(cerr.E010, a, b)
	if err != nil {
		return nil, err
	}
	res := em.Env.NextTemp(t)
	em.Sink.Line(em.Backend.Add(operand(res), operand(a), operand(b)))
	return res, nil
}

func (em *Emitter) Sub(a, b *model.Variable) (*model.Variable, error) {
	t, err := em.resolveArith(cerr.E011, a, b)
	if err != nil {
		return nil, err
	}
	res := em.Env.NextTemp(t)
	em.Sink.Line(em.Backend.Sub(operand(res), operand(a), operand(b)))
	return res, nil
}

// Mul keeps its result at the promoted operand width rather than doubling it
// to hold a full-precision product, so a genuine overflow risk exists; W001
// flags that every time, matching spec.md §4.3.
func (em *Emitter) Mul(a, b *model.Variable) (*model.Variable, error) {
	t, err := em.resolveArith(cerr.E013, a, b)
	if err != nil {
		return nil, err
	}
	em.warn(cerr.W001)
	res := em.Env.NextTemp(t)
	em.Sink.Line(em.Backend.Mul(operand(res), operand(a), operand(b)))
	return res, nil
}

func (em *Emitter) Div(a, b *model.Variable) (*model.Variable, error) {
	t, err := em.resolveArith(cerr.E014, a, b)
	if err != nil {
		return nil, err
	}
	res := em.Env.NextTemp(t)
	em.Sink.Line(em.Backend.Div(operand(res), operand(a), operand(b)))
	return res, nil
}

func (em *Emitter) And(a, b *model.Variable) (*model.Variable, error) {
	t, err := em.resolveArith(cerr.E018, a, b)
	if err != nil {
		return nil, err
	}
	res := em.Env.NextTemp(t)
	em.Sink.Line(em.Backend.And(operand(res), operand(a), operand(b)))
	return res, nil
}

// Or shares And's bitwise-unsupported code; the catalogue carries no
// separate entry for it.
func (em *Emitter) Or(a, b *model.Variable) (*model.Variable, error) {
	t, err := em.resolveArith(cerr.E018, a, b)
	if err != nil {
		return nil, err
	}
	res := em.Env.NextTemp(t)
	em.Sink.Line(em.Backend.Or(operand(res), operand(a), operand(b)))
	return res, nil
}

// Not is the unary complement; it reuses a's storage class (promotion over a
// single operand is the identity).
func (em *Emitter) Not(a *model.Variable) (*model.Variable, error) {
	if !a.Type.Numeric() {
		return nil, em.errAtf(cerr.E012, "%s", a.Type)
	}
	res := em.Env.NextTemp(a.Type)
	zero := target.Operand("#0")
	em.Sink.Line(em.Backend.Sub(operand(res), zero, operand(a)))
	return res, nil
}

// compareBranch is the shared implementation behind Compare, CompareNot,
// LessThan and GreaterThan: all four are control-flow primitives that
// branch directly to label rather than materializing a boolean value,
// matching the branch-based CompareBranch verb every target backend
// implements.
func (em *Emitter) compareBranch(a, b *model.Variable, op target.CompareOp, label string) error {
	if a.Type.IsString() != b.Type.IsString() {
		return em.errAtf(cerr.E015, "%s vs %s", a.Type, b.Type)
	}
	if !a.Type.IsString() && (!a.Type.Numeric() || !b.Type.Numeric()) {
		return em.errAtf(cerr.E015, "%s vs %s", a.Type, b.Type)
	}
	em.Sink.Line(em.Backend.CompareBranch(operand(a), operand(b), op, label))
	return nil
}

// Compare branches to label when a != b (the CmpEQ verb's branch mnemonic is
// the complement of equality, so label is reached precisely when the IF/
// WHILE condition "a = b" is false).
func (em *Emitter) Compare(a, b *model.Variable, label string) error {
	return em.compareBranch(a, b, target.CmpEQ, label)
}

// CompareNot branches to label when a = b (the complement of "a <> b").
func (em *Emitter) CompareNot(a, b *model.Variable, label string) error {
	return em.compareBranch(a, b, target.CmpNE, label)
}

// LessThan branches to label when a is not less than b.
func (em *Emitter) LessThan(a, b *model.Variable, label string) error {
	return em.compareBranch(a, b, target.CmpLT, label)
}

// GreaterThan branches to label when a is not greater than b.
func (em *Emitter) GreaterThan(a, b *model.Variable, label string) error {
	return em.compareBranch(a, b, target.CmpGT, label)
}

// LessOrEqual and GreaterOrEqual round out the relational operators the
// lexer accepts (<=, >=); every target backend already implements CmpLE/
// CmpGE, so exposing them here costs nothing and avoids an arbitrary gap
// between the four named comparison primitives and the six comparison
// operators the language actually parses.
func (em *Emitter) LessOrEqual(a, b *model.Variable, label string) error {
	return em.compareBranch(a, b, target.CmpLE, label)
}

func (em *Emitter) GreaterOrEqual(a, b *model.Variable, label string) error {
	return em.compareBranch(a, b, target.CmpGE, label)
}

// stringArgSlots are the fixed, well-known scratch operands the dstring
// routines read their arguments from -- the same "load the call's operands
// into a shared named cell, then SysCall" shape Print uses for dprint_buf
// (internal/emit/stmt.go's Print), generalized to the up-to-three operands
// MID$ needs. A string operand's address goes in; a numeric operand's value
// goes in, matching Assign's own numeric-vs-string split.
var stringArgSlots = [3]target.Operand{"str_arg1", "str_arg2", "str_arg3"}

// wireStringArgs loads each of args into its fixed scratch slot ahead of a
// SysCall, string operands by address (Backend.AddressOf) and numeric
// operands by value (Backend.Move8/Move16), mirroring Assign's dst.Type
// branch.
func (em *Emitter) wireStringArgs(args ...*model.Variable) {
	for i, a := range args {
		slot := stringArgSlots[i]
		if a.Type.IsString() {
			em.Sink.Line(em.Backend.AddressOf(slot, a.RealName))
			continue
		}
		if a.Type.Width() == 16 {
			em.Sink.Line(em.Backend.Move16(slot, operand(a)))
		} else {
			em.Sink.Line(em.Backend.Move8(slot, operand(a)))
		}
	}
}

// stringRoutine calls a shared runtime string routine via the backend's
// SysCall verb, guarded by the dstring deployable the routine bodies live
// in (spec.md §4.5's "deployable snippet" discipline extended to the
// string-operator runtime library). args are wired into the routine's
// fixed argument slots first, the same way stmt.go's Assign/AssignSplice/
// Print load their operands before calling into shared code.
func (em *Emitter) stringRoutine(routine string, resultType model.VarType, args ...*model.Variable) (*model.Variable, error) {
	if err := em.Deploy.Use(em.Sink, deploy.DString); err != nil {
		return nil, err
	}
	em.wireStringArgs(args...)
	res := em.Env.NextTemp(resultType)
	em.Sink.Line(em.Backend.SysCall(target.Operand(routine)))
	return res, nil
}

func (em *Emitter) Left(s, n *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E019, "%s", s.Type)
	}
	return em.stringRoutine("str_left", model.DynamicStr, s, n)
}

func (em *Emitter) Right(s, n *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E020, "%s", s.Type)
	}
	return em.stringRoutine("str_right", model.DynamicStr, s, n)
}

// Mid implements MID(s, start[, length]); length may be nil, meaning "to the
// end of s" (spec.md §4.3: "Mid takes an optional length operand").
func (em *Emitter) Mid(s, start, length *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E021, "%s", s.Type)
	}
	if length != nil {
		return em.stringRoutine("str_mid", model.DynamicStr, s, start, length)
	}
	return em.stringRoutine("str_mid_to_end", model.DynamicStr, s, start)
}

func (em *Emitter) Instr(haystack, needle *model.Variable) (*model.Variable, error) {
	if !haystack.Type.IsString() || !needle.Type.IsString() {
		return nil, em.errAtf(cerr.E022, "%s, %s", haystack.Type, needle.Type)
	}
	return em.stringRoutine("str_instr", model.Word, haystack, needle)
}

func (em *Emitter) Len(s *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E023, "%s", s.Type)
	}
	return em.stringRoutine("str_len", model.Byte, s)
}

func (em *Emitter) Chr(code *model.Variable) (*model.Variable, error) {
	if !code.Type.Numeric() {
		return nil, em.errAtf(cerr.E024, "%s", code.Type)
	}
	return em.stringRoutine("str_chr", model.DynamicStr, code)
}

func (em *Emitter) Asc(s *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E025, "%s", s.Type)
	}
	return em.stringRoutine("str_asc", model.Byte, s)
}

func (em *Emitter) Str(v *model.Variable) (*model.Variable, error) {
	if !v.Type.Numeric() {
		return nil, em.errAtf(cerr.E026, "%s", v.Type)
	}
	return em.stringRoutine("str_str", model.DynamicStr, v)
}

func (em *Emitter) Val(s *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E027, "%s", s.Type)
	}
	return em.stringRoutine("str_val", model.Word, s)
}

func (em *Emitter) Upper(s *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E028, "%s", s.Type)
	}
	return em.stringRoutine("str_upper", model.DynamicStr, s)
}

func (em *Emitter) Lower(s *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E028, "%s", s.Type)
	}
	return em.stringRoutine("str_lower", model.DynamicStr, s)
}

func (em *Emitter) Flip(s *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() {
		return nil, em.errAtf(cerr.E029, "%s", s.Type)
	}
	return em.stringRoutine("str_flip", model.DynamicStr, s)
}

func (em *Emitter) Space(n *model.Variable) (*model.Variable, error) {
	if !n.Type.Numeric() {
		return nil, em.errAtf(cerr.E030, "%s", n.Type)
	}
	return em.stringRoutine("str_space", model.DynamicStr, n)
}

// StringRep implements STRING$(s, n): s repeated n times.
func (em *Emitter) StringRep(s, n *model.Variable) (*model.Variable, error) {
	if !s.Type.IsString() || !n.Type.Numeric() {
		return nil, em.errAtf(cerr.E030, "%s, %s", s.Type, n.Type)
	}
	return em.stringRoutine("str_rep", model.DynamicStr, s, n)
}

// Random implements the random_definition production (spec.md §4.2): RANDOM
// <type> yields a value of the named type drawn from the shared runtime
// generator in the "random" deployable. WIDTH/HEIGHT are the two bounded
// forms -- a coordinate confined to the current screen mode's extent rather
// than the type's full range -- still stored in a Position temporary.
// Grounded on stringRoutine's deployable-then-SysCall shape, generalized
// from a per-call dstring lookup to the shared random generator.
func (em *Emitter) Random(kind string) (*model.Variable, error) {
	var t model.VarType
	switch kind {
	case "BYTE":
		t = model.Byte
	case "WORD":
		t = model.Word
	case "DWORD":
		t = model.DWord
	case "POSITION", "WIDTH", "HEIGHT":
		t = model.Position
	case "COLOR":
		t = model.Color
	default:
		return nil, em.errAtf(cerr.E003, "RANDOM %s", kind)
	}
	if err := em.Deploy.Use(em.Sink, deploy.Random); err != nil {
		return nil, err
	}
	res := em.Env.NextTemp(t)
	em.Sink.Line(em.Backend.SysCall("rnd_next"))
	if t.Width() == 8 {
		em.Sink.Line(em.Backend.Move8(operand(res), "rand_seed"))
	} else {
		em.Sink.Line(em.Backend.Move16(operand(res), "rand_seed"))
	}
	if kind == "WIDTH" || kind == "HEIGHT" {
		em.Sink.Comment(fmt.Sprintf("RANDOM %s bounded to the current screen mode's %s", kind, strings.ToLower(kind)))
	}
	return res, nil
}

// Peek implements PEEK(addr): a direct backend-verb read of one byte at addr,
// mirroring Joy/Inkey/TimerRead's "(result operand, instruction text)" verb
// shape rather than the deployable-routine shape stringRoutine wraps.
func (em *Emitter) Peek(addr *model.Variable) (*model.Variable, error) {
	if !addr.Type.Numeric() {
		return nil, em.errAtf(cerr.E003, "PEEK, %s", addr.Type)
	}
	result, instr := em.Backend.Peek(operand(addr))
	em.Sink.Line(instr)
	res := em.Env.NextTemp(model.Byte)
	em.Sink.Line(em.Backend.Move8(operand(res), result))
	return res, nil
}
