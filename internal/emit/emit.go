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

// Package emit implements ugbc's expression and statement emitters (spec.md
// §2 components 2 and 3, §4.3, §4.4): the side-effecting reductions the
// parser's action table calls into. Every method takes the already-resolved
// operands and env explicitly -- no AST, no ambient state (spec.md §9).
package emit

import (
	"fmt"

	"github.com/ugbasic/ugbc/internal/cerr"
	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/sink"
	"github.com/ugbasic/ugbc/internal/target"
)

// Emitter bundles the four collaborators every action needs: the symbol/bank
// model, the output sink, the selected target backend, and the deployable
// snippet manager.
type Emitter struct {
	Env     *model.Environment
	Sink    *sink.Sink
	Backend target.Backend
	Deploy  *deploy.Manager
}

// New returns an Emitter wiring together env, s, backend and dm.
func New(env *model.Environment, s *sink.Sink, backend target.Backend, dm *deploy.Manager) *Emitter {
	return &Emitter{Env: env, Sink: s, Backend: backend, Deploy: dm}
}

// errAt builds a CompileError at the emitter's current source line.
func (em *Emitter) errAt(code cerr.Code) error {
	return cerr.New(em.Env.SourcePath, em.Env.Line, code)
}

// errAtf is errAt with extra detail text.
func (em *Emitter) errAtf(code cerr.Code, format string, args ...any) error {
	return cerr.Newf(em.Env.SourcePath, em.Env.Line, code, format, args...)
}

// warn reports a warning-severity CompileError. Non-fatal: ugbc keeps
// compiling. When Env.Warnings is set the message is written into the
// assembly output as a ";" comment line; otherwise it is dropped.
func (em *Emitter) warn(code cerr.Code) {
	if em.Env.Warnings {
		em.Sink.Comment(cerr.New(em.Env.SourcePath, em.Env.Line, code).Error())
	}
}

// newLabel derives a fresh, deterministic label from the environment's
// shared id counter (the same counter model.Environment.NextTemp uses),
// prefixed for readability in the emitted listing.
func (em *Emitter) newLabel(prefix string) string {
	id := em.Env.NextID
	em.Env.NextID++
	return fmt.Sprintf("%s_%d", prefix, id)
}

// NewLabel exposes newLabel to internal/parser, which needs a fresh label of
// its own for constructs newLabel's callers don't already cover -- EXIT IF's
// conditional skip-the-jump target.
func (em *Emitter) NewLabel(prefix string) string {
	return em.newLabel(prefix)
}

// widthType returns the canonical VarType for a promoted bit width, signed
// or unsigned, matching spec.md §4.3's promotion table.
func widthType(width int, signed bool) model.VarType {
	switch width {
	case 8:
		if signed {
			return model.SByte
		}
		return model.Byte
	case 16:
		if signed {
			return model.SWord
		}
		return model.Word
	case 32:
		if signed {
			return model.SDWord
		}
		return model.DWord
	default:
		return model.Byte
	}
}

// resolveArith returns the promoted result type for a binary arithmetic
// primitive over a and b, or code if either operand is non-numeric.
func (em *Emitter) resolveArith(code cerr.Code, a, b *model.Variable) (model.VarType, error) {
	if !a.Type.Numeric() || !b.Type.Numeric() {
		return 0, em.errAtf(code, "%s, %s", a.Type, b.Type)
	}
	width := a.Type.Width()
	if b.Type.Width() > width {
		width = b.Type.Width()
	}
	return widthType(width, a.Type.Signed() || b.Type.Signed()), nil
}

func operand(v *model.Variable) target.Operand {
	return target.Operand(v.RealName)
}
