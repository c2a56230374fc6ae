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

// Package target implements the target abstraction (spec.md §2 component 3,
// §4.5): a dispatch table of primitive operations (CPU verbs + chipset verbs)
// the emitter calls, with each target registering concrete implementations.
// This mirrors goat's arch.go ArchParser interface and RegisterParser/
// GetParser dispatch table, generalized from "one parser per host CPU
// architecture" to "one backend per 8-bit target machine".
package target

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// CPUKind is one of the 8-bit CPU families named in spec.md §1.
type CPUKind int

const (
	MOS6502 CPUKind = iota
	Motorola6809
	Z80
)

func (k CPUKind) String() string {
	switch k {
	case MOS6502:
		return "6502"
	case Motorola6809:
		return "6809"
	case Z80:
		return "Z80"
	default:
		return "unknown"
	}
}

// Operand names an already-emitted value (a temporary or variable real name)
// that a verb reads or writes. Target backends never allocate symbols
// themselves; internal/emit resolves operands before calling a verb.
type Operand string

// CompareOp is one of the comparison operators expressions_raw can produce
// (spec.md §4.2).
type CompareOp int

const (
	CmpEQ CompareOp = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

// ScreenMode is one entry in the static screen mode table (spec.md §3).
type ScreenMode struct {
	ID          string
	Bitmap      bool
	Width       int
	Height      int
	Colors      int
	Description string
	Score       int
}

// ScreenRequest is the set of constraints a BITMAP/TEXT/TILES/COLORMAP
// ENABLE(...) production asks the target to resolve to a concrete mode.
type ScreenRequest struct {
	MinWidth  int
	MinHeight int
	MinColors int
	Bitmap    bool
}

// Backend is the set of primitive CPU and chipset verbs a target module
// implements (spec.md §4.5). Each method returns the assembly text for that
// operation; backends never write to a sink directly.
type Backend interface {
	Name() string
	CPU() CPUKind

	// CPU verbs.
	Move8(dst, src Operand) string
	Move16(dst, src Operand) string
	Move32(dst, src Operand) string
	Add(dst, a, b Operand) string
	Sub(dst, a, b Operand) string
	Mul(dst, a, b Operand) string
	Div(dst, a, b Operand) string
	And(dst, a, b Operand) string
	Or(dst, a, b Operand) string
	CompareBranch(a, b Operand, op CompareOp, label string) string
	Jump(label string) string
	Call(label string) string
	Return() string
	PopReturn() string
	Label(name string) string
	AddressOf(dst Operand, name string) string
	IndirectMoveOffset(dst, base Operand, offset int) string
	BranchByteEqualZero(a Operand, label string) string

	// Chipset verbs.
	BitmapEnable(mode ScreenMode, at *Operand) string
	BitmapDisable() string
	BitmapClear(with *Operand) string
	TextEnable(mode ScreenMode, at *Operand) string
	ColormapEnable(mode ScreenMode, at *Operand) string
	TilesEnable(mode ScreenMode, at *Operand) string
	ResolveScreenMode(request ScreenRequest) (ScreenMode, error)
	SpriteLoad(index int, source Operand) string
	SpritePosition(index int, x, y Operand) string
	SpriteColor(index int, color Operand) string
	SpriteEnable(index int, enable bool) string
	SpriteMulticolor(index int, on bool) string
	SpriteExpand(index int, horizontal, vertical bool) string
	ColorBorder(c Operand) string
	ColorBackground(i int, c Operand) string
	ColorSprite(i int, c Operand) string
	RasterAt(scanline Operand, handlerLabel string) string
	WaitTicks(n Operand) string
	WaitCycles(n Operand) string
	WaitMs(n Operand) string
	PointAt(x, y Operand) string
	PointGet() (Operand, Operand, string)
	Peek(addr Operand) (Operand, string)
	Joy(port int) (Operand, string)
	ScancodeRead() (Operand, string)
	Inkey() (Operand, string)
	KeyShift() (Operand, string)
	KeyState(key Operand) (Operand, string)
	PenXY() (Operand, Operand, string)
	SysCall(addr Operand) string
	TimerRead() (Operand, string)

	// Deployable lookup, by logical name (see internal/deploy).
	Deployable(name string) (string, bool)
}

var backends = map[string]Backend{}

// Register installs b under b.Name(), overwriting any previous registration
// of the same name -- mirroring arch.go's RegisterParser.
func Register(b Backend) {
	backends[b.Name()] = b
}

// Get returns the registered backend for name, mirroring arch.go's
// GetParser.
func Get(name string) (Backend, error) {
	if b, ok := backends[name]; ok {
		return b, nil
	}
	names := lo.Keys(backends)
	sort.Strings(names)
	return nil, fmt.Errorf("unsupported target: %s (available: %v)", name, names)
}

// List returns every registered backend name, sorted -- mirroring arch.go's
// ListArchitectures.
func List() []string {
	names := lo.Keys(backends)
	sort.Strings(names)
	return names
}
