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

// Package c64 implements the target.Backend for the Commodore 64: a MOS 6502
// CPU driven by a VIC-II chipset. Grounded on goat's parser_amd64.go (text
// built via fmt.Sprintf into a strings.Builder, one verb per concrete
// operation) and on the 6502 instruction-table references in the example
// pack (beevik-go6502, bdwalton-gintendo).
package c64

import (
	"fmt"
	"strings"

	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/target"
)

func init() {
	target.Register(&Backend{})
}

var screenModes = []target.ScreenMode{
	{ID: "standard_text", Width: 40, Height: 25, Colors: 16, Score: 10, Description: "standard character mode"},
	{ID: "multicolor_bitmap", Bitmap: true, Width: 160, Height: 200, Colors: 16, Score: 20, Description: "multicolor bitmap"},
	{ID: "hires_bitmap", Bitmap: true, Width: 320, Height: 200, Colors: 2, Score: 15, Description: "hi-res bitmap"},
}

var deployables = map[string]string{
	deploy.Vic2Vars:    "; vic2vars -- reserved VIC-II zero page pointers\n",
	deploy.Vic2Startup: "\tlda #$00\n\tsta $d020\n\tsta $d021\n",
	deploy.DPrint:      "dprint_buf: .res 40, 0\n",
	deploy.Random:      "rand_seed: .res 2\n",
}

// Backend is the c64 target.Backend implementation.
type Backend struct{}

func (Backend) Name() string        { return "c64" }
func (Backend) CPU() target.CPUKind { return target.MOS6502 }

func (Backend) Move8(dst, src target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsta %s", src, dst)
}

func (Backend) Move16(dst, src target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsta %s\n\tlda %s+1\n\tsta %s+1", src, dst, src, dst)
}

func (Backend) Move32(dst, src target.Operand) string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, "lda %s+%d\n\tsta %s+%d\n\t", src, i, dst, i)
	}
	return strings.TrimSuffix(b.String(), "\n\t")
}

func (Backend) Add(dst, a, b target.Operand) string {
	return fmt.Sprintf("clc\n\tlda %s\n\tadc %s\n\tsta %s", a, b, dst)
}

func (Backend) Sub(dst, a, b target.Operand) string {
	return fmt.Sprintf("sec\n\tlda %s\n\tsbc %s\n\tsta %s", a, b, dst)
}

func (Backend) Mul(dst, a, b target.Operand) string {
	return fmt.Sprintf("jsr mul8x8\n\t; %s = %s * %s\n\tsta %s", dst, a, b, dst)
}

func (Backend) Div(dst, a, b target.Operand) string {
	return fmt.Sprintf("jsr div8x8\n\t; %s = %s / %s\n\tsta %s", dst, a, b, dst)
}

func (Backend) And(dst, a, b target.Operand) string {
	return fmt.Sprintf("lda %s\n\tand %s\n\tsta %s", a, b, dst)
}

func (Backend) Or(dst, a, b target.Operand) string {
	return fmt.Sprintf("lda %s\n\tora %s\n\tsta %s", a, b, dst)
}

// CompareBranch's every operator branches to label precisely when that
// operator is false of a and b (LessThan/GreaterThan's doc comments name the
// convention; CmpLT -> bcs realizes it directly since "cmp" leaves the carry
// set exactly when a>=b). The 6502 only exposes carry and zero, one bit
// each, so CmpGT and CmpLE -- whose false conditions are a two-flag
// OR (a<b OR a==b) and a two-flag AND (a>=b AND a!=b) respectively -- need
// more than bcc/bcs alone to test correctly; CmpEQ/CmpNE/CmpLT/CmpGE stay
// single branches.
func (Backend) CompareBranch(a, b target.Operand, op target.CompareOp, label string) string {
	prefix := fmt.Sprintf("lda %s\n\tcmp %s\n\t", a, b)
	switch op {
	case target.CmpGT:
		// false of a>b is a<b OR a==b: either branch alone reaches label.
		return fmt.Sprintf("%sbcc %s\n\tbeq %s", prefix, label, label)
	case target.CmpLE:
		// false of a<=b is a>b: carry set (a>=b) AND zero clear (a!=b).
		// beq skips the real branch on equality; only a genuine carry-set,
		// not-equal case reaches bcs.
		skip := label + "_skip"
		return fmt.Sprintf("%sbeq %s\n\tbcs %s\n%s:", prefix, skip, label, skip)
	}
	branch := map[target.CompareOp]string{
		target.CmpEQ: "bne",
		target.CmpNE: "beq",
		target.CmpLT: "bcs",
		target.CmpGE: "bcc",
	}[op]
	return fmt.Sprintf("%s%s %s", prefix, branch, label)
}

func (Backend) Jump(label string) string { return fmt.Sprintf("jmp %s", label) }
func (Backend) Call(label string) string { return fmt.Sprintf("jsr %s", label) }
func (Backend) Return() string           { return "rts" }
func (Backend) PopReturn() string        { return "pla\n\tpla" }
func (Backend) Label(name string) string { return fmt.Sprintf("%s:", name) }

func (Backend) AddressOf(dst target.Operand, name string) string {
	return fmt.Sprintf("lda #<%s\n\tsta %s\n\tlda #>%s\n\tsta %s+1", name, dst, name, dst)
}

func (Backend) IndirectMoveOffset(dst, base target.Operand, offset int) string {
	return fmt.Sprintf("ldy #%d\n\tlda (%s),y\n\tsta %s", offset, base, dst)
}

func (Backend) BranchByteEqualZero(a target.Operand, label string) string {
	return fmt.Sprintf("lda %s\n\tbeq %s", a, label)
}

func (Backend) BitmapEnable(mode target.ScreenMode, at *target.Operand) string {
	addr := "$e000"
	if at != nil {
		addr = string(*at)
	}
	return fmt.Sprintf("lda #$3b\n\tsta $d011\n\t; bitmap %s at %s", mode.ID, addr)
}

func (Backend) BitmapDisable() string { return "lda #$1b\n\tsta $d011" }

func (Backend) BitmapClear(with *target.Operand) string {
	val := target.Operand("#$00")
	if with != nil {
		val = *with
	}
	return fmt.Sprintf("jsr bitmap_clear\n\t; fill %s", val)
}

func (Backend) TextEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("lda #$1b\n\tsta $d011\n\t; text %s", mode.ID)
}

func (Backend) ColormapEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("; colormap %s enabled", mode.ID)
}

func (Backend) TilesEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("; tiles %s enabled", mode.ID)
}

func (Backend) ResolveScreenMode(request target.ScreenRequest) (target.ScreenMode, error) {
	var best *target.ScreenMode
	for i := range screenModes {
		m := screenModes[i]
		if m.Bitmap != request.Bitmap {
			continue
		}
		if m.Width < request.MinWidth || m.Height < request.MinHeight || m.Colors < request.MinColors {
			continue
		}
		if best == nil || m.Score > best.Score {
			best = &m
		}
	}
	if best == nil {
		return target.ScreenMode{}, fmt.Errorf("c64: no screen mode satisfies %+v", request)
	}
	return *best, nil
}

func (Backend) SpriteLoad(index int, source target.Operand) string {
	return fmt.Sprintf("lda #<%s\n\tsta $07f8+%d", source, index)
}

func (Backend) SpritePosition(index int, x, y target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsta $d000+%d\n\tlda %s\n\tsta $d001+%d", x, index*2, y, index*2)
}

func (Backend) SpriteColor(index int, color target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsta $d027+%d", color, index)
}

func (Backend) SpriteEnable(index int, enable bool) string {
	op := "ora"
	if !enable {
		op = "and"
	}
	return fmt.Sprintf("lda $d015\n\t%s #%d\n\tsta $d015", op, 1<<uint(index))
}

func (Backend) SpriteMulticolor(index int, on bool) string {
	return fmt.Sprintf("; sprite %d multicolor=%v", index, on)
}

func (Backend) SpriteExpand(index int, horizontal, vertical bool) string {
	return fmt.Sprintf("; sprite %d expand h=%v v=%v", index, horizontal, vertical)
}

func (Backend) ColorBorder(c target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsta $d020", c)
}

func (Backend) ColorBackground(i int, c target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsta $d021+%d", c, i)
}

func (Backend) ColorSprite(i int, c target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsta $d027+%d", c, i)
}

func (Backend) RasterAt(scanline target.Operand, handlerLabel string) string {
	return fmt.Sprintf("lda %s\n\tsta $d012\n\tlda #<%s\n\tsta $fffe\n\tlda #>%s\n\tsta $ffff",
		scanline, handlerLabel, handlerLabel)
}

func (Backend) WaitTicks(n target.Operand) string {
	return fmt.Sprintf("jsr wait_ticks\n\t; n=%s", n)
}

func (Backend) WaitCycles(n target.Operand) string {
	return fmt.Sprintf("jsr wait_cycles\n\t; n=%s", n)
}

func (Backend) WaitMs(n target.Operand) string {
	return fmt.Sprintf("jsr wait_ms\n\t; n=%s", n)
}

func (Backend) PointAt(x, y target.Operand) string {
	return fmt.Sprintf("jsr plot\n\t; x=%s y=%s", x, y)
}

func (Backend) PointGet() (target.Operand, target.Operand, string) {
	return "point_x", "point_y", "jsr point_get"
}

func (Backend) Peek(addr target.Operand) (target.Operand, string) {
	return "peek_result", fmt.Sprintf("ldy #0\n\tlda (%s),y\n\tsta peek_result", addr)
}

func (Backend) Joy(port int) (target.Operand, string) {
	return "joy_result", fmt.Sprintf("lda $dc00+%d\n\tsta joy_result", port)
}

func (Backend) ScancodeRead() (target.Operand, string) {
	return "scancode_result", "jsr scancode"
}

func (Backend) Inkey() (target.Operand, string) {
	return "inkey_result", "jsr inkey"
}

func (Backend) KeyShift() (target.Operand, string) {
	return "keyshift_result", "lda $028d\n\tsta keyshift_result"
}

func (Backend) KeyState(key target.Operand) (target.Operand, string) {
	return "keystate_result", fmt.Sprintf("jsr keystate\n\t; key=%s", key)
}

func (Backend) PenXY() (target.Operand, target.Operand, string) {
	return "xpen_result", "ypen_result", "lda $d013\n\tsta xpen_result\n\tlda $d014\n\tsta ypen_result"
}

func (Backend) SysCall(addr target.Operand) string {
	return fmt.Sprintf("jsr %s", addr)
}

func (Backend) TimerRead() (target.Operand, string) {
	return "timer_result", "jsr timer"
}

func (Backend) Deployable(name string) (string, bool) {
	body, ok := deployables[name]
	return body, ok
}
