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

// Package msx implements the target.Backend for MSX-class machines: a Z80
// CPU driven by a TMS9918-family VDP. Grounded on the Z80 platform-target
// table in the example pack (oisee-minz/minzc's z80asm.TargetConfig) for
// register/mnemonic naming and on goat's arch.go dispatch-table discipline.
package msx

import (
	"fmt"

	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/target"
)

func init() {
	target.Register(&Backend{})
}

var screenModes = []target.ScreenMode{
	{ID: "screen0", Width: 40, Height: 24, Colors: 2, Score: 5, Description: "text mode 1"},
	{ID: "screen1", Width: 32, Height: 24, Colors: 16, Score: 10, Description: "graphic mode 1"},
	{ID: "screen2", Bitmap: true, Width: 256, Height: 192, Colors: 16, Score: 20, Description: "graphic mode 2"},
}

var deployables = map[string]string{
	deploy.DLoad:  "; dload -- reads a data block via the BIOS disk vector\n",
	deploy.DSave:  "; dsave -- writes a data block via the BIOS disk vector\n",
	deploy.DPrint: "dprint_buf: defs 40\n",
	deploy.Random: "rand_seed: defw 0\n",
}

// Backend is the msx target.Backend implementation.
type Backend struct{}

func (Backend) Name() string        { return "msx" }
func (Backend) CPU() target.CPUKind { return target.Z80 }

func (Backend) Move8(dst, src target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld (%s),a", src, dst)
}

func (Backend) Move16(dst, src target.Operand) string {
	return fmt.Sprintf("ld hl,(%s)\n\tld (%s),hl", src, dst)
}

func (Backend) Move32(dst, src target.Operand) string {
	return fmt.Sprintf("ld hl,(%s)\n\tld (%s),hl\n\tld hl,(%s+2)\n\tld (%s+2),hl", src, dst, src, dst)
}

func (Backend) Add(dst, a, b target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld hl,%s\n\tadd a,(hl)\n\tld (%s),a", a, b, dst)
}

func (Backend) Sub(dst, a, b target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld hl,%s\n\tsub (hl)\n\tld (%s),a", a, b, dst)
}

func (Backend) Mul(dst, a, b target.Operand) string {
	return fmt.Sprintf("call mul8x8\n\t; %s = %s * %s\n\tld (%s),a", dst, a, b, dst)
}

func (Backend) Div(dst, a, b target.Operand) string {
	return fmt.Sprintf("call div8x8\n\t; %s = %s / %s\n\tld (%s),a", dst, a, b, dst)
}

func (Backend) And(dst, a, b target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld hl,%s\n\tand (hl)\n\tld (%s),a", a, b, dst)
}

func (Backend) Or(dst, a, b target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld hl,%s\n\tor (hl)\n\tld (%s),a", a, b, dst)
}

// CompareBranch's every operator branches to label precisely when that
// operator is false of a and b (see c64's Backend.CompareBranch for the
// convention in full). Z80's CP sets carry on a borrow -- the opposite
// polarity from 6502's CMP -- so "carry set" here means a<b and "jp nc,"
// means a>=b; CmpLT -> "jp nc," realizes "branches when a is not less than
// b" directly. CmpGT and CmpLE still need more than one jump, same as on
// c64: CmpGT's false condition is the OR a<b OR a==b, CmpLE's is the AND
// a>=b AND a!=b.
func (Backend) CompareBranch(a, b target.Operand, op target.CompareOp, label string) string {
	prefix := fmt.Sprintf("ld a,(%s)\n\tld hl,%s\n\tcp (hl)\n\t", a, b)
	switch op {
	case target.CmpGT:
		return fmt.Sprintf("%sjp c,%s\n\tjp z,%s", prefix, label, label)
	case target.CmpLE:
		skip := label + "_skip"
		return fmt.Sprintf("%sjp z,%s\n\tjp nc,%s\n%s:", prefix, skip, label, skip)
	}
	branch := map[target.CompareOp]string{
		target.CmpEQ: "jp nz,",
		target.CmpNE: "jp z,",
		target.CmpLT: "jp nc,",
		target.CmpGE: "jp c,",
	}[op]
	return fmt.Sprintf("%s%s%s", prefix, branch, label)
}

func (Backend) Jump(label string) string { return fmt.Sprintf("jp %s", label) }
func (Backend) Call(label string) string { return fmt.Sprintf("call %s", label) }
func (Backend) Return() string           { return "ret" }
func (Backend) PopReturn() string        { return "pop hl" }
func (Backend) Label(name string) string { return fmt.Sprintf("%s:", name) }

func (Backend) AddressOf(dst target.Operand, name string) string {
	return fmt.Sprintf("ld hl,%s\n\tld (%s),hl", name, dst)
}

func (Backend) IndirectMoveOffset(dst, base target.Operand, offset int) string {
	return fmt.Sprintf("ld hl,(%s)\n\tld de,%d\n\tadd hl,de\n\tld a,(hl)\n\tld (%s),a", base, offset, dst)
}

func (Backend) BranchByteEqualZero(a target.Operand, label string) string {
	return fmt.Sprintf("ld a,(%s)\n\tor a\n\tjp z,%s", a, label)
}

func (Backend) BitmapEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("call vdp_mode2\n\t; bitmap %s", mode.ID)
}

func (Backend) BitmapDisable() string { return "call vdp_mode0" }

func (Backend) BitmapClear(with *target.Operand) string {
	val := target.Operand("0")
	if with != nil {
		val = *with
	}
	return fmt.Sprintf("call vdp_clear\n\t; fill %s", val)
}

func (Backend) TextEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("call vdp_mode0\n\t; text %s", mode.ID)
}

func (Backend) ColormapEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("; colormap %s enabled", mode.ID)
}

func (Backend) TilesEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("call vdp_mode1\n\t; tiles %s", mode.ID)
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
		return target.ScreenMode{}, fmt.Errorf("msx: no screen mode satisfies %+v", request)
	}
	return *best, nil
}

func (Backend) SpriteLoad(index int, source target.Operand) string {
	return fmt.Sprintf("ld hl,%s\n\tld a,%d\n\tcall vdp_sprite_pattern", source, index)
}

func (Backend) SpritePosition(index int, x, y target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld b,(%s)\n\tld c,%d\n\tcall vdp_sprite_pos", x, y, index)
}

func (Backend) SpriteColor(index int, color target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld c,%d\n\tcall vdp_sprite_color", color, index)
}

func (Backend) SpriteEnable(index int, enable bool) string {
	return fmt.Sprintf("; sprite %d enable=%v via VDP sprite attribute table", index, enable)
}

func (Backend) SpriteMulticolor(index int, on bool) string {
	return fmt.Sprintf("; sprite %d multicolor=%v (16x16/8x8 + zoom flags)", index, on)
}

func (Backend) SpriteExpand(index int, horizontal, vertical bool) string {
	return fmt.Sprintf("; sprite %d expand h=%v v=%v (VDP zoom bit)", index, horizontal, vertical)
}

func (Backend) ColorBorder(c target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tcall vdp_set_border", c)
}

func (Backend) ColorBackground(i int, c target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld b,%d\n\tcall vdp_set_background", c, i)
}

func (Backend) ColorSprite(i int, c target.Operand) string {
	return fmt.Sprintf("ld a,(%s)\n\tld c,%d\n\tcall vdp_sprite_color", c, i)
}

func (Backend) RasterAt(scanline target.Operand, handlerLabel string) string {
	return fmt.Sprintf("ld a,(%s)\n\tcall vdp_set_line_interrupt\n\tld hl,%s\n\tld (rst38_vector),hl",
		scanline, handlerLabel)
}

func (Backend) WaitTicks(n target.Operand) string {
	return fmt.Sprintf("call wait_ticks\n\t; n=%s", n)
}

func (Backend) WaitCycles(n target.Operand) string {
	return fmt.Sprintf("call wait_cycles\n\t; n=%s", n)
}

func (Backend) WaitMs(n target.Operand) string {
	return fmt.Sprintf("call wait_ms\n\t; n=%s", n)
}

func (Backend) PointAt(x, y target.Operand) string {
	return fmt.Sprintf("call plot\n\t; x=%s y=%s", x, y)
}

func (Backend) PointGet() (target.Operand, target.Operand, string) {
	return "point_x", "point_y", "call point_get"
}

func (Backend) Peek(addr target.Operand) (target.Operand, string) {
	return "peek_result", fmt.Sprintf("ld hl,(%s)\n\tld a,(hl)\n\tld (peek_result),a", addr)
}

func (Backend) Joy(port int) (target.Operand, string) {
	return "joy_result", fmt.Sprintf("ld a,%d\n\tcall gtstck\n\tld (joy_result),a", port)
}

func (Backend) ScancodeRead() (target.Operand, string) {
	return "scancode_result", "call scancode"
}

func (Backend) Inkey() (target.Operand, string) {
	return "inkey_result", "call inkey"
}

func (Backend) KeyShift() (target.Operand, string) {
	return "keyshift_result", "call gtstck_shift\n\tld (keyshift_result),a"
}

func (Backend) KeyState(key target.Operand) (target.Operand, string) {
	return "keystate_result", fmt.Sprintf("ld a,(%s)\n\tcall keystate", key)
}

func (Backend) PenXY() (target.Operand, target.Operand, string) {
	return "xpen_result", "ypen_result", "call read_lightpen"
}

func (Backend) SysCall(addr target.Operand) string {
	return fmt.Sprintf("call %s", addr)
}

func (Backend) TimerRead() (target.Operand, string) {
	return "timer_result", "call timer"
}

func (Backend) Deployable(name string) (string, bool) {
	body, ok := deployables[name]
	return body, ok
}
