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

// Package coco2 implements the target.Backend for the TRS-80 Color Computer
// 2 class of machine: a Motorola 6809 CPU driven by a 6847 VDG chipset.
// Grounded on goat's parser_arm64.go (a simpler, single-accumulator-flavored
// register model than amd64's multi-register one) generalized to 6809's
// accumulator/index-register set.
package coco2

import (
	"fmt"

	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/target"
)

func init() {
	target.Register(&Backend{})
}

var screenModes = []target.ScreenMode{
	{ID: "text_32x16", Width: 32, Height: 16, Colors: 2, Score: 10, Description: "32x16 text"},
	{ID: "cg1", Bitmap: true, Width: 128, Height: 96, Colors: 4, Score: 15, Description: "CG1 bitmap"},
	{ID: "cg3", Bitmap: true, Width: 128, Height: 192, Colors: 2, Score: 18, Description: "CG3 bitmap"},
}

var deployables = map[string]string{
	deploy.Timer:   "; timer -- reads the 6847 VSYNC-driven jiffy counter\n",
	deploy.Plot:    "plot_tmp: rmb 2\n",
	deploy.DPrint:  "dprint_buf: rmb 32\n",
	deploy.Random: "rand_seed: rmb 2\n",
}

// Backend is the coco2 target.Backend implementation.
type Backend struct{}

func (Backend) Name() string        { return "coco2" }
func (Backend) CPU() target.CPUKind { return target.Motorola6809 }

func (Backend) Move8(dst, src target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsta %s", src, dst)
}

func (Backend) Move16(dst, src target.Operand) string {
	return fmt.Sprintf("ldd %s\n\tstd %s", src, dst)
}

func (Backend) Move32(dst, src target.Operand) string {
	return fmt.Sprintf("ldd %s\n\tstd %s\n\tldd %s+2\n\tstd %s+2", src, dst, src, dst)
}

func (Backend) Add(dst, a, b target.Operand) string {
	return fmt.Sprintf("lda %s\n\tadda %s\n\tsta %s", a, b, dst)
}

func (Backend) Sub(dst, a, b target.Operand) string {
	return fmt.Sprintf("lda %s\n\tsuba %s\n\tsta %s", a, b, dst)
}

func (Backend) Mul(dst, a, b target.Operand) string {
	return fmt.Sprintf("lda %s\n\tldb %s\n\tmul\n\tstd %s", a, b, dst)
}

func (Backend) Div(dst, a, b target.Operand) string {
	return fmt.Sprintf("jsr div8x8\n\t; %s = %s / %s\n\tsta %s", dst, a, b, dst)
}

func (Backend) And(dst, a, b target.Operand) string {
	return fmt.Sprintf("lda %s\n\tanda %s\n\tsta %s", a, b, dst)
}

func (Backend) Or(dst, a, b target.Operand) string {
	return fmt.Sprintf("lda %s\n\tora %s\n\tsta %s", a, b, dst)
}

func (Backend) CompareBranch(a, b target.Operand, op target.CompareOp, label string) string {
	branch := map[target.CompareOp]string{
		target.CmpEQ: "bne",
		target.CmpNE: "beq",
		target.CmpLT: "bhs",
		target.CmpLE: "bhi",
		target.CmpGT: "bls",
		target.CmpGE: "blo",
	}[op]
	return fmt.Sprintf("lda %s\n\tcmpa %s\n\t%s %s", a, b, branch, label)
}

func (Backend) Jump(label string) string { return fmt.Sprintf("jmp %s", label) }
func (Backend) Call(label string) string { return fmt.Sprintf("jsr %s", label) }
func (Backend) Return() string           { return "rts" }
func (Backend) PopReturn() string        { return "leas 2,s" }
func (Backend) Label(name string) string { return fmt.Sprintf("%s:", name) }

func (Backend) AddressOf(dst target.Operand, name string) string {
	return fmt.Sprintf("ldx #%s\n\tstx %s", name, dst)
}

func (Backend) IndirectMoveOffset(dst, base target.Operand, offset int) string {
	return fmt.Sprintf("ldx %s\n\tlda %d,x\n\tsta %s", base, offset, dst)
}

func (Backend) BranchByteEqualZero(a target.Operand, label string) string {
	return fmt.Sprintf("lda %s\n\tbeq %s", a, label)
}

func (Backend) BitmapEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("; bitmap %s enabled via SAM/PIA", mode.ID)
}

func (Backend) BitmapDisable() string { return "; bitmap disabled, back to text" }

func (Backend) BitmapClear(with *target.Operand) string {
	val := target.Operand("#0")
	if with != nil {
		val = *with
	}
	return fmt.Sprintf("jsr bitmap_clear\n\t; fill %s", val)
}

func (Backend) TextEnable(mode target.ScreenMode, at *target.Operand) string {
	return fmt.Sprintf("; text %s enabled", mode.ID)
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
		return target.ScreenMode{}, fmt.Errorf("coco2: no screen mode satisfies %+v", request)
	}
	return *best, nil
}

func (Backend) SpriteLoad(index int, source target.Operand) string {
	return fmt.Sprintf("; coco2 has no hardware sprites; software sprite %d <- %s", index, source)
}

func (Backend) SpritePosition(index int, x, y target.Operand) string {
	return fmt.Sprintf("; software sprite %d position x=%s y=%s", index, x, y)
}

func (Backend) SpriteColor(index int, color target.Operand) string {
	return fmt.Sprintf("; software sprite %d color=%s", index, color)
}

func (Backend) SpriteEnable(index int, enable bool) string {
	return fmt.Sprintf("; software sprite %d enable=%v", index, enable)
}

func (Backend) SpriteMulticolor(index int, on bool) string {
	return fmt.Sprintf("; software sprite %d multicolor=%v", index, on)
}

func (Backend) SpriteExpand(index int, horizontal, vertical bool) string {
	return fmt.Sprintf("; software sprite %d expand h=%v v=%v", index, horizontal, vertical)
}

func (Backend) ColorBorder(c target.Operand) string {
	return fmt.Sprintf("lda %s\n\tjsr set_border", c)
}

func (Backend) ColorBackground(i int, c target.Operand) string {
	return fmt.Sprintf("lda %s\n\tjsr set_background+%d", c, i)
}

func (Backend) ColorSprite(i int, c target.Operand) string {
	return fmt.Sprintf("; software sprite %d color=%s", i, c)
}

func (Backend) RasterAt(scanline target.Operand, handlerLabel string) string {
	return fmt.Sprintf("; coco2 has no raster interrupt; approximate via VSYNC hook to %s (scanline=%s)",
		handlerLabel, scanline)
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
	return "peek_result", fmt.Sprintf("ldx %s\n\tlda ,x\n\tsta peek_result", addr)
}

func (Backend) Joy(port int) (target.Operand, string) {
	return "joy_result", fmt.Sprintf("jsr read_joystick\n\t; port=%d\n\tsta joy_result", port)
}

func (Backend) ScancodeRead() (target.Operand, string) {
	return "scancode_result", "jsr scancode"
}

func (Backend) Inkey() (target.Operand, string) {
	return "inkey_result", "jsr inkey"
}

func (Backend) KeyShift() (target.Operand, string) {
	return "keyshift_result", "jsr keyshift\n\tsta keyshift_result"
}

func (Backend) KeyState(key target.Operand) (target.Operand, string) {
	return "keystate_result", fmt.Sprintf("jsr keystate\n\t; key=%s", key)
}

func (Backend) PenXY() (target.Operand, target.Operand, string) {
	return "xpen_result", "ypen_result", "jsr read_lightpen"
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
