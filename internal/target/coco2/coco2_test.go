package coco2

import (
	"strings"
	"testing"

	"github.com/ugbasic/ugbc/internal/target"
)

func TestRegistration(t *testing.T) {
	b, err := target.Get("coco2")
	if err != nil {
		t.Fatalf("Get(coco2): %v", err)
	}
	if b.CPU() != target.Motorola6809 {
		t.Errorf("CPU() = %v, want Motorola6809", b.CPU())
	}
}

func TestResolveScreenMode(t *testing.T) {
	cases := []struct {
		name    string
		req     target.ScreenRequest
		wantID  string
		wantErr bool
	}{
		{"text default", target.ScreenRequest{MinColors: 2}, "text_32x16", false},
		{"bitmap 4 colors", target.ScreenRequest{Bitmap: true, MinColors: 4}, "cg1", false},
		{"bitmap tall 2 colors", target.ScreenRequest{Bitmap: true, MinHeight: 192, MinColors: 2}, "cg3", false},
		{"impossible request", target.ScreenRequest{MinColors: 99}, "", true},
	}
	b := Backend{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mode, err := b.ResolveScreenMode(tc.req)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got mode %+v", mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode.ID != tc.wantID {
				t.Errorf("ID = %q, want %q", mode.ID, tc.wantID)
			}
		})
	}
}

func TestMove16(t *testing.T) {
	out := Backend{}.Move16("dst", "src")
	if !strings.Contains(out, "ldd src") || !strings.Contains(out, "std dst") {
		t.Errorf("Move16 = %q, missing expected mnemonics", out)
	}
}

func TestNoHardwareSprites(t *testing.T) {
	out := Backend{}.SpriteLoad(0, "src")
	if !strings.Contains(out, "software sprite") {
		t.Errorf("SpriteLoad = %q, want a note that coco2 lacks hardware sprites", out)
	}
}

func TestRasterApproximatedViaVSYNC(t *testing.T) {
	out := Backend{}.RasterAt("scanline", "handler")
	if !strings.Contains(out, "VSYNC") {
		t.Errorf("RasterAt = %q, want a VSYNC-approximation note", out)
	}
}

func TestDeployable(t *testing.T) {
	if _, ok := (Backend{}).Deployable("timer"); !ok {
		t.Error("expected timer to be a known deployable")
	}
	if _, ok := (Backend{}).Deployable("not-a-real-deployable"); ok {
		t.Error("expected unknown deployable to report ok=false")
	}
}
