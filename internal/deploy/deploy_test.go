package deploy

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ugbasic/ugbc/internal/sink"
)

func fakeSource(calls *int) Source {
	return func(name string) (string, error) {
		*calls++
		return fmt.Sprintf("; body of %s\n", name), nil
	}
}

func TestManager_Idempotence(t *testing.T) {
	var calls int
	m := New(fakeSource(&calls))
	s, err := sink.Create(filepath.Join(t.TempDir(), "out.asm"), false)
	if err != nil {
		t.Fatalf("sink.Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := m.Use(s, Scancode); err != nil {
			t.Fatalf("Use: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("snippet source read %d times, want exactly 1", calls)
	}
	if !m.Resident(Scancode) {
		t.Errorf("expected %s to be resident after first use", Scancode)
	}
}

func TestManager_DistinctNamesEachEmitOnce(t *testing.T) {
	var calls int
	m := New(fakeSource(&calls))
	s, err := sink.Create(filepath.Join(t.TempDir(), "out.asm"), false)
	if err != nil {
		t.Fatalf("sink.Create: %v", err)
	}
	_ = m.Use(s, Scancode)
	_ = m.Use(s, Timer)
	if calls != 2 {
		t.Errorf("expected one read per distinct deployable, got %d", calls)
	}
}

func TestManager_SourceError(t *testing.T) {
	m := New(func(name string) (string, error) {
		return "", fmt.Errorf("missing snippet file")
	})
	s, err := sink.Create(filepath.Join(t.TempDir(), "out.asm"), false)
	if err != nil {
		t.Fatalf("sink.Create: %v", err)
	}
	if err := m.Use(s, Plot); err == nil {
		t.Fatal("expected an error when the snippet source fails")
	}
}
