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

// Package deploy implements the deployable snippet manager (spec.md §2
// component 4, §4.5, §4.6, §9): a named pre-authored assembly snippet is
// emitted at most once per program, guarded by a jump-over + landing label.
package deploy

import (
	"fmt"

	"github.com/ugbasic/ugbc/internal/sink"
)

// Source reads a named deployable's assembly text verbatim from the
// include path. The core never parses snippet contents (spec.md §6).
type Source func(name string) (string, error)

// Manager tracks, per deployable name, whether it has already been emitted.
type Manager struct {
	resident map[string]bool
	source   Source
}

// New returns a Manager that reads snippet bodies via source.
func New(source Source) *Manager {
	return &Manager{resident: make(map[string]bool), source: source}
}

// Resident reports whether name has already been emitted.
func (m *Manager) Resident(name string) bool {
	return m.resident[name]
}

// Use emits name's guarded block into s the first time it is requested; all
// later requests for the same name are no-ops (spec.md §8: "calling the same
// deployable three times produces exactly one inline copy").
func (m *Manager) Use(s *sink.Sink, name string) error {
	if m.resident[name] {
		return nil
	}
	body, err := m.source(name)
	if err != nil {
		return fmt.Errorf("deployable %q: %w", name, err)
	}
	after := name + "_after"
	s.Line(fmt.Sprintf("jmp %s", after))
	s.Raw(body)
	s.Label(after)
	m.resident[name] = true
	return nil
}

// Known deployable names from spec.md §4.5, plus this repo's PRINT extension
// (SPEC_FULL.md §6.2).
const (
	Scancode    = "scancode"
	DLoad       = "dload"
	DSave       = "dsave"
	Timer       = "timer"
	DString     = "dstring"
	Plot        = "plot"
	Vic2Vars    = "vic2vars"
	Vic2Startup = "vic2startup"
	VScrollText = "vscroll_text"
	DPrint      = "dprint"
	Random      = "random"
)
