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

// Package sink implements ugbc's output sink (spec.md §2 component 1):
// buffered writers for the assembly file and, optionally, the linker
// configuration file, with indented-line and raw-line emit primitives.
package sink

import (
	"bufio"
	"os"
	"strings"

	"github.com/klauspost/asmfmt"
)

// Sink buffers an output file and exposes line-emit primitives. Output is
// append-only: the parser drives all emission in strict source order
// (spec.md §5).
type Sink struct {
	f        *os.File
	buf      *strings.Builder
	tidy     bool // run the buffer through asmfmt before the final write
	path     string
}

// Create opens path for writing and returns an empty Sink. tidy selects
// whether Close runs the accumulated text through asmfmt.Format before
// writing it out, the way parser_amd64.go's generateGoAssembly does for its
// generated Go assembly; pass tidy=true only for the assembly sink.
func Create(path string, tidy bool) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{f: f, buf: &strings.Builder{}, tidy: tidy, path: path}, nil
}

// Line writes text as a single tab-indented line, matching the emitted
// assembly convention of spec.md §6 ("one instruction or directive per line,
// indented with a single tab").
func (s *Sink) Line(text string) {
	s.buf.WriteString("\t")
	s.buf.WriteString(text)
	s.buf.WriteString("\n")
}

// Raw writes text verbatim; the caller controls indentation. Used for
// deployable snippet bodies, which already carry their own formatting.
func (s *Sink) Raw(text string) {
	s.buf.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		s.buf.WriteString("\n")
	}
}

// Label writes an unindented "name:" line.
func (s *Sink) Label(name string) {
	s.buf.WriteString(name)
	s.buf.WriteString(":\n")
}

// Comment writes a ";"-prefixed comment line (spec.md §6: "Comments use ;").
func (s *Sink) Comment(text string) {
	s.buf.WriteString("\t; ")
	s.buf.WriteString(text)
	s.buf.WriteString("\n")
}

// Close flushes the buffered text to disk, running it through asmfmt first
// when tidy is set. asmfmt is built to format Go plan9 assembly; the 8-bit
// mnemonics this compiler emits are not Go assembly, so a format failure is
// expected and non-fatal here -- we fall back to writing the untouched
// buffer rather than aborting compilation over a cosmetic pass.
func (s *Sink) Close() error {
	defer s.f.Close()
	w := bufio.NewWriter(s.f)
	defer w.Flush()

	out := s.buf.String()
	if s.tidy {
		if formatted, err := asmfmt.Format(strings.NewReader(out)); err == nil {
			out = string(formatted)
		}
	}
	_, err := w.WriteString(out)
	return err
}

// String returns the buffered text so far, for tests.
func (s *Sink) String() string {
	return s.buf.String()
}
