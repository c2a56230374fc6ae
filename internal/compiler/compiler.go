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

// Package compiler implements ugbc's program-level lifecycle (spec.md §2
// component 7, §4.6): open the sinks, seed the default banks and variables,
// drive internal/parser over the tokenized source, and on DONE/EOF emit every
// bank's storage, the string pool, and (if configured) the linker map before
// closing the sinks. This is the direct analogue of main.go's NewTranslateUnit
// + Translate pair: a driver that owns the whole run and returns a plain
// error, never calling os.Exit itself.
package compiler

import (
	"fmt"
	"os"

	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/emit"
	"github.com/ugbasic/ugbc/internal/lexer"
	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/parser"
	"github.com/ugbasic/ugbc/internal/sink"
	"github.com/ugbasic/ugbc/internal/target"
)

// Default fixed load addresses for the three startup banks spec.md §4.6
// requires (VARIABLES, TEMPORARY, STRINGS); CODE always starts at codeOrigin
// unless a linker configuration relocates it. Not grounded in any upstream
// ugBASIC source (original_source/ carries no build files for this), so
// picked as plausible, well-separated round numbers from the 6502/6809/Z80
// common RAM ceiling at $C000 upward; see DESIGN.md's Open Question decision.
const (
	codeOrigin        = 32768
	variablesAddress  = 0xC000
	temporaryAddress  = 0xC800
	stringsAddress    = 0xCC00
	stringsPtrInitial = stringsAddress
)

// Config is the CLI-facing input to a single compile run (spec.md §3's
// Environment "input parameters": source path, output asm path, optional
// linker-config path, warnings flag -- plus the target name, which spec.md
// §4.5 resolves through internal/target.Get rather than the Environment).
type Config struct {
	SourcePath string
	AsmPath    string
	ConfigPath string // "" when no linker config is requested
	Warnings   bool
	Target     string
}

// Run compiles SourcePath to AsmPath (and ConfigPath, if set) under cfg,
// exactly spec.md §4.6's lifecycle. Any *cerr.CompileError with a critical
// code aborts the run and is returned as-is for the caller to print and exit
// non-zero; returned errors are otherwise plain wrapped errors from file I/O
// or parsing.
func Run(cfg Config) error {
	backend, err := target.Get(cfg.Target)
	if err != nil {
		return fmt.Errorf("compiler: %w", err)
	}

	src, err := os.ReadFile(cfg.SourcePath)
	if err != nil {
		return fmt.Errorf("compiler: reading %s: %w", cfg.SourcePath, err)
	}
	toks, err := lexer.Tokenize(string(src))
	if err != nil {
		return fmt.Errorf("compiler: %w", err)
	}

	asm, err := sink.Create(cfg.AsmPath, true)
	if err != nil {
		return fmt.Errorf("compiler: creating %s: %w", cfg.AsmPath, err)
	}

	var cfgSink *sink.Sink
	if cfg.ConfigPath != "" {
		cfgSink, err = sink.Create(cfg.ConfigPath, false)
		if err != nil {
			return fmt.Errorf("compiler: creating %s: %w", cfg.ConfigPath, err)
		}
	}

	env := model.New(cfg.SourcePath, cfg.AsmPath, cfg.ConfigPath, cfg.Warnings)
	seedDefaults(env)

	if cfg.ConfigPath != "" {
		cfgSink.Raw(linkerConfigPreamble)
		asm.Line(`.segment "CODE"`)
	} else {
		asm.Line(fmt.Sprintf("org %d", codeOrigin))
	}

	dm := deploy.New(func(name string) (string, error) {
		body, ok := backend.Deployable(name)
		if !ok {
			return "", fmt.Errorf("no deployable snippet named %q for target %q", name, backend.Name())
		}
		return body, nil
	})
	em := emit.New(env, asm, backend, dm)

	if err := parser.New(toks, em).Run(); err != nil {
		return err
	}
	if err := checkUnclosed(env); err != nil {
		return err
	}

	cleanup(env, asm, cfgSink)

	if err := asm.Close(); err != nil {
		return fmt.Errorf("compiler: writing %s: %w", cfg.AsmPath, err)
	}
	if cfgSink != nil {
		if err := cfgSink.Close(); err != nil {
			return fmt.Errorf("compiler: writing %s: %w", cfg.ConfigPath, err)
		}
	}
	return nil
}

// seedDefaults registers the default VARIABLES/TEMPORARY/STRINGS banks and
// the default strings_address variable spec.md §4.6 requires before the
// parser ever sees a line of source. strings_address tracks the dynamic
// string heap's next-free byte, starting at the STRINGS bank's own base
// address. deploy.DString names the runtime routine that advances it; none
// of the three backends' deployable tables supplies a body for it.
func seedDefaults(env *model.Environment) {
	variables := &model.Bank{Name: "variables", Kind: model.VariablesBank, Address: variablesAddress}
	temporary := &model.Bank{Name: "temporary", Kind: model.TemporaryBank, Address: temporaryAddress}
	strPool := &model.Bank{Name: "strings", Kind: model.StringsBank, Address: stringsAddress}
	env.Banks.Add(variables)
	env.Banks.Add(temporary)
	env.Banks.Add(strPool)

	addr := &model.Variable{
		Name:     "strings_address",
		RealName: "strings_address",
		Type:     model.Address,
		InitInt:  stringsPtrInitial,
	}
	env.DefineVariable(addr, strPool)
}
