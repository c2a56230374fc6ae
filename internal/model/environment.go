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

// Package model holds ugbc's compile-time symbol and bank model: the single
// Environment value threaded explicitly through every semantic action in
// internal/emit and internal/parser (spec.md §3, §9 "pass it as an explicit
// value through every semantic action; do not make it ambient").
package model

import "github.com/samber/lo"

// EveryState tracks the single installed EVERY n TICKS GOSUB handler plus its
// runtime on/off flag (spec.md §4.4).
type EveryState struct {
	Installed bool
	Ticks     int64
	Label     string
	On        bool
}

// Environment is the process-wide compile-time state (spec.md §3).
type Environment struct {
	SourcePath string
	AsmPath    string
	ConfigPath string // "" when no linker config was requested
	Warnings   bool

	Line   int
	NextID uint64

	Banks          BankLists
	Temporaries    []*Variable
	Variables      []*Variable
	Procedures     *Procedure
	ProcLocals     []*Variable
	GlobalPatterns []string
	Strings        *StringPool

	Conditionals Stack[Conditional]
	Loops        Stack[Loop]

	HasGameLoop   bool
	BitmaskNeeded bool
	Resident      map[string]bool

	Every EveryState

	PendingDims    []int
	PendingIndexes []string
	PendingParams  []Parameter

	CurrentProc *Procedure // nil outside a PROC body; used to reject E037/E041/E042
}

// New returns a freshly initialized Environment for compiling source, writing
// asm to asmPath and (if configPath != "") a linker configuration to
// configPath.
func New(source, asmPath, configPath string, warnings bool) *Environment {
	return &Environment{
		SourcePath: source,
		AsmPath:    asmPath,
		ConfigPath: configPath,
		Warnings:   warnings,
		Line:       1,
		Strings:    NewStringPool(),
		Resident:   make(map[string]bool),
	}
}

// NextTemp allocates (or reuses) a temporary of type t. A reusable existing
// temporary of the same type is returned first; failing that, a fresh one is
// appended to Temporaries, matching spec.md §3's "conceptually arena
// allocated" discipline: storage lives for the whole program, names recycle.
func (e *Environment) NextTemp(t VarType) *Variable {
	if v, ok := lo.Find(e.Temporaries, func(v *Variable) bool {
		return v.Type == t && v.Reusable()
	}); ok {
		v.InUse = true
		return v
	}
	id := e.NextID
	e.NextID++
	v := &Variable{
		Name:     TempName(id),
		RealName: TempName(id),
		Type:     t,
		InUse:    true,
		Bank:     e.Banks.Temporary,
	}
	e.Temporaries = append(e.Temporaries, v)
	return v
}

// Release marks a temporary as no longer in use, returning it to the free
// pool providing it is not locked.
func (e *Environment) Release(v *Variable) {
	v.InUse = false
}

// LookupVariable finds a program variable (not a temporary) by its
// program-visible name, searching procedure-local variables first when
// CurrentProc is set, matching ordinary lexical-scoping expectations.
func (e *Environment) LookupVariable(name string) (*Variable, bool) {
	if e.CurrentProc != nil {
		if v, ok := lo.Find(e.ProcLocals, func(v *Variable) bool { return v.Name == name }); ok {
			return v, true
		}
	}
	return lo.Find(e.Variables, func(v *Variable) bool { return v.Name == name })
}

// DefineVariable registers a new program variable (or procedure-local when
// CurrentProc is set) and places it in bank.
func (e *Environment) DefineVariable(v *Variable, bank *Bank) {
	v.Bank = bank
	if e.CurrentProc != nil {
		e.ProcLocals = append(e.ProcLocals, v)
		return
	}
	e.Variables = append(e.Variables, v)
}

// LookupProcedure finds a procedure by name.
func (e *Environment) LookupProcedure(name string) (*Procedure, bool) {
	for p := e.Procedures; p != nil; {
		if p.Name == name {
			return p, true
		}
		p = p.Next
	}
	return nil, false
}

// DefineProcedure registers a new procedure, prepending it onto the list.
func (e *Environment) DefineProcedure(p *Procedure) {
	p.Next = e.Procedures
	e.Procedures = p
}
