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

package model

import "fmt"

// StaticString is one distinct literal string seen by the compiler, assigned
// an integer id at first sight (spec.md §3). Interning (sharing an id between
// identical literals) is permitted but not required; this implementation
// interns via the Pool below.
type StaticString struct {
	ID    int
	Value string
}

// Label returns the emitted "cstring<id>:" label for this literal.
func (s *StaticString) Label() string {
	return fmt.Sprintf("cstring%d", s.ID)
}

// StringPool interns literal strings into StaticString entries by value.
type StringPool struct {
	byValue map[string]*StaticString
	order   []*StaticString
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{byValue: make(map[string]*StaticString)}
}

// Intern returns the StaticString for value, creating and assigning a fresh
// id the first time value is seen.
func (p *StringPool) Intern(value string) *StaticString {
	if s, ok := p.byValue[value]; ok {
		return s
	}
	s := &StaticString{ID: len(p.order), Value: value}
	p.byValue[value] = s
	p.order = append(p.order, s)
	return s
}

// All returns every interned string in id order.
func (p *StringPool) All() []*StaticString {
	return p.order
}
