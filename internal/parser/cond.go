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

package parser

import "fmt"

// condition parses `expression relop expression` and emits a branch to
// falseLabel taken when the relation does not hold -- the shape every
// IF/WHILE/UNTIL/EXIT IF test shares. There is no boolean storage type in
// this dialect (spec.md §3), so a bare relational test is the only form of
// condition; it is compiled straight to a branch, never to a stored value.
func (p *Parser) condition(falseLabel string) error {
	left, err := p.expression()
	if err != nil {
		return err
	}
	op := p.cur().Text
	switch op {
	case "=", "<>", "<", ">", "<=", ">=":
		p.advance()
	default:
		return fmt.Errorf("line %d: expected a comparison operator, found %q", p.cur().Line, op)
	}
	right, err := p.expression()
	if err != nil {
		return err
	}
	switch op {
	case "=":
		return p.em.Compare(left, right, falseLabel)
	case "<>":
		return p.em.CompareNot(left, right, falseLabel)
	case "<":
		return p.em.LessThan(left, right, falseLabel)
	case ">":
		return p.em.GreaterThan(left, right, falseLabel)
	case "<=":
		return p.em.LessOrEqual(left, right, falseLabel)
	case ">=":
		return p.em.GreaterOrEqual(left, right, falseLabel)
	}
	return fmt.Errorf("unreachable: operator %q", op)
}
