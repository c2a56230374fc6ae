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

// MaxProcParams is the hard cap on procedure parameter count (spec.md §3).
const MaxProcParams = 256

// Parameter is one named, typed procedure parameter.
type Parameter struct {
	Name string
	Type VarType
}

// Procedure is defined once and callable multiple times; nested PROC
// definitions are forbidden (spec.md §3, error E037).
type Procedure struct {
	Name   string
	Params []Parameter
	Next   *Procedure
}
