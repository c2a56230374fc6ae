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

// Command ugbc is ugBASIC's cross-compiler CLI: it translates a BASIC source
// file into target-specific assembly (spec.md §6's "ugbc [-c <linker-config>]
// <source.bas> <output.asm>"), mirroring goat's own main.go cobra command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ugbasic/ugbc/internal/compiler"

	_ "github.com/ugbasic/ugbc/internal/target/c64"
	_ "github.com/ugbasic/ugbc/internal/target/coco2"
	_ "github.com/ugbasic/ugbc/internal/target/msx"
)

var verbose bool

var command = &cobra.Command{
	Use:  "ugbc source.bas output.asm",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.PersistentFlags().GetString("linker-config")
		target, _ := cmd.PersistentFlags().GetString("target")

		cfg := compiler.Config{
			SourcePath: args[0],
			AsmPath:    args[1],
			ConfigPath: configPath,
			Warnings:   verbose,
			Target:     target,
		}
		if err := compiler.Run(cfg); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	command.PersistentFlags().StringP("linker-config", "c", "", "if set, emit a linker configuration to this path instead of an org directive")
	command.PersistentFlags().StringP("target", "t", "c64", "target machine (c64, coco2, msx)")
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "if set, print warnings during compilation")
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
