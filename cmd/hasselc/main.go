// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hasselc/compile"
)

var debug bool

var command = &cobra.Command{
	Use:  "hasselc INPUT [-o output]",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input := args[0]
		source, err := os.ReadFile(input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		output, _ := cmd.PersistentFlags().GetString("output")
		level, _ := cmd.PersistentFlags().GetInt("optimize")
		runtimeName, _ := cmd.PersistentFlags().GetString("runtime")
		vectorReset, _ := cmd.PersistentFlags().GetString("vector-reset")
		vectorIRQ, _ := cmd.PersistentFlags().GetString("vector-irq")
		vectorNMI, _ := cmd.PersistentFlags().GetString("vector-nmi")

		opts := compile.Options{
			OptimizeLLIR: level >= 1,
			OptimizeCode: level >= 2,
			Runtime:      runtimeName,
			VectorReset:  vectorReset,
			VectorIRQ:    vectorIRQ,
			VectorNMI:    vectorNMI,
			Debug:        debug,
		}

		out, err := compile.Compile(string(source), opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, compile.CompileText(string(source), err))
			os.Exit(1)
		}

		if output == "" {
			fmt.Print(out.Assembly)
			return
		}
		if err := os.WriteFile(output, []byte(out.Assembly), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	command.PersistentFlags().StringP("output", "o", "", "write emitted assembly to this file instead of stdout")
	command.PersistentFlags().IntP("optimize", "O", 0, "1 enables the LLIR optimizer, 2 enables both it and the code optimizer")
	command.PersistentFlags().StringP("runtime", "r", "", "preconfigured runtime name (informational at the core boundary)")
	command.PersistentFlags().String("vector-reset", "", "label to emit as the reset vector target")
	command.PersistentFlags().String("vector-irq", "", "label to emit as the IRQ vector target")
	command.PersistentFlags().String("vector-nmi", "", "label to emit as the NMI vector target")
	command.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "dump intermediate pipeline stages to stderr")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
