// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

// Command celc is a debug CLI around the conversion engine: it runs a
// single expression through the analyzer and prints what the engine
// decided, without needing a running cluster or resource graph.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kro-run/celengine/cmd/celc/commands"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCommand builds celc's command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "celc",
		Short:         "celc - CEL conversion engine debug CLI",
		Long:          `celc runs expressions through the conversion engine and reports how they were analyzed, emitted, and classified.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	commands.AddCompileCommand(cmd)
	return cmd
}
