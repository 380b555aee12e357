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

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kro-run/celengine/internal/log"
	"github.com/kro-run/celengine/pkg/analyzer"
	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/sourcemap"
)

var dialectsByFlag = map[string]ctxpkg.Dialect{
	"status-builder":   ctxpkg.StatusBuilder,
	"resource-builder":  ctxpkg.ResourceBuilder,
	"conditional":       ctxpkg.Conditional,
	"readiness":         ctxpkg.Readiness,
	"template-literal":  ctxpkg.TemplateLiteral,
	"field-hydration":   ctxpkg.FieldHydration,
	"": ctxpkg.Unknown,
}

// AddCompileCommand registers celc's sole "compile" subcommand.
func AddCompileCommand(rootCmd *cobra.Command) {
	var (
		dialect          string
		factory          string
		resources        []string
		withSchema       bool
		strictMode       bool
		strictNullChecks bool
		showSourceMap    bool
	)

	compileCmd := &cobra.Command{
		Use:   "compile [EXPRESSION]",
		Short: "Run an expression through the conversion engine",
		Long:  `compile analyzes a single host-language expression and reports whether it converts, the emitted CEL, its dependencies, and any errors or warnings.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := 0
			if verbose {
				level = 5
			}
			logger := log.New(log.Options{Development: true, Level: level})

			d, ok := dialectsByFlag[dialect]
			if !ok {
				return fmt.Errorf("unknown dialect %q", dialect)
			}

			factoryKind := ctxpkg.FactoryDirect
			if strings.EqualFold(factory, string(ctxpkg.FactoryKro)) {
				factoryKind = ctxpkg.FactoryKro
			}

			availableRefs := make(map[string]interface{}, len(resources))
			for _, r := range resources {
				r = strings.TrimSpace(r)
				if r == "" {
					continue
				}
				availableRefs[r] = struct{}{}
			}

			var schemaProxy interface{}
			if withSchema {
				schemaProxy = struct{}{}
			}

			var sm *sourcemap.Builder
			if showSourceMap {
				sm = &sourcemap.Builder{}
			}

			ctx := ctxpkg.Context{
				Dialect:          d,
				AvailableRefs:    availableRefs,
				SchemaProxy:      schemaProxy,
				FactoryKind:      factoryKind,
				SourceMap:        sm,
				StrictMode:       strictMode,
				StrictNullChecks: strictNullChecks,
			}

			logger.V(2).Info("analyzing expression", "expression", args[0], "dialect", string(d))

			result := analyzer.Analyze(args[0], ctx)
			printResult(cmd, result)
			if showSourceMap && sm != nil {
				printSourceMap(cmd, sm)
			}
			return nil
		},
	}

	compileCmd.Flags().StringVar(&dialect, "dialect", "status-builder",
		"Emission dialect: status-builder, resource-builder, conditional, readiness, template-literal, field-hydration")
	compileCmd.Flags().StringVar(&factory, "factory", "direct", "Factory kind: direct or kro")
	compileCmd.Flags().StringSliceVar(&resources, "resources", nil, "Comma-separated resource ids available to this expression")
	compileCmd.Flags().BoolVar(&withSchema, "schema", false, "Make the declared input schema available")
	compileCmd.Flags().BoolVar(&strictMode, "strict", false, "Enable strict mode")
	compileCmd.Flags().BoolVar(&strictNullChecks, "strict-null-checks", false, "Enable strict null checks")
	compileCmd.Flags().BoolVar(&showSourceMap, "source-map", false, "Print the recorded source map entries")

	rootCmd.AddCommand(compileCmd)
}

func printResult(cmd *cobra.Command, result analyzer.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "valid: %v\n", result.Valid)
	fmt.Fprintf(out, "requires_conversion: %v\n", result.RequiresConversion)
	fmt.Fprintf(out, "kind: %s\n", result.Kind)

	if result.Cel != nil {
		fmt.Fprintf(out, "cel: %s\n", result.Cel.Source())
	} else {
		fmt.Fprintf(out, "value: %v\n", result.Value)
	}

	if len(result.Dependencies) > 0 {
		fmt.Fprintln(out, "dependencies:")
		for _, dep := range result.Dependencies {
			fmt.Fprintf(out, "  - %s\n", dep.String())
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w.String())
	}

	for _, e := range result.Errors {
		fmt.Fprintf(out, "error: %s\n", e.Error())
	}
}

func printSourceMap(cmd *cobra.Command, sm *sourcemap.Builder) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "source map:")
	for _, entry := range sm.Entries() {
		fmt.Fprintf(out, "  %q -> %q (%s)\n", entry.OriginalExpression, entry.CelExpression, entry.Context)
	}
}
