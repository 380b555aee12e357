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

package library

import (
	"fmt"
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSeededString(t *testing.T) {
	env, err := cel.NewEnv(
		cel.Variable("schema", cel.AnyType),
		Random(),
	)
	require.NoError(t, err)

	tests := []struct {
		name    string
		expr    string
		length  int
		seed    string
		wantErr bool
		errMsg  string
	}{
		{name: "ten characters", expr: "random.seededString(10, 'test-seed')", length: 10, seed: "test-seed"},
		{name: "twenty characters", expr: "random.seededString(20, 'test-seed')", length: 20, seed: "test-seed"},
		{name: "negative length", expr: "random.seededString(-1, 'test-seed')", wantErr: true, errMsg: "length must be positive"},
		{name: "zero length", expr: "random.seededString(0, 'test-seed')", wantErr: true, errMsg: "length must be positive"},
		{name: "invalid length type", expr: "random.seededString('10', 'test-seed')", wantErr: true, errMsg: "found no matching overload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, issues := env.Compile(tt.expr)
			if tt.wantErr && issues != nil && issues.Err() != nil {
				assert.Contains(t, issues.String(), tt.errMsg)
				return
			}
			require.NoError(t, issues.Err())

			program, err := env.Program(ast)
			require.NoError(t, err)

			out, _, err := program.Eval(map[string]interface{}{})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)

			result, ok := out.Value().(string)
			require.True(t, ok)
			assert.Len(t, result, tt.length)
			for _, c := range result {
				assert.Contains(t, alphanumericChars, string(c))
			}

			out2, _, err := program.Eval(map[string]interface{}{})
			require.NoError(t, err)
			assert.Equal(t, result, out2.Value(), "same seed must be deterministic")

			ast3, _ := env.Compile(fmt.Sprintf("random.seededString(%d, 'different-seed')", tt.length))
			program3, _ := env.Program(ast3)
			out3, _, _ := program3.Eval(map[string]interface{}{})
			assert.NotEqual(t, result, out3.Value(), "different seeds must diverge")
		})
	}
}
