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

// Package log builds the logr.Logger every command in this module logs
// through, wrapping zap directly rather than a controller-manager helper.
package log

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New. Level follows the usual -v verbosity convention:
// 0 is the least verbose, higher values are more verbose.
type Options struct {
	Development bool
	Level       int
}

type customLevelEnabler struct {
	level int
}

func (c customLevelEnabler) Enabled(lvl zapcore.Level) bool {
	return -int(lvl) <= c.level
}

// New builds a logr.Logger backed by zap. Development selects a
// console-formatted, unsampled encoder; production selects a JSON encoder.
func New(opts Options) logr.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	if opts.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.Encoder(zapcore.NewJSONEncoder(encoderCfg))
	if opts.Development {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), customLevelEnabler{level: opts.Level})

	zapOpts := []zap.Option{zap.AddCaller()}
	if opts.Development {
		zapOpts = append(zapOpts, zap.Development())
	}
	zl := zap.New(core, zapOpts...)

	return zapr.NewLogger(zl)
}
