/*
Copyright The Ephemeral Acceleration Job Operator Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package log wraps go-logr/logr, backed by zap, behind the narrow surface
// the reconciler and the janitor use: a context-scoped logger reached
// through FromContext, and leveled Info/Error/Debug/Warning helpers.
package log

import (
	"context"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/klog/v2"
)

type ctxKey struct{}

// Logger is the leveled logging surface used throughout this operator.
type Logger struct {
	logr.Logger
}

// Info logs at the informational level.
func (l Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, keysAndValues...)
}

// Debug logs at a verbosity below Info.
func (l Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.V(1).Info(msg, keysAndValues...)
}

// Warning logs at the informational level tagged as a warning, matching
// go-logr's lack of a dedicated warning verb.
func (l Logger) Warning(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, append([]interface{}{"warning", true}, keysAndValues...)...)
}

// Error logs err alongside msg.
func (l Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Error(err, msg, keysAndValues...)
}

// WithValues returns a Logger carrying the given structured key/value pairs
// on every subsequent line.
func (l Logger) WithValues(keysAndValues ...interface{}) Logger {
	return Logger{Logger: l.Logger.WithValues(keysAndValues...)}
}

// WithName returns a Logger whose name is suffixed with name.
func (l Logger) WithName(name string) Logger {
	return Logger{Logger: l.Logger.WithName(name)}
}

var root Logger

// Flags registers the logging-related command line flags, matching the
// manager binary's top-level flag set.
func Flags(flags *pflag.FlagSet) {
	flags.BoolVar(&debug, "log-debug", false, "enable debug-level logging")
}

var debug bool

// SetupLogger builds the process-wide structured logger and bridges
// klog (used internally by client-go) into the same backend. It must be
// called once, early in main.
func SetupLogger() {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(os.Stdout)),
		level,
	)

	zapLog := zap.New(core).Named("ephemeral-gpu-job-operator")
	root = Logger{Logger: zapr.NewLogger(zapLog)}
	klog.SetLogger(root.Logger)
}

// FromContext returns the logger embedded in ctx, falling back to the
// process-wide root logger when ctx carries none.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return root
}

// IntoContext returns a copy of ctx carrying l, retrievable via FromContext.
func IntoContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// SetupLoggerForContext attaches the process-wide root logger to ctx and
// returns both, matching the reconciler's customary
// `contextLogger, ctx := log.SetupLoggerForContext(ctx)` opening line.
func SetupLoggerForContext(ctx context.Context) (Logger, context.Context) {
	return root, IntoContext(ctx, root)
}
