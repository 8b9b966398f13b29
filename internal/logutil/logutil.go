// SPDX-License-Identifier: Apache-2.0

// Package logutil holds the process-wide zap logger used by the parts of
// this module that log: arena pools, the metrics collector and the
// jemallocctl command. Allocation and control paths never log.
//
// The logger is a no-op until SetGlobalLogger is called, so a library user
// that does not opt in never sees output.
package logutil

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var globalLogger atomic.Pointer[zap.Logger]

func init() {
	globalLogger.Store(zap.NewNop())
}

// GetGlobalLogger returns the process-wide logger.
func GetGlobalLogger() *zap.Logger {
	return globalLogger.Load()
}

// SetGlobalLogger replaces the process-wide logger. A nil logger restores
// the no-op logger.
func SetGlobalLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	globalLogger.Store(logger)
}

func Debug(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetGlobalLogger().WithOptions(zap.AddCallerSkip(1), zap.AddStacktrace(zap.ErrorLevel)).Error(msg, fields...)
}
