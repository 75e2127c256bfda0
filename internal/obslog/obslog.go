// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package obslog is the thin structured-logging wrapper every other
// package logs through, built on zap (already part of the dependency
// tree for its own internal use). Kept intentionally small: callers
// get leveled, key-value logging and nothing else.
package obslog

import (
	"go.uber.org/zap"
)

// Logger wraps a zap.SugaredLogger, giving every call site a
// structured key-value API without importing zap directly.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a production-configured logger (JSON encoding to stderr,
// Info level and above). Callers that want a development-friendly
// console format should call NewDevelopment instead.
func New() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{s: z.Sugar()}, nil
}

// NewDevelopment builds a console-encoded, debug-level logger suitable
// for local runs of cmd/bootstrapcored.
func NewDevelopment() (*Logger, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{s: z.Sugar()}, nil
}

// Nop returns a logger that discards everything, for tests.
func Nop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }

// Sync flushes any buffered log entries. Call on shutdown.
func (l *Logger) Sync() error { return l.s.Sync() }

// With returns a child logger with kv attached to every subsequent entry.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{s: l.s.With(kv...)}
}
