/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap logger to Logger. SetLevel gates calls before they
// reach zap, which applies its own level as well.
type zapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewZapLogger wraps l. A nil l uses zap.NewNop.
//
//	z, _ := zap.NewProduction()
//	engine := tableagg.New(tableagg.WithLogger(logger.NewZapLogger(z)))
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{
		sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar(),
		level: zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

// toZapLevel maps a Level onto zap. OFF maps above fatal so nothing passes.
func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel + 1
	}
}

func (z *zapLogger) Debug(format string, args ...interface{}) {
	if z.level.Enabled(zapcore.DebugLevel) {
		z.sugar.Debugf(format, args...)
	}
}

func (z *zapLogger) Info(format string, args ...interface{}) {
	if z.level.Enabled(zapcore.InfoLevel) {
		z.sugar.Infof(format, args...)
	}
}

func (z *zapLogger) Warn(format string, args ...interface{}) {
	if z.level.Enabled(zapcore.WarnLevel) {
		z.sugar.Warnf(format, args...)
	}
}

func (z *zapLogger) Error(format string, args ...interface{}) {
	if z.level.Enabled(zapcore.ErrorLevel) {
		z.sugar.Errorf(format, args...)
	}
}

func (z *zapLogger) SetLevel(level Level) {
	z.level.SetLevel(toZapLevel(level))
}
