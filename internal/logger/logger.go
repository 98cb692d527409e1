/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger 提供带 OpenTelemetry 上下文关联的结构化日志
// Package logger provides structured logging with OpenTelemetry context correlation.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/streamrec/recorderX/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	global   *otelzap.Logger
	sugar    *otelzap.SugaredLogger
	initOnce sync.Once
)

// Init 根据配置初始化全局日志器
// 输出到 stdout，或按 log.output=file 写入带轮转的日志文件
func Init() {
	initOnce.Do(func() {
		logConfig := config.GetLogConfig()

		level := zapcore.InfoLevel
		if err := level.UnmarshalText([]byte(logConfig.Level)); err != nil {
			level = zapcore.InfoLevel
		}

		var encoder zapcore.Encoder
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if logConfig.Format == "console" {
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		} else {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		}

		var sink zapcore.WriteSyncer
		if logConfig.Output == "file" && logConfig.FilePath != "" {
			// 文件输出使用 lumberjack 轮转
			sink = zapcore.AddSync(&lumberjack.Logger{
				Filename:   logConfig.FilePath,
				MaxSize:    logConfig.MaxSize,
				MaxAge:     logConfig.MaxAge,
				MaxBackups: logConfig.MaxBackups,
				Compress:   logConfig.Compress,
			})
		} else {
			sink = zapcore.AddSync(os.Stdout)
		}

		core := zapcore.NewCore(encoder, sink, level)
		zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))

		global = otelzap.New(zapLogger, otelzap.WithMinLevel(level))
		sugar = global.Sugar()
	})
}

// ensure 确保日志器已初始化（测试中可能未调用 Init）
func ensure() {
	if global == nil {
		Init()
	}
}

// L 返回全局 otelzap 日志器
func L() *otelzap.Logger {
	ensure()
	return global
}

// DebugF 输出 Debug 级别格式化日志
func DebugF(ctx context.Context, format string, args ...interface{}) {
	ensure()
	sugar.Ctx(ctx).Debugf(format, args...)
}

// InfoF 输出 Info 级别格式化日志
func InfoF(ctx context.Context, format string, args ...interface{}) {
	ensure()
	sugar.Ctx(ctx).Infof(format, args...)
}

// WarnF 输出 Warn 级别格式化日志
func WarnF(ctx context.Context, format string, args ...interface{}) {
	ensure()
	sugar.Ctx(ctx).Warnf(format, args...)
}

// ErrorF 输出 Error 级别格式化日志
func ErrorF(ctx context.Context, format string, args ...interface{}) {
	ensure()
	sugar.Ctx(ctx).Errorf(format, args...)
}

// Sync 刷新缓冲的日志
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
