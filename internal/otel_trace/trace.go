/*
 * MIT License
 *
 * Copyright (c) 2025 linux.do
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package otel_trace 封装 OpenTelemetry 追踪的初始化和 span 创建。
// 遥测未启用或初始化失败时退化为空操作追踪器，业务代码无需判断。
package otel_trace

import (
	"context"
	"log"
	"sync"

	"github.com/streamrec/recorderX/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	// Tracer 全局追踪器，Init 之后可用
	Tracer trace.Tracer

	shutdownFuncs []func(context.Context) error
	initOnce      sync.Once
)

// useNoop 切换到空操作追踪器
func useNoop(reason string) {
	log.Printf("[Trace] 使用空操作追踪器: %s\n", reason)
	Tracer = noop.NewTracerProvider().Tracer("noop")
}

// Init 根据配置初始化 OpenTelemetry 追踪，需在配置加载后调用。
// 重复调用只生效一次。
func Init() {
	initOnce.Do(func() {
		if !config.Config.Telemetry.Enabled {
			useNoop("遥测未启用")
			return
		}

		otel.SetTextMapPropagator(newPropagator())

		tracerProvider, err := newTracerProvider()
		if err != nil {
			useNoop("初始化追踪提供者失败: " + err.Error())
			return
		}

		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)

		Tracer = tracerProvider.Tracer("github.com/streamrec/recorderX")
		log.Println("[Trace] OpenTelemetry 追踪已初始化")
	})
}

// Shutdown 刷新并关闭已注册的追踪提供者
func Shutdown(ctx context.Context) {
	for _, fn := range shutdownFuncs {
		_ = fn(ctx)
	}
	shutdownFuncs = nil
}

// Start 创建一个 span；Init 未调用时返回空操作 span
func Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if Tracer == nil {
		return ctx, noop.Span{}
	}
	return Tracer.Start(ctx, name, opts...)
}
