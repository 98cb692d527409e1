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

// Package router 提供 HTTP 路由配置
// Package router provides HTTP routing configuration
package router

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/streamrec/recorderX/internal/apps/audit"
	"github.com/streamrec/recorderX/internal/apps/auth"
	"github.com/streamrec/recorderX/internal/apps/health"
	"github.com/streamrec/recorderX/internal/apps/recorder"
	"github.com/streamrec/recorderX/internal/apps/settings"
	"github.com/streamrec/recorderX/internal/config"
	"github.com/streamrec/recorderX/internal/db"
	"github.com/streamrec/recorderX/internal/logger"
	"github.com/streamrec/recorderX/internal/otel_trace"
	"github.com/streamrec/recorderX/internal/session"
	"github.com/streamrec/recorderX/internal/supervisor"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func Serve() {
	ctx := context.Background()

	// Initialize OpenTelemetry tracing (based on config)
	// 初始化 OpenTelemetry 追踪（根据配置）
	otel_trace.Init()
	defer otel_trace.Shutdown(ctx)

	// 初始化日志
	// Initialize logging
	logger.Init()
	defer logger.Sync()

	// 运行模式
	// Set run mode
	if config.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库（根据配置自动选择 SQLite、MySQL 或 PostgreSQL）
	// Initialize database (auto-select SQLite, MySQL or PostgreSQL based on config)
	if err := db.InitDatabase(); err != nil {
		log.Fatalf("[API] 初始化数据库失败: %v\n", err)
	}
	defer db.CloseDatabase()

	// 初始化路由
	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())

	// 初始化会话存储（根据配置自动选择内存或 Redis）
	// Initialize session store (auto-select memory or Redis based on config)
	if err := session.InitSessionStore(); err != nil {
		log.Fatalf("[API] 初始化会话存储失败: %v\n", err)
	}
	r.Use(sessions.Sessions(config.Config.App.SessionCookieName, session.GinStore))

	// 补充中间件
	// Add middleware
	r.Use(otelgin.Middleware(config.Config.App.AppName), loggerMiddleware())

	// 录制程序监管器（全局唯一）
	// Recorder supervisor (single instance)
	sup := newSupervisor()

	// 录制程序配置服务
	// Recorder settings service
	rc := config.GetRecorderConfig()
	settingsService := settings.NewService(
		resolvePath(rc.WorkDir, rc.MainConfigPath),
		resolvePath(rc.WorkDir, rc.URLConfigPath),
	)

	// 操作日志仓库
	// Operation log repository
	auditRepo := audit.NewRepository(db.GetDB(ctx))
	auth.SetAuditRepository(auditRepo)

	recorderHandler := recorder.NewHandler(sup, auditRepo)
	settingsHandler := settings.NewHandler(settingsService, auditRepo)
	auditHandler := audit.NewHandler(auditRepo)

	apiGroup := r.Group(config.Config.App.APIPrefix)
	{
		// API V1
		apiV1Router := apiGroup.Group("/v1")
		{
			// Health
			apiV1Router.GET("/health", health.Health)

			// Auth 面板登录
			apiV1Router.POST("/auth/login", auth.Login)
			apiV1Router.POST("/auth/logout", auth.LoginRequired(), auth.Logout)
			apiV1Router.GET("/auth/user-info", auth.LoginRequired(), auth.GetUserInfo)

			// Recorder 录制程序控制
			recorderRouter := apiV1Router.Group("/recorder")
			recorderRouter.Use(auth.LoginRequired())
			{
				// POST /api/v1/recorder/start - 启动录制程序
				recorderRouter.POST("/start", recorderHandler.Start)

				// POST /api/v1/recorder/stop - 停止录制程序
				recorderRouter.POST("/stop", recorderHandler.Stop)

				// GET /api/v1/recorder/status - 查询录制程序状态
				recorderRouter.GET("/status", recorderHandler.Status)

				// GET /api/v1/recorder/stream - 控制台输出实时推送（WebSocket）
				recorderRouter.GET("/stream", recorderHandler.Stream)
			}

			// Settings 录制程序配置管理
			settingsRouter := apiV1Router.Group("/settings")
			settingsRouter.Use(auth.LoginRequired())
			{
				// GET /api/v1/settings/main - 读取 INI 主配置
				settingsRouter.GET("/main", settingsHandler.GetMain)

				// PUT /api/v1/settings/main - 合并更新 INI 主配置
				settingsRouter.PUT("/main", auth.AdminRequired(), settingsHandler.UpdateMain)

				// GET /api/v1/settings/urls - 读取直播间地址列表
				settingsRouter.GET("/urls", settingsHandler.GetURLs)

				// PUT /api/v1/settings/urls - 覆盖保存直播间地址列表
				settingsRouter.PUT("/urls", settingsHandler.UpdateURLs)
			}

			// Operation logs 操作日志
			auditRouter := apiV1Router.Group("/operation-logs")
			auditRouter.Use(auth.LoginRequired())
			{
				// GET /api/v1/operation-logs - 获取操作日志列表
				auditRouter.GET("", auditHandler.List)
			}
		}
	}

	// Serve HTTP API
	// 启动 HTTP API 服务
	log.Printf("[API] HTTP 服务器启动于 %s / HTTP server starting on %s\n", config.Config.App.Addr, config.Config.App.Addr)
	if err := r.Run(config.Config.App.Addr); err != nil {
		log.Fatalf("[API] serve api failed: %v\n", err)
	}
}

// newSupervisor 按配置构建录制程序监管器
// newSupervisor builds the recorder supervisor from config.
func newSupervisor() *supervisor.Supervisor {
	rc := config.GetRecorderConfig()

	return supervisor.New(supervisor.Config{
		WorkDir:         rc.WorkDir,
		Script:          resolvePath(rc.WorkDir, rc.Script),
		Interpreter:     resolveInterpreter(rc.WorkDir, rc.Interpreter),
		InterpreterArgs: rc.InterpreterArgs,
		Environment:     rc.Environment,
		StopTimeout:     time.Duration(rc.StopTimeoutSeconds) * time.Second,
	}, supervisor.NewHub(), logger.L().Logger)
}

// resolvePath 相对路径按工作目录解析
// resolvePath resolves a relative path against the recorder work dir.
func resolvePath(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}

// resolveInterpreter 解释器可以是工作目录下的相对路径或 PATH 中的命令名
// resolveInterpreter keeps bare command names for PATH lookup.
func resolveInterpreter(workDir, interpreter string) string {
	if filepath.IsAbs(interpreter) || !filepath.IsLocal(interpreter) {
		return interpreter
	}
	// 单段命令名（如 python3）留给 PATH 查找
	if filepath.Base(interpreter) == interpreter {
		return interpreter
	}
	return filepath.Join(workDir, interpreter)
}

// loggerMiddleware 基于 zap 的请求日志中间件，记录方法、路径、状态码和耗时
// loggerMiddleware logs method, path, status and latency for each request.
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.L().Ctx(c.Request.Context()).Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
