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

// Package recorder 提供录制程序控制相关的 HTTP 处理器
package recorder

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamrec/recorderX/internal/apps/audit"
	"github.com/streamrec/recorderX/internal/apps/auth"
	"github.com/streamrec/recorderX/internal/logger"
	"github.com/streamrec/recorderX/internal/otel_trace"
	"github.com/streamrec/recorderX/internal/supervisor"
)

// Response 统一响应结构
type Response struct {
	ErrorMsg string      `json:"error_msg"`
	Data     interface{} `json:"data"`
}

// StartData 启动响应数据
type StartData struct {
	PID       int  `json:"pid"`
	IsRunning bool `json:"is_running"`
}

// Handler 录制程序控制处理器
type Handler struct {
	sup       *supervisor.Supervisor
	auditRepo *audit.Repository
}

// NewHandler 创建录制程序控制处理器
func NewHandler(sup *supervisor.Supervisor, auditRepo *audit.Repository) *Handler {
	return &Handler{sup: sup, auditRepo: auditRepo}
}

// Start 启动录制程序
// 录制程序已在运行时返回 409，环境校验失败返回 400
func (h *Handler) Start(c *gin.Context) {
	ctx, span := otel_trace.Start(c.Request.Context(), "recorder.Start")
	defer span.End()

	pid, err := h.sup.Start(ctx)
	if err != nil {
		h.record(c, audit.ActionStartRecorder, audit.ResultFailed, audit.OperationDetails{"error": err.Error()})

		switch {
		case errors.Is(err, supervisor.ErrAlreadyRunning):
			c.JSON(http.StatusConflict, Response{ErrorMsg: ErrMsgAlreadyRunning, Data: h.sup.Status()})
		case errors.Is(err, supervisor.ErrScriptNotFound):
			c.JSON(http.StatusBadRequest, Response{ErrorMsg: ErrMsgScriptNotFound})
		case errors.Is(err, supervisor.ErrInterpreterNotFound):
			c.JSON(http.StatusBadRequest, Response{ErrorMsg: ErrMsgInterpreterMissing})
		default:
			logger.ErrorF(ctx, "[Recorder] 启动失败: %v", err)
			c.JSON(http.StatusInternalServerError, Response{ErrorMsg: ErrMsgStartFailed})
		}
		return
	}

	logger.InfoF(ctx, "[Recorder] 启动成功, pid=%d", pid)
	h.record(c, audit.ActionStartRecorder, audit.ResultSuccess, audit.OperationDetails{"pid": pid})
	c.JSON(http.StatusOK, Response{Data: StartData{PID: pid, IsRunning: true}})
}

// Stop 停止录制程序
// 录制程序未运行时返回 409，优雅停止超时返回 504
func (h *Handler) Stop(c *gin.Context) {
	ctx, span := otel_trace.Start(c.Request.Context(), "recorder.Stop")
	defer span.End()

	if err := h.sup.Stop(ctx); err != nil {
		h.record(c, audit.ActionStopRecorder, audit.ResultFailed, audit.OperationDetails{"error": err.Error()})

		switch {
		case errors.Is(err, supervisor.ErrNotRunning):
			c.JSON(http.StatusConflict, Response{ErrorMsg: ErrMsgNotRunning, Data: h.sup.Status()})
		case errors.Is(err, supervisor.ErrStopTimeout):
			c.JSON(http.StatusGatewayTimeout, Response{ErrorMsg: ErrMsgStopTimeout, Data: h.sup.Status()})
		default:
			logger.ErrorF(ctx, "[Recorder] 停止失败: %v", err)
			c.JSON(http.StatusInternalServerError, Response{ErrorMsg: ErrMsgInternalError})
		}
		return
	}

	logger.InfoF(ctx, "[Recorder] 停止成功")
	h.record(c, audit.ActionStopRecorder, audit.ResultSuccess, nil)
	c.JSON(http.StatusOK, Response{Data: h.sup.Status()})
}

// Status 查询录制程序状态
func (h *Handler) Status(c *gin.Context) {
	_, span := otel_trace.Start(c.Request.Context(), "recorder.Status")
	defer span.End()

	c.JSON(http.StatusOK, Response{Data: h.sup.Status()})
}

// record 写入操作日志，失败只记录不影响请求
func (h *Handler) record(c *gin.Context, action, result string, details audit.OperationDetails) {
	err := audit.RecordFromGin(c, h.auditRepo,
		auth.GetUserIDFromContext(c), auth.GetUsernameFromContext(c),
		action, audit.ResourceRecorder, "", result, details)
	if err != nil {
		logger.WarnF(c.Request.Context(), "[Recorder] 写入操作日志失败: %v", err)
	}
}
