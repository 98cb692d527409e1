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

// Package settings 提供录制程序配置管理的 HTTP 处理器
package settings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamrec/recorderX/internal/apps/audit"
	"github.com/streamrec/recorderX/internal/apps/auth"
	"github.com/streamrec/recorderX/internal/logger"
	"github.com/streamrec/recorderX/internal/otel_trace"
)

// Response 统一响应结构
type Response struct {
	ErrorMsg string      `json:"error_msg"`
	Data     interface{} `json:"data"`
}

// URLPayload 地址列表请求和响应数据
type URLPayload struct {
	Content string `json:"content"`
}

// Handler 配置管理处理器
type Handler struct {
	svc       *Service
	auditRepo *audit.Repository
}

// NewHandler 创建配置管理处理器
func NewHandler(svc *Service, auditRepo *audit.Repository) *Handler {
	return &Handler{svc: svc, auditRepo: auditRepo}
}

// GetMain 读取 INI 主配置
func (h *Handler) GetMain(c *gin.Context) {
	ctx, span := otel_trace.Start(c.Request.Context(), "settings.GetMain")
	defer span.End()

	sections, err := h.svc.GetMain(ctx)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, Response{ErrorMsg: ErrMsgConfigNotFound})
			return
		}
		logger.ErrorF(ctx, "[Settings] 读取主配置失败: %v", err)
		c.JSON(http.StatusInternalServerError, Response{ErrorMsg: ErrMsgReadFailed})
		return
	}

	c.JSON(http.StatusOK, Response{Data: sections})
}

// UpdateMain 合并更新 INI 主配置
func (h *Handler) UpdateMain(c *gin.Context) {
	ctx, span := otel_trace.Start(c.Request.Context(), "settings.UpdateMain")
	defer span.End()

	var updates Sections
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, Response{ErrorMsg: ErrMsgInvalidPayload})
		return
	}

	if err := h.svc.UpdateMain(ctx, updates); err != nil {
		h.record(c, audit.ActionUpdateSettings, audit.ResultFailed, audit.OperationDetails{"error": err.Error()})

		switch {
		case errors.Is(err, ErrEmptyUpdate):
			c.JSON(http.StatusBadRequest, Response{ErrorMsg: ErrMsgEmptyUpdate})
		case errors.Is(err, ErrConfigNotFound):
			c.JSON(http.StatusNotFound, Response{ErrorMsg: ErrMsgConfigNotFound})
		default:
			logger.ErrorF(ctx, "[Settings] 保存主配置失败: %v", err)
			c.JSON(http.StatusInternalServerError, Response{ErrorMsg: ErrMsgWriteFailed})
		}
		return
	}

	logger.InfoF(ctx, "[Settings] 主配置已更新, 分区数=%d", len(updates))
	h.record(c, audit.ActionUpdateSettings, audit.ResultSuccess, audit.OperationDetails{"sections": len(updates)})
	c.JSON(http.StatusOK, Response{})
}

// GetURLs 读取直播间地址列表
func (h *Handler) GetURLs(c *gin.Context) {
	ctx, span := otel_trace.Start(c.Request.Context(), "settings.GetURLs")
	defer span.End()

	content, err := h.svc.GetURLs(ctx)
	if err != nil {
		logger.ErrorF(ctx, "[Settings] 读取地址列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, Response{ErrorMsg: ErrMsgReadFailed})
		return
	}

	c.JSON(http.StatusOK, Response{Data: URLPayload{Content: content}})
}

// UpdateURLs 覆盖保存直播间地址列表
func (h *Handler) UpdateURLs(c *gin.Context) {
	ctx, span := otel_trace.Start(c.Request.Context(), "settings.UpdateURLs")
	defer span.End()

	var payload URLPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{ErrorMsg: ErrMsgInvalidPayload})
		return
	}

	if err := h.svc.SaveURLs(ctx, payload.Content); err != nil {
		h.record(c, audit.ActionUpdateURLs, audit.ResultFailed, audit.OperationDetails{"error": err.Error()})
		logger.ErrorF(ctx, "[Settings] 保存地址列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, Response{ErrorMsg: ErrMsgWriteFailed})
		return
	}

	logger.InfoF(ctx, "[Settings] 地址列表已更新, 字节数=%d", len(payload.Content))
	h.record(c, audit.ActionUpdateURLs, audit.ResultSuccess, nil)
	c.JSON(http.StatusOK, Response{})
}

// record 写入操作日志，失败只记录不影响请求
func (h *Handler) record(c *gin.Context, action, result string, details audit.OperationDetails) {
	err := audit.RecordFromGin(c, h.auditRepo,
		auth.GetUserIDFromContext(c), auth.GetUsernameFromContext(c),
		action, audit.ResourceSettings, "", result, details)
	if err != nil {
		logger.WarnF(c.Request.Context(), "[Settings] 写入操作日志失败: %v", err)
	}
}
