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

package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamrec/recorderX/internal/logger"
	"github.com/streamrec/recorderX/internal/otel_trace"
)

// Default pagination values.
// 默认分页值。
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Handler provides HTTP handlers for the operation log.
// Handler 提供操作日志的 HTTP 处理器。
type Handler struct {
	repo *Repository
}

// NewHandler creates a new Handler instance.
// NewHandler 创建一个新的 Handler 实例。
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListResponse 操作日志列表响应
type ListResponse struct {
	ErrorMsg string      `json:"error_msg"`
	Data     interface{} `json:"data"`
}

// listData 列表响应数据
type listData struct {
	Items []*OperationLogInfo `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
}

// List returns operation logs matching the query filters with pagination.
// List 返回符合查询过滤条件的操作日志（分页）。
func (h *Handler) List(c *gin.Context) {
	ctx, span := otel_trace.Start(c.Request.Context(), "audit.List")
	defer span.End()

	filter := &OperationLogFilter{
		Username:     c.Query("username"),
		Action:       c.Query("action"),
		ResourceType: c.Query("resource_type"),
		Result:       c.Query("result"),
		Page:         DefaultPage,
		PageSize:     DefaultPageSize,
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil && size > 0 {
		if size > MaxPageSize {
			size = MaxPageSize
		}
		filter.PageSize = size
	}

	// 时间范围使用 RFC3339 格式
	if start := c.Query("start_time"); start != "" {
		if ts, err := time.Parse(time.RFC3339, start); err == nil {
			filter.StartTime = &ts
		}
	}
	if end := c.Query("end_time"); end != "" {
		if ts, err := time.Parse(time.RFC3339, end); err == nil {
			filter.EndTime = &ts
		}
	}

	logs, total, err := h.repo.ListOperationLogs(ctx, filter)
	if err != nil {
		logger.ErrorF(ctx, "[Audit] 查询操作日志失败: %v", err)
		c.JSON(http.StatusInternalServerError, ListResponse{ErrorMsg: "查询操作日志失败"})
		return
	}

	items := make([]*OperationLogInfo, 0, len(logs))
	for _, log := range logs {
		items = append(items, log.ToOperationLogInfo())
	}

	c.JSON(http.StatusOK, ListResponse{
		Data: listData{
			Items: items,
			Total: total,
			Page:  filter.Page,
		},
	})
}
