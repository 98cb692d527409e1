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

// Package audit provides the operation trail for the recorder panel.
// audit 包提供录制面板的操作追踪功能。
package audit

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Panel actions recorded in the operation log.
// 操作日志记录的面板操作。
const (
	ActionStartRecorder  = "start_recorder"
	ActionStopRecorder   = "stop_recorder"
	ActionUpdateSettings = "update_settings"
	ActionUpdateURLs     = "update_urls"
	ActionLogin          = "login"
	ActionLogout         = "logout"
)

// Resource types referenced by the operation log.
// 操作日志引用的资源类型。
const (
	ResourceRecorder = "recorder"
	ResourceSettings = "settings"
	ResourceSession  = "session"
)

// Operation results.
// 操作结果。
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// OperationDetails represents the JSON details for an operation log entry.
// OperationDetails 表示操作日志条目的 JSON 详情。
type OperationDetails map[string]interface{}

// Value implements the driver.Valuer interface for database storage.
// Value 实现 driver.Valuer 接口用于数据库存储。
func (d OperationDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface for database retrieval.
// Scan 实现 sql.Scanner 接口用于数据库读取。
func (d *OperationDetails) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("audit: failed to scan OperationDetails - expected []byte")
	}
	return json.Unmarshal(bytes, d)
}

// OperationLog represents one panel operation performed by a user.
// OperationLog 表示用户执行的一次面板操作。
type OperationLog struct {
	ID           uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       *uint            `json:"user_id" gorm:"index"`
	Username     string           `json:"username" gorm:"size:100"`
	Action       string           `json:"action" gorm:"size:50;not null;index"`
	ResourceType string           `json:"resource_type" gorm:"size:50;not null;index:idx_resource"`
	ResourceID   string           `json:"resource_id" gorm:"size:100;index:idx_resource"`
	Result       string           `json:"result" gorm:"size:20;not null;index"`
	Details      OperationDetails `json:"details" gorm:"type:json"`
	IPAddress    string           `json:"ip_address" gorm:"size:45"`
	UserAgent    string           `json:"user_agent" gorm:"size:500"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for the OperationLog model.
// TableName 指定 OperationLog 模型的表名。
func (OperationLog) TableName() string {
	return "operation_logs"
}

// OperationLogFilter represents filter criteria for querying operation logs.
// OperationLogFilter 表示查询操作日志的过滤条件。
type OperationLogFilter struct {
	UserID       *uint      `json:"user_id"`
	Username     string     `json:"username"`
	Action       string     `json:"action"`
	ResourceType string     `json:"resource_type"`
	Result       string     `json:"result"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Page         int        `json:"page"`
	PageSize     int        `json:"page_size"`
}

// OperationLogInfo represents operation log information for API responses.
// OperationLogInfo 表示 API 响应的操作日志信息。
type OperationLogInfo struct {
	ID           uint             `json:"id"`
	UserID       *uint            `json:"user_id"`
	Username     string           `json:"username"`
	Action       string           `json:"action"`
	ResourceType string           `json:"resource_type"`
	ResourceID   string           `json:"resource_id"`
	Result       string           `json:"result"`
	Details      OperationDetails `json:"details"`
	IPAddress    string           `json:"ip_address"`
	UserAgent    string           `json:"user_agent"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ToOperationLogInfo converts an OperationLog to OperationLogInfo.
// ToOperationLogInfo 将 OperationLog 转换为 OperationLogInfo。
func (o *OperationLog) ToOperationLogInfo() *OperationLogInfo {
	return &OperationLogInfo{
		ID:           o.ID,
		UserID:       o.UserID,
		Username:     o.Username,
		Action:       o.Action,
		ResourceType: o.ResourceType,
		ResourceID:   o.ResourceID,
		Result:       o.Result,
		Details:      o.Details,
		IPAddress:    o.IPAddress,
		UserAgent:    o.UserAgent,
		CreatedAt:    o.CreatedAt,
	}
}
