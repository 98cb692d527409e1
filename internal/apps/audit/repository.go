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
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repository provides data access operations for OperationLog entities.
// Repository 提供 OperationLog 实体的数据访问操作。
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository instance.
// NewRepository 创建一个新的 Repository 实例。
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateOperationLog creates a new operation log record in the database.
// CreateOperationLog 在数据库中创建新的操作日志记录。
func (r *Repository) CreateOperationLog(ctx context.Context, log *OperationLog) error {
	// Validate required fields
	// 验证必填字段
	if log.Action == "" {
		return ErrActionEmpty
	}
	if log.ResourceType == "" {
		return ErrResourceTypeEmpty
	}
	if log.Result == "" {
		log.Result = ResultSuccess
	}

	return r.db.WithContext(ctx).Create(log).Error
}

// GetOperationLogByID retrieves an operation log by its ID.
// GetOperationLogByID 通过 ID 获取操作日志。
// Returns ErrOperationLogNotFound if the operation log does not exist.
// 如果操作日志不存在，则返回 ErrOperationLogNotFound。
func (r *Repository) GetOperationLogByID(ctx context.Context, id uint) (*OperationLog, error) {
	var log OperationLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperationLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

// ListOperationLogs retrieves operation logs based on filter criteria with pagination.
// ListOperationLogs 根据过滤条件和分页获取操作日志列表。
// Returns the list of operation logs and total count.
// 返回操作日志列表和总数。
func (r *Repository) ListOperationLogs(ctx context.Context, filter *OperationLogFilter) ([]*OperationLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&OperationLog{})

	// Apply filters - 应用过滤条件
	if filter != nil {
		if filter.UserID != nil {
			query = query.Where("user_id = ?", *filter.UserID)
		}
		if filter.Username != "" {
			query = query.Where("username LIKE ?", "%"+filter.Username+"%")
		}
		if filter.Action != "" {
			query = query.Where("action = ?", filter.Action)
		}
		if filter.ResourceType != "" {
			query = query.Where("resource_type = ?", filter.ResourceType)
		}
		if filter.Result != "" {
			query = query.Where("result = ?", filter.Result)
		}
		if filter.StartTime != nil {
			query = query.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			query = query.Where("created_at <= ?", *filter.EndTime)
		}
	}

	// Get total count - 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination - 应用分页
	if filter != nil && filter.PageSize > 0 {
		offset := 0
		if filter.Page > 0 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Execute query - 执行查询
	var logs []*OperationLog
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// DeleteOperationLog removes an operation log record from the database.
// DeleteOperationLog 从数据库中删除操作日志记录。
// Returns ErrOperationLogNotFound if the operation log does not exist.
// 如果操作日志不存在，则返回 ErrOperationLogNotFound。
func (r *Repository) DeleteOperationLog(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&OperationLog{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOperationLogNotFound
	}
	return nil
}

// DeleteOperationLogsBefore deletes operation logs created before the specified time.
// DeleteOperationLogsBefore 删除指定时间之前创建的操作日志。
// This is useful for implementing log retention policies.
// 这对于实现日志保留策略很有用。
func (r *Repository) DeleteOperationLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&OperationLog{})
	return result.RowsAffected, result.Error
}
