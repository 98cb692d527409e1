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

import "errors"

// Error definitions for operation log handling.
// 操作日志处理的错误定义。
var (
	// ErrOperationLogNotFound indicates the requested operation log does not exist.
	// ErrOperationLogNotFound 表示请求的操作日志不存在。
	ErrOperationLogNotFound = errors.New("audit: operation log not found")
	// ErrActionEmpty indicates the action is empty.
	// ErrActionEmpty 表示操作为空。
	ErrActionEmpty = errors.New("audit: action cannot be empty")
	// ErrResourceTypeEmpty indicates the resource type is empty.
	// ErrResourceTypeEmpty 表示资源类型为空。
	ErrResourceTypeEmpty = errors.New("audit: resource type cannot be empty")
)

// Error codes for operation log handling.
// 操作日志处理的错误代码。
const (
	ErrCodeOperationLogNotFound = 4001
	ErrCodeActionEmpty          = 4002
	ErrCodeResourceTypeEmpty    = 4003
)
