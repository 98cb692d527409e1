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

package settings

import "errors"

// 错误定义
var (
	ErrConfigNotFound = errors.New("settings: 录制程序配置文件不存在")
	ErrEmptyUpdate    = errors.New("settings: 更新内容不能为空")
)

// 错误消息常量
const (
	ErrMsgConfigNotFound = "录制程序配置文件不存在"
	ErrMsgReadFailed     = "读取配置失败"
	ErrMsgWriteFailed    = "保存配置失败"
	ErrMsgEmptyUpdate    = "更新内容不能为空"
	ErrMsgInvalidPayload = "请求格式错误"
)
