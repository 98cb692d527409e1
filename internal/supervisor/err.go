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

package supervisor

import "errors"

// Common errors for recorder supervision
// 录制程序监管的常见错误
var (
	// ErrAlreadyRunning indicates a start was attempted while the recorder is not idle
	// ErrAlreadyRunning 表示在录制程序非空闲时尝试启动
	ErrAlreadyRunning = errors.New("supervisor: recorder is already running")

	// ErrNotRunning indicates a stop was attempted while the recorder is not running
	// ErrNotRunning 表示在录制程序未运行时尝试停止
	ErrNotRunning = errors.New("supervisor: recorder is not running")

	// ErrScriptNotFound indicates the recorder entry script does not exist
	// ErrScriptNotFound 表示录制程序入口脚本不存在
	ErrScriptNotFound = errors.New("supervisor: recorder script not found")

	// ErrInterpreterNotFound indicates the configured interpreter is not available
	// ErrInterpreterNotFound 表示配置的解释器不可用
	ErrInterpreterNotFound = errors.New("supervisor: interpreter not found")

	// ErrStartFailed indicates the recorder process failed to spawn
	// ErrStartFailed 表示录制程序进程启动失败
	ErrStartFailed = errors.New("supervisor: recorder failed to start")

	// ErrStopTimeout indicates the recorder did not exit within the graceful timeout
	// ErrStopTimeout 表示录制程序未在优雅超时内退出
	ErrStopTimeout = errors.New("supervisor: recorder stop timed out")
)
