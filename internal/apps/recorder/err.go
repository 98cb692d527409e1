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

package recorder

// 错误消息常量
const (
	ErrMsgAlreadyRunning     = "录制程序已在运行"
	ErrMsgNotRunning         = "录制程序未在运行"
	ErrMsgScriptNotFound     = "录制程序入口脚本不存在"
	ErrMsgInterpreterMissing = "Python 解释器不可用，请检查虚拟环境"
	ErrMsgStartFailed        = "录制程序启动失败"
	ErrMsgStopTimeout        = "录制程序停止超时，进程可能仍在退出"
	ErrMsgInternalError      = "内部服务器错误"
)
