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

import "time"

// EventKind represents the kind of an event delivered to observers
// EventKind 表示推送给观察者的事件类型
type EventKind string

const (
	// EventKindLog indicates a sanitized console output line
	// EventKindLog 表示一条净化后的控制台输出
	EventKindLog EventKind = "log"

	// EventKindStatus indicates a recorder status change
	// EventKindStatus 表示录制程序状态变化
	EventKindStatus EventKind = "status"
)

// Event is anything the hub can deliver to observers
// Event 是可以通过 Hub 推送给观察者的事件
type Event interface {
	Kind() EventKind
}

// LogEvent is one sanitized line of recorder console output.
// Produced only by the output relay, immutable once produced.
// LogEvent 是一条净化后的录制程序控制台输出，仅由输出中继产生，产生后不可变。
type LogEvent struct {
	// Seq is strictly increasing within one recorder run and resets per run
	// Seq 在单次运行内严格递增，每次运行重新计数
	Seq uint64 `json:"seq"`

	// Raw is the line as read from the process, before sanitization
	// Raw 是净化前从进程读取的原始行
	Raw string `json:"-"`

	// Text is the line with terminal escape sequences stripped
	// Text 是去除终端转义序列后的行
	Text string `json:"text"`

	// Timestamp is when the line was read
	// Timestamp 是读取该行的时间
	Timestamp time.Time `json:"timestamp"`
}

// Kind implements Event
func (LogEvent) Kind() EventKind { return EventKindLog }

// StatusEvent reports whether the recorder is running
// StatusEvent 报告录制程序是否在运行
type StatusEvent struct {
	Running bool `json:"is_running"`
	PID     int  `json:"pid,omitempty"`
}

// Kind implements Event
func (StatusEvent) Kind() EventKind { return EventKindStatus }
