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

import (
	"bufio"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default configuration values for the output relay
// 输出中继的默认配置值
const (
	// DefaultMaxLineBytes is the maximum accepted length of one output line
	// DefaultMaxLineBytes 是单行输出的最大接受长度
	DefaultMaxLineBytes = 256 * 1024

	// DefaultDrainGrace is how long the relay keeps draining buffered output
	// after the worker has been observed exited before closing the stream
	// DefaultDrainGrace 是观察到工作进程退出后，中继在关闭流之前继续排空缓冲输出的时长
	DefaultDrainGrace = 2 * time.Second
)

// OutputRelay bridges one recorder run's raw output stream into a sequence of
// sanitized LogEvents followed by a terminal StatusEvent on the hub.
// OutputRelay 将一次录制程序运行的原始输出流转换为一串净化后的 LogEvent，
// 并以一条终止 StatusEvent 结束，全部发布到 Hub。
type OutputRelay struct {
	logger     *zap.Logger
	drainGrace time.Duration
}

// NewOutputRelay creates a new OutputRelay instance
// NewOutputRelay 创建一个新的 OutputRelay 实例
func NewOutputRelay(logger *zap.Logger) *OutputRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutputRelay{
		logger:     logger,
		drainGrace: DefaultDrainGrace,
	}
}

// Run blocks reading the worker's output stream line by line until
// end-of-stream, publishing each non-empty sanitized line to the hub.
// Must run on its own goroutine, never the one handling control requests.
//
// Worker exit is observed as end-of-stream: the supervisor holds no write end
// of the pipe, so EOF arrives exactly when the worker releases it. If the
// worker exits but the pipe is kept open by an orphaned child, the relay
// drains for a grace period and then force-closes the stream. A read error is
// treated the same as a normal exit. The stream is closed on every exit path
// and the terminal StatusEvent is always the last event of the run.
//
// Run 阻塞式地逐行读取工作进程的输出流直到流结束，将每个非空的净化行发布到 Hub。
// 必须运行在独立 goroutine 上，绝不能占用处理控制请求的执行单元。
//
// 进程退出通过流结束观察：监管进程不持有管道写端，EOF 恰好在工作进程释放管道时到达。
// 若工作进程已退出但孤儿子进程仍持有管道，中继在宽限期内继续排空后强制关闭流。
// 读取错误与正常退出同样处理。所有退出路径都会关闭流，终止 StatusEvent 始终是本次运行的最后一个事件。
func (r *OutputRelay) Run(h *WorkerHandle, hub *Hub) {
	defer func() {
		_ = h.stdout.Close()
		// 终止状态事件必须是本次运行的最后一个事件
		hub.Publish(StatusEvent{Running: false})
	}()

	// 退出看门狗：进程退出后留出排空窗口，再关闭读端以解除阻塞的读取
	// Exit watchdog: after the worker exits, allow a drain window, then close
	// the read end to unblock a pending read.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-done:
		case <-h.Exited():
			select {
			case <-done:
			case <-time.After(r.drainGrace):
				r.logger.Warn("recorder exited but output stream stayed open, closing / 录制程序已退出但输出流未关闭，强制关闭")
				_ = h.stdout.Close()
			}
		}
	}()

	var seq uint64
	scanner := bufio.NewScanner(h.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), DefaultMaxLineBytes)

	for scanner.Scan() {
		raw := scanner.Text()
		text := strings.TrimSpace(StripEscapes(raw))
		if text == "" {
			// 空行和纯转义序列行不发布
			continue
		}

		seq++
		hub.Publish(LogEvent{
			Seq:       seq,
			Raw:       raw,
			Text:      text,
			Timestamp: time.Now(),
		})
		r.logger.Debug("recorder output / 录制程序输出", zap.Uint64("seq", seq), zap.String("line", text))
	}

	if err := scanner.Err(); err != nil {
		// 读取错误等同于进程退出，不上抛为致命错误
		// A read error is the normal way an unexpected death surfaces here.
		r.logger.Warn("recorder output stream closed with error / 录制程序输出流异常关闭", zap.Error(err))
	}

	r.logger.Info("output relay finished / 输出中继结束", zap.Uint64("lines", seq), zap.Int("pid", h.PID()))
}
