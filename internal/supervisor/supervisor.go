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

// Package supervisor provides recorder process lifecycle management and live
// console output fan-out for the web panel.
// supervisor 包为 Web 面板提供录制程序进程生命周期管理和控制台输出的实时扇出。
//
// This package provides:
// 此包提供：
// - Start, Stop, Status operations / 启动、停止、状态查询操作
// - Line-by-line output relay with escape sanitization / 带转义净化的逐行输出中继
// - Ordered event broadcast to any number of observers / 向任意数量观察者的有序事件广播
// - Graceful shutdown with timeout / 带超时的优雅关闭
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State represents the lifecycle state of the supervised recorder
// State 表示被监管录制程序的生命周期状态
type State string

const (
	// StateIdle indicates no recorder process exists
	// StateIdle 表示不存在录制程序进程
	StateIdle State = "idle"

	// StateStarting indicates a start is being validated and spawned
	// StateStarting 表示正在校验并启动
	StateStarting State = "starting"

	// StateRunning indicates the recorder process is running
	// StateRunning 表示录制程序正在运行
	StateRunning State = "running"

	// StateStopping indicates a graceful stop is in flight
	// StateStopping 表示优雅停止正在进行
	StateStopping State = "stopping"

	// StateFailed indicates the last start attempt failed.
	// The state is transient: a failed start settles back to idle with the
	// failure reason kept in Status.LastError.
	// StateFailed 表示最近一次启动失败。该状态是瞬态的：
	// 启动失败后回落到 idle，失败原因保留在 Status.LastError 中。
	StateFailed State = "failed"
)

// DefaultStopTimeout is the default graceful stop timeout
// DefaultStopTimeout 是默认的优雅停止超时时间
const DefaultStopTimeout = 5 * time.Second

// Config describes how to locate and spawn the recorder worker
// Config 描述如何定位和启动录制程序工作进程
type Config struct {
	// WorkDir is the recorder working directory
	// WorkDir 是录制程序工作目录
	WorkDir string

	// Script is the recorder entry script path
	// Script 是录制程序入口脚本路径
	Script string

	// Interpreter is the interpreter used to run the script
	// Interpreter 是运行脚本的解释器
	Interpreter string

	// InterpreterArgs are extra interpreter flags placed before the script
	// InterpreterArgs 是置于脚本之前的额外解释器参数
	InterpreterArgs []string

	// Environment variables to set in addition to the inherited ones
	// 在继承环境之外额外设置的环境变量
	Environment map[string]string

	// StopTimeout bounds the graceful stop wait (defaults to DefaultStopTimeout)
	// StopTimeout 限定优雅停止的等待时长（默认为 DefaultStopTimeout）
	StopTimeout time.Duration
}

// Status is the read-only projection of the supervisor state
// Status 是监管器状态的只读投影
type Status struct {
	State     State     `json:"state"`
	Running   bool      `json:"is_running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Supervisor owns the single recorder worker handle and its lifecycle state
// machine. All state mutation is funneled through the supervisor's lock; the
// lock is held only across state transitions, never across the worker's own
// execution. At most one worker handle exists at any time.
// Supervisor 独占持有唯一的录制程序工作进程句柄及其生命周期状态机。
// 所有状态变更都经由监管器的锁；锁仅在状态转换期间持有，绝不跨越工作进程自身的执行。
// 任意时刻至多存在一个工作进程句柄。
type Supervisor struct {
	cfg    Config
	hub    *Hub
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	handle    *WorkerHandle
	startedAt time.Time
	lastError string
}

// New creates a new Supervisor bound to the given hub
// New 创建一个绑定到给定 Hub 的新 Supervisor 实例
func New(cfg Config, hub *Hub, logger *zap.Logger) *Supervisor {
	if cfg.StopTimeout == 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{
		cfg:    cfg,
		hub:    hub,
		logger: logger,
		state:  StateIdle,
	}
}

// Hub returns the event hub observers subscribe to
// Hub 返回观察者订阅的事件 Hub
func (s *Supervisor) Hub() *Hub {
	return s.hub
}

// Start validates the recorder environment, spawns the worker and launches
// the output relay bound to the new handle and the shared hub.
// Allowed only from idle; a concurrent Start while not idle returns
// ErrAlreadyRunning without side effects.
// Start 校验录制程序环境、启动工作进程，并启动绑定到新句柄和共享 Hub 的输出中继。
// 仅允许从 idle 状态调用；非 idle 时的并发 Start 返回 ErrAlreadyRunning 且无副作用。
func (s *Supervisor) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return 0, ErrAlreadyRunning
	}
	s.state = StateStarting
	s.mu.Unlock()

	// 校验脚本和解释器
	if err := s.validate(); err != nil {
		s.failStart(err)
		return 0, err
	}

	cmd, pr, pw, err := s.buildCommand()
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrStartFailed, err)
		s.failStart(wrapped)
		return 0, wrapped
	}

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		wrapped := fmt.Errorf("%w: %v", ErrStartFailed, err)
		s.failStart(wrapped)
		return 0, wrapped
	}

	// 关闭父进程持有的写端副本，使 EOF 与工作进程退出对齐
	// Closing the parent's write end aligns EOF with worker exit.
	_ = pw.Close()

	h := &WorkerHandle{
		pid:    cmd.Process.Pid,
		cmd:    cmd,
		stdout: pr,
		exited: make(chan struct{}),
	}
	go h.wait()

	s.mu.Lock()
	s.handle = h
	s.state = StateRunning
	s.startedAt = time.Now()
	s.lastError = ""
	s.mu.Unlock()

	s.logger.Info("recorder started / 录制程序已启动",
		zap.Int("pid", h.pid),
		zap.String("script", s.cfg.Script),
		zap.String("work_dir", s.cfg.WorkDir))

	// 状态事件先于中继发布的任何日志事件
	// The running status event precedes any log event from the relay.
	s.hub.Publish(StatusEvent{Running: true, PID: h.pid})

	relay := NewOutputRelay(s.logger)
	go func() {
		relay.Run(h, s.hub)
		s.markExited(h)
	}()

	return h.pid, nil
}

// Stop sends a graceful terminate signal to the worker and waits up to the
// configured timeout for it to exit. Allowed only from running. On timeout
// the worker's fate is left to the relay, which will reconcile the state once
// the process actually exits; no forced kill is attempted.
// Stop 向工作进程发送优雅终止信号并在配置的超时内等待其退出。仅允许从 running 状态调用。
// 超时后进程的归宿交给中继处理，待进程真正退出后状态会收敛；不会强制杀死进程。
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.state = StateStopping
	h := s.handle
	timeout := s.cfg.StopTimeout
	s.mu.Unlock()

	s.logger.Info("stopping recorder / 正在停止录制程序", zap.Int("pid", h.pid))
	if err := h.terminate(); err != nil {
		// 进程可能已经自行退出
		s.logger.Warn("terminate signal failed / 发送终止信号失败", zap.Int("pid", h.pid), zap.Error(err))
	}

	select {
	case <-h.Exited():
		// 与中继的退出检测幂等收敛，最终只发生一次 Idle 转换
		s.markExited(h)
		s.logger.Info("recorder stopped / 录制程序已停止", zap.Int("pid", h.pid))
		return nil
	case <-time.After(timeout):
		s.logger.Warn("recorder did not exit within timeout / 录制程序未在超时内退出",
			zap.Int("pid", h.pid), zap.Duration("timeout", timeout))
		return ErrStopTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current state projected to {is_running, pid}.
// Read-only, never blocks on I/O.
// Status 返回投影为 {is_running, pid} 的当前状态。只读，绝不阻塞在 I/O 上。
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		State:     s.state,
		Running:   s.state == StateRunning || s.state == StateStopping,
		LastError: s.lastError,
	}
	if s.handle != nil {
		status.PID = s.handle.pid
		status.StartedAt = s.startedAt
	}
	return status
}

// markExited converges the state to idle exactly once per run.
// Called both from the relay goroutine and from a successful Stop; the handle
// identity guard makes the duplicate call a no-op.
// markExited 使状态每次运行恰好收敛到 idle 一次。
// 中继 goroutine 和成功的 Stop 都会调用；句柄一致性校验使重复调用成为空操作。
func (s *Supervisor) markExited(h *WorkerHandle) {
	s.mu.Lock()
	if s.handle != h {
		s.mu.Unlock()
		return
	}
	s.handle = nil
	s.state = StateIdle
	s.mu.Unlock()

	s.logger.Info("recorder exited / 录制程序已退出", zap.Int("pid", h.pid), zap.Error(h.exitErr))
}

// failStart records a start failure and settles the state back to idle
// failStart 记录启动失败并使状态回落到 idle
func (s *Supervisor) failStart(err error) {
	s.mu.Lock()
	s.state = StateFailed
	s.lastError = err.Error()
	s.state = StateIdle
	s.mu.Unlock()

	s.logger.Warn("recorder start failed / 录制程序启动失败", zap.Error(err))
}

// validate checks that the entry script exists and the interpreter is resolvable
// validate 检查入口脚本存在且解释器可解析
func (s *Supervisor) validate() error {
	if _, err := os.Stat(s.cfg.Script); err != nil {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, s.cfg.Script)
	}

	if _, err := os.Stat(s.cfg.Interpreter); err != nil {
		// 不是路径时按 PATH 查找
		if _, lookErr := exec.LookPath(s.cfg.Interpreter); lookErr != nil {
			return fmt.Errorf("%w: %s", ErrInterpreterNotFound, s.cfg.Interpreter)
		}
	}
	return nil
}

// buildCommand builds the worker command with stdout and stderr merged into a
// single pipe. The parent keeps only the read end, so end-of-stream arrives
// exactly when the worker releases the pipe.
// buildCommand 构建工作进程命令，将 stdout 和 stderr 合并到同一管道。
// 父进程只保留读端，因此流结束恰好发生在工作进程释放管道时。
func (s *Supervisor) buildCommand() (*exec.Cmd, *os.File, *os.File, error) {
	args := make([]string, 0, len(s.cfg.InterpreterArgs)+1)
	args = append(args, s.cfg.InterpreterArgs...)
	args = append(args, s.cfg.Script)

	cmd := exec.Command(s.cfg.Interpreter, args...)
	cmd.Dir = s.cfg.WorkDir

	// 设置环境变量
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, "PYTHONPATH="+s.cfg.WorkDir)
	for k, v := range s.cfg.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, nil, err
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	return cmd, pr, pw, nil
}
