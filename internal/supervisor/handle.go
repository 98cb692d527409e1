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
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

// WorkerHandle is the opaque identity of one spawned recorder process.
// It is owned exclusively by the Supervisor while running and discarded
// once the process has been confirmed exited.
// WorkerHandle 是一个已启动录制程序进程的不透明标识。
// 运行期间由 Supervisor 独占持有，进程确认退出后即被丢弃。
type WorkerHandle struct {
	pid    int
	cmd    *exec.Cmd
	stdout *os.File

	// exited is closed by the wait goroutine once the process has exited
	// exited 在进程退出后由等待 goroutine 关闭
	exited  chan struct{}
	exitErr error
}

// PID returns the worker process id
// PID 返回工作进程 ID
func (h *WorkerHandle) PID() int {
	return h.pid
}

// Exited returns a channel that is closed once the process has exited
// Exited 返回一个在进程退出后被关闭的通道
func (h *WorkerHandle) Exited() <-chan struct{} {
	return h.exited
}

// wait reaps the process and closes the exited channel.
// Must run on its own goroutine, started right after spawn.
// wait 回收进程并关闭 exited 通道。必须在启动后立即运行于独立 goroutine。
func (h *WorkerHandle) wait() {
	h.exitErr = h.cmd.Wait()
	close(h.exited)
}

// terminate sends a graceful terminate signal to the worker
// terminate 向工作进程发送优雅终止信号
func (h *WorkerHandle) terminate() error {
	return sendSignal(h.pid, syscall.SIGTERM)
}

// sendSignal sends a signal to a process
// sendSignal 向进程发送信号
func sendSignal(pid int, sig syscall.Signal) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}

	if runtime.GOOS == "windows" {
		// On Windows, we can only kill the process
		// 在 Windows 上，我们只能终止进程
		if sig == syscall.SIGKILL || sig == syscall.SIGTERM {
			return process.Kill()
		}
		return nil
	}

	return process.Signal(sig)
}

// isProcessAlive checks if a process with the given PID is alive
// isProcessAlive 检查给定 PID 的进程是否存活
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds, so we need to send signal 0 to check
	// 在 Unix 上，FindProcess 总是成功，所以我们需要发送信号 0 来检查
	if runtime.GOOS != "windows" {
		err = process.Signal(syscall.Signal(0))
		return err == nil
	}

	// On Windows, we need a different approach
	// 在 Windows 上，我们需要不同的方法
	return checkProcessWindows(pid)
}

// checkProcessWindows checks if a process is alive on Windows
// checkProcessWindows 在 Windows 上检查进程是否存活
func checkProcessWindows(pid int) bool {
	// Use tasklist command to check if process exists
	// 使用 tasklist 命令检查进程是否存在
	cmd := exec.Command("tasklist", "/FI", "PID eq "+strconv.Itoa(pid), "/NH")
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(output), strconv.Itoa(pid))
}
