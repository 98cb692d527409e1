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

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/streamrec/recorderX/internal/supervisor"
)

// 用 shell 脚本模拟录制程序，搭建带会话中间件的测试路由
func setupRecorderRouter(t *testing.T, script string) (*gin.Engine, *supervisor.Supervisor) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("handler tests rely on /bin/sh")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "worker.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write worker script: %v", err)
	}

	sup := supervisor.New(supervisor.Config{
		WorkDir:     dir,
		Script:      path,
		Interpreter: "/bin/sh",
		StopTimeout: 2 * time.Second,
	}, supervisor.NewHub(), nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("recorderx_session", store))

	h := NewHandler(sup, nil)
	router.POST("/recorder/start", h.Start)
	router.POST("/recorder/stop", h.Stop)
	router.GET("/recorder/status", h.Status)
	router.GET("/ws", h.Stream)

	return router, sup
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]interface{}) {
	t.Helper()
	var body struct {
		ErrorMsg string                 `json:"error_msg"`
		Data     map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return body.ErrorMsg, body.Data
}

func TestStatusWhenIdle(t *testing.T) {
	router, _ := setupRecorderRouter(t, "#!/bin/sh\necho hi\n")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/recorder/status", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	errMsg, data := decodeResponse(t, w)
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}
	if data["is_running"] != false || data["state"] != "idle" {
		t.Fatalf("expected idle status, got %v", data)
	}
}

func TestStartStopFlow(t *testing.T) {
	router, sup := setupRecorderRouter(t, "#!/bin/sh\n"+
		"trap 'exit 0' TERM\n"+
		"echo ready\n"+
		"while true; do sleep 0.1; done\n")

	// 启动
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recorder/start", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	_, data := decodeResponse(t, w)
	if pid, ok := data["pid"].(float64); !ok || pid <= 0 {
		t.Fatalf("expected positive pid, got %v", data["pid"])
	}

	// 重复启动返回冲突
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recorder/start", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("second start: expected 409, got %d", w.Code)
	}
	errMsg, _ := decodeResponse(t, w)
	if errMsg != ErrMsgAlreadyRunning {
		t.Fatalf("expected already running message, got %s", errMsg)
	}

	// 停止
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recorder/stop", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	// 等待状态收敛后再次停止返回冲突
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && sup.Status().State != supervisor.StateIdle {
		time.Sleep(10 * time.Millisecond)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recorder/stop", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("second stop: expected 409, got %d", w.Code)
	}
}

func TestStartValidationFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("handler tests rely on /bin/sh")
	}

	// 使用不存在脚本的实例验证错误映射
	badSup := supervisor.New(supervisor.Config{
		WorkDir:     t.TempDir(),
		Script:      "/nonexistent/main.py",
		Interpreter: "/bin/sh",
	}, supervisor.NewHub(), nil)

	gin.SetMode(gin.TestMode)
	badRouter := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	badRouter.Use(sessions.Sessions("recorderx_session", store))
	badRouter.POST("/recorder/start", NewHandler(badSup, nil).Start)

	w := httptest.NewRecorder()
	badRouter.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recorder/start", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing script, got %d", w.Code)
	}
	errMsg, _ := decodeResponse(t, w)
	if errMsg != ErrMsgScriptNotFound {
		t.Fatalf("expected script not found message, got %s", errMsg)
	}
}

func TestStreamDeliversEventsInOrder(t *testing.T) {
	router, sup := setupRecorderRouter(t, "#!/bin/sh\n"+
		"echo 'A'\n"+
		"printf '\\033[31mB\\033[0m\\n'\n")

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readMessage := func() WSMessage {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read message: %v", err)
		}
		return msg
	}

	// 连接后的第一条消息是状态快照
	msg := readMessage()
	if msg.Type != WSTypeStatus {
		t.Fatalf("expected status snapshot first, got %+v", msg)
	}

	if _, err := sup.Start(t.Context()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// 运行状态 -> 两条净化日志 -> 终止状态
	msg = readMessage()
	if msg.Type != WSTypeStatus {
		t.Fatalf("expected running status, got %+v", msg)
	}

	var texts []string
	for i := 0; i < 2; i++ {
		msg = readMessage()
		if msg.Type != WSTypeLog {
			t.Fatalf("expected log message, got %+v", msg)
		}
		payload, ok := msg.Payload.(map[string]interface{})
		if !ok {
			t.Fatalf("unexpected payload type: %T", msg.Payload)
		}
		texts = append(texts, payload["text"].(string))
	}
	if texts[0] != "A" || texts[1] != "B" {
		t.Fatalf("expected sanitized lines [A B], got %v", texts)
	}

	msg = readMessage()
	if msg.Type != WSTypeStatus {
		t.Fatalf("expected terminal status, got %+v", msg)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok || payload["is_running"] != false {
		t.Fatalf("expected not-running terminal status, got %+v", msg)
	}
}
