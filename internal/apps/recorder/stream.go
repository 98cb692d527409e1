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

// Package recorder 提供录制程序控制台输出的 WebSocket 推送
package recorder

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/streamrec/recorderX/internal/logger"
	"github.com/streamrec/recorderX/internal/supervisor"
)

// WebSocket 消息类型
const (
	WSTypeLog    = "log"
	WSTypeStatus = "status"
)

// WebSocket 连接参数
const (
	// writeWait 单次写操作的最长等待时间
	writeWait = 10 * time.Second

	// pongWait 等待客户端 pong 响应的最长时间
	pongWait = 60 * time.Second

	// pingPeriod 心跳间隔，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
)

// WSMessage 推送给客户端的消息
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// upgrader WebSocket 升级器
// 面板和 API 同源部署，跨域控制由外层中间件处理
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Stream 将录制程序的事件流推送到 WebSocket 连接
// 连接建立后首先收到当前状态快照，之后按发布顺序收到日志和状态事件
func (h *Handler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WarnF(c.Request.Context(), "[Recorder] WebSocket 升级失败: %v", err)
		return
	}

	obs := h.sup.Hub().Subscribe()
	logger.InfoF(c.Request.Context(), "[Recorder] 观察者接入: %s", obs.ID)

	defer func() {
		h.sup.Hub().Unsubscribe(obs)
		_ = conn.Close()
		logger.InfoF(c.Request.Context(), "[Recorder] 观察者断开: %s", obs.ID)
	}()

	// 读取泵：消费客户端消息以处理 pong 和连接关闭
	// 客户端主动关闭时通知写入泵退出
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-obs.Events():
			if !ok {
				// 事件缓冲溢出，观察者已被移除，通知客户端重连
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "event buffer overflow"),
					time.Now().Add(writeWait))
				return
			}

			msg := WSMessage{
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Payload:   ev,
			}
			switch ev.Kind() {
			case supervisor.EventKindLog:
				msg.Type = WSTypeLog
			case supervisor.EventKindStatus:
				msg.Type = WSTypeStatus
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}
