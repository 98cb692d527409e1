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
	"sync"

	"github.com/google/uuid"
)

// DefaultObserverBuffer is the per-observer event buffer size
// DefaultObserverBuffer 是每个观察者的事件缓冲区大小
const DefaultObserverBuffer = 256

// Observer is one subscribed event consumer, identified by a connection id.
// The hub owns the observer set; it does not own the underlying transport.
// Observer 是一个已订阅的事件消费者，以连接 ID 标识。
// Hub 拥有观察者集合，但不拥有其底层传输。
type Observer struct {
	// ID is the connection id assigned at subscribe time
	// ID 是订阅时分配的连接 ID
	ID string

	ch chan Event
}

// Events returns the observer's delivery channel.
// The channel is closed when the observer is unsubscribed or dropped.
// Events 返回观察者的事件通道。取消订阅或被移除时通道会被关闭。
func (o *Observer) Events() <-chan Event {
	return o.ch
}

// Hub is a thread-safe fan-out of recorder events to all current observers.
// Events are delivered to each observer in publish order; a slow observer
// whose buffer fills up is dropped instead of blocking the publisher.
// Hub 将录制程序事件线程安全地扇出给所有当前观察者。
// 事件按发布顺序投递给每个观察者；缓冲区满的慢观察者会被移除而不会阻塞发布者。
type Hub struct {
	mu         sync.Mutex
	observers  map[string]*Observer
	lastStatus StatusEvent
	bufferSize int
}

// NewHub creates a new Hub instance
// NewHub 创建一个新的 Hub 实例
func NewHub() *Hub {
	return &Hub{
		observers:  make(map[string]*Observer),
		bufferSize: DefaultObserverBuffer,
	}
}

// Subscribe registers a new observer and immediately delivers the current
// status snapshot to it, before any subsequently published event.
// Subscribe 注册一个新观察者，并在任何后续发布的事件之前立即向其投递当前状态快照。
func (h *Hub) Subscribe() *Observer {
	o := &Observer{
		ID: uuid.New().String(),
		ch: make(chan Event, h.bufferSize),
	}

	h.mu.Lock()
	// 快照投递和注册在同一临界区内完成，保证快照先于后续事件
	// Snapshot delivery and registration happen in the same critical
	// section, so the snapshot precedes any later publish.
	o.ch <- h.lastStatus
	h.observers[o.ID] = o
	h.mu.Unlock()

	return o
}

// Unsubscribe removes an observer and closes its channel.
// Safe to call for an observer that was already dropped.
// Unsubscribe 移除观察者并关闭其通道。对已被移除的观察者调用是安全的。
func (h *Hub) Unsubscribe(o *Observer) {
	h.mu.Lock()
	if _, ok := h.observers[o.ID]; ok {
		delete(h.observers, o.ID)
		close(o.ch)
	}
	h.mu.Unlock()
}

// Publish delivers an event to every currently registered observer.
// An observer whose buffer is full is silently unsubscribed; delivery to the
// remaining observers and the publisher are never blocked.
// Publish 将事件投递给每个当前注册的观察者。
// 缓冲区满的观察者会被静默移除；不会阻塞其余观察者的投递和发布者本身。
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	if status, ok := event.(StatusEvent); ok {
		h.lastStatus = status
	}
	for id, o := range h.observers {
		select {
		case o.ch <- event:
		default:
			// 慢观察者：移除并关闭，避免阻塞发布者
			delete(h.observers, id)
			close(o.ch)
		}
	}
	h.mu.Unlock()
}

// Snapshot returns the most recently published status event
// Snapshot 返回最近发布的状态事件
func (h *Hub) Snapshot() StatusEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastStatus
}

// ObserverCount returns the number of currently registered observers
// ObserverCount 返回当前注册的观察者数量
func (h *Hub) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}
