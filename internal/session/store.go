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

// Package session 提供会话存储抽象层，支持内存存储和 Redis 存储
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// 错误定义
var (
	ErrKeyNotFound = errors.New("session: key not found")
	ErrExpired     = errors.New("session: key expired")
)

// SessionStore 会话存储接口，约定内存与 Redis 两种实现的一致行为
type SessionStore interface {
	// Get 获取指定 key 的值，key 不存在时返回 ErrKeyNotFound
	Get(ctx context.Context, key string) (any, error)

	// Set 写入指定 key，expiration 为 0 表示永不过期
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	// Delete 删除指定 key，key 不存在时不报错
	Delete(ctx context.Context, key string) error

	// Exists 检查 key 是否存在且未过期
	Exists(ctx context.Context, key string) (bool, error)
}

// memoryEntry 内存存储条目
type memoryEntry struct {
	value    any
	deadline time.Time // 零值表示永不过期
}

// expired 判断条目在给定时刻是否已过期
func (e memoryEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && now.After(e.deadline)
}

// MemoryStore 内存会话存储，读写锁保护的 map 实现。
// 过期条目在首次访问时惰性删除，单机面板的会话量不需要后台清理。
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore 创建内存存储实例
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get 读取指定 key 的值
// 首次读到过期条目时删除并返回 ErrExpired，之后返回 ErrKeyNotFound
func (m *MemoryStore) Get(ctx context.Context, key string) (any, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrKeyNotFound
	}
	if entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, ErrExpired
	}
	return entry.value, nil
}

// Set 写入指定 key，覆盖旧值并重置过期时间
func (m *MemoryStore) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.deadline = time.Now().Add(expiration)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete 删除指定 key
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Exists 检查 key 是否存在且未过期
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// RedisStore Redis 会话存储，值以 JSON 序列化保存
type RedisStore struct {
	client *redis.Client
	prefix string // key 前缀，隔离不同应用的会话
}

// NewRedisStore 创建 Redis 存储实例
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Get 读取指定 key 的值，非 JSON 的历史值按原始字符串返回
func (r *RedisStore) Get(ctx context.Context, key string) (any, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw, nil
	}
	return value, nil
}

// Set 写入指定 key，过期由 Redis TTL 负责
func (r *RedisStore) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, data, expiration).Err()
}

// Delete 删除指定 key
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Exists 检查 key 是否存在
func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
