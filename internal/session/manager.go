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

// Package session 提供会话管理功能
package session

import (
	"fmt"
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/redis"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redisClient "github.com/redis/go-redis/v9"
	"github.com/streamrec/recorderX/internal/config"
)

// Store 全局会话存储实例
var Store SessionStore

// GinStore 全局 Gin 会话存储实例（用于 HTTP 会话）
var GinStore sessions.Store

// InitSessionStore 根据配置初始化会话存储。
// Redis 启用时会话落 Redis，否则内存 + cookie 存储，单机部署足够。
func InitSessionStore() error {
	if config.Config.Redis.Enabled {
		log.Println("[Session] 使用 Redis 会话存储")
		return initRedisStore()
	}

	log.Println("[Session] 使用内存会话存储")
	Store = NewMemoryStore()
	GinStore = withCookieOptions(cookie.NewStore([]byte(config.Config.App.SessionSecret)))
	return nil
}

// initRedisStore 初始化 Redis 会话存储（带 OpenTelemetry 追踪）
func initRedisStore() error {
	redisConfig := config.Config.Redis
	addr := fmt.Sprintf("%s:%d", redisConfig.Host, redisConfig.Port)

	client := redisClient.NewClient(&redisClient.Options{
		Addr:     addr,
		Username: redisConfig.Username,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
		PoolSize: redisConfig.PoolSize,
	})
	if err := redisotel.InstrumentTracing(client); err != nil {
		log.Printf("[Session] Redis 追踪注入失败: %v\n", err)
	}

	Store = NewRedisStore(client, "recorderx:session:")

	ginStore, err := redis.NewStoreWithDB(
		redisConfig.MinIdleConn,
		"tcp",
		addr,
		redisConfig.Username,
		redisConfig.Password,
		fmt.Sprintf("%d", redisConfig.DB),
		[]byte(config.Config.App.SessionSecret),
	)
	if err != nil {
		return fmt.Errorf("初始化 Redis Gin 会话存储失败: %w", err)
	}

	GinStore = withCookieOptions(ginStore)
	return nil
}

// withCookieOptions 应用配置中的会话 cookie 选项
func withCookieOptions(store sessions.Store) sessions.Store {
	appConfig := config.Config.App
	store.Options(sessions.Options{
		Path:     "/",
		Domain:   appConfig.SessionDomain,
		MaxAge:   appConfig.SessionAge,
		HttpOnly: appConfig.SessionHttpOnly,
		Secure:   appConfig.SessionSecure,
	})
	return store
}
