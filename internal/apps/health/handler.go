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

// Package health 提供健康检查接口
package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamrec/recorderX/internal/db"
)

// Response 健康检查响应
type Response struct {
	ErrorMsg string      `json:"error_msg"`
	Data     interface{} `json:"data"`
}

// healthData 健康检查数据
type healthData struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health 健康检查
// 数据库不可用时整体仍返回 200，由 database 字段反映
func Health(c *gin.Context) {
	dbStatus := "ok"
	if !db.IsDatabaseInitialized() {
		dbStatus = "uninitialized"
	} else if sqlDB, err := db.GetGlobalDB().DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "unreachable"
	}

	c.JSON(http.StatusOK, Response{
		Data: healthData{
			Status:   "ok",
			Database: dbStatus,
		},
	})
}
