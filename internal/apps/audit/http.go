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

package audit

import (
	"github.com/gin-gonic/gin"
)

// RecordFromGin writes an operation log entry from an HTTP request (user from session, IP and User-Agent from request).
// RecordFromGin 根据 HTTP 请求写入操作日志（用户来自 session，IP、User-Agent 来自请求）。
// userID and username should be obtained via auth.GetUserIDFromContext(c) and auth.GetUsernameFromContext(c).
// If repo is nil, the function no-ops and returns nil.
func RecordFromGin(c *gin.Context, repo *Repository, userID uint64, username, action, resourceType, resourceID, result string, details OperationDetails) error {
	if repo == nil {
		return nil
	}
	if action == "" || resourceType == "" {
		return nil
	}
	ua := c.GetHeader("User-Agent")
	if len(ua) > 500 {
		ua = ua[:500]
	}
	var uid *uint
	if userID > 0 {
		u := uint(userID)
		uid = &u
	}
	log := &OperationLog{
		UserID:       uid,
		Username:     username,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Result:       result,
		Details:      details,
		IPAddress:    c.ClientIP(),
		UserAgent:    ua,
	}
	return repo.CreateOperationLog(c.Request.Context(), log)
}
