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

// Package auth 提供面板登录相关的 HTTP 处理器
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/streamrec/recorderX/internal/apps/audit"
	"github.com/streamrec/recorderX/internal/db"
	"github.com/streamrec/recorderX/internal/logger"
)

// auditRepo 会话操作日志仓库，由路由装配时注入，nil 时不记录
var auditRepo *audit.Repository

// SetAuditRepository 注入会话操作日志仓库
func SetAuditRepository(repo *audit.Repository) {
	auditRepo = repo
}

// recordSession 写入登录登出操作日志，失败只记录不影响请求
func recordSession(c *gin.Context, userID uint64, username, action, result string, details audit.OperationDetails) {
	err := audit.RecordFromGin(c, auditRepo, userID, username,
		action, audit.ResourceSession, "", result, details)
	if err != nil {
		logger.WarnF(c.Request.Context(), "[Auth] 写入操作日志失败: %v", err)
	}
}

// 会话键常量
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
)

// 错误消息常量（不暴露具体是用户名还是密码错误）
const (
	ErrMsgInvalidCredentials = "用户名或密码错误"
	ErrMsgEmptyCredentials   = "用户名和密码不能为空"
	ErrMsgUserInactive       = "用户账户已禁用"
	ErrMsgSessionError       = "会话错误"
	ErrMsgInternalError      = "内部服务器错误"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	ErrorMsg string      `json:"error_msg"`
	Data     interface{} `json:"data"`
}

// UserInfoResponse 用户信息响应
type UserInfoResponse struct {
	ErrorMsg string    `json:"error_msg"`
	Data     *UserInfo `json:"data"`
}

// LogoutResponse 登出响应
type LogoutResponse struct {
	ErrorMsg string      `json:"error_msg"`
	Data     interface{} `json:"data"`
}

// Login 处理面板登录
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{ErrorMsg: ErrMsgEmptyCredentials})
		return
	}

	// 用户名去空白，密码保持原样
	username := strings.TrimSpace(req.Username)
	password := req.Password
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, LoginResponse{ErrorMsg: ErrMsgEmptyCredentials})
		return
	}

	// 用户不存在和密码错误返回同一条消息，不暴露具体是哪个字段错了
	user, err := FindByUsername(db.GetDB(c.Request.Context()), username)
	if err != nil {
		logger.InfoF(c.Request.Context(), "[Auth] 登录失败 - 用户不存在: %s", username)
		recordSession(c, 0, username, audit.ActionLogin, audit.ResultFailed,
			audit.OperationDetails{"reason": "invalid_credentials"})
		c.JSON(http.StatusUnauthorized, LoginResponse{ErrorMsg: ErrMsgInvalidCredentials})
		return
	}
	if !user.CheckPassword(password) {
		logger.InfoF(c.Request.Context(), "[Auth] 登录失败 - 密码错误: %s", username)
		recordSession(c, 0, username, audit.ActionLogin, audit.ResultFailed,
			audit.OperationDetails{"reason": "invalid_credentials"})
		c.JSON(http.StatusUnauthorized, LoginResponse{ErrorMsg: ErrMsgInvalidCredentials})
		return
	}
	if !user.IsActive {
		logger.InfoF(c.Request.Context(), "[Auth] 登录失败 - 用户已禁用: %s", username)
		recordSession(c, 0, username, audit.ActionLogin, audit.ResultFailed,
			audit.OperationDetails{"reason": "user_inactive"})
		c.JSON(http.StatusForbidden, LoginResponse{ErrorMsg: ErrMsgUserInactive})
		return
	}

	// 最后登录时间更新失败不影响登录
	if err := user.UpdateLastLogin(db.GetDB(c.Request.Context())); err != nil {
		logger.ErrorF(c.Request.Context(), "[Auth] 更新最后登录时间失败: %v", err)
	}

	session := sessions.Default(c)
	session.Set(SessionKeyUserID, user.ID)
	session.Set(SessionKeyUsername, user.Username)
	if err := session.Save(); err != nil {
		logger.ErrorF(c.Request.Context(), "[Auth] 保存会话失败: %v", err)
		c.JSON(http.StatusInternalServerError, LoginResponse{ErrorMsg: ErrMsgSessionError})
		return
	}

	logger.InfoF(c.Request.Context(), "[Auth] 登录成功: %d %s", user.ID, user.Username)
	recordSession(c, user.ID, user.Username, audit.ActionLogin, audit.ResultSuccess, nil)
	c.JSON(http.StatusOK, LoginResponse{Data: user.ToUserInfo()})
}

// Logout 处理面板登出
func Logout(c *gin.Context) {
	session := sessions.Default(c)

	// 清除前先取出用户信息用于日志和操作记录
	userID := GetUserIDFromContext(c)
	username := GetUsernameFromContext(c)

	session.Clear()
	if err := session.Save(); err != nil {
		logger.ErrorF(c.Request.Context(), "[Auth] 清除会话失败: %v", err)
		c.JSON(http.StatusInternalServerError, LogoutResponse{ErrorMsg: ErrMsgSessionError})
		return
	}

	logger.InfoF(c.Request.Context(), "[Auth] 登出成功: %d %s", userID, username)
	recordSession(c, userID, username, audit.ActionLogout, audit.ResultSuccess, nil)
	c.JSON(http.StatusOK, LogoutResponse{})
}

// GetUserInfo 获取当前登录用户信息
func GetUserInfo(c *gin.Context) {
	userID := GetUserIDFromContext(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, UserInfoResponse{ErrorMsg: "未登录"})
		return
	}

	user, err := FindByID(db.GetDB(c.Request.Context()), userID)
	if err != nil {
		logger.ErrorF(c.Request.Context(), "[Auth] 获取用户信息失败: %v", err)
		c.JSON(http.StatusInternalServerError, UserInfoResponse{ErrorMsg: ErrMsgInternalError})
		return
	}

	c.JSON(http.StatusOK, UserInfoResponse{Data: user.ToUserInfo()})
}

// GetUserIDFromContext 从 Gin 上下文获取用户 ID
func GetUserIDFromContext(c *gin.Context) uint64 {
	session := sessions.Default(c)
	userID := session.Get(SessionKeyUserID)
	if userID == nil {
		return 0
	}

	// 处理不同类型的转换
	switch v := userID.(type) {
	case uint64:
		return v
	case int64:
		return uint64(v)
	case int:
		return uint64(v)
	case float64:
		return uint64(v)
	default:
		return 0
	}
}

// GetUsernameFromContext 从 Gin 上下文获取用户名
func GetUsernameFromContext(c *gin.Context) string {
	session := sessions.Default(c)
	username := session.Get(SessionKeyUsername)
	if username == nil {
		return ""
	}
	if s, ok := username.(string); ok {
		return s
	}
	return ""
}
