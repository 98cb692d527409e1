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

// Package auth 登录处理器测试
// 注意：这些测试使用独立的内存数据库，不依赖全局配置
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/streamrec/recorderX/internal/apps/audit"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newAuthTestDB 创建内存测试数据库（纯 Go SQLite 驱动，无需 CGO）
func newAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("创建测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("迁移用户表失败: %v", err)
	}
	return db
}

// seedUser 写入测试用户，测试中使用最低 bcrypt 成本加速计算
func seedUser(db *gorm.DB, username, password string, isActive bool) (*User, error) {
	user := &User{
		Username: username,
		IsActive: isActive,
	}
	if err := user.SetPassword(password, bcrypt.MinCost); err != nil {
		return nil, err
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// newAuthTestRouter 创建带会话中间件的测试路由，登录走注入的数据库
func newAuthTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("test-session", store))

	r.POST("/login", func(c *gin.Context) {
		loginAgainst(c, db)
	})
	r.POST("/logout", Logout)
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserIDFromContext(c)})
	})
	return r
}

// loginAgainst 用指定数据库执行与 Login 相同的登录流程（测试用）
func loginAgainst(c *gin.Context, db *gorm.DB) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{ErrorMsg: ErrMsgEmptyCredentials})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, LoginResponse{ErrorMsg: ErrMsgEmptyCredentials})
		return
	}

	user, err := FindByUsername(db, username)
	if err != nil {
		recordSession(c, 0, username, audit.ActionLogin, audit.ResultFailed,
			audit.OperationDetails{"reason": "invalid_credentials"})
		c.JSON(http.StatusUnauthorized, LoginResponse{ErrorMsg: ErrMsgInvalidCredentials})
		return
	}
	if !user.CheckPassword(req.Password) {
		recordSession(c, 0, username, audit.ActionLogin, audit.ResultFailed,
			audit.OperationDetails{"reason": "invalid_credentials"})
		c.JSON(http.StatusUnauthorized, LoginResponse{ErrorMsg: ErrMsgInvalidCredentials})
		return
	}
	if !user.IsActive {
		recordSession(c, 0, username, audit.ActionLogin, audit.ResultFailed,
			audit.OperationDetails{"reason": "user_inactive"})
		c.JSON(http.StatusForbidden, LoginResponse{ErrorMsg: ErrMsgUserInactive})
		return
	}

	session := sessions.Default(c)
	session.Set(SessionKeyUserID, user.ID)
	session.Set(SessionKeyUsername, user.Username)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, LoginResponse{ErrorMsg: ErrMsgSessionError})
		return
	}

	recordSession(c, user.ID, user.Username, audit.ActionLogin, audit.ResultSuccess, nil)
	c.JSON(http.StatusOK, LoginResponse{Data: user.ToUserInfo()})
}

// postLogin 发送登录请求
func postLogin(r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestProperty_ValidCredentialsCreateSession 有效凭证登录成功并建立会话
func TestProperty_ValidCredentialsCreateSession(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50 // 涉及数据库操作，减少测试次数

	properties := gopter.NewProperties(parameters)

	counter := 0
	properties.Property("valid credentials return 200 with user info", prop.ForAll(
		func(passwordLen int) bool {
			counter++
			username := fmt.Sprintf("user%d", counter)
			password := strings.Repeat("x", passwordLen)

			db := newAuthTestDB(t)
			if _, err := seedUser(db, username, password, true); err != nil {
				return false
			}

			w := postLogin(newAuthTestRouter(db), username, password)
			if w.Code != http.StatusOK {
				return false
			}

			var resp LoginResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				return false
			}
			return resp.ErrorMsg == "" && resp.Data != nil && len(w.Result().Cookies()) > 0
		},
		gen.IntRange(6, 20),
	))

	properties.TestingRun(t)
}

// TestProperty_InvalidCredentialsGenericError 错误凭证返回不区分字段的统一错误
func TestProperty_InvalidCredentialsGenericError(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	counter := 0
	properties.Property("wrong password and unknown user return same message", prop.ForAll(
		func(passwordLen int) bool {
			counter++
			username := fmt.Sprintf("user%d", counter)
			password := strings.Repeat("x", passwordLen)

			db := newAuthTestDB(t)
			if _, err := seedUser(db, username, password, true); err != nil {
				return false
			}
			router := newAuthTestRouter(db)

			// 密码错误
			w := postLogin(router, username, password+"X")
			if w.Code != http.StatusUnauthorized {
				return false
			}
			var wrongPass LoginResponse
			if err := json.Unmarshal(w.Body.Bytes(), &wrongPass); err != nil {
				return false
			}

			// 用户不存在
			w = postLogin(router, username+"-missing", password)
			if w.Code != http.StatusUnauthorized {
				return false
			}
			var unknownUser LoginResponse
			if err := json.Unmarshal(w.Body.Bytes(), &unknownUser); err != nil {
				return false
			}

			// 两种失败返回完全相同的消息，不暴露哪个字段错了
			return wrongPass.ErrorMsg == ErrMsgInvalidCredentials &&
				unknownUser.ErrorMsg == ErrMsgInvalidCredentials
		},
		gen.IntRange(6, 20),
	))

	properties.TestingRun(t)
}

// TestLoginInactiveUser 已禁用用户登录返回 403
func TestLoginInactiveUser(t *testing.T) {
	db := newAuthTestDB(t)
	if _, err := seedUser(db, "disabled", "password1", false); err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}

	w := postLogin(newAuthTestRouter(db), "disabled", "password1")
	if w.Code != http.StatusForbidden {
		t.Fatalf("期望状态码 403, 实际 %d", w.Code)
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.ErrorMsg != ErrMsgUserInactive {
		t.Fatalf("期望错误消息 %q, 实际 %q", ErrMsgUserInactive, resp.ErrorMsg)
	}
}

// TestLoginEmptyCredentials 空凭证返回 400
func TestLoginEmptyCredentials(t *testing.T) {
	db := newAuthTestDB(t)
	router := newAuthTestRouter(db)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"both empty", "", ""},
		{"whitespace username", "   ", "password1"},
		{"empty password", "admin", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postLogin(router, tc.username, tc.password)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("期望状态码 400, 实际 %d", w.Code)
			}
		})
	}
}

// TestLogoutClearsSession 登出后会话中的用户 ID 被清除
func TestLogoutClearsSession(t *testing.T) {
	db := newAuthTestDB(t)
	user, err := seedUser(db, "admin", "admin123", true)
	if err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	router := newAuthTestRouter(db)

	// 登录拿到会话 cookie
	loginW := postLogin(router, "admin", "admin123")
	if loginW.Code != http.StatusOK {
		t.Fatalf("登录失败: %d", loginW.Code)
	}
	cookies := loginW.Result().Cookies()

	// 带 cookie 查询应能识别用户
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var who struct {
		UserID uint64 `json:"user_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &who); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if who.UserID != user.ID {
		t.Fatalf("期望用户 ID %d, 实际 %d", user.ID, who.UserID)
	}

	// 登出
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	logoutW := httptest.NewRecorder()
	router.ServeHTTP(logoutW, req)
	if logoutW.Code != http.StatusOK {
		t.Fatalf("登出失败: %d", logoutW.Code)
	}

	// 使用登出响应的新 cookie 再查询，会话应已清空
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, ck := range logoutW.Result().Cookies() {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if err := json.Unmarshal(w.Body.Bytes(), &who); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if who.UserID != 0 {
		t.Fatalf("登出后会话未清除, 用户 ID = %d", who.UserID)
	}
}

// TestLoginLogoutRecordsOperationLog 登录成功、登录失败和登出都写入操作日志
func TestLoginLogoutRecordsOperationLog(t *testing.T) {
	db := newAuthTestDB(t)
	if err := db.AutoMigrate(&audit.OperationLog{}); err != nil {
		t.Fatalf("迁移操作日志表失败: %v", err)
	}
	user, err := seedUser(db, "admin", "admin123", true)
	if err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}

	SetAuditRepository(audit.NewRepository(db))
	t.Cleanup(func() { SetAuditRepository(nil) })

	router := newAuthTestRouter(db)
	repo := audit.NewRepository(db)
	ctx := context.Background()

	// 登录失败记录 failed
	if w := postLogin(router, "admin", "wrong-password"); w.Code != http.StatusUnauthorized {
		t.Fatalf("期望状态码 401, 实际 %d", w.Code)
	}
	logs, _, err := repo.ListOperationLogs(ctx, &audit.OperationLogFilter{
		Action: audit.ActionLogin,
		Result: audit.ResultFailed,
	})
	if err != nil {
		t.Fatalf("查询操作日志失败: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("期望 1 条登录失败日志, 实际 %d", len(logs))
	}
	if logs[0].UserID != nil {
		t.Fatalf("登录失败日志不应关联用户 ID")
	}
	if logs[0].ResourceType != audit.ResourceSession {
		t.Fatalf("期望资源类型 %q, 实际 %q", audit.ResourceSession, logs[0].ResourceType)
	}

	// 登录成功记录 success 并关联用户
	loginW := postLogin(router, "admin", "admin123")
	if loginW.Code != http.StatusOK {
		t.Fatalf("登录失败: %d", loginW.Code)
	}
	logs, _, err = repo.ListOperationLogs(ctx, &audit.OperationLogFilter{
		Action: audit.ActionLogin,
		Result: audit.ResultSuccess,
	})
	if err != nil {
		t.Fatalf("查询操作日志失败: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("期望 1 条登录成功日志, 实际 %d", len(logs))
	}
	if logs[0].UserID == nil || uint64(*logs[0].UserID) != user.ID {
		t.Fatalf("登录成功日志应关联用户 %d", user.ID)
	}
	if logs[0].Username != "admin" {
		t.Fatalf("期望用户名 admin, 实际 %q", logs[0].Username)
	}

	// 登出记录 logout
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, ck := range loginW.Result().Cookies() {
		req.AddCookie(ck)
	}
	logoutW := httptest.NewRecorder()
	router.ServeHTTP(logoutW, req)
	if logoutW.Code != http.StatusOK {
		t.Fatalf("登出失败: %d", logoutW.Code)
	}
	logs, _, err = repo.ListOperationLogs(ctx, &audit.OperationLogFilter{
		Action: audit.ActionLogout,
		Result: audit.ResultSuccess,
	})
	if err != nil {
		t.Fatalf("查询操作日志失败: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("期望 1 条登出日志, 实际 %d", len(logs))
	}
	if logs[0].Username != "admin" {
		t.Fatalf("登出日志期望用户名 admin, 实际 %q", logs[0].Username)
	}
}
