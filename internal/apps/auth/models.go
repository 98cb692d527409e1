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

// Package auth 提供面板用户认证相关功能
package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrUserNotFound     = errors.New("auth: 用户不存在")
	ErrInvalidPassword  = errors.New("auth: 密码错误")
	ErrUserInactive     = errors.New("auth: 用户已禁用")
	ErrEmptyCredentials = errors.New("auth: 用户名或密码不能为空")
	ErrPasswordTooShort = errors.New("auth: 密码长度不能少于6位")
)

// DefaultBcryptCost 默认 bcrypt 加密成本
const DefaultBcryptCost = 10

// User 面板用户模型
// 录制面板默认只有一个管理员账户，但模型支持多用户
type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"size:255;unique;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;size:255;not null"` // 密码哈希，JSON 序列化时忽略
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	IsAdmin      bool      `json:"is_admin" gorm:"default:false"`
	LastLoginAt  time.Time `json:"last_login_at"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// SetPassword 设置用户密码
// 使用 bcrypt 算法对密码进行哈希处理
// cost 为 0 时使用默认成本
func (u *User) SetPassword(password string, cost int) error {
	if password == "" {
		return ErrEmptyCredentials
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	if cost <= 0 {
		cost = DefaultBcryptCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 验证密码是否正确
func (u *User) CheckPassword(password string) bool {
	if password == "" || u.PasswordHash == "" {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// FindByUsername 根据用户名查找用户
func FindByUsername(db *gorm.DB, username string) (*User, error) {
	var user User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByID 根据 ID 查找用户
func FindByID(db *gorm.DB, id uint64) (*User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建新用户
func (u *User) Create(db *gorm.DB) error {
	return db.Create(u).Error
}

// UpdateLastLogin 更新最后登录时间
func (u *User) UpdateLastLogin(db *gorm.DB) error {
	u.LastLoginAt = time.Now()
	return db.Model(u).Update("last_login_at", u.LastLoginAt).Error
}

// UserInfo 用户信息（用于 API 响应，不包含敏感信息）
type UserInfo struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	IsActive    bool      `json:"is_active"`
	IsAdmin     bool      `json:"is_admin"`
	LastLoginAt time.Time `json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToUserInfo 将 User 转换为 UserInfo
func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		IsActive:    u.IsActive,
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
