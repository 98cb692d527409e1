/*
 * MIT License
 *
 * Copyright (c) 2025 linux.do
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package migrator

import (
	"context"
	"errors"
	"log"

	"github.com/streamrec/recorderX/internal/apps/audit"
	"github.com/streamrec/recorderX/internal/apps/auth"
	"github.com/streamrec/recorderX/internal/config"
	"github.com/streamrec/recorderX/internal/db"
	"gorm.io/gorm"
)

func Migrate() {
	// 先初始化数据库连接
	if err := db.InitDatabase(); err != nil {
		log.Fatalf("[Database] 初始化数据库失败: %v\n", err)
	}

	// 检查数据库是否已初始化
	if !db.IsDatabaseInitialized() {
		log.Println("[Database] 数据库未启用，跳过迁移")
		return
	}

	// 执行数据库表迁移
	if err := db.GetDB(context.Background()).AutoMigrate(
		&auth.User{},          // 面板用户表 / Panel user table
		&audit.OperationLog{}, // 操作日志表 / Operation log table
	); err != nil {
		log.Fatalf("[Database] auto migrate failed: %v\n", err)
	}
	log.Printf("[Database] auto migrate success\n")

	// 初始化默认管理员用户
	if err := initDefaultAdminUser(); err != nil {
		log.Printf("[Database] 初始化默认管理员用户失败: %v\n", err)
	}
}

// initDefaultAdminUser 初始化默认管理员用户
// 仅在首次启动时（用户表为空）创建默认 admin 用户
func initDefaultAdminUser() error {
	database := db.GetDB(context.Background())
	if database == nil {
		return errors.New("数据库连接未初始化")
	}

	// 获取认证配置
	authConfig := config.GetAuthConfig()

	// 检查是否已存在用户
	var count int64
	if err := database.Model(&auth.User{}).Count(&count).Error; err != nil {
		return err
	}

	// 如果已有用户，跳过初始化
	if count > 0 {
		log.Println("[Database] 用户表已有数据，跳过默认管理员初始化")
		return nil
	}

	// 检查是否已存在 admin 用户（双重检查）
	var existingUser auth.User
	err := database.Where("username = ?", authConfig.DefaultAdminUsername).First(&existingUser).Error
	if err == nil {
		log.Printf("[Database] 管理员用户 '%s' 已存在，跳过创建\n", authConfig.DefaultAdminUsername)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// 创建默认管理员用户
	adminUser := &auth.User{
		Username: authConfig.DefaultAdminUsername,
		IsActive: true,
		IsAdmin:  true,
	}

	// 设置密码（使用 bcrypt 哈希）
	if err := adminUser.SetPassword(authConfig.DefaultAdminPassword, authConfig.BcryptCost); err != nil {
		return err
	}

	// 保存到数据库
	if err := adminUser.Create(database); err != nil {
		return err
	}

	log.Printf("[Database] 成功创建默认管理员用户: %s\n", authConfig.DefaultAdminUsername)
	return nil
}
