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

// Package db 管理面板数据库连接，默认 SQLite，可切换 MySQL/PostgreSQL
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/streamrec/recorderX/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// 全局数据库实例
var globalDB *gorm.DB

// 支持的数据库类型
const (
	DatabaseTypeSQLite   = "sqlite"
	DatabaseTypeMySQL    = "mysql"
	DatabaseTypePostgres = "postgres"
)

// InitDatabase 按配置建立数据库连接并注入 OpenTelemetry 追踪插件。
// 重复调用复用已有连接，因此 migrate 和 serve 可以在同一进程中先后执行。
func InitDatabase() error {
	if globalDB != nil {
		return nil
	}

	dbConfig := config.Config.Database
	if !dbConfig.Enabled {
		log.Println("[Database] 数据库已禁用，跳过初始化")
		return nil
	}

	dbType := dbConfig.Type
	if dbType == "" {
		dbType = DatabaseTypeSQLite
	}

	dialector, err := buildDialector(dbType, dbConfig)
	if err != nil {
		return fmt.Errorf("[Database] 初始化 %s 驱动失败: %w", dbType, err)
	}

	globalDB, err = gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogLevel(dbConfig.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("[Database] 连接 %s 数据库失败: %w", dbType, err)
	}

	if err := globalDB.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		log.Printf("[Database] 初始化追踪插件失败: %v\n", err)
	}

	// 连接池参数对 SQLite 没有意义
	if dbType != DatabaseTypeSQLite {
		if err := applyPoolConfig(dbConfig); err != nil {
			return fmt.Errorf("[Database] 配置连接池失败: %w", err)
		}
	}

	log.Printf("[Database] 成功连接到 %s 数据库\n", dbType)
	return nil
}

// buildDialector 按类型构建 GORM 驱动
func buildDialector(dbType string, dbConfig config.DatabaseConfig) (gorm.Dialector, error) {
	switch dbType {
	case DatabaseTypeSQLite:
		path := dbConfig.SQLitePath
		if path == "" {
			path = "./data/recorderx.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("创建 SQLite 目录失败: %w", err)
		}
		log.Printf("[Database] 使用 SQLite 数据库: %s\n", path)
		return sqlite.Open(path), nil

	case DatabaseTypeMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Database)
		log.Printf("[Database] 连接 MySQL 数据库: %s:%d/%s\n", dbConfig.Host, dbConfig.Port, dbConfig.Database)
		return mysql.Open(dsn), nil

	case DatabaseTypePostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			dbConfig.Host, dbConfig.Port, dbConfig.Username, dbConfig.Password, dbConfig.Database)
		log.Printf("[Database] 连接 PostgreSQL 数据库: %s:%d/%s\n", dbConfig.Host, dbConfig.Port, dbConfig.Database)
		return postgres.Open(dsn), nil

	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s，支持的类型: sqlite, mysql, postgres", dbType)
	}
}

// applyPoolConfig 设置连接池参数，零值保持驱动默认
func applyPoolConfig(dbConfig config.DatabaseConfig) error {
	sqlDB, err := globalDB.DB()
	if err != nil {
		return fmt.Errorf("获取底层数据库连接失败: %w", err)
	}

	if dbConfig.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConn)
	}
	if dbConfig.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConn)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
	}
	return nil
}

// gormLogLevel 将配置的日志级别映射为 GORM 日志记录器
func gormLogLevel(level string) logger.Interface {
	logLevel := logger.Info
	switch level {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	}
	return logger.Default.LogMode(logLevel)
}

// GetDB 获取带上下文的数据库实例
func GetDB(ctx context.Context) *gorm.DB {
	if globalDB == nil {
		return nil
	}
	return globalDB.WithContext(ctx)
}

// GetGlobalDB 获取全局数据库实例（不带上下文）
func GetGlobalDB() *gorm.DB {
	return globalDB
}

// CloseDatabase 关闭数据库连接
func CloseDatabase() error {
	if globalDB == nil {
		return nil
	}
	sqlDB, err := globalDB.DB()
	if err != nil {
		return fmt.Errorf("获取底层数据库连接失败: %w", err)
	}
	return sqlDB.Close()
}

// IsDatabaseInitialized 检查数据库是否已初始化
func IsDatabaseInitialized() bool {
	return globalDB != nil
}
