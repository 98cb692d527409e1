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

// Package main is the entry point for the recorderX panel service.
// main 包是 recorderX 控制面板服务的入口点。
//
// recorderX is a web panel that supervises a live-stream recorder process:
// recorderX 是监管直播录制程序的 Web 控制面板，负责：
// - Start/stop the recorder worker process / 启动和停止录制工作进程
// - Relay sanitized console output to browsers / 向浏览器实时推送清洗后的控制台输出
// - Edit the recorder's INI config and URL list / 编辑录制程序的 INI 配置和直播间地址列表
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/streamrec/recorderX/internal/db/migrator"
	"github.com/streamrec/recorderX/internal/router"
)

// Version information, set at build time
// 版本信息，在构建时设置
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// rootCmd is the root command for the panel CLI
// rootCmd 是控制面板 CLI 的根命令
var rootCmd = &cobra.Command{
	Use:   "recorderx",
	Short: "recorderX - Web panel for supervising a live-stream recorder",
	Long: `recorderX is a web panel that supervises a live-stream recorder process.
recorderX 是监管直播录制程序的 Web 控制面板。

Configuration is read from config.yaml in the working directory, or from the
file named by the CONFIG_PATH environment variable.
配置从工作目录的 config.yaml 读取，也可通过 CONFIG_PATH 环境变量指定。`,
	RunE: runServe,
}

// serveCmd starts the HTTP API server
// serveCmd 启动 HTTP API 服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server / 启动 HTTP API 服务",
	RunE:  runServe,
}

// migrateCmd runs database migrations and seeds the default admin user
// migrateCmd 执行数据库迁移并初始化默认管理员账号
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations / 执行数据库迁移",
	Run: func(cmd *cobra.Command, args []string) {
		migrator.Migrate()
	},
}

// versionCmd shows version information
// versionCmd 显示版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information / 打印版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("recorderX\n")
		fmt.Printf("  Version:    %s\n", Version)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Go Version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

// runServe migrates the database then serves the API.
// runServe 先迁移数据库，再启动 API 服务。
func runServe(cmd *cobra.Command, args []string) error {
	migrator.Migrate()
	router.Serve()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
