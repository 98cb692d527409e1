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

package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var Config *configModel

func init() {
	// 加载配置文件路径
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 设置配置文件
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	// 读取配置文件，文件不存在时使用默认配置启动
	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) || errors.As(err, new(*fs.PathError)) {
			log.Printf("[Config] 配置文件 %s 不存在，使用默认配置\n", configPath)
		} else {
			log.Fatalf("[Config] read config failed: %v\n", err)
		}
	}

	// 解析配置到结构体
	var c configModel
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("[Config] parse config failed: %v\n", err)
	}

	// 设置默认值
	setDefaults(&c)

	// 设置全局配置
	Config = &c
}

// setDefaults 设置配置默认值
func setDefaults(c *configModel) {
	// 应用默认配置
	if c.App.AppName == "" {
		c.App.AppName = "recorderX"
	}
	if c.App.Addr == "" {
		c.App.Addr = ":8080"
	}
	if c.App.APIPrefix == "" {
		c.App.APIPrefix = "/api"
	}
	if c.App.SessionCookieName == "" {
		c.App.SessionCookieName = "recorderx_session"
	}
	if c.App.SessionAge == 0 {
		c.App.SessionAge = 86400
	}

	// 数据库默认配置
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "./data/recorderx.db"
	}

	// 认证默认配置
	if c.Auth.DefaultAdminUsername == "" {
		c.Auth.DefaultAdminUsername = "admin"
	}
	if c.Auth.DefaultAdminPassword == "" {
		c.Auth.DefaultAdminPassword = "admin123"
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}

	// 录制程序默认配置
	// Recorder defaults mirror a recorder checkout layout: venv interpreter
	// plus main.py inside the working directory.
	// 录制程序默认值对应录制程序代码目录的布局：venv 解释器 + 工作目录下的 main.py。
	if c.Recorder.WorkDir == "" {
		c.Recorder.WorkDir = "."
	}
	if c.Recorder.Script == "" {
		c.Recorder.Script = filepath.Join(c.Recorder.WorkDir, "main.py")
	}
	if c.Recorder.Interpreter == "" {
		c.Recorder.Interpreter = filepath.Join(c.Recorder.WorkDir, "venv", "bin", "python")
	}
	if len(c.Recorder.InterpreterArgs) == 0 {
		// -u 禁用 Python 输出缓冲，保证日志实时到达 / -u disables Python output buffering
		c.Recorder.InterpreterArgs = []string{"-u"}
	}
	if c.Recorder.StopTimeoutSeconds == 0 {
		c.Recorder.StopTimeoutSeconds = 5
	}
	if c.Recorder.MainConfigPath == "" {
		c.Recorder.MainConfigPath = filepath.Join(c.Recorder.WorkDir, "config", "config.ini")
	}
	if c.Recorder.URLConfigPath == "" {
		c.Recorder.URLConfigPath = filepath.Join(c.Recorder.WorkDir, "config", "URL_config.ini")
	}
}

// GetDatabaseType 获取数据库类型
func GetDatabaseType() string {
	return Config.Database.Type
}

// GetSQLitePath 获取 SQLite 文件路径
func GetSQLitePath() string {
	return Config.Database.SQLitePath
}

// GetAuthConfig 获取认证配置
func GetAuthConfig() authConfig {
	return Config.Auth
}

// GetRecorderConfig 获取录制程序配置
func GetRecorderConfig() RecorderConfig {
	return Config.Recorder
}

// GetLogConfig 获取日志配置
func GetLogConfig() logConfig {
	return Config.Log
}

// IsRedisEnabled 检查 Redis 是否启用
func IsRedisEnabled() bool {
	return Config.Redis.Enabled
}
