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

type configModel struct {
	App       AppConfig      `mapstructure:"app"`
	Auth      authConfig     `mapstructure:"auth"`
	Database  DatabaseConfig `mapstructure:"database"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Log       logConfig      `mapstructure:"log"`
	Telemetry telemetryConfig `mapstructure:"telemetry"`
	Recorder  RecorderConfig `mapstructure:"recorder"`
}

// AppConfig 应用基本配置
type AppConfig struct {
	AppName           string `mapstructure:"app_name"`
	Env               string `mapstructure:"env"`
	Addr              string `mapstructure:"addr"`
	APIPrefix         string `mapstructure:"api_prefix"`
	SessionCookieName string `mapstructure:"session_cookie_name"`
	SessionSecret     string `mapstructure:"session_secret"`
	SessionDomain     string `mapstructure:"session_domain"`
	SessionAge        int    `mapstructure:"session_age"`
	SessionHttpOnly   bool   `mapstructure:"session_http_only"`
	SessionSecure     bool   `mapstructure:"session_secure"`
}

// authConfig 认证配置
type authConfig struct {
	DefaultAdminUsername string `mapstructure:"default_admin_username"`
	DefaultAdminPassword string `mapstructure:"default_admin_password"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Type            string `mapstructure:"type"`        // sqlite, mysql, postgres
	SQLitePath      string `mapstructure:"sqlite_path"` // SQLite 文件路径
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConn     int    `mapstructure:"max_idle_conn"`
	MaxOpenConn     int    `mapstructure:"max_open_conn"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConn  int    `mapstructure:"min_idle_conn"`
	DialTimeout  int    `mapstructure:"dial_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// logConfig 日志配置
type logConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// telemetryConfig 遥测配置
type telemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// RecorderConfig 录制程序配置
// RecorderConfig describes how to locate and spawn the supervised recorder
// worker process, and where its editable config files live.
// RecorderConfig 描述如何定位和启动被监管的录制程序进程，以及其可编辑配置文件的位置。
type RecorderConfig struct {
	// WorkDir 录制程序工作目录 / working directory of the recorder checkout
	WorkDir string `mapstructure:"work_dir"`
	// Script 录制程序入口脚本 / entry script, e.g. main.py
	Script string `mapstructure:"script"`
	// Interpreter 解释器路径 / interpreter path, e.g. venv/bin/python
	Interpreter string `mapstructure:"interpreter"`
	// InterpreterArgs 解释器参数 / extra interpreter flags, e.g. -u
	InterpreterArgs []string `mapstructure:"interpreter_args"`
	// Environment 额外环境变量 / extra environment variables
	Environment map[string]string `mapstructure:"environment"`
	// StopTimeoutSeconds 优雅停止超时（秒）/ graceful stop timeout in seconds
	StopTimeoutSeconds int `mapstructure:"stop_timeout_seconds"`
	// MainConfigPath 主配置文件路径（INI）/ main INI config path
	MainConfigPath string `mapstructure:"main_config_path"`
	// URLConfigPath URL 列表文件路径（纯文本）/ free-text URL list path
	URLConfigPath string `mapstructure:"url_config_path"`
}
