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

// Package settings 管理录制程序的 INI 主配置和直播间地址列表
package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

// Sections 是按分区组织的配置键值对
// Sections 的第一层键为分区名，第二层为该分区内的键值对
type Sections map[string]map[string]string

// Service 读写录制程序自身的配置文件
// 主配置为 INI 格式，保存时保留原有注释和分区顺序；
// 地址列表为自由文本，每行一个直播间地址
type Service struct {
	mainPath string
	urlPath  string

	// 配置文件被面板和录制程序共享，写入需要串行化
	mu sync.Mutex
}

// NewService 创建配置服务
func NewService(mainPath, urlPath string) *Service {
	return &Service{
		mainPath: mainPath,
		urlPath:  urlPath,
	}
}

// loadOptions 统一的 INI 解析选项
// 录制程序的配置值里可能含有 `#`（如 URL 片段），不能按行内注释解析
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment: true,
}

// GetMain 读取 INI 主配置，按分区返回全部键值对
func (s *Service) GetMain(_ context.Context) (Sections, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	result := make(Sections)
	for _, section := range file.Sections() {
		// DEFAULT 分区在无默认键时跳过
		if section.Name() == ini.DefaultSection && len(section.Keys()) == 0 {
			continue
		}
		values := make(map[string]string, len(section.Keys()))
		for _, key := range section.Keys() {
			values[key.Name()] = key.Value()
		}
		result[section.Name()] = values
	}
	return result, nil
}

// UpdateMain 合并更新 INI 主配置并写回
// 只更新给出的键，未提及的键、注释和分区顺序保持不变
func (s *Service) UpdateMain(_ context.Context, updates Sections) error {
	if len(updates) == 0 {
		return ErrEmptyUpdate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	for sectionName, values := range updates {
		section := file.Section(sectionName)
		for key, value := range values {
			section.Key(key).SetValue(value)
		}
	}

	return file.SaveTo(s.mainPath)
}

// load 解析 INI 主配置，容忍 UTF-8 BOM
func (s *Service) load() (*ini.File, error) {
	data, err := os.ReadFile(s.mainPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	data = stripBOM(data)
	return ini.LoadSources(loadOptions, data)
}

// GetURLs 读取直播间地址列表原文
// 文件不存在时返回空内容而不是错误
func (s *Service) GetURLs(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.urlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(stripBOM(data)), nil
}

// SaveURLs 覆盖保存直播间地址列表
// 统一换行符并保证末尾有换行，方便录制程序逐行读取
func (s *Service) SaveURLs(_ context.Context, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content = strings.ReplaceAll(content, "\r\n", "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if err := os.MkdirAll(filepath.Dir(s.urlPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.urlPath, []byte(content), 0o644)
}

// stripBOM 去除 UTF-8 BOM 前缀
func stripBOM(data []byte) []byte {
	return []byte(strings.TrimPrefix(string(data), "\xef\xbb\xbf"))
}
