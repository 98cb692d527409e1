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

package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `; 录制程序配置
[录制设置]
video_format = mp4
segment_time = 1800

[推送配置]
enable_push = False
push_url = https://example.com/hook#frag
`

func newTestService(t *testing.T, mainContent string) *Service {
	t.Helper()
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "config.ini")
	if mainContent != "" {
		if err := os.WriteFile(mainPath, []byte(mainContent), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	return NewService(mainPath, filepath.Join(dir, "URL_config.ini"))
}

func TestGetMainSections(t *testing.T) {
	svc := newTestService(t, sampleConfig)

	sections, err := svc.GetMain(context.Background())
	if err != nil {
		t.Fatalf("get main: %v", err)
	}

	if sections["录制设置"]["video_format"] != "mp4" {
		t.Fatalf("unexpected sections: %v", sections)
	}
	// 值中的 # 不是注释
	if sections["推送配置"]["push_url"] != "https://example.com/hook#frag" {
		t.Fatalf("inline # must not truncate value, got %q", sections["推送配置"]["push_url"])
	}
}

func TestGetMainWithBOM(t *testing.T) {
	svc := newTestService(t, "\xef\xbb\xbf"+sampleConfig)

	sections, err := svc.GetMain(context.Background())
	if err != nil {
		t.Fatalf("get main with BOM: %v", err)
	}
	if sections["录制设置"]["segment_time"] != "1800" {
		t.Fatalf("unexpected sections: %v", sections)
	}
}

func TestGetMainMissingFile(t *testing.T) {
	svc := newTestService(t, "")

	if _, err := svc.GetMain(context.Background()); err != ErrConfigNotFound {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestUpdateMainMergesAndPreservesOthers(t *testing.T) {
	svc := newTestService(t, sampleConfig)
	ctx := context.Background()

	err := svc.UpdateMain(ctx, Sections{
		"录制设置": {"video_format": "ts"},
		"新分区":  {"new_key": "值"},
	})
	if err != nil {
		t.Fatalf("update main: %v", err)
	}

	sections, err := svc.GetMain(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if sections["录制设置"]["video_format"] != "ts" {
		t.Fatalf("expected updated value, got %q", sections["录制设置"]["video_format"])
	}
	// 未提及的键保持不变
	if sections["录制设置"]["segment_time"] != "1800" {
		t.Fatalf("untouched key must survive, got %q", sections["录制设置"]["segment_time"])
	}
	if sections["新分区"]["new_key"] != "值" {
		t.Fatalf("new section must be created, got %v", sections["新分区"])
	}

	// 注释保留在文件中
	raw, err := os.ReadFile(svc.mainPath)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !strings.Contains(string(raw), "录制程序配置") {
		t.Fatalf("comments must be preserved on save")
	}
}

func TestServiceUpdateMainValidation(t *testing.T) {
	svc := newTestService(t, sampleConfig)

	if err := svc.UpdateMain(context.Background(), nil); err != ErrEmptyUpdate {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
	if err := svc.UpdateMain(context.Background(), Sections{}); err != ErrEmptyUpdate {
		t.Fatalf("expected ErrEmptyUpdate for empty map, got %v", err)
	}
}

func TestURLsRoundTrip(t *testing.T) {
	svc := newTestService(t, sampleConfig)
	ctx := context.Background()

	// 文件不存在时返回空内容
	content, err := svc.GetURLs(ctx)
	if err != nil {
		t.Fatalf("get urls: %v", err)
	}
	if content != "" {
		t.Fatalf("expected empty content, got %q", content)
	}

	// CRLF 统一为 LF，末尾补换行
	input := "https://live.douyin.com/123\r\nhttps://live.bilibili.com/456"
	if err := svc.SaveURLs(ctx, input); err != nil {
		t.Fatalf("save urls: %v", err)
	}

	content, err = svc.GetURLs(ctx)
	if err != nil {
		t.Fatalf("get urls after save: %v", err)
	}
	want := "https://live.douyin.com/123\nhttps://live.bilibili.com/456\n"
	if content != want {
		t.Fatalf("expected %q, got %q", want, content)
	}
}
