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

package supervisor

import "regexp"

// escapePattern matches ANSI/VT terminal escape sequences:
// CSI sequences (ESC [ params final byte), OSC sequences (ESC ] ... BEL or ST),
// and remaining single-character escapes (ESC + one byte).
// escapePattern 匹配 ANSI/VT 终端转义序列：
// CSI 序列（ESC [ 参数 终止字节）、OSC 序列（ESC ] ... BEL 或 ST）
// 以及其余的单字符转义（ESC + 单字节）。
var escapePattern = regexp.MustCompile(`\x1b(\[[0-9;?]*[ -/]*[@-~]|\][^\x07\x1b]*(\x07|\x1b\\)?|[@-Z\\-_])`)

// StripEscapes removes terminal control/escape sequences from a text fragment,
// preserving all other characters and internal whitespace.
// Pure and total: sanitizing an already-sanitized fragment is a no-op.
// StripEscapes 去除文本片段中的终端控制/转义序列，保留所有其他字符和内部空白。
// 纯函数且无失败路径：对已净化的片段再次净化结果不变。
func StripEscapes(s string) string {
	// 删除一段序列可能把前后文本拼接成新的序列（如孤立 ESC 紧邻被删的
	// OSC 序列），因此迭代到不动点。每轮非空替换都会缩短字符串，必然终止。
	for {
		next := escapePattern.ReplaceAllString(s, "")
		if next == s {
			return next
		}
		s = next
	}
}
