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

// Package auth 面板用户认证模块属性测试
package auth

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

// TestProperty_PasswordStorageUsesBcrypt 测试密码存储使用 bcrypt
func TestProperty_PasswordStorageUsesBcrypt(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// 测试中使用最低成本加速 bcrypt 计算
	cost := bcrypt.MinCost

	// 属性：对于任意有效密码，SetPassword 后应生成有效的 bcrypt 哈希
	properties.Property("SetPassword generates valid bcrypt hash", prop.ForAll(
		func(password string) bool {
			user := &User{}
			if err := user.SetPassword(password, cost); err != nil {
				return false
			}

			// bcrypt 哈希以 $2a$, $2b$ 或 $2y$ 开头
			return strings.HasPrefix(user.PasswordHash, "$2")
		},
		// 生成长度在 6-50 之间的密码（满足最小长度要求）
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 6 && len(s) <= 50 }),
	))

	// 属性：对于任意有效密码，SetPassword 后 CheckPassword 应返回 true
	properties.Property("CheckPassword verifies original password", prop.ForAll(
		func(password string) bool {
			user := &User{}
			if err := user.SetPassword(password, cost); err != nil {
				return false
			}
			return user.CheckPassword(password)
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 6 && len(s) <= 50 }),
	))

	// 属性：对于任意两个不同的密码，CheckPassword 应正确区分
	properties.Property("CheckPassword rejects wrong password", prop.ForAll(
		func(baseLen int, suffixLen int) bool {
			password1 := strings.Repeat("a", baseLen)
			password2 := password1 + strings.Repeat("X", suffixLen)

			user := &User{}
			if err := user.SetPassword(password1, cost); err != nil {
				return false
			}
			return !user.CheckPassword(password2)
		},
		gen.IntRange(6, 20), // 密码长度 6-20
		gen.IntRange(1, 5),  // 后缀长度 1-5
	))

	// 属性：相同密码多次哈希应生成不同的哈希值（bcrypt 使用随机盐）
	properties.Property("Same password generates different hashes", prop.ForAll(
		func(password string) bool {
			user1 := &User{}
			user2 := &User{}

			if err := user1.SetPassword(password, cost); err != nil {
				return false
			}
			if err := user2.SetPassword(password, cost); err != nil {
				return false
			}

			return user1.PasswordHash != user2.PasswordHash &&
				user1.CheckPassword(password) &&
				user2.CheckPassword(password)
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 6 && len(s) <= 50 }),
	))

	properties.TestingRun(t)
}

func TestSetPasswordValidation(t *testing.T) {
	user := &User{}

	if err := user.SetPassword("", DefaultBcryptCost); err != ErrEmptyCredentials {
		t.Fatalf("expected ErrEmptyCredentials, got %v", err)
	}
	if err := user.SetPassword("short", DefaultBcryptCost); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatalf("rejected password must not set a hash")
	}
}

func TestCheckPasswordEmptyInputs(t *testing.T) {
	user := &User{}
	if user.CheckPassword("anything") {
		t.Fatalf("user without hash must fail password check")
	}

	if err := user.SetPassword("admin123", bcrypt.MinCost); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if user.CheckPassword("") {
		t.Fatalf("empty password must fail")
	}
}
