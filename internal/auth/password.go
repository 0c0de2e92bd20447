// Package auth は招待制登録、パスワード認証、JWT発行、Google OAuth連携を提供する。
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2のパラメータ。変更すると既存ハッシュが検証できなくなる。
	pbkdf2Iterations = 100000
	saltLength       = 32
	keyLength        = 64
)

// HashPassword はパスワードをPBKDF2-SHA512でハッシュ化し、
// "salt_hex:hash_hex" 形式の文字列を返す。ソルトは呼び出しごとに新規生成する。
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLength, sha512.New)

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword は保存済みハッシュとパスワードを照合する。
// 派生鍵の比較は一定時間で行う。不正な形式のハッシュは照合失敗として扱う。
func VerifyPassword(stored, password string) bool {
	saltHex, hashHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	if len(expected) != keyLength {
		return false
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLength, sha512.New)

	return subtle.ConstantTimeCompare(key, expected) == 1
}
