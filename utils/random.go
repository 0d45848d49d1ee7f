package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	codeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digitAlphabet = "0123456789"
)

// GenerateRandomToken Generate random token
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// GenerateCode 生成由大写字母和数字组成的随机串（邀请码、邀请令牌）
func GenerateCode(length int) (string, error) {
	return randomFromAlphabet(codeAlphabet, length)
}

// GenerateDigits 生成纯数字验证码
func GenerateDigits(length int) (string, error) {
	return randomFromAlphabet(digitAlphabet, length)
}

func randomFromAlphabet(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
