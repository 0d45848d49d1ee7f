package validator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsImage_JPEG 测试JPEG图片验证
func TestIsImage_JPEG(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	reader := bytes.NewReader(data)

	isValid, mimeType, err := IsImage(reader)
	require.NoError(t, err)
	assert.True(t, isValid)
	assert.Equal(t, "image/jpeg", mimeType)

	pos, _ := reader.Seek(0, 1)
	assert.Equal(t, int64(0), pos)
}

// TestIsImage_PNG 测试PNG图片验证
func TestIsImage_PNG(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

	isValid, mimeType, err := IsImage(bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, isValid)
	assert.Equal(t, "image/png", mimeType)
}

// TestIsImage_Text 测试非图片内容
func TestIsImage_Text(t *testing.T) {
	isValid, mimeType, err := IsImage(strings.NewReader("just some text"))
	require.NoError(t, err)
	assert.False(t, isValid)
	assert.Contains(t, mimeType, "text/plain")
}

func TestSafeExtension(t *testing.T) {
	assert.Equal(t, ".jpg", SafeExtension("image/jpeg"))
	assert.Equal(t, ".png", SafeExtension("image/png; charset=binary"))
	assert.Equal(t, "", SafeExtension("text/html"))
}

func TestIsValidPhoneNumber(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+41791234567", true},
		{"0791234567", false},
		{"41791234567", false},
		{"+4179123456", false},
		{"+417912345678", false},
		{"+4179123456a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPhoneNumber(tt.phone))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("alice@example.com"))
	assert.False(t, IsValidEmail("alice@example"))
	assert.False(t, IsValidEmail("alice example@example.com"))
	assert.False(t, IsValidEmail(strings.Repeat("a", 250)+"@example.com"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
