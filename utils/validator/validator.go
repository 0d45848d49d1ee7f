package validator

import (
	"io"
	"net/http"
	"regexp"
	"strings"
)

// allowedImageMimeTypes 允许上传的图片类型及其安全扩展名
var allowedImageMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// "+" 后跟 11 位数字，例如 +41791234567
	phonePattern = regexp.MustCompile(`^\+\d{11}$`)
)

// IsImage 嗅探文件头判断是否为允许的图片类型，读取后将游标复位
func IsImage(file io.ReadSeeker) (bool, string, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return false, "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return false, "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	if _, ok := allowedImageMimeTypes[mimeType]; ok {
		return true, mimeType, nil
	}
	return false, mimeType, nil
}

// SafeExtension 根据 MIME 类型返回扩展名，不允许的类型返回空字符串
func SafeExtension(mimeType string) string {
	mimeType = strings.TrimSpace(strings.Split(mimeType, ";")[0])
	return allowedImageMimeTypes[mimeType]
}

// IsValidEmail 校验邮箱格式
func IsValidEmail(email string) bool {
	if len(email) > 255 {
		return false
	}
	return emailPattern.MatchString(email)
}

// IsValidPhoneNumber 校验手机号格式
func IsValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizeEmail 统一邮箱大小写与空白
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
