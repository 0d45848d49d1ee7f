package testutils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime"
	"mime/multipart"
	"testing"
)

// UploadFile 测试用上传文件
type UploadFile struct {
	Name string
	Data []byte
}

// PNG 生成指定尺寸的 PNG，seed 用于区分内容
func PNG(t *testing.T, width, height int, seed uint8) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: seed, G: 1, B: 2, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// MultipartBody 构造 multipart 请求体，字段名为 files
func MultipartBody(t *testing.T, files ...UploadFile) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &body, w.FormDataContentType()
}

// FileHeaders 解析为 multipart.FileHeader 列表
func FileHeaders(t *testing.T, files ...UploadFile) []*multipart.FileHeader {
	t.Helper()

	body, contentType := MultipartBody(t, files...)
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

