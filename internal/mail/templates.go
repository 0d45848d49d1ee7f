package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateJoin    = "join"
	TemplateWelcome = "welcome"
	TemplateOTP     = "otp"
)

// JoinData 相册邀请
type JoinData struct {
	GalleryTitle string
	InviterName  string
	Code         string
	Link         string
}

// WelcomeData 审核通过，欢迎加入相册
type WelcomeData struct {
	GalleryTitle string
	Name         string
	Link         string
}

// OTPData 注册验证码
type OTPData struct {
	Name string
	Code string
}

// TemplateRenderer 基于内嵌模板的渲染器
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer 解析全部内嵌模板
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}
	return &TemplateRenderer{templates: tpl}, nil
}

// Render 渲染邮件正文并生成主题
func (r *TemplateRenderer) Render(name, to string, data any) (Message, error) {
	subject, err := subjectFor(name, data)
	if err != nil {
		return Message{}, err
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}

func subjectFor(name string, data any) (string, error) {
	switch d := data.(type) {
	case JoinData:
		return "Join " + d.GalleryTitle, nil
	case WelcomeData:
		return "Welcome to " + d.GalleryTitle, nil
	case OTPData:
		return "Your verification code", nil
	default:
		return "", fmt.Errorf("render %s: unsupported data %T", name, data)
	}
}
