// Package mail 渲染并投递 HTML 邮件
package mail

import "context"

// Message 一封待发送的邮件
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender 同步投递
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer 异步投递，失败只记录日志
type Mailer interface {
	Dispatch(msg Message)
}

// Renderer 按模板名渲染邮件
type Renderer interface {
	Render(name string, to string, data any) (Message, error)
}
