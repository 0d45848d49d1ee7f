package testutils

import (
	"sync"

	"github.com/anoixa/photo-gallery/internal/mail"
)

// FakeMailer 记录已投递的邮件
type FakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *FakeMailer) Dispatch(msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

// Sent 已投递邮件的副本
func (m *FakeMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mail.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// FailingRenderer 渲染总是失败
type FailingRenderer struct {
	Err error
}

func (r FailingRenderer) Render(string, string, any) (mail.Message, error) {
	return mail.Message{}, r.Err
}
