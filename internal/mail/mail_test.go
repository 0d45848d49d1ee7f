package mail

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anoixa/photo-gallery/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_Join(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	msg, err := r.Render(TemplateJoin, "bob@example.com", JoinData{
		GalleryTitle: "Summer",
		InviterName:  "Alice",
		Code:         "AB12CD",
		Link:         "http://localhost:8080/join?token=XYZ",
	})
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", msg.To)
	assert.Equal(t, "Join Summer", msg.Subject)
	assert.Contains(t, msg.HTML, "AB12CD")
	assert.Contains(t, msg.HTML, "/join?token=XYZ")
}

func TestTemplateRenderer_EscapesHTML(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	msg, err := r.Render(TemplateWelcome, "bob@example.com", WelcomeData{
		GalleryTitle: "<script>x</script>",
		Name:         "Bob",
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestTemplateRenderer_UnknownData(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, err = r.Render(TemplateJoin, "bob@example.com", struct{}{})
	assert.Error(t, err)
}

func TestBuildEmailMessage(t *testing.T) {
	msg, err := buildEmailMessage("from@example.com", "to@example.com", "Join 相册", "<p>hi</p>")
	require.NoError(t, err)

	s := string(msg)
	assert.Contains(t, s, "Subject: =?UTF-8?b?")
	assert.Contains(t, s, "MIME-Version: 1.0")
	assert.Contains(t, s, "Content-Type: text/html; charset=UTF-8")
	assert.True(t, strings.HasSuffix(s, "<p>hi</p>"))
}

func TestBuildEmailMessage_RejectsCRLF(t *testing.T) {
	_, err := buildEmailMessage("a@example.com", "b@example.com", "x\r\nBcc: evil@example.com", "")
	assert.Error(t, err)
}

func TestParseAddressForHeader(t *testing.T) {
	header, addr, err := parseAddressForHeader("Photo Gallery <no-reply@example.com>")
	require.NoError(t, err)
	assert.Equal(t, "no-reply@example.com", addr)
	assert.Contains(t, header, "<no-reply@example.com>")

	_, _, err = parseAddressForHeader("not-an-email")
	assert.Error(t, err)

	_, _, err = parseAddressForHeader("a@example.com\r\nBcc: x@example.com")
	assert.Error(t, err)
}

func TestSMTPSender_DisabledIsNoop(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Enabled: false})
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@example.com", Subject: "x"}))
}

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestDispatcher_Inline(t *testing.T) {
	sender := &recordingSender{}
	NewDispatcher(sender, nil).Dispatch(Message{To: "a@example.com"})
	assert.Equal(t, 1, sender.count())
}

func TestDispatcher_PoolAndFailureLogged(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	pool := worker.NewPool(1, 4)
	d := NewDispatcher(sender, pool)

	d.Dispatch(Message{To: "a@example.com"})
	d.Dispatch(Message{To: "b@example.com"})
	pool.Stop()

	assert.Equal(t, 2, sender.count())
	assert.Eventually(t, func() bool { return pool.GetStats().Failed == 0 }, time.Second, 10*time.Millisecond)
}
