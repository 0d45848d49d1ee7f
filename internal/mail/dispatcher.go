package mail

import (
	"context"
	"log"
	"time"

	"github.com/anoixa/photo-gallery/internal/worker"
	"github.com/anoixa/photo-gallery/utils"
)

const sendTimeout = 30 * time.Second

// Dispatcher 将邮件提交到协程池发送
type Dispatcher struct {
	sender Sender
	pool   *worker.Pool
}

// NewDispatcher pool 为 nil 时同步发送
func NewDispatcher(sender Sender, pool *worker.Pool) *Dispatcher {
	return &Dispatcher{sender: sender, pool: pool}
}

// Dispatch 提交发送任务，失败只记录日志
func (d *Dispatcher) Dispatch(msg Message) {
	if d.pool == nil {
		d.send(msg)
		return
	}
	if !d.pool.Submit(func() { d.send(msg) }) {
		log.Printf("[Email] failed to queue mail to %s", utils.SanitizeLogEmail(msg.To))
	}
}

func (d *Dispatcher) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		log.Printf("[Email] failed to send mail to %s: %v", utils.SanitizeLogEmail(msg.To), err)
	}
}
