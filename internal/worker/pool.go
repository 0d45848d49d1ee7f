// Package worker 有界协程池，用于邮件等后台任务
package worker

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"
)

const defaultQueueSize = 1000

// Pool 协程池
type Pool struct {
	workers int
	queue   chan func()
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	submitted atomic.Uint64
	executed  atomic.Uint64
	failed    atomic.Uint64
}

// Stats 运行统计
type Stats struct {
	Submitted   uint64
	Executed    uint64
	Failed      uint64
	WorkerCount int
	QueueLen    int
	QueueCap    int
}

// NewPool 创建并启动协程池
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	p := &Pool{
		workers: workers,
		queue:   make(chan func(), queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	log.Printf("[Worker] pool started with %d workers, queue %d", workers, queueSize)
	return p
}

// Submit 非阻塞提交，队列满或已停止时返回 false
func (p *Pool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}

	select {
	case p.queue <- task:
		p.submitted.Add(1)
		return true
	default:
		log.Println("[Worker] queue is full, task dropped")
		return false
	}
}

// Stop 停止接收新任务，等待队列中的任务执行完毕
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	log.Println("[Worker] pool stopped")
}

// GetStats 获取统计信息
func (p *Pool) GetStats() Stats {
	return Stats{
		Submitted:   p.submitted.Load(),
		Executed:    p.executed.Load(),
		Failed:      p.failed.Load(),
		WorkerCount: p.workers,
		QueueLen:    len(p.queue),
		QueueCap:    cap(p.queue),
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		if task == nil {
			continue
		}
		p.execute(task)
	}
}

// execute 执行任务并捕获 panic
func (p *Pool) execute(task func()) {
	defer func() {
		p.executed.Add(1)
		if r := recover(); r != nil {
			p.failed.Add(1)
			log.Printf("[Worker] panic recovered in task: %v", r)
		}
	}()
	task()
}
