package mainloop

import (
	"context"
	"sync"

	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/lib/log"
)

var logger = log.Logger("core/mainloop")

// mainKey 是主上下文标记的 context key
type mainKey struct{}

// Task 主上下文任务
type Task = func(ctx context.Context)

var _ pkgif.Dispatcher = (*Loop)(nil)

// ============================================================================
// Loop 实现
// ============================================================================

// Loop 主循环
//
// 单个 goroutine 按 FIFO 顺序执行任务。队列无上界，Post 永不阻塞。
type Loop struct {
	mu      sync.Mutex
	queue   []Task
	closed  bool
	started bool

	// wake 有新任务或关闭时唤醒循环
	wake chan struct{}
	// stopped 循环退出后关闭
	stopped chan struct{}

	// mainCtx 传给任务的 ctx，带有本 Loop 的标记
	mainCtx context.Context
}

// Option Loop 选项
type Option func(*Loop)

// WithQueueCapacity 设置任务队列的初始容量
func WithQueueCapacity(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queue = make([]Task, 0, n)
		}
	}
}

// New 创建主循环，需要调用 Start 启动
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	l.mainCtx = context.WithValue(context.Background(), mainKey{}, l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start 启动主循环 goroutine，重复调用无副作用
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started || l.closed {
		return
	}
	l.started = true
	go l.run()
}

// IsMain 判断 ctx 是否处于本 Loop 的主上下文中
func (l *Loop) IsMain(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, _ := ctx.Value(mainKey{}).(*Loop)
	return owner == l
}

// Post 将任务排入队列
func (l *Loop) Post(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	l.signal()
	return nil
}

// Call 在主上下文中执行任务并等待完成
//
// 已处于主上下文时直接执行；否则排队并等待，ctx 取消时返回 ctx.Err()
// （此时任务仍可能稍后执行）。
func (l *Loop) Call(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	if l.IsMain(ctx) {
		task(ctx)
		return nil
	}

	done := make(chan struct{})
	err := l.Post(func(mctx context.Context) {
		defer close(done)
		task(mctx)
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed 返回主循环是否已关闭
func (l *Loop) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Pending 返回尚未执行的任务数
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Stop 关闭主循环
//
// 已排队的任务会被执行完毕后循环才退出。
// 在主上下文中调用时不等待退出（否则会自锁）。
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		started := l.started
		l.mu.Unlock()
		if started && !l.IsMain(ctx) {
			return l.wait(ctx)
		}
		return nil
	}
	l.closed = true
	started := l.started
	l.mu.Unlock()

	l.signal()

	if !started || l.IsMain(ctx) {
		return nil
	}
	return l.wait(ctx)
}

// Close 关闭主循环并等待退出
func (l *Loop) Close() error {
	return l.Stop(context.Background())
}

// Done 返回循环退出后关闭的通道
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

// ============================================================================
// 内部方法
// ============================================================================

func (l *Loop) wait(ctx context.Context) error {
	select {
	case <-l.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer close(l.stopped)

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		if len(batch) == 0 {
			if closed {
				logger.Debug("主循环已退出")
				return
			}
			<-l.wake
			continue
		}

		for _, task := range batch {
			l.exec(task)
		}
	}
}

// exec 执行单个任务
//
// 任务中的 panic 属于调用方错误，记录后原样抛出。
func (l *Loop) exec(task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("主循环任务 panic", "panic", r)
			panic(r)
		}
	}()
	task(l.mainCtx)
}
