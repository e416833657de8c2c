package mainloop

import (
	"context"

	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
)

var _ pkgif.Dispatcher = Immediate{}

// Immediate 同步 Dispatcher
//
// 所有 ctx 都视为主上下文，Post 直接在调用方 goroutine 中执行任务。
// 仅适用于单 goroutine 场景（例如确定性测试）。
type Immediate struct{}

// IsMain 总是返回 true
func (Immediate) IsMain(context.Context) bool {
	return true
}

// Post 直接执行任务
func (Immediate) Post(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	task(context.Background())
	return nil
}

// Call 直接执行任务
func (Immediate) Call(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	if ctx == nil {
		ctx = context.Background()
	}
	task(ctx)
	return nil
}

// Closed 总是返回 false
func (Immediate) Closed() bool {
	return false
}
