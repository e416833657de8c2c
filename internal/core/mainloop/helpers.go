package mainloop

import (
	"context"

	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
)

// RunOnMain 在主上下文中执行 fn
//
// 调用方已处于主上下文时同步执行并在返回前完成；
// 否则以"发出即忘"的方式排入主上下文，调用方不阻塞，也观察不到完成。
func RunOnMain(ctx context.Context, d pkgif.Dispatcher, fn Task) error {
	if d.IsMain(ctx) {
		fn(ctx)
		return nil
	}
	return d.Post(fn)
}

// Barrier 等待主上下文中此前排队的任务全部执行完毕
//
// 在主上下文中调用时立即返回。
func Barrier(ctx context.Context, d pkgif.Dispatcher) error {
	return d.Call(ctx, func(context.Context) {})
}

// Detach 返回不再被识别为主上下文的 ctx
//
// 把主上下文交给其他 goroutine 之前必须 Detach，否则对方会被误判为处于主上下文。
// 取消与截止时间保持不变。
func Detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithValue(ctx, mainKey{}, (*Loop)(nil))
}
