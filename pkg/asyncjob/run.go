package asyncjob

import (
	"context"
	"errors"
	"fmt"

	"github.com/dep2p/go-liveevent/internal/core/mainloop"
)

// Run 在新的 goroutine 中执行 fn 并通过 job 发布其结果
//
// 依次发布 Begin，然后根据 fn 的返回值发布 Success 或 Failure。
// fn 中的 panic 被恢复并作为 Failure 发布；误用（ErrUsage）不恢复。
// fn 返回 nil 指针、map 等空结果且没有错误时发布 Failure（ErrNilResult）。
// 立即返回，返回的 channel 在全部事件发布后关闭。
// 在主上下文中调用时，fn 收到的 ctx 不再被识别为主上下文。
func Run[T any](ctx context.Context, job *Job[T], fn func(ctx context.Context) (T, error)) <-chan struct{} {
	if job == nil || fn == nil {
		usagePanic("nil job or func")
	}

	ctx = mainloop.Detach(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)

		job.PostBegin(ctx, nil)
		result, err := call(ctx, fn)
		if err != nil {
			logger.Debug("任务失败", "job", job.Name(), "error", err)
			job.PostError(ctx, err, nil)
			return
		}
		if isNil(result) {
			logger.Warn("任务返回空结果", "job", job.Name())
			job.PostError(ctx, ErrNilResult, nil)
			return
		}
		job.PostSuccess(ctx, result, nil)
	}()
	return done
}

// call 执行 fn，把 panic 转为错误
func call[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (result T, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok && errors.Is(e, ErrUsage) {
			panic(r)
		}
		logger.Warn("任务 panic", "panic", r)
		err = fmt.Errorf("job panic: %v", r)
	}()
	return fn(ctx)
}
