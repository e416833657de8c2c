package liveevent

import (
	"fmt"

	"github.com/dep2p/go-liveevent/pkg/asyncjob"
)

// NewJob 创建异步任务事件发布者
//
// 策略与事件存活时长取自运行时配置，opts 可以逐项覆盖。
func NewJob[T any](rt *Runtime, opts ...asyncjob.Option) *asyncjob.Job[T] {
	if rt == nil {
		panic(fmt.Errorf("%w: %w", ErrUsage, ErrNilRuntime))
	}
	cfg := rt.Config().Event
	defaults := []asyncjob.Option{
		asyncjob.WithPolicy(cfg.DefaultPolicy),
		asyncjob.WithEventTimeout(cfg.DefaultTimeout.Duration()),
	}
	return asyncjob.New[T](rt.Env(), append(defaults, opts...)...)
}
