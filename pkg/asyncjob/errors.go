package asyncjob

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-liveevent/internal/core/eventbus"
)

// ErrUsage 调用方误用，与事件总线共用同一个哨兵错误
var ErrUsage = eventbus.ErrUsage

// ErrNilResult Run 中的任务函数返回了空结果且没有错误
var ErrNilResult = errors.New("job returned nil result")

// usagePanic 以包装 ErrUsage 的错误 panic
func usagePanic(format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{ErrUsage}, args...)...))
}

// JobError 任务失败信息
//
// Message 与 Cause 至少有一个非空。
type JobError struct {
	Message string
	Cause   error
}

// Error 实现 error 接口
func (e *JobError) Error() string {
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return e.Cause.Error()
	default:
		return e.Message + ": " + e.Cause.Error()
	}
}

// Unwrap 返回原因
func (e *JobError) Unwrap() error {
	return e.Cause
}
