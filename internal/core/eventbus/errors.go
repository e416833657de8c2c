package eventbus

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage 调用方误用（程序错误，不可恢复）
	ErrUsage = errors.New("eventbus: usage error")
)

// usagePanic 以包装 ErrUsage 的错误 panic
func usagePanic(format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{ErrUsage}, args...)...))
}
