package mainloop

import "errors"

var (
	// ErrLoopClosed 主循环已关闭
	ErrLoopClosed = errors.New("mainloop closed")

	// ErrNilTask 任务为空
	ErrNilTask = errors.New("mainloop: nil task")
)
