package liveevent

import (
	"errors"

	"github.com/dep2p/go-liveevent/internal/core/eventbus"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 运行时生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 运行时未启动
	ErrNotStarted = errors.New("runtime not started")

	// ErrAlreadyStarted 运行时已启动
	ErrAlreadyStarted = errors.New("runtime already started")

	// ErrRuntimeStopped 运行时已停止，不能再次启动
	ErrRuntimeStopped = errors.New("runtime stopped")

	// ErrRuntimeClosed 运行时已关闭
	ErrRuntimeClosed = errors.New("runtime closed")

	// ────────────────────────────────────────────────────────────────────────
	// 配置错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("nil config")

	// ErrNilRuntime 运行时为空
	ErrNilRuntime = errors.New("nil runtime")

	// ────────────────────────────────────────────────────────────────────────
	// 误用
	// ────────────────────────────────────────────────────────────────────────

	// ErrUsage 调用方误用，以 panic 的形式抛出，用 errors.Is 判断
	ErrUsage = eventbus.ErrUsage
)
