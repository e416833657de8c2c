// Package interfaces 定义 go-liveevent 公共接口
//
// 本文件定义 Dispatcher 接口，即"主执行上下文"。
package interfaces

import "context"

// Dispatcher 定义主执行上下文
//
// 所有槽位修改和观察者通知都在 Dispatcher 的主上下文中串行执行。
// 生产者可以在任意 goroutine 中投递，非主上下文的调用会被排入主上下文执行。
type Dispatcher interface {
	// IsMain 判断 ctx 是否处于本 Dispatcher 的主上下文中
	//
	// 主上下文中执行的任务收到的 ctx 会带有标记，IsMain 据此判断。
	IsMain(ctx context.Context) bool

	// Post 将任务排入主上下文执行，不阻塞调用方，也不等待任务完成
	Post(task func(ctx context.Context)) error

	// Call 在主上下文中执行任务并等待完成
	//
	// 如果 ctx 已处于主上下文，任务直接执行。
	Call(ctx context.Context, task func(ctx context.Context)) error

	// Closed 返回 Dispatcher 是否已关闭
	Closed() bool
}
