// Package mainloop 实现主执行上下文
//
// 所有事件槽位的修改和观察者通知都在同一个主上下文中串行执行，
// 生产者可以在任意 goroutine 中投递，非主上下文的投递被排入主上下文。
//
// # 主上下文识别
//
// Go 没有线程标识，主上下文通过 context 标记识别：
// Loop 执行任务时传入带有本 Loop 标记的 ctx，IsMain(ctx) 据此判断。
//
//	loop := mainloop.New()
//	loop.Start()
//	defer loop.Close()
//
//	mainloop.RunOnMain(ctx, loop, func(ctx context.Context) {
//	    // 在主上下文中执行
//	})
//
// # 实现
//
//   - Loop: 单 goroutine + 无上界 FIFO 队列
//   - Immediate: 所有 ctx 都视为主上下文，任务同步执行，用于确定性测试
//
// # Fx 模块
//
// Module() 提供 *Loop 和 pkgif.Dispatcher，并在 fx 生命周期中启动/停止 Loop。
package mainloop
