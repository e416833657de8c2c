// Package eventbus 实现单槽位"最新值"事件总线
//
// Bus 只保存最新投递的值（Envelope），每次投递都会替换旧值并同步通知所有活跃观察者。
// 观察者通过以下注册方法之一接入，每种方法对应一种消费策略：
//
//	| 方法                       | 身份键        | 投递规则                                   |
//	|----------------------------|---------------|--------------------------------------------|
//	| Observe                    | 无            | 总是投递（包括注册时已存在的值）           |
//	| ObserveOncePerSubscriber   | 观察者句柄    | 仅投递注册之后的值，每个值 1 次            |
//	| ObserveOnceGlobally        | Envelope 标志 | 所有同策略观察者中仅 1 个接收 1 次         |
//	| ObserveOncePerScope        | 外部作用域    | 同作用域的观察者合计接收 1 次              |
//	| ObserveForever             | 无            | 同 Observe，但不绑定生命周期，只能显式移除 |
//
// 总线不提供无策略的原生注册方法，调用方必须选择一种策略。
//
// # 快速开始
//
//	bus := eventbus.New[string](eventbus.Env{Dispatcher: loop})
//
//	h := bus.ObserveOncePerSubscriber(owner, func(v string) {
//	    fmt.Println("got", v)
//	})
//	defer bus.Remove(ctx, h)
//
//	bus.Post(ctx, "hello", 3*time.Second) // 任意 goroutine
//
// # 生命周期
//
// 绑定到 LifecycleOwner 的观察者仅在 owner 处于 Started/Resumed 时接收事件；
// owner 重新激活时会补发其尚未见过的最新值；owner 销毁时自动移除。
//
// # 并发安全
//
//   - 槽位替换与通知只在主上下文（Dispatcher）中进行，通知按注册顺序串行执行
//   - 注册/移除可在任意 goroutine 调用，观察者列表与身份表由 mutex 保护
//   - Envelope 的"取出"操作在 Envelope 内部加锁，保证原子性
//
// # 错误
//
// 误用（非主上下文调用 Set、nil 回调、无效策略等）属于程序错误，
// 以包装 ErrUsage 的 panic 立即暴露；事件过期不是错误，只是不投递。
package eventbus
