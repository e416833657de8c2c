// Package liveevent 提供防倒灌的单槽位事件与异步任务事件协议
//
// 单槽位事件（只保存最新值的广播）天然存在三个互相冲突的默认行为：
// 新观察者会收到历史值（倒灌）、已有观察者应当看到每个值、
// 某些值应当在多个观察者之间只被消费一次。本包用可选的消费策略调和它们。
//
// # 核心概念
//
//   - Runtime: 运行时，组装主执行上下文、作用域与指标
//   - LiveEvent: 单槽位事件，按策略分发最新值
//   - Job: 异步任务事件发布者（Begin/Progress/Success/Failure/Custom）
//   - Scope: 有生命周期的作用域，销毁时自动移除绑定的观察者
//
// # 消费策略
//
//	┌──────────────────────┬────────────────────────────────────────────┐
//	│ 策略                 │ 行为                                       │
//	├──────────────────────┼────────────────────────────────────────────┤
//	│ Always               │ 每个非过期值都送达，注册时补发当前值       │
//	│ OncePerSubscriber    │ 只接收注册之后的值，每个观察者各一次       │
//	│ OnceGlobally         │ 所有同策略观察者合计一次                   │
//	│ OncePerScope         │ 同一作用域内合计一次，不同作用域互相独立   │
//	└──────────────────────┴────────────────────────────────────────────┘
//
// # 快速开始
//
//	rt, err := liveevent.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//	if err := rt.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	page := rt.NewScope(liveevent.WithScopeName("settings"))
//	page.Resume(ctx)
//
//	job := liveevent.NewJob[string](rt)
//	job.ObserveCallbacks(page, &asyncjob.Callbacks[string]{
//	    OnBegin:   func() { showSpinner() },
//	    OnSuccess: func(r string) { hideSpinner(); show(r) },
//	})
//	asyncjob.Run(ctx, job, fetch)
//
// # 线程模型
//
// 所有槽位更新与观察者通知都在唯一的主执行上下文中顺序执行。
// 任意 goroutine 都可以 Post；主上下文中的 Set/Post 同步完成通知，
// 其他 goroutine 中的 Post 排入主上下文后立即返回。
//
// # 文件组织
//
//   - runtime.go: Runtime 生命周期与访问器
//   - fx.go: Fx 模块组装
//   - options.go: 运行时选项
//   - liveevent.go: LiveEvent
//   - job.go: Job 构造
//   - types.go: 类型别名
//   - errors.go: 公共错误
package liveevent
