// Package metrics 提供事件投递统计
//
// 每个事件总线按名称拥有一组原子计数器：
//   - Posts: 投递次数
//   - Delivered: 实际送达观察者的次数
//   - Expired: 因事件过期而跳过的次数
//   - Suppressed: 因已被消费（全局/观察者/作用域）而跳过的次数
//   - Replays: 注册或重新激活时补发最新值的次数
//   - Registrations / Removals: 观察者注册与移除次数
//
// # 快速开始
//
//	reg := metrics.NewRegistry()
//	c := reg.Bus("login")
//	c.IncPosts()
//
//	snap := reg.Snapshot()["login"]
//
// # Prometheus
//
// Collector 将 Registry 暴露为 <namespace>_<name>_total 计数器，带 bus 标签：
//
//	prometheus.MustRegister(metrics.NewCollector("liveevent", reg))
//
// # 并发安全
//
// 计数器使用 atomic.Int64；Registry 的名称表使用 sync.RWMutex 保护。
// 所有计数方法对 nil 接收者是安全的空操作。
package metrics
