// Package asyncjob 实现异步任务事件协议
//
// Job 通过一条事件总线发布异步任务的阶段事件：
//
//	Begin → Progress* → Success | Failure
//	        Custom(key) 可在任意时刻插入
//
// 每个事件是一个带标签的 Event，标签决定载荷的形状：
//
//	┌──────────┬──────────────┐
//	│ 标签     │ 载荷         │
//	├──────────┼──────────────┤
//	│ Begin    │ 无           │
//	│ Progress │ int          │
//	│ Success  │ T            │
//	│ Failure  │ *JobError    │
//	│ Custom   │ key + any    │
//	└──────────┴──────────────┘
//
// 消费策略在构造 Job 时确定一次，之后所有 Observe 调用都使用该策略注册，
// 调用方不能逐次选择。Handle* 守卫与 Callbacks 只是分发语法糖，
// 不引入额外的消费语义。
//
// 任务本身的失败是数据（Failure 事件），不会中断发布方；
// 误用（例如 Success 载荷为 nil）以 ErrUsage panic。
package asyncjob
