// Package types 定义 go-liveevent 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - policy.go    - Policy 消费策略
//   - ids.go       - Identity 消费身份, ScopeID 作用域标识
//   - lifecycle.go - LifecycleState 宿主生命周期状态
//   - errors.go    - 公共错误定义
package types
