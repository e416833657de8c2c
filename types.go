package liveevent

import (
	"github.com/dep2p/go-liveevent/internal/core/eventbus"
	"github.com/dep2p/go-liveevent/internal/core/lifecycle"
	"github.com/dep2p/go-liveevent/internal/core/metrics"
	"github.com/dep2p/go-liveevent/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// Handle 观察者注册句柄，移除观察者的唯一凭证
type Handle = eventbus.Handle

// Env 事件总线运行环境
type Env = eventbus.Env

// Scope 生命周期作用域（页面、会话等）
type Scope = lifecycle.Owner

// Snapshot 单条总线的投递统计
type Snapshot = metrics.Snapshot

// Policy 消费策略
type Policy = types.Policy

// 消费策略
const (
	PolicyAlways            = types.PolicyAlways
	PolicyOncePerSubscriber = types.PolicyOncePerSubscriber
	PolicyOnceGlobally      = types.PolicyOnceGlobally
	PolicyOncePerScope      = types.PolicyOncePerScope
)

// LifecycleState 作用域生命周期状态
type LifecycleState = types.LifecycleState

// 作用域生命周期状态
const (
	LifecycleDestroyed   = types.StateDestroyed
	LifecycleInitialized = types.StateInitialized
	LifecycleCreated     = types.StateCreated
	LifecycleStarted     = types.StateStarted
	LifecycleResumed     = types.StateResumed
)

// ScopeOption 作用域选项
type ScopeOption = lifecycle.Option

// 作用域选项
var (
	// WithScopeName 设置作用域名称（仅用于日志）
	WithScopeName = lifecycle.WithName

	// WithScopeID 使用指定的作用域标识，共享标识的作用域在 PolicyOncePerScope 下视为同一作用域
	WithScopeID = lifecycle.WithScopeID
)
