// Package interfaces 定义 go-liveevent 公共接口
//
// 本文件定义宿主生命周期协作方接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-liveevent/pkg/types"
)

// Scope 作用域
//
// 在 PolicyOncePerScope 策略下，同一作用域内的观察者共享 1 次消费机会。
type Scope interface {
	// ScopeID 返回稳定的作用域标识
	ScopeID() types.ScopeID
}

// LifecycleOwner 定义宿主生命周期拥有者
//
// 绑定到 LifecycleOwner 的观察者：
//   - 仅在 State().IsActive() 时接收事件
//   - 在状态变为 StateDestroyed 时被自动移除
type LifecycleOwner interface {
	Scope

	// State 返回当前生命周期状态
	State() types.LifecycleState

	// AddLifecycleObserver 添加状态变更回调，返回移除函数
	//
	// 回调在状态变更后被调用，ctx 为推进状态时调用方传入的 ctx，state 为新状态。
	AddLifecycleObserver(fn func(ctx context.Context, state types.LifecycleState)) (remove func())
}
