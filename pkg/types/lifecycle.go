package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              LifecycleState - 生命周期状态
// ============================================================================

// LifecycleState 宿主作用域（页面、会话等）的生命周期状态
//
// 状态是有序的，Destroyed 最小，Resumed 最大。
// 绑定到作用域的观察者仅在状态至少为 Started 时处于活跃状态。
type LifecycleState int

const (
	// StateDestroyed 已销毁，终态；绑定的观察者会被自动移除
	StateDestroyed LifecycleState = iota
	// StateInitialized 已构造，尚未创建
	StateInitialized
	// StateCreated 已创建，不可见
	StateCreated
	// StateStarted 已启动（可见）
	StateStarted
	// StateResumed 已恢复（前台、可交互）
	StateResumed
)

// String 返回状态的字符串表示
func (s LifecycleState) String() string {
	switch s {
	case StateDestroyed:
		return "destroyed"
	case StateInitialized:
		return "initialized"
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateResumed:
		return "resumed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// IsAtLeast 判断当前状态是否不低于 s
func (s LifecycleState) IsAtLeast(other LifecycleState) bool {
	return s >= other
}

// IsActive 判断该状态下绑定的观察者是否处于活跃状态
func (s LifecycleState) IsActive() bool {
	return s.IsAtLeast(StateStarted)
}

// ParseLifecycleState 从字符串解析生命周期状态
func ParseLifecycleState(s string) (LifecycleState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "destroyed":
		return StateDestroyed, nil
	case "initialized":
		return StateInitialized, nil
	case "created":
		return StateCreated, nil
	case "started":
		return StateStarted, nil
	case "resumed":
		return StateResumed, nil
	default:
		return StateDestroyed, fmt.Errorf("%w: %q", ErrInvalidLifecycleState, s)
	}
}
