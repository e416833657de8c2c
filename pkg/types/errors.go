// Package types 定义 go-liveevent 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              策略相关错误
// ============================================================================

var (
	// ErrInvalidPolicy 无效的消费策略
	ErrInvalidPolicy = errors.New("invalid policy")
)

// ============================================================================
//                              生命周期相关错误
// ============================================================================

var (
	// ErrInvalidLifecycleState 无效的生命周期状态
	ErrInvalidLifecycleState = errors.New("invalid lifecycle state")
)
