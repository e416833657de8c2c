package types

import (
	"strconv"

	"github.com/google/uuid"
)

// ============================================================================
//                              Identity - 消费身份
// ============================================================================

// Identity 消费身份
//
// 用于区分已经消费过某个事件的主体：可以是单个观察者，也可以是调用方提供的作用域。
// Identity 是不透明的键，只应通过 SubscriberIdentity / ScopeIdentity 构造。
type Identity string

// SubscriberIdentity 返回观察者句柄对应的身份
func SubscriberIdentity(id uint64) Identity {
	return Identity("sub/" + strconv.FormatUint(id, 10))
}

// ScopeIdentity 返回作用域对应的身份
func ScopeIdentity(id ScopeID) Identity {
	return Identity("scope/" + string(id))
}

// String 返回身份的字符串表示
func (i Identity) String() string {
	return string(i)
}

// ============================================================================
//                              ScopeID - 作用域标识
// ============================================================================

// ScopeID 作用域标识
//
// 同一个 ScopeID 下的多个观察者在 PolicyOncePerScope 策略下共享 1 次消费机会。
type ScopeID string

// NewScopeID 生成新的作用域标识
//
// 优先使用 UUIDv7，生成失败时回退到随机 UUIDv4。
func NewScopeID() ScopeID {
	id, err := uuid.NewV7()
	if err != nil {
		return ScopeID(uuid.NewString())
	}
	return ScopeID(id.String())
}

// String 返回作用域标识的字符串表示
func (s ScopeID) String() string {
	return string(s)
}

// IsEmpty 判断作用域标识是否为空
func (s ScopeID) IsEmpty() bool {
	return s == ""
}
