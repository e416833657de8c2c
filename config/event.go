package config

import (
	"fmt"

	"github.com/dep2p/go-liveevent/pkg/types"
)

// EventConfig 事件配置
//
// 这里的值只是默认值，Job/LiveEvent 构造时可以逐个覆盖。
type EventConfig struct {
	// DefaultPolicy 新建 Job 的默认消费策略
	DefaultPolicy types.Policy `json:"default_policy"`

	// DefaultTimeout 新建 Job/LiveEvent 的事件存活时长，0 表示永不过期
	DefaultTimeout Duration `json:"default_timeout"`
}

// DefaultEventConfig 返回默认事件配置
//
// 默认策略下观察者仅接收注册之后发生的事件。
func DefaultEventConfig() EventConfig {
	return EventConfig{
		DefaultPolicy:  types.PolicyOncePerSubscriber,
		DefaultTimeout: 0,
	}
}

// Validate 验证事件配置
func (c EventConfig) Validate() error {
	if !c.DefaultPolicy.Valid() {
		return fmt.Errorf("event.default_policy: %w", types.ErrInvalidPolicy)
	}
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("event.default_timeout must be >= 0, got %s", c.DefaultTimeout)
	}
	return nil
}
