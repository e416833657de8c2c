package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              Policy - 观察者消费策略
// ============================================================================

// Policy 观察者消费事件的策略
//
// 策略决定一个被投递的值以何种方式被观察者消费：
//   - PolicyAlways: 总是投递（包括注册时已存在的值）
//   - PolicyOncePerSubscriber: 每个观察者仅消费注册之后的事件，且每个事件仅 1 次
//   - PolicyOnceGlobally: 所有观察者中仅 1 个能消费该事件 1 次
//   - PolicyOncePerScope: 同一作用域内的观察者共享 1 次消费机会
type Policy int

const (
	// PolicyAlways 事件总是能发送到观察者
	PolicyAlways Policy = iota
	// PolicyOncePerSubscriber 多个观察者都能接收 1 次注册之后发生的事件
	PolicyOncePerSubscriber
	// PolicyOnceGlobally 仅 1 个观察者能接收到事件，且仅能接收 1 次
	PolicyOnceGlobally
	// PolicyOncePerScope 同一作用域的观察者合计仅接收 1 次事件
	PolicyOncePerScope
)

// String 返回策略的字符串表示
func (p Policy) String() string {
	switch p {
	case PolicyAlways:
		return "always"
	case PolicyOncePerSubscriber:
		return "once_per_subscriber"
	case PolicyOnceGlobally:
		return "once_globally"
	case PolicyOncePerScope:
		return "once_per_scope"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// Valid 判断策略是否为已知取值
func (p Policy) Valid() bool {
	return p >= PolicyAlways && p <= PolicyOncePerScope
}

// ParsePolicy 从字符串解析策略
//
// 大小写不敏感，同时接受 "-" 作为分隔符。
func ParsePolicy(s string) (Policy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "always":
		return PolicyAlways, nil
	case "once_per_subscriber":
		return PolicyOncePerSubscriber, nil
	case "once_globally":
		return PolicyOnceGlobally, nil
	case "once_per_scope":
		return PolicyOncePerScope, nil
	default:
		return PolicyAlways, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
