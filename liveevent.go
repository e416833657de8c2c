package liveevent

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-liveevent/internal/core/eventbus"
	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              LiveEvent
// ════════════════════════════════════════════════════════════════════════════

// LiveEvent 防倒灌的单槽位事件
//
// LiveEvent 保存最近一次投递的值，并按观察者选择的策略分发：
//
//	ObserveAlways            总是接收非过期值（含注册时的当前值）
//	ObserveOncePerSubscriber 只接收注册之后的值，每个值一次
//	ObserveOnceGlobally      所有同策略观察者合计接收一次
//	ObserveOncePerScope      同一作用域内合计接收一次
//	ObserveForever           不绑定生命周期的 ObserveAlways
//
// Observe 使用运行时配置的默认策略。
type LiveEvent[T any] struct {
	bus    *eventbus.Bus[T]
	policy types.Policy

	// timeout 事件存活时长（纳秒）
	timeout atomic.Int64
}

// LiveEventOption LiveEvent 选项
type LiveEventOption func(*liveEventOptions)

type liveEventOptions struct {
	name    string
	policy  *types.Policy
	timeout *time.Duration
}

// WithEventName 设置名称（用于日志和统计）
//
// 同名实例共享同一组统计计数器。未设置时生成 "live_event-<编号>"。
func WithEventName(name string) LiveEventOption {
	return func(o *liveEventOptions) {
		o.name = name
	}
}

// WithEventPolicy 设置 Observe 使用的策略，覆盖运行时默认值
func WithEventPolicy(p types.Policy) LiveEventOption {
	return func(o *liveEventOptions) {
		o.policy = &p
	}
}

// WithEventTimeout 设置事件存活时长，覆盖运行时默认值
func WithEventTimeout(d time.Duration) LiveEventOption {
	return func(o *liveEventOptions) {
		o.timeout = &d
	}
}

// NewLiveEvent 创建 LiveEvent
func NewLiveEvent[T any](rt *Runtime, opts ...LiveEventOption) *LiveEvent[T] {
	if rt == nil {
		panic(fmt.Errorf("%w: %w", ErrUsage, ErrNilRuntime))
	}
	cfg := rt.Config().Event
	var o liveEventOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = eventbus.UniqueName("live_event")
	}

	policy := cfg.DefaultPolicy
	if o.policy != nil {
		policy = *o.policy
	}
	timeout := cfg.DefaultTimeout.Duration()
	if o.timeout != nil {
		timeout = *o.timeout
	}

	e := &LiveEvent[T]{
		bus:    eventbus.New[T](rt.Env(), eventbus.WithName(o.name)),
		policy: policy,
	}
	e.SetEventTimeout(timeout)
	return e
}

// Name 返回名称
func (e *LiveEvent[T]) Name() string {
	return e.bus.Name()
}

// Policy 返回 Observe 使用的策略
func (e *LiveEvent[T]) Policy() types.Policy {
	return e.policy
}

// SetEventTimeout 设置之后投递的值的存活时长，负值按 0 处理
func (e *LiveEvent[T]) SetEventTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.timeout.Store(int64(d))
}

// EventTimeout 返回事件存活时长
func (e *LiveEvent[T]) EventTimeout() time.Duration {
	return time.Duration(e.timeout.Load())
}

// ════════════════════════════════════════════════════════════════════════════
//                              投递
// ════════════════════════════════════════════════════════════════════════════

// Set 在主上下文中设置值，返回前所有活跃观察者都已被通知
func (e *LiveEvent[T]) Set(ctx context.Context, value T) {
	e.bus.Set(ctx, value, e.EventTimeout())
}

// Post 在任意 goroutine 中投递值
func (e *LiveEvent[T]) Post(ctx context.Context, value T) {
	e.bus.Post(ctx, value, e.EventTimeout())
}

// PostLatest 合并投递：连续的非主上下文投递只有最后一个值会被应用
func (e *LiveEvent[T]) PostLatest(ctx context.Context, value T) {
	e.bus.PostLatest(ctx, value, e.EventTimeout())
}

// Value 返回当前未过期的值
func (e *LiveEvent[T]) Value() (T, bool) {
	return e.bus.Value()
}

// ════════════════════════════════════════════════════════════════════════════
//                              观察
// ════════════════════════════════════════════════════════════════════════════

// Observe 按默认策略注册观察者
//
// 默认策略为 PolicyOncePerScope 时以 owner 作为作用域。
func (e *LiveEvent[T]) Observe(owner pkgif.LifecycleOwner, fn func(T)) *Handle {
	if e.policy == types.PolicyOncePerScope {
		return e.bus.ObserveOncePerScope(owner, owner, fn)
	}
	return e.bus.ObserveWith(e.policy, owner, nil, fn)
}

// ObserveAlways 总是接收非过期值
func (e *LiveEvent[T]) ObserveAlways(owner pkgif.LifecycleOwner, fn func(T)) *Handle {
	return e.bus.Observe(owner, fn)
}

// ObserveOncePerSubscriber 只接收注册之后的值，每个值一次
func (e *LiveEvent[T]) ObserveOncePerSubscriber(owner pkgif.LifecycleOwner, fn func(T)) *Handle {
	return e.bus.ObserveOncePerSubscriber(owner, fn)
}

// ObserveOnceGlobally 所有同策略观察者合计接收一次
func (e *LiveEvent[T]) ObserveOnceGlobally(owner pkgif.LifecycleOwner, fn func(T)) *Handle {
	return e.bus.ObserveOnceGlobally(owner, fn)
}

// ObserveOncePerScope 同一作用域内合计接收一次
func (e *LiveEvent[T]) ObserveOncePerScope(owner pkgif.LifecycleOwner, scope pkgif.Scope, fn func(T)) *Handle {
	return e.bus.ObserveOncePerScope(owner, scope, fn)
}

// ObserveForever 不绑定生命周期，调用方负责 Remove
func (e *LiveEvent[T]) ObserveForever(fn func(T)) *Handle {
	return e.bus.ObserveForever(fn)
}

// Remove 移除观察者，重复移除是空操作
func (e *LiveEvent[T]) Remove(ctx context.Context, h *Handle) {
	e.bus.Remove(ctx, h)
}

// RemoveSync 移除观察者并等待正在进行的通知轮次结束
func (e *LiveEvent[T]) RemoveSync(ctx context.Context, h *Handle) error {
	return e.bus.RemoveSync(ctx, h)
}

// RemoveObservers 移除绑定到 owner 的所有观察者
func (e *LiveEvent[T]) RemoveObservers(ctx context.Context, owner pkgif.LifecycleOwner) {
	e.bus.RemoveObservers(ctx, owner)
}

// HasObservers 返回是否有注册的观察者
func (e *LiveEvent[T]) HasObservers() bool {
	return e.bus.HasObservers()
}

// HasActiveObservers 返回是否有活跃的观察者
func (e *LiveEvent[T]) HasActiveObservers() bool {
	return e.bus.HasActiveObservers()
}
