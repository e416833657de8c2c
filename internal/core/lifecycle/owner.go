// Package lifecycle 提供宿主生命周期拥有者
//
// Owner 表示一个有生命周期的作用域（页面、会话、界面组件等），状态定义见 types.LifecycleState：
//
//	Initialized → Created ⇄ Started ⇄ Resumed
//	        任意状态 → Destroyed（终态）
//
// 本模块的核心职责：
//  1. 追踪当前状态并校验状态迁移
//  2. 在状态变更后按注册顺序同步通知观察者（事件总线据此激活、补发或自动移除观察者）
//  3. 提供稳定的 ScopeID，作为"同作用域仅消费 1 次"策略的去重键
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/lib/log"
	"github.com/dep2p/go-liveevent/pkg/types"
)

var logger = log.Logger("core/lifecycle")

var (
	// ErrDestroyed Owner 已销毁
	ErrDestroyed = errors.New("lifecycle owner destroyed")

	// ErrInvalidTransition 无效的状态迁移
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)

var _ pkgif.LifecycleOwner = (*Owner)(nil)

// ============================================================================
//                              Owner
// ============================================================================

// stateObserver 状态观察者
type stateObserver struct {
	id uint64
	fn func(ctx context.Context, state types.LifecycleState)
}

// Owner 生命周期拥有者
type Owner struct {
	name    string
	scopeID types.ScopeID

	mu sync.RWMutex

	// 当前状态
	state types.LifecycleState

	// 状态到达信号：首次到达某状态时关闭对应 channel
	reached map[types.LifecycleState]chan struct{}

	observers []stateObserver
	nextID    uint64
}

// Option Owner 选项
type Option func(*Owner)

// WithName 设置名称（仅用于日志）
func WithName(name string) Option {
	return func(o *Owner) {
		o.name = name
	}
}

// WithScopeID 使用指定的作用域标识
//
// 多个 Owner 共享同一 ScopeID 时，它们在"同作用域仅消费 1 次"策略下被视为同一作用域。
func WithScopeID(id types.ScopeID) Option {
	return func(o *Owner) {
		if !id.IsEmpty() {
			o.scopeID = id
		}
	}
}

// NewOwner 创建处于 Initialized 状态的 Owner
func NewOwner(opts ...Option) *Owner {
	o := &Owner{
		name:    "owner",
		scopeID: types.NewScopeID(),
		state:   types.StateInitialized,
		reached: make(map[types.LifecycleState]chan struct{}),
	}
	for s := types.StateDestroyed; s <= types.StateResumed; s++ {
		o.reached[s] = make(chan struct{})
	}
	close(o.reached[types.StateInitialized])

	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name 返回名称
func (o *Owner) Name() string {
	return o.name
}

// ScopeID 返回作用域标识
func (o *Owner) ScopeID() types.ScopeID {
	return o.scopeID
}

// State 返回当前状态
func (o *Owner) State() types.LifecycleState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// String 返回可读表示
func (o *Owner) String() string {
	return fmt.Sprintf("%s(%s)", o.name, o.State())
}

// ============================================================================
//                              状态迁移
// ============================================================================

// MoveTo 迁移到目标状态
//
// 规则：
//   - Destroyed 是终态，之后的任何迁移返回 ErrDestroyed
//   - 不能回到 Initialized
//   - Created/Started/Resumed 之间可以双向迁移（前后台切换）
//   - 迁移到 Destroyed 等价于 Destroy
//
// 状态变更后，观察者在调用方 goroutine 中按注册顺序被同步通知。
func (o *Owner) MoveTo(ctx context.Context, target types.LifecycleState) error {
	if target == types.StateDestroyed {
		return o.Destroy(ctx)
	}
	if target < types.StateCreated || target > types.StateResumed {
		return fmt.Errorf("%w: to %s", ErrInvalidTransition, target)
	}

	o.mu.Lock()
	if o.state == types.StateDestroyed {
		o.mu.Unlock()
		return ErrDestroyed
	}
	if o.state == target {
		o.mu.Unlock()
		return nil
	}

	old := o.state
	o.state = target
	o.markReached(target)
	callbacks := o.snapshotLocked()
	o.mu.Unlock()

	logger.Debug("生命周期状态变更", "owner", o.name, "from", old.String(), "to", target.String())

	for _, cb := range callbacks {
		cb.fn(ctx, target)
	}
	return nil
}

// Create 迁移到 Created
func (o *Owner) Create(ctx context.Context) error {
	return o.MoveTo(ctx, types.StateCreated)
}

// Start 迁移到 Started（绑定的观察者变为活跃）
func (o *Owner) Start(ctx context.Context) error {
	return o.MoveTo(ctx, types.StateStarted)
}

// Resume 迁移到 Resumed
func (o *Owner) Resume(ctx context.Context) error {
	return o.MoveTo(ctx, types.StateResumed)
}

// Pause 从 Resumed 回到 Started
func (o *Owner) Pause(ctx context.Context) error {
	return o.MoveTo(ctx, types.StateStarted)
}

// Stop 回到 Created（绑定的观察者变为不活跃）
func (o *Owner) Stop(ctx context.Context) error {
	return o.MoveTo(ctx, types.StateCreated)
}

// Destroy 销毁 Owner
//
// 观察者收到 StateDestroyed 通知后被全部清除。重复调用返回 nil。
func (o *Owner) Destroy(ctx context.Context) error {
	o.mu.Lock()
	if o.state == types.StateDestroyed {
		o.mu.Unlock()
		return nil
	}
	old := o.state
	o.state = types.StateDestroyed
	o.markReached(types.StateDestroyed)
	callbacks := o.snapshotLocked()
	o.observers = nil
	o.mu.Unlock()

	logger.Debug("生命周期已销毁", "owner", o.name, "from", old.String())

	for _, cb := range callbacks {
		cb.fn(ctx, types.StateDestroyed)
	}
	return nil
}

// ============================================================================
//                              观察者
// ============================================================================

// AddLifecycleObserver 添加状态变更回调，返回移除函数
//
// Owner 已销毁时回调不会被注册，返回的移除函数为空操作。
func (o *Owner) AddLifecycleObserver(fn func(ctx context.Context, state types.LifecycleState)) (remove func()) {
	if fn == nil {
		return func() {}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == types.StateDestroyed {
		return func() {}
	}

	o.nextID++
	id := o.nextID
	o.observers = append(o.observers, stateObserver{id: id, fn: fn})

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, obs := range o.observers {
			if obs.id == id {
				o.observers = append(o.observers[:i:i], o.observers[i+1:]...)
				return
			}
		}
	}
}

// ObserverCount 返回状态观察者数量
func (o *Owner) ObserverCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.observers)
}

// ============================================================================
//                              等待
// ============================================================================

// WaitFor 等待 Owner 至少一次到达指定状态
func (o *Owner) WaitFor(ctx context.Context, state types.LifecycleState) error {
	o.mu.RLock()
	ch := o.reached[state]
	o.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("%w: %d", types.ErrInvalidLifecycleState, state)
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done 返回销毁时关闭的 channel
func (o *Owner) Done() <-chan struct{} {
	return o.reached[types.StateDestroyed]
}

// ============================================================================
//                              内部方法
// ============================================================================

func (o *Owner) markReached(s types.LifecycleState) {
	ch := o.reached[s]
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func (o *Owner) snapshotLocked() []stateObserver {
	out := make([]stateObserver, len(o.observers))
	copy(out, o.observers)
	return out
}
