package eventbus

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-liveevent/internal/core/mainloop"
	"github.com/dep2p/go-liveevent/internal/core/metrics"
	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/lib/log"
	"github.com/dep2p/go-liveevent/pkg/types"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// Env 运行环境
// ============================================================================

// Env 总线运行环境
//
// 由 Fx 模块提供，也可以手动构造。Dispatcher 必填。
type Env struct {
	// Dispatcher 主执行上下文
	Dispatcher pkgif.Dispatcher

	// Clock 时钟，用于事件过期判断；nil 时使用系统时钟
	Clock clock.Clock

	// Metrics 投递统计；nil 时不统计
	Metrics *metrics.Registry
}

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 单槽位事件总线
type Bus[T any] struct {
	name  string
	d     pkgif.Dispatcher
	clock clock.Clock
	stats *metrics.Counters

	mu sync.Mutex

	// current 当前值，nil 表示尚未投递
	current *Envelope[T]
	// version 每次投递递增，用于避免对同一观察者重复投递同一个值
	version int64
	// observers 按注册顺序排列的观察者
	observers []*observer[T]
	// handled PolicyOncePerSubscriber 的身份表：身份 -> 当前值是否已处理
	handled map[types.Identity]bool
	// pending PostLatest 尚未应用的值，非 nil 表示已有任务在排队
	pending *Envelope[T]
}

// Option 总线选项
type Option func(*options)

type options struct {
	name string
}

// WithName 设置总线名称（用于日志和统计）
//
// 同名总线共享同一组统计计数器。未设置时使用 UniqueName("bus")。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// nameSeq 未命名实例的编号
var nameSeq atomic.Uint64

// UniqueName 返回 prefix 加进程内递增编号，例如 "job-3"
func UniqueName(prefix string) string {
	return prefix + "-" + strconv.FormatUint(nameSeq.Add(1), 10)
}

// New 创建事件总线
func New[T any](env Env, opts ...Option) *Bus[T] {
	if env.Dispatcher == nil {
		usagePanic("nil dispatcher")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = UniqueName("bus")
	}
	clk := env.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Bus[T]{
		name:    o.name,
		d:       env.Dispatcher,
		clock:   clk,
		stats:   env.Metrics.Bus(o.name),
		handled: make(map[types.Identity]bool),
	}
}

// Name 返回总线名称
func (b *Bus[T]) Name() string {
	return b.name
}

// Dispatcher 返回总线使用的主执行上下文
func (b *Bus[T]) Dispatcher() pkgif.Dispatcher {
	return b.d
}

// ============================================================================
// 注册
// ============================================================================

// Observe 总是接收非过期事件
//
// 与宿主原生的观察行为一致：注册时已存在的值会被补发，之后每个新值都会送达。
func (b *Bus[T]) Observe(owner pkgif.LifecycleOwner, fn func(T)) *Handle {
	if owner == nil {
		usagePanic("nil lifecycle owner, use ObserveForever for unbound observers")
	}
	return b.register(types.PolicyAlways, owner, nil, fn)
}

// ObserveOncePerSubscriber 仅接收注册之后发生的事件
//
// 注册时即把该观察者标记为已处理当前值（不补发），之后每个新值恰好接收 1 次。
func (b *Bus[T]) ObserveOncePerSubscriber(owner pkgif.LifecycleOwner, fn func(T)) *Handle {
	if owner == nil {
		usagePanic("nil lifecycle owner")
	}
	return b.register(types.PolicyOncePerSubscriber, owner, nil, fn)
}

// ObserveOnceGlobally 与所有同策略观察者竞争消费
//
// 【慎用】每个值仅被其中 1 个观察者（无法确定是哪一个）接收 1 次。
// 注册时若当前值尚未被全局消费，新观察者可能成为消费者。
func (b *Bus[T]) ObserveOnceGlobally(owner pkgif.LifecycleOwner, fn func(T)) *Handle {
	if owner == nil {
		usagePanic("nil lifecycle owner")
	}
	return b.register(types.PolicyOnceGlobally, owner, nil, fn)
}

// ObserveOncePerScope 同一作用域内的观察者合计仅接收 1 次
//
// scope 是调用方提供的稳定作用域（例如页面或会话），而不是观察者本身。
// 不同作用域各自独立消费同一个值。
func (b *Bus[T]) ObserveOncePerScope(owner pkgif.LifecycleOwner, scope pkgif.Scope, fn func(T)) *Handle {
	if owner == nil {
		usagePanic("nil lifecycle owner")
	}
	if scope == nil || scope.ScopeID().IsEmpty() {
		usagePanic("nil or empty scope")
	}
	return b.register(types.PolicyOncePerScope, owner, scope, fn)
}

// ObserveForever 不绑定生命周期的 Observe
//
// 观察者始终处于活跃状态，不会被自动移除；调用方必须保存返回的句柄并在不再需要时 Remove。
func (b *Bus[T]) ObserveForever(fn func(T)) *Handle {
	return b.register(types.PolicyAlways, nil, nil, fn)
}

// ObserveWith 按策略注册
//
// scope 仅在 PolicyOncePerScope 下使用。owner 不能为 nil，不绑定生命周期的注册只能通过 ObserveForever。
func (b *Bus[T]) ObserveWith(policy types.Policy, owner pkgif.LifecycleOwner, scope pkgif.Scope, fn func(T)) *Handle {
	switch policy {
	case types.PolicyAlways:
		return b.Observe(owner, fn)
	case types.PolicyOncePerSubscriber:
		return b.ObserveOncePerSubscriber(owner, fn)
	case types.PolicyOnceGlobally:
		return b.ObserveOnceGlobally(owner, fn)
	case types.PolicyOncePerScope:
		return b.ObserveOncePerScope(owner, scope, fn)
	default:
		usagePanic("invalid policy %s", policy)
		return nil
	}
}

// register 注册观察者
//
// 已销毁的 owner 上的注册被忽略，返回的句柄处于已移除状态。
func (b *Bus[T]) register(policy types.Policy, owner pkgif.LifecycleOwner, scope pkgif.Scope, fn func(T)) *Handle {
	if fn == nil {
		usagePanic("nil observer")
	}

	h := newHandle(b, policy, owner)
	o := &observer[T]{
		handle:      h,
		fn:          fn,
		lastVersion: -1,
	}
	if scope != nil {
		o.scope = types.ScopeIdentity(scope.ScopeID())
	}

	if owner != nil && owner.State() == types.StateDestroyed {
		h.removed.Store(true)
		logger.Debug("owner 已销毁，忽略注册", "bus", b.name, "handle", h.id)
		return h
	}

	if owner != nil {
		o.detach = owner.AddLifecycleObserver(func(ctx context.Context, state types.LifecycleState) {
			b.onLifecycle(ctx, o, state)
		})
	}

	b.mu.Lock()
	if h.removed.Load() {
		// 注册过程中 owner 已销毁
		b.mu.Unlock()
		if o.detach != nil {
			o.detach()
		}
		return h
	}
	b.observers = append(b.observers, o)
	if policy == types.PolicyOncePerSubscriber {
		// 注册时直接标记为已处理，等下一次投递时才重置为未处理
		b.handled[h.identity] = true
	}
	b.mu.Unlock()

	// 监听建立之前 owner 可能已经销毁，此时不会收到回调
	if owner != nil && owner.State() == types.StateDestroyed {
		b.Remove(context.Background(), h)
		return h
	}

	b.stats.IncRegistrations()
	logger.Debug("观察者已注册", "bus", b.name, "handle", h.id, "policy", policy)

	// 补发当前值（是否真正送达由策略决定）
	if err := b.d.Post(func(ctx context.Context) {
		b.dispatchTo(o, true)
	}); err != nil {
		logger.Warn("补发当前值失败", "bus", b.name, "handle", h.id, "error", err)
	}
	return h
}

// ============================================================================
// 移除
// ============================================================================

// Remove 移除观察者
//
// 移除立即生效：返回后该观察者不会再被调用，正在进行的通知轮次中若尚未轮到它也会跳过。
// 同时清理该观察者的身份记录。重复移除、或 owner 销毁后再移除都是安全的空操作。
// 把句柄交给其他总线移除属于误用。
func (b *Bus[T]) Remove(_ context.Context, h *Handle) {
	if h == nil {
		return
	}
	if h.bus != b {
		usagePanic("handle %d belongs to another bus", h.id)
	}
	if !h.removed.CompareAndSwap(false, true) {
		return
	}

	var detach func()
	b.mu.Lock()
	for i, o := range b.observers {
		if o.handle == h {
			detach = o.detach
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			break
		}
	}
	delete(b.handled, h.identity)
	b.mu.Unlock()

	if detach != nil {
		detach()
	}
	b.stats.IncRemovals()
	logger.Debug("观察者已移除", "bus", b.name, "handle", h.id)
}

// RemoveSync 移除观察者并等待主上下文中正在进行的通知轮次结束
//
// 返回后可以确定该观察者的回调不在执行中。
// 不要在观察者回调内部以非主上下文的 ctx 调用（会等待自身）。
func (b *Bus[T]) RemoveSync(ctx context.Context, h *Handle) error {
	b.Remove(ctx, h)
	if b.d.IsMain(ctx) || b.d.Closed() {
		return nil
	}
	return mainloop.Barrier(ctx, b.d)
}

// RemoveObservers 移除绑定到 owner 的所有观察者
func (b *Bus[T]) RemoveObservers(ctx context.Context, owner pkgif.LifecycleOwner) {
	if owner == nil {
		return
	}
	b.mu.Lock()
	var handles []*Handle
	for _, o := range b.observers {
		if o.handle.owner == owner {
			handles = append(handles, o.handle)
		}
	}
	b.mu.Unlock()

	for _, h := range handles {
		b.Remove(ctx, h)
	}
}

// ============================================================================
// 投递
// ============================================================================

// Set 在主上下文中设置新值并同步通知所有活跃观察者
//
// 非主上下文调用属于误用。返回时所有活跃观察者都已按注册顺序被通知。
func (b *Bus[T]) Set(ctx context.Context, value T, survival time.Duration) {
	if !b.d.IsMain(ctx) {
		usagePanic("Set called off the main context, use Post")
	}
	b.SetEnvelope(ctx, NewEnvelope(value, survival, b.clock))
}

// SetEnvelope 在主上下文中设置新的 Envelope
//
// Envelope 只能被投递一次。
func (b *Bus[T]) SetEnvelope(ctx context.Context, env *Envelope[T]) {
	if !b.d.IsMain(ctx) {
		usagePanic("SetEnvelope called off the main context")
	}
	if env == nil {
		usagePanic("nil envelope")
	}

	env.markPosted()

	b.mu.Lock()
	b.current = env
	b.version++
	for id := range b.handled {
		b.handled[id] = false
	}
	snapshot := make([]*observer[T], len(b.observers))
	copy(snapshot, b.observers)
	b.mu.Unlock()

	b.stats.IncPosts()

	for _, o := range snapshot {
		b.dispatchTo(o, false)
	}
}

// Post 在任意 goroutine 中投递新值
//
// 主上下文中调用时同步完成通知；否则排入主上下文，调用方不阻塞。
// 连续的非主上下文投递在观察者看来可能合并为只看到最后一个值。
func (b *Bus[T]) Post(ctx context.Context, value T, survival time.Duration) {
	env := NewEnvelope(value, survival, b.clock)
	err := mainloop.RunOnMain(ctx, b.d, func(mctx context.Context) {
		b.SetEnvelope(mctx, env)
	})
	if err != nil {
		logger.Warn("投递失败", "bus", b.name, "error", err)
	}
}

// PostLatest 合并投递
//
// 与 Post 的区别：非主上下文中连续调用时，主上下文只排入一个任务，
// 任务执行时应用最后一次调用的值，中间的值被丢弃。
func (b *Bus[T]) PostLatest(ctx context.Context, value T, survival time.Duration) {
	env := NewEnvelope(value, survival, b.clock)
	if b.d.IsMain(ctx) {
		b.SetEnvelope(ctx, env)
		return
	}

	b.mu.Lock()
	scheduled := b.pending != nil
	b.pending = env
	b.mu.Unlock()
	if scheduled {
		return
	}

	err := b.d.Post(func(mctx context.Context) {
		b.mu.Lock()
		latest := b.pending
		b.pending = nil
		b.mu.Unlock()

		if latest != nil {
			b.SetEnvelope(mctx, latest)
		}
	})
	if err != nil {
		b.mu.Lock()
		b.pending = nil
		b.mu.Unlock()
		logger.Warn("投递失败", "bus", b.name, "error", err)
	}
}

// Value 返回当前未过期的值
func (b *Bus[T]) Value() (T, bool) {
	b.mu.Lock()
	env := b.current
	b.mu.Unlock()

	if env == nil || env.IsExpired() {
		var zero T
		return zero, false
	}
	return env.Content(), true
}

// Current 返回当前 Envelope，可能已过期；尚未投递时返回 nil
func (b *Bus[T]) Current() *Envelope[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// HasObservers 返回是否有注册的观察者
func (b *Bus[T]) HasObservers() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers) > 0
}

// HasActiveObservers 返回是否有活跃的观察者
func (b *Bus[T]) HasActiveObservers() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.observers {
		if o.active() {
			return true
		}
	}
	return false
}

// ObserverCount 返回注册的观察者数量
func (b *Bus[T]) ObserverCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}

// ============================================================================
// 内部方法
// ============================================================================

// onLifecycle 处理 owner 状态变更
func (b *Bus[T]) onLifecycle(ctx context.Context, o *observer[T], state types.LifecycleState) {
	if state == types.StateDestroyed {
		b.Remove(ctx, o.handle)
		return
	}
	if !state.IsActive() {
		return
	}
	if err := mainloop.RunOnMain(ctx, b.d, func(context.Context) {
		b.dispatchTo(o, true)
	}); err != nil {
		logger.Warn("重新激活补发失败", "bus", b.name, "handle", o.handle.id, "error", err)
	}
}

// dispatchTo 在主上下文中尝试把当前值投递给单个观察者
func (b *Bus[T]) dispatchTo(o *observer[T], replay bool) {
	if o.handle.removed.Load() || !o.active() {
		return
	}

	b.mu.Lock()
	env, version := b.current, b.version
	b.mu.Unlock()

	if env == nil || o.lastVersion >= version {
		return
	}
	o.lastVersion = version

	if env.IsExpired() {
		b.stats.IncExpired()
		return
	}

	value, ok := b.take(o, env)
	if !ok {
		b.stats.IncSuppressed()
		return
	}

	if replay {
		b.stats.IncReplays()
	}
	b.stats.IncDelivered()
	o.fn(value)
}

// take 按观察者策略取出值
func (b *Bus[T]) take(o *observer[T], env *Envelope[T]) (T, bool) {
	switch o.handle.policy {
	case types.PolicyOncePerSubscriber:
		if !b.shouldHandle(o.handle.identity) {
			var zero T
			return zero, false
		}
		return env.Content(), true
	case types.PolicyOnceGlobally:
		return env.TakeIfUnhandledGlobally()
	case types.PolicyOncePerScope:
		return env.TakeIfUnhandledBy(o.scope)
	default:
		return env.Content(), true
	}
}

// shouldHandle 判断身份是否需要处理当前值，需要时标记为已处理
func (b *Bus[T]) shouldHandle(id types.Identity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	handled, ok := b.handled[id]
	if !ok || handled {
		return false
	}
	b.handled[id] = true
	return true
}
