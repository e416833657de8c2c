package asyncjob

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-liveevent/internal/core/eventbus"
	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/lib/log"
	"github.com/dep2p/go-liveevent/pkg/types"
)

var logger = log.Logger("asyncjob")

// ============================================================================
//                              选项
// ============================================================================

// Option Job 选项
type Option func(*options)

type options struct {
	name    string
	policy  types.Policy
	timeout time.Duration
	scope   pkgif.Scope
}

// WithName 设置名称（用于日志和统计）
//
// 同名任务共享同一组统计计数器。未设置时生成 "job-<编号>"。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithPolicy 设置消费策略，默认 PolicyOncePerSubscriber
func WithPolicy(p types.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithEventTimeout 设置事件存活时长，0 表示永不过期
func WithEventTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithScope 设置 PolicyOncePerScope 下的默认作用域
//
// 未设置时，Observe 使用观察者自己的 owner 作为作用域。
func WithScope(s pkgif.Scope) Option {
	return func(o *options) {
		o.scope = s
	}
}

// ============================================================================
//                              Job
// ============================================================================

// Job 异步任务事件发布者
type Job[T any] struct {
	name   string
	policy types.Policy
	scope  pkgif.Scope
	bus    *eventbus.Bus[*Event[T]]

	// timeout 事件存活时长（纳秒）
	timeout atomic.Int64

	paramsMu sync.Mutex
	params   map[string]any
}

// New 创建 Job
func New[T any](env eventbus.Env, opts ...Option) *Job[T] {
	o := options{policy: types.PolicyOncePerSubscriber}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = eventbus.UniqueName("job")
	}
	if !o.policy.Valid() {
		usagePanic("invalid policy %s", o.policy)
	}

	j := &Job[T]{
		name:   o.name,
		policy: o.policy,
		scope:  o.scope,
		bus:    eventbus.New[*Event[T]](env, eventbus.WithName(o.name)),
		params: make(map[string]any),
	}
	j.SetEventTimeout(o.timeout)
	return j
}

// Name 返回名称
func (j *Job[T]) Name() string {
	return j.name
}

// Policy 返回消费策略
func (j *Job[T]) Policy() types.Policy {
	return j.policy
}

// SetEventTimeout 设置之后发布的事件的存活时长
//
// 负值按 0 处理。已发布的事件不受影响。
func (j *Job[T]) SetEventTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	j.timeout.Store(int64(d))
}

// EventTimeout 返回事件存活时长
func (j *Job[T]) EventTimeout() time.Duration {
	return time.Duration(j.timeout.Load())
}

// ============================================================================
//                              参数表
// ============================================================================

// Get 读取参数
func (j *Job[T]) Get(key string) any {
	j.paramsMu.Lock()
	defer j.paramsMu.Unlock()
	return j.params[key]
}

// Lookup 读取参数并返回是否存在
func (j *Job[T]) Lookup(key string) (any, bool) {
	j.paramsMu.Lock()
	defer j.paramsMu.Unlock()
	v, ok := j.params[key]
	return v, ok
}

// Set 写入参数
func (j *Job[T]) Set(key string, value any) {
	j.paramsMu.Lock()
	defer j.paramsMu.Unlock()
	j.params[key] = value
}

// ============================================================================
//                              发布
// ============================================================================

// PostBegin 发布开始事件
func (j *Job[T]) PostBegin(ctx context.Context, attachment any) {
	j.post(ctx, newEvent[T](TagBegin, attachment))
}

// PostProgress 发布进度事件
func (j *Job[T]) PostProgress(ctx context.Context, progress int, attachment any) {
	e := newEvent[T](TagProgress, attachment)
	e.progress = progress
	j.post(ctx, e)
}

// PostSuccess 发布成功事件
//
// result 为 nil（指针、接口、map、chan、func）属于误用。
func (j *Job[T]) PostSuccess(ctx context.Context, result T, attachment any) {
	if isNil(result) {
		usagePanic("nil success result")
	}
	e := newEvent[T](TagSuccess, attachment)
	e.success = result
	j.post(ctx, e)
}

// PostFailure 发布失败事件
//
// message 与 cause 都为空属于误用。
func (j *Job[T]) PostFailure(ctx context.Context, message string, cause error, attachment any) {
	if message == "" && cause == nil {
		usagePanic("failure without message or cause")
	}
	e := newEvent[T](TagFailure, attachment)
	e.failure = &JobError{Message: message, Cause: cause}
	j.post(ctx, e)
}

// PostError 以 err 为原因发布失败事件，err 为 nil 属于误用
func (j *Job[T]) PostError(ctx context.Context, err error, attachment any) {
	j.PostFailure(ctx, "", err, attachment)
}

// PostCustom 发布自定义事件
//
// value 为 nil 时以 key 作为载荷。key 不能为空。
func (j *Job[T]) PostCustom(ctx context.Context, key string, value any, attachment any) {
	if key == "" {
		usagePanic("empty custom key")
	}
	if value == nil {
		value = key
	}
	e := newEvent[T](TagCustom, attachment)
	e.key = key
	e.custom = value
	j.post(ctx, e)
}

func (j *Job[T]) post(ctx context.Context, e *Event[T]) {
	logger.Debug("发布任务事件", "job", j.name, "event", e.String())
	j.bus.Post(ctx, e, j.EventTimeout())
}

// ============================================================================
//                              观察
// ============================================================================

// Observe 按 Job 的策略注册观察者
//
// PolicyOncePerScope 下使用 WithScope 指定的作用域，未指定时使用 owner 自身。
func (j *Job[T]) Observe(owner pkgif.LifecycleOwner, fn func(*Event[T])) *eventbus.Handle {
	scope := j.scope
	if scope == nil {
		scope = owner
	}
	return j.ObserveInScope(owner, scope, fn)
}

// ObserveInScope 按 Job 的策略注册观察者，并显式指定作用域
//
// scope 只在 PolicyOncePerScope 下生效。
func (j *Job[T]) ObserveInScope(owner pkgif.LifecycleOwner, scope pkgif.Scope, fn func(*Event[T])) *eventbus.Handle {
	if owner == nil {
		usagePanic("nil lifecycle owner")
	}
	if j.policy != types.PolicyOncePerScope {
		scope = nil
	}
	return j.bus.ObserveWith(j.policy, owner, scope, fn)
}

// ObserveCallbacks 以回调集合的形式注册观察者
func (j *Job[T]) ObserveCallbacks(owner pkgif.LifecycleOwner, cb *Callbacks[T]) *eventbus.Handle {
	if cb == nil {
		usagePanic("nil callbacks")
	}
	return j.Observe(owner, cb.dispatch)
}

// ObserveForever 注册不绑定生命周期的观察者，接收每个非过期事件
//
// 调用方负责 Remove。
func (j *Job[T]) ObserveForever(fn func(*Event[T])) *eventbus.Handle {
	return j.bus.ObserveForever(fn)
}

// Remove 移除观察者
func (j *Job[T]) Remove(ctx context.Context, h *eventbus.Handle) {
	j.bus.Remove(ctx, h)
}

// RemoveSync 移除观察者并等待正在进行的通知轮次结束
func (j *Job[T]) RemoveSync(ctx context.Context, h *eventbus.Handle) error {
	return j.bus.RemoveSync(ctx, h)
}

// Value 返回最近一次发布且未过期的事件
func (j *Job[T]) Value() (*Event[T], bool) {
	return j.bus.Value()
}

// HasObservers 返回是否有注册的观察者
func (j *Job[T]) HasObservers() bool {
	return j.bus.HasObservers()
}

// ============================================================================
//                              内部方法
// ============================================================================

// isNil 判断值是否为 nil
//
// nil 切片视为合法的空结果。
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
