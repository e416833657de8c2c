package eventbus

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-liveevent/pkg/types"
)

// Envelope 包装一次投递的值及其消费状态
//
// content 不可变；消费状态只属于本 Envelope，新的投递会创建新的 Envelope。
type Envelope[T any] struct {
	content  T
	survival time.Duration
	clock    clock.Clock

	mu        sync.Mutex
	posted    bool
	postedAt  time.Time
	expired   bool
	handled   bool
	handledBy map[types.Identity]struct{}
}

// NewEnvelope 创建 Envelope
//
// survival <= 0 表示永不过期。clk 为 nil 时使用系统时钟。
func NewEnvelope[T any](content T, survival time.Duration, clk clock.Clock) *Envelope[T] {
	if survival < 0 {
		survival = 0
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Envelope[T]{
		content:  content,
		survival: survival,
		clock:    clk,
	}
}

// Content 返回投递的值
func (e *Envelope[T]) Content() T {
	return e.content
}

// Survival 返回存活时长，0 表示永不过期
func (e *Envelope[T]) Survival() time.Duration {
	return e.survival
}

// PostedAt 返回成为总线当前值的时间，未投递时为零值
func (e *Envelope[T]) PostedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.postedAt
}

// markPosted 记录投递时间，只能调用一次
func (e *Envelope[T]) markPosted() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.posted {
		usagePanic("envelope posted twice")
	}
	e.posted = true
	e.postedAt = e.clock.Now()
}

// IsExpired 判断是否已过期
//
// 存活时长为 0 时永不过期；否则自投递起经过的时间严格大于存活时长即过期。
// 一旦过期，结果被缓存，之后始终返回 true。
func (e *Envelope[T]) IsExpired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.expired {
		return true
	}
	if e.survival == 0 || !e.posted {
		return false
	}
	if e.clock.Since(e.postedAt) > e.survival {
		e.expired = true
	}
	return e.expired
}

// TakeIfUnhandledGlobally 全局取出
//
// 仅第一个调用方得到 (content, true)，之后的调用方都得到 (零值, false)。
func (e *Envelope[T]) TakeIfUnhandledGlobally() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handled {
		var zero T
		return zero, false
	}
	e.handled = true
	return e.content, true
}

// TakeIfUnhandledBy 按身份取出
//
// 每个身份仅第一次调用得到 (content, true)，不同身份互不影响。
func (e *Envelope[T]) TakeIfUnhandledBy(id types.Identity) (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.handledBy[id]; ok {
		var zero T
		return zero, false
	}
	if e.handledBy == nil {
		e.handledBy = make(map[types.Identity]struct{})
	}
	e.handledBy[id] = struct{}{}
	return e.content, true
}

// HandledGlobally 返回是否已被全局取出
func (e *Envelope[T]) HandledGlobally() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handled
}

// HandledBy 返回指定身份是否已取出
func (e *Envelope[T]) HandledBy(id types.Identity) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.handledBy[id]
	return ok
}
