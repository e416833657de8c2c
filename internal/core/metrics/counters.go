package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Counters 单个事件总线的计数器
type Counters struct {
	posts         atomic.Int64
	delivered     atomic.Int64
	expired       atomic.Int64
	suppressed    atomic.Int64
	replays       atomic.Int64
	registrations atomic.Int64
	removals      atomic.Int64
}

// IncPosts 记录一次投递
func (c *Counters) IncPosts() {
	if c != nil {
		c.posts.Add(1)
	}
}

// IncDelivered 记录一次送达
func (c *Counters) IncDelivered() {
	if c != nil {
		c.delivered.Add(1)
	}
}

// IncExpired 记录一次过期跳过
func (c *Counters) IncExpired() {
	if c != nil {
		c.expired.Add(1)
	}
}

// IncSuppressed 记录一次已消费跳过
func (c *Counters) IncSuppressed() {
	if c != nil {
		c.suppressed.Add(1)
	}
}

// IncReplays 记录一次补发
func (c *Counters) IncReplays() {
	if c != nil {
		c.replays.Add(1)
	}
}

// IncRegistrations 记录一次注册
func (c *Counters) IncRegistrations() {
	if c != nil {
		c.registrations.Add(1)
	}
}

// IncRemovals 记录一次移除
func (c *Counters) IncRemovals() {
	if c != nil {
		c.removals.Add(1)
	}
}

// Snapshot 返回计数器快照
func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Posts:         c.posts.Load(),
		Delivered:     c.delivered.Load(),
		Expired:       c.expired.Load(),
		Suppressed:    c.suppressed.Load(),
		Replays:       c.replays.Load(),
		Registrations: c.registrations.Load(),
		Removals:      c.removals.Load(),
	}
}

// ============================================================================
// Registry
// ============================================================================

// Registry 按总线名称管理计数器
type Registry struct {
	mu    sync.RWMutex
	buses map[string]*Counters
}

// NewRegistry 创建计数器注册表
func NewRegistry() *Registry {
	return &Registry{
		buses: make(map[string]*Counters),
	}
}

// Bus 返回指定名称的计数器，不存在时创建
//
// 同名总线共享同一组计数器。nil Registry 返回 nil（所有计数为空操作）。
func (r *Registry) Bus(name string) *Counters {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	c, ok := r.buses[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.buses[name]; ok {
		return c
	}
	c = &Counters{}
	r.buses[name] = c
	return c
}

// Names 返回已注册的总线名称（已排序）
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.buses))
	for name := range r.buses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot 返回所有总线的计数器快照
func (r *Registry) Snapshot() map[string]Snapshot {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Snapshot, len(r.buses))
	for name, c := range r.buses {
		out[name] = c.Snapshot()
	}
	return out
}
