package eventbus

import (
	"sync/atomic"

	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/types"
)

// handleSeq 全局句柄编号，保证跨总线唯一
var handleSeq atomic.Uint64

// Handle 观察者注册句柄
//
// 注册方法返回的 Handle 是移除该观察者的唯一凭证，
// 同时作为 PolicyOncePerSubscriber 策略下的消费身份。
type Handle struct {
	id       uint64
	identity types.Identity
	policy   types.Policy
	owner    pkgif.LifecycleOwner
	removed  atomic.Bool

	// bus 创建该句柄的总线，只有它能移除该句柄
	bus any
}

func newHandle(bus any, policy types.Policy, owner pkgif.LifecycleOwner) *Handle {
	id := handleSeq.Add(1)
	return &Handle{
		id:       id,
		identity: types.SubscriberIdentity(id),
		policy:   policy,
		owner:    owner,
		bus:      bus,
	}
}

// ID 返回句柄编号
func (h *Handle) ID() uint64 {
	return h.id
}

// Identity 返回句柄对应的消费身份
func (h *Handle) Identity() types.Identity {
	return h.identity
}

// Policy 返回注册时使用的策略
func (h *Handle) Policy() types.Policy {
	return h.policy
}

// Forever 返回是否为不绑定生命周期的注册
func (h *Handle) Forever() bool {
	return h.owner == nil
}

// Removed 返回观察者是否已被移除（显式移除或 owner 销毁）
func (h *Handle) Removed() bool {
	return h.removed.Load()
}
