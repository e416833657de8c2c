package eventbus

import "github.com/dep2p/go-liveevent/pkg/types"

// observer 包装真实回调的观察者
//
// lastVersion 只在主上下文中读写。
type observer[T any] struct {
	handle *Handle
	fn     func(T)

	// scope PolicyOncePerScope 下的作用域身份
	scope types.Identity

	lastVersion int64

	// detach 解除对 owner 生命周期的监听
	detach func()
}

// active 返回观察者是否处于活跃状态
func (o *observer[T]) active() bool {
	if o.handle.owner == nil {
		return true
	}
	return o.handle.owner.State().IsActive()
}
