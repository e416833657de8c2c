package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-liveevent/internal/core/lifecycle"
	"github.com/dep2p/go-liveevent/internal/core/mainloop"
	"github.com/dep2p/go-liveevent/internal/core/metrics"
)

// recorder 记录观察者收到的值
type recorder[T any] struct {
	mu  sync.Mutex
	got []T
}

func (r *recorder[T]) fn(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, v)
}

func (r *recorder[T]) values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.got))
	copy(out, r.got)
	return out
}

func (r *recorder[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

// newTestBus 创建使用同步 Dispatcher 和模拟时钟的总线
func newTestBus(t *testing.T) (*Bus[string], *clock.Mock, *metrics.Registry) {
	t.Helper()

	clk := clock.NewMock()
	reg := metrics.NewRegistry()
	b := New[string](Env{
		Dispatcher: mainloop.Immediate{},
		Clock:      clk,
		Metrics:    reg,
	}, WithName("test"))
	return b, clk, reg
}

// newLoopBus 创建使用真实主循环的总线
func newLoopBus(t *testing.T) (*Bus[int], *mainloop.Loop) {
	t.Helper()

	l := mainloop.New()
	l.Start()
	t.Cleanup(func() {
		require.NoError(t, l.Close())
	})
	return New[int](Env{Dispatcher: l}), l
}

// newActiveOwner 创建处于 Resumed 状态的 owner，测试结束时销毁
func newActiveOwner(t *testing.T) *lifecycle.Owner {
	t.Helper()

	o := lifecycle.NewOwner(lifecycle.WithName(t.Name()))
	require.NoError(t, o.Resume(context.Background()))
	t.Cleanup(func() {
		_ = o.Destroy(context.Background())
	})
	return o
}

// requireUsagePanic 断言 fn 以 ErrUsage panic
func requireUsagePanic(t *testing.T, fn func()) {
	t.Helper()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		fn()
	}()

	require.NotNil(t, recovered, "应当 panic")
	err, ok := recovered.(error)
	require.True(t, ok, fmt.Sprintf("panic 值应为 error，实际为 %T", recovered))
	require.True(t, errors.Is(err, ErrUsage), err.Error())
}
