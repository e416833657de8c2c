package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-liveevent/pkg/types"
)

// TestOwner_InitialState 测试初始状态
func TestOwner_InitialState(t *testing.T) {
	o := NewOwner(WithName("page"))

	assert.Equal(t, types.StateInitialized, o.State())
	assert.Equal(t, "page", o.Name())
	assert.False(t, o.ScopeID().IsEmpty())
	assert.Equal(t, "page(initialized)", o.String())
}

// TestOwner_SharedScopeID 测试共享作用域标识
func TestOwner_SharedScopeID(t *testing.T) {
	a := NewOwner()
	b := NewOwner(WithScopeID(a.ScopeID()))
	c := NewOwner(WithScopeID(""))

	assert.Equal(t, a.ScopeID(), b.ScopeID())
	assert.NotEqual(t, a.ScopeID(), c.ScopeID())
}

// TestOwner_Transitions 测试状态迁移与观察者通知
func TestOwner_Transitions(t *testing.T) {
	ctx := context.Background()
	o := NewOwner()

	var seen []types.LifecycleState
	o.AddLifecycleObserver(func(_ context.Context, s types.LifecycleState) {
		seen = append(seen, s)
	})

	require.NoError(t, o.Create(ctx))
	require.NoError(t, o.Start(ctx))
	require.NoError(t, o.Resume(ctx))
	require.NoError(t, o.Resume(ctx)) // 相同状态不通知
	require.NoError(t, o.Pause(ctx))
	require.NoError(t, o.Stop(ctx))
	require.NoError(t, o.Destroy(ctx))

	assert.Equal(t, []types.LifecycleState{
		types.StateCreated,
		types.StateStarted,
		types.StateResumed,
		types.StateStarted,
		types.StateCreated,
		types.StateDestroyed,
	}, seen)
}

// TestOwner_ObserverSeesNewState 测试回调执行时状态已经更新
func TestOwner_ObserverSeesNewState(t *testing.T) {
	o := NewOwner()

	var inside types.LifecycleState
	o.AddLifecycleObserver(func(context.Context, types.LifecycleState) {
		inside = o.State()
	})

	require.NoError(t, o.Start(context.Background()))
	assert.Equal(t, types.StateStarted, inside)
}

// TestOwner_InvalidTransitions 测试无效迁移
func TestOwner_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	o := NewOwner()

	err := o.MoveTo(ctx, types.StateInitialized)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = o.MoveTo(ctx, types.LifecycleState(42))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, o.Destroy(ctx))
	assert.ErrorIs(t, o.Start(ctx), ErrDestroyed)
	assert.NoError(t, o.Destroy(ctx), "重复销毁应是空操作")
	assert.Equal(t, types.StateDestroyed, o.State())
}

// TestOwner_RemoveObserver 测试移除状态观察者
func TestOwner_RemoveObserver(t *testing.T) {
	ctx := context.Background()
	o := NewOwner()

	calls := 0
	remove := o.AddLifecycleObserver(func(context.Context, types.LifecycleState) {
		calls++
	})
	assert.Equal(t, 1, o.ObserverCount())

	require.NoError(t, o.Start(ctx))
	remove()
	remove()
	require.NoError(t, o.Stop(ctx))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, o.ObserverCount())
}

// TestOwner_RemoveInsideCallback 测试回调中移除自身
func TestOwner_RemoveInsideCallback(t *testing.T) {
	ctx := context.Background()
	o := NewOwner()

	calls := 0
	var remove func()
	remove = o.AddLifecycleObserver(func(context.Context, types.LifecycleState) {
		calls++
		remove()
	})

	require.NoError(t, o.Start(ctx))
	require.NoError(t, o.Resume(ctx))
	assert.Equal(t, 1, calls)
}

// TestOwner_DestroyClearsObservers 测试销毁后清空观察者
func TestOwner_DestroyClearsObservers(t *testing.T) {
	ctx := context.Background()
	o := NewOwner()
	o.AddLifecycleObserver(func(context.Context, types.LifecycleState) {})

	require.NoError(t, o.Destroy(ctx))
	assert.Equal(t, 0, o.ObserverCount())

	called := false
	remove := o.AddLifecycleObserver(func(context.Context, types.LifecycleState) {
		called = true
	})
	require.NotNil(t, remove)
	remove()
	assert.False(t, called)
	assert.Equal(t, 0, o.ObserverCount())
}

// TestOwner_WaitFor 测试等待状态
func TestOwner_WaitFor(t *testing.T) {
	o := NewOwner()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = o.Start(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, o.WaitFor(ctx, types.StateStarted))

	// 已到达过的状态立即返回
	require.NoError(t, o.Stop(context.Background()))
	require.NoError(t, o.WaitFor(ctx, types.StateStarted))

	short, cancelShort := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelShort()
	assert.ErrorIs(t, o.WaitFor(short, types.StateResumed), context.DeadlineExceeded)

	assert.ErrorIs(t, o.WaitFor(ctx, types.LifecycleState(42)), types.ErrInvalidLifecycleState)
}

// TestOwner_Done 测试销毁信号
func TestOwner_Done(t *testing.T) {
	o := NewOwner()

	select {
	case <-o.Done():
		t.Fatal("未销毁时 Done 不应关闭")
	default:
	}

	require.NoError(t, o.Destroy(context.Background()))
	<-o.Done()
}
