package asyncjob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-liveevent/internal/core/eventbus"
	"github.com/dep2p/go-liveevent/internal/core/lifecycle"
	"github.com/dep2p/go-liveevent/internal/core/mainloop"
	"github.com/dep2p/go-liveevent/internal/core/metrics"
	"github.com/dep2p/go-liveevent/pkg/types"
)

func immediateEnv() (eventbus.Env, *clock.Mock) {
	clk := clock.NewMock()
	return eventbus.Env{
		Dispatcher: mainloop.Immediate{},
		Clock:      clk,
		Metrics:    metrics.NewRegistry(),
	}, clk
}

func activeOwner(t *testing.T) *lifecycle.Owner {
	t.Helper()

	o := lifecycle.NewOwner(lifecycle.WithName(t.Name()))
	require.NoError(t, o.Resume(context.Background()))
	t.Cleanup(func() {
		_ = o.Destroy(context.Background())
	})
	return o
}

// ============================================================================
// 构造与配置
// ============================================================================

// TestNew_Defaults 测试默认配置
func TestNew_Defaults(t *testing.T) {
	env, _ := immediateEnv()
	j := New[string](env)

	assert.True(t, strings.HasPrefix(j.Name(), "job-"), j.Name())
	assert.Equal(t, types.PolicyOncePerSubscriber, j.Policy())
	assert.Equal(t, time.Duration(0), j.EventTimeout())

	_, ok := j.Value()
	assert.False(t, ok)
}

// TestNew_UnnamedSeparateMetrics 测试未命名任务各自统计
func TestNew_UnnamedSeparateMetrics(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	a := New[string](env)
	b := New[string](env)
	require.NotEqual(t, a.Name(), b.Name())

	a.PostBegin(ctx, nil)
	a.PostSuccess(ctx, "done", nil)
	b.PostBegin(ctx, nil)

	snap := env.Metrics.Snapshot()
	assert.EqualValues(t, 2, snap[a.Name()].Posts)
	assert.EqualValues(t, 1, snap[b.Name()].Posts)
}

// TestNew_Options 测试选项
func TestNew_Options(t *testing.T) {
	env, _ := immediateEnv()
	j := New[string](env,
		WithName("download"),
		WithPolicy(types.PolicyAlways),
		WithEventTimeout(-time.Second),
	)

	assert.Equal(t, "download", j.Name())
	assert.Equal(t, types.PolicyAlways, j.Policy())
	assert.Equal(t, time.Duration(0), j.EventTimeout())

	requireUsagePanic(t, func() {
		New[string](env, WithPolicy(types.Policy(99)))
	})
}

// TestSetEventTimeout_NotRetroactive 测试存活时长只影响之后的发布
func TestSetEventTimeout_NotRetroactive(t *testing.T) {
	ctx := context.Background()
	env, clk := immediateEnv()
	j := New[string](env)

	j.PostSuccess(ctx, "forever", nil)
	j.SetEventTimeout(time.Second)
	clk.Add(time.Hour)

	e, ok := j.Value()
	require.True(t, ok)
	assert.Equal(t, "forever", e.Success())

	j.PostSuccess(ctx, "short", nil)
	clk.Add(999 * time.Millisecond)
	_, ok = j.Value()
	assert.True(t, ok)

	clk.Add(2 * time.Millisecond)
	_, ok = j.Value()
	assert.False(t, ok)

	j.SetEventTimeout(-5)
	assert.Equal(t, time.Duration(0), j.EventTimeout())
}

// ============================================================================
// 参数表
// ============================================================================

// TestParams 测试参数读写
func TestParams(t *testing.T) {
	env, _ := immediateEnv()
	j := New[int](env)

	assert.Nil(t, j.Get("missing"))
	_, ok := j.Lookup("missing")
	assert.False(t, ok)

	j.Set("showDialog", true)
	assert.Equal(t, true, j.Get("showDialog"))

	j.Set("nil", nil)
	v, ok := j.Lookup("nil")
	assert.True(t, ok)
	assert.Nil(t, v)
}

// TestParams_Concurrent 测试并发读写参数
func TestParams_Concurrent(t *testing.T) {
	env, _ := immediateEnv()
	j := New[int](env)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		i := i
		g.Go(func() error {
			key := fmt.Sprintf("k%d", i%4)
			for n := 0; n < 100; n++ {
				j.Set(key, n)
				_ = j.Get(key)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < 4; i++ {
		assert.Equal(t, 99, j.Get(fmt.Sprintf("k%d", i)))
	}
}

// ============================================================================
// 发布
// ============================================================================

// TestPostSuccess_NilResult 测试 nil 结果属于误用
func TestPostSuccess_NilResult(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()

	ptr := New[*string](env)
	requireUsagePanic(t, func() { ptr.PostSuccess(ctx, nil, nil) })

	iface := New[error](env)
	requireUsagePanic(t, func() { iface.PostSuccess(ctx, nil, nil) })

	m := New[map[string]int](env)
	requireUsagePanic(t, func() { m.PostSuccess(ctx, nil, nil) })

	// nil 切片是合法的空结果
	slice := New[[]int](env)
	slice.PostSuccess(ctx, nil, nil)
	e, ok := slice.Value()
	require.True(t, ok)
	assert.Nil(t, e.Success())
}

// TestPostFailure 测试失败事件
func TestPostFailure(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[string](env)

	requireUsagePanic(t, func() { j.PostFailure(ctx, "", nil, nil) })
	requireUsagePanic(t, func() { j.PostError(ctx, nil, nil) })

	j.PostFailure(ctx, "boom", io.EOF, "att")
	e, ok := j.Value()
	require.True(t, ok)
	assert.Equal(t, TagFailure, e.Tag())
	assert.Equal(t, "boom", e.Failure().Message)
	assert.ErrorIs(t, e.Failure(), io.EOF)
	assert.Equal(t, "att", e.Attachment())

	j.PostError(ctx, io.ErrClosedPipe, nil)
	e, _ = j.Value()
	assert.Equal(t, io.ErrClosedPipe.Error(), e.Failure().Error())
}

// TestPostCustom_RoundTrip 测试自定义事件载荷
func TestPostCustom_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[string](env, WithPolicy(types.PolicyAlways))
	owner := activeOwner(t)

	got := map[string]any{}
	j.Observe(owner, func(e *Event[string]) {
		e.HandleCustom("k", func(v any) { got["k"] = v })
		e.HandleCustom("n", func(v any) { got["n"] = v })
	})

	j.PostCustom(ctx, "k", nil, nil)
	j.PostCustom(ctx, "n", 42, nil)

	assert.Equal(t, "k", got["k"])
	assert.Equal(t, 42, got["n"])

	requireUsagePanic(t, func() { j.PostCustom(ctx, "", 1, nil) })
}

// ============================================================================
// 观察
// ============================================================================

// TestObserve_PolicyOncePerSubscriber 测试默认策略不补发历史事件
func TestObserve_PolicyOncePerSubscriber(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[string](env)
	owner := activeOwner(t)

	j.PostBegin(ctx, nil)

	var seen []string
	j.Observe(owner, func(e *Event[string]) { seen = append(seen, e.String()) })
	assert.Empty(t, seen)

	j.PostSuccess(ctx, "ok", nil)
	assert.Equal(t, []string{"success(ok)"}, seen)
}

// TestObserve_PolicyAlways 测试 Always 策略补发当前事件
func TestObserve_PolicyAlways(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[string](env, WithPolicy(types.PolicyAlways))
	owner := activeOwner(t)

	j.PostProgress(ctx, 30, nil)

	var seen []string
	j.Observe(owner, func(e *Event[string]) { seen = append(seen, e.String()) })
	assert.Equal(t, []string{"progress(30)"}, seen)
}

// TestObserve_PolicyOnceGlobally 测试全局仅消费一次
func TestObserve_PolicyOnceGlobally(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[string](env, WithPolicy(types.PolicyOnceGlobally))

	total := 0
	j.Observe(activeOwner(t), func(*Event[string]) { total++ })
	j.Observe(activeOwner(t), func(*Event[string]) { total++ })

	j.PostSuccess(ctx, "v", nil)
	assert.Equal(t, 1, total)
}

// TestObserve_PolicyOncePerScope 测试作用域默认取 owner，也可以由 WithScope 指定
func TestObserve_PolicyOncePerScope(t *testing.T) {
	ctx := context.Background()

	t.Run("owner as scope", func(t *testing.T) {
		env, _ := immediateEnv()
		j := New[string](env, WithPolicy(types.PolicyOncePerScope))
		page := activeOwner(t)
		other := activeOwner(t)

		samePage := 0
		otherPage := 0
		j.Observe(page, func(*Event[string]) { samePage++ })
		j.Observe(page, func(*Event[string]) { samePage++ })
		j.Observe(other, func(*Event[string]) { otherPage++ })

		j.PostSuccess(ctx, "v", nil)
		assert.Equal(t, 1, samePage)
		assert.Equal(t, 1, otherPage)
	})

	t.Run("shared scope", func(t *testing.T) {
		env, _ := immediateEnv()
		session := lifecycle.NewOwner(lifecycle.WithName("session"))
		j := New[string](env, WithPolicy(types.PolicyOncePerScope), WithScope(session))

		total := 0
		j.Observe(activeOwner(t), func(*Event[string]) { total++ })
		j.Observe(activeOwner(t), func(*Event[string]) { total++ })

		j.PostSuccess(ctx, "v", nil)
		assert.Equal(t, 1, total)
	})

	t.Run("explicit scope", func(t *testing.T) {
		env, _ := immediateEnv()
		j := New[string](env, WithPolicy(types.PolicyOncePerScope))
		owner := activeOwner(t)
		s1 := lifecycle.NewOwner()
		s2 := lifecycle.NewOwner()

		n1, n2 := 0, 0
		j.ObserveInScope(owner, s1, func(*Event[string]) { n1++ })
		j.ObserveInScope(owner, s1, func(*Event[string]) { n1++ })
		j.ObserveInScope(owner, s2, func(*Event[string]) { n2++ })

		j.PostSuccess(ctx, "v", nil)
		assert.Equal(t, 1, n1)
		assert.Equal(t, 1, n2)
	})
}

// TestObserve_NilOwner 测试缺少 owner 属于误用
func TestObserve_NilOwner(t *testing.T) {
	env, _ := immediateEnv()
	j := New[string](env)

	requireUsagePanic(t, func() { j.Observe(nil, func(*Event[string]) {}) })
	requireUsagePanic(t, func() { j.ObserveCallbacks(activeOwner(t), nil) })
	assert.False(t, j.HasObservers())
}

// TestObserveCallbacks 测试回调集合分发与附件
func TestObserveCallbacks(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[int](env, WithPolicy(types.PolicyAlways))

	var seen []string
	cb := &Callbacks[int]{}
	cb.OnBegin = func() { seen = append(seen, fmt.Sprintf("begin@%v", cb.Attachment())) }
	cb.OnProgress = func(p int) { seen = append(seen, fmt.Sprintf("progress %d@%v", p, cb.Attachment())) }
	cb.OnSuccess = func(r int) { seen = append(seen, fmt.Sprintf("success %d@%v", r, cb.Attachment())) }
	cb.OnFailure = func(err *JobError) { seen = append(seen, fmt.Sprintf("failure %s@%v", err, cb.Attachment())) }
	cb.OnCustom = func(key string, v any) { seen = append(seen, fmt.Sprintf("custom %s=%v@%v", key, v, cb.Attachment())) }

	j.ObserveCallbacks(activeOwner(t), cb)

	j.PostBegin(ctx, "a1")
	j.PostProgress(ctx, 10, nil)
	j.PostSuccess(ctx, 7, "a3")
	j.PostFailure(ctx, "bad", nil, "a4")
	j.PostCustom(ctx, "tick", nil, "a5")

	assert.Equal(t, []string{
		"begin@a1",
		"progress 10@<nil>",
		"success 7@a3",
		"failure bad@a4",
		"custom tick=tick@a5",
	}, seen)
}

// TestObserveCallbacks_Partial 测试未设置的回调被忽略
func TestObserveCallbacks_Partial(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[int](env)

	successes := 0
	j.ObserveCallbacks(activeOwner(t), &Callbacks[int]{
		OnSuccess: func(int) { successes++ },
	})

	j.PostBegin(ctx, nil)
	j.PostProgress(ctx, 1, nil)
	j.PostFailure(ctx, "x", nil, nil)
	j.PostCustom(ctx, "c", nil, nil)
	j.PostSuccess(ctx, 1, nil)

	assert.Equal(t, 1, successes)
}

// TestObserveForever_Remove 测试不绑定生命周期的观察者与移除
func TestObserveForever_Remove(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[int](env)

	j.PostProgress(ctx, 5, nil)

	var seen []int
	h := j.ObserveForever(func(e *Event[int]) {
		e.HandleProgress(func(p int) { seen = append(seen, p) })
	})
	assert.True(t, h.Forever())
	assert.Equal(t, []int{5}, seen, "ObserveForever 总是补发当前事件")

	j.PostProgress(ctx, 6, nil)
	j.Remove(ctx, h)
	j.PostProgress(ctx, 7, nil)
	assert.Equal(t, []int{5, 6}, seen)
	assert.False(t, j.HasObservers())
}

// TestRemove_AfterOwnerDestroyed 测试 owner 销毁后再移除不报错
func TestRemove_AfterOwnerDestroyed(t *testing.T) {
	ctx := context.Background()
	env, _ := immediateEnv()
	j := New[int](env)

	owner := lifecycle.NewOwner()
	require.NoError(t, owner.Resume(ctx))

	calls := 0
	h := j.Observe(owner, func(*Event[int]) { calls++ })
	require.NoError(t, owner.Destroy(ctx))

	j.Remove(ctx, h)
	require.NoError(t, j.RemoveSync(ctx, h))
	j.PostSuccess(ctx, 1, nil)
	assert.Equal(t, 0, calls)
}

// TestJob_EndToEnd 测试从后台 goroutine 依次发布的六个事件按顺序送达
func TestJob_EndToEnd(t *testing.T) {
	ctx := context.Background()
	l := mainloop.New()
	l.Start()
	defer l.Close()

	j := New[string](eventbus.Env{Dispatcher: l}, WithPolicy(types.PolicyAlways))
	owner := lifecycle.NewOwner()
	require.NoError(t, owner.Resume(ctx))
	defer owner.Destroy(ctx)

	var seen []string
	j.Observe(owner, func(e *Event[string]) {
		switch {
		case e.Tag() == TagBegin:
			seen = append(seen, fmt.Sprintf("begin(%v)", e.Attachment()))
		case e.Tag() == TagFailure:
			seen = append(seen, fmt.Sprintf("failure(%s)", e.Failure().Message))
		default:
			seen = append(seen, e.String())
		}
	})
	require.NoError(t, mainloop.Barrier(ctx, l))

	steps := []func(){
		func() { j.PostBegin(ctx, "att") },
		func() { j.PostProgress(ctx, 50, nil) },
		func() { j.PostSuccess(ctx, "done", nil) },
		func() { j.PostFailure(ctx, "boom", nil, nil) },
		func() { j.PostCustom(ctx, "x", nil, nil) },
		func() { j.PostCustom(ctx, "y", 7, nil) },
	}
	for _, step := range steps {
		step()
		require.NoError(t, mainloop.Barrier(ctx, l))
	}

	var got []string
	require.NoError(t, l.Call(ctx, func(context.Context) {
		got = append(got, seen...)
	}))
	assert.Equal(t, []string{
		"begin(att)",
		"progress(50)",
		"success(done)",
		"failure(boom)",
		"custom(x=x)",
		"custom(y=7)",
	}, got)
}
