package liveevent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-liveevent/config"
	"github.com/dep2p/go-liveevent/internal/core/eventbus"
	"github.com/dep2p/go-liveevent/internal/core/lifecycle"
	"github.com/dep2p/go-liveevent/internal/core/mainloop"
	"github.com/dep2p/go-liveevent/internal/core/metrics"
	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/lib/log"
)

var logger = log.Logger("liveevent")

// ════════════════════════════════════════════════════════════════════════════
//                              运行时状态
// ════════════════════════════════════════════════════════════════════════════

// RuntimeState 运行时状态
type RuntimeState int

const (
	// StateIdle 已创建，未启动
	StateIdle RuntimeState = iota

	// StateStarting 启动中
	StateStarting

	// StateRunning 运行中
	StateRunning

	// StateStopping 停止中
	StateStopping

	// StateStopped 已停止（不可重新启动）
	StateStopped
)

// String 返回状态的字符串表示
func (s RuntimeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// 关闭超时
const closeTimeout = 10 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Runtime
// ════════════════════════════════════════════════════════════════════════════

// Runtime 事件运行时
//
// Runtime 组装主执行上下文、应用作用域、指标与事件总线运行环境，
// 是创建 LiveEvent 与 Job 的入口。
//
// 使用示例：
//
//	rt, err := liveevent.New(ctx, liveevent.WithPreset("transient"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	if err := rt.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	toast := liveevent.NewLiveEvent[string](rt)
//	page := rt.NewScope()
//	page.Resume(ctx)
//	toast.ObserveOncePerSubscriber(page, func(msg string) { show(msg) })
//	toast.Post(ctx, "saved")
type Runtime struct {
	// config 运行时配置
	config *runtimeConfig

	// app Fx 应用
	app *fx.App

	// ────────────────────────────────────────────────────────────────────────
	// 核心组件（由 Fx 注入）
	// ────────────────────────────────────────────────────────────────────────

	env      eventbus.Env
	appScope *lifecycle.Owner
	metrics  *metrics.Registry

	// loop 内置主循环，使用外部 Dispatcher 时为 nil
	loop *mainloop.Loop

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期状态
	// ────────────────────────────────────────────────────────────────────────

	mu     sync.RWMutex
	state  RuntimeState
	closed bool
}

// New 创建运行时
//
// 创建后可以立即创建 LiveEvent/Job 并注册观察者；
// 使用内置主循环时，投递的任务在 Start 之后才会执行。
func New(_ context.Context, opts ...Option) (*Runtime, error) {
	cfg := newRuntimeConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if cfg.logOutput != nil {
		level, err := log.ParseLevel(cfg.config.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		log.SetOutputWithLevel(cfg.logOutput, level)
	}

	rt := &Runtime{config: cfg}

	var err error
	rt.app, err = buildFxApp(cfg, rt)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}

	logger.Debug("运行时已创建", "version", Version)
	return rt, nil
}

// Start 启动运行时
//
// 启动主循环并把应用作用域推进到 Resumed。
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.closed:
		return ErrRuntimeClosed
	case r.state == StateRunning:
		return ErrAlreadyStarted
	case r.state == StateStopped:
		return ErrRuntimeStopped
	}

	r.state = StateStarting
	if err := r.app.Start(ctx); err != nil {
		r.state = StateIdle
		logger.Error("运行时启动失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}

	r.state = StateRunning
	logger.Info("运行时已启动")
	return nil
}

// Stop 停止运行时
//
// 销毁应用作用域（绑定到它的观察者被自动移除），执行完已排队的任务后停止主循环。
// 停止后不能再次启动。
func (r *Runtime) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	if r.state != StateRunning {
		return ErrNotStarted
	}
	return r.stopLocked(ctx)
}

// Close 关闭运行时并释放所有资源，重复调用返回 nil
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	var err error
	if r.state == StateRunning {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		err = multierr.Append(err, r.stopLocked(ctx))
	} else {
		// 未启动时 Fx 钩子不会执行，手动释放
		err = multierr.Append(err, r.appScope.Destroy(context.Background()))
		if r.loop != nil {
			err = multierr.Append(err, r.loop.Close())
		}
		r.state = StateStopped
	}

	r.closed = true
	logger.Info("运行时已关闭")
	return err
}

func (r *Runtime) stopLocked(ctx context.Context) error {
	r.state = StateStopping
	err := r.app.Stop(ctx)
	r.state = StateStopped
	if err != nil {
		logger.Error("停止运行时失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	logger.Info("运行时已停止")
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              访问器
// ════════════════════════════════════════════════════════════════════════════

// State 返回运行时状态
func (r *Runtime) State() RuntimeState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Config 返回生效的配置（副本）
func (r *Runtime) Config() config.Config {
	return *r.config.config
}

// Env 返回事件总线运行环境
func (r *Runtime) Env() Env {
	return r.env
}

// Dispatcher 返回主执行上下文
func (r *Runtime) Dispatcher() pkgif.Dispatcher {
	return r.env.Dispatcher
}

// AppScope 返回应用级作用域
//
// 它随运行时启动进入 Resumed，随运行时停止销毁。
func (r *Runtime) AppScope() *Scope {
	return r.appScope
}

// NewScope 创建新的作用域（页面、会话等），初始状态为 Initialized
//
// 应用作用域销毁时，新作用域也随之销毁。
func (r *Runtime) NewScope(opts ...ScopeOption) *Scope {
	s := lifecycle.NewOwner(opts...)

	detach := r.appScope.AddLifecycleObserver(func(ctx context.Context, state LifecycleState) {
		if state == LifecycleDestroyed {
			_ = s.Destroy(ctx)
		}
	})
	if r.appScope.State() == LifecycleDestroyed {
		_ = s.Destroy(context.Background())
		return s
	}
	s.AddLifecycleObserver(func(_ context.Context, state LifecycleState) {
		if state == LifecycleDestroyed {
			detach()
		}
	})
	return s
}

// RunOnMain 在主上下文中执行 fn
//
// 已处于主上下文时同步执行，否则排入主上下文后立即返回。
func (r *Runtime) RunOnMain(ctx context.Context, fn func(ctx context.Context)) error {
	return mainloop.RunOnMain(ctx, r.env.Dispatcher, fn)
}

// Sync 等待主上下文中此前排队的任务执行完毕
func (r *Runtime) Sync(ctx context.Context) error {
	return mainloop.Barrier(ctx, r.env.Dispatcher)
}

// Metrics 返回每条总线的投递统计
func (r *Runtime) Metrics() map[string]Snapshot {
	return r.metrics.Snapshot()
}
