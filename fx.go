package liveevent

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-liveevent/internal/core/eventbus"
	"github.com/dep2p/go-liveevent/internal/core/lifecycle"
	"github.com/dep2p/go-liveevent/internal/core/mainloop"
	"github.com/dep2p/go-liveevent/internal/core/metrics"
	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
	"github.com/dep2p/go-liveevent/pkg/lib/log"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置注入
//  2. 主执行上下文：内置 mainloop 或外部 Dispatcher
//  3. 应用作用域（lifecycle）
//  4. 指标（metrics）
//  5. 事件总线运行环境（eventbus）
//  6. 用户扩展
//
// OnStop 按反向顺序执行：先销毁应用作用域（自动移除绑定的观察者），再停止主循环。

var fxLogger = log.Logger("liveevent/fx")

func buildFxApp(cfg *runtimeConfig, rt *Runtime) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg.config),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 主执行上下文
	// ════════════════════════════════════════════════════════════════════════
	if cfg.dispatcher != nil {
		d := cfg.dispatcher
		modules = append(modules, fx.Provide(func() pkgif.Dispatcher { return d }))
		fxLogger.Debug("使用外部 Dispatcher")
	} else {
		modules = append(modules, mainloop.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 应用作用域与指标
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		lifecycle.Module(),
		metrics.Module(),
	)
	if cfg.registerer != nil {
		reg := cfg.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 事件总线
	// ════════════════════════════════════════════════════════════════════════
	if cfg.clock != nil {
		clk := cfg.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}
	modules = append(modules, eventbus.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(cfg.userFxOptions) > 0 {
		modules = append(modules, cfg.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 6. Runtime 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectRuntimeComponents(rt)))

	// ════════════════════════════════════════════════════════════════════════
	// 7. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入辅助函数
// ════════════════════════════════════════════════════════════════════════════

// runtimeInjectParams Runtime 组件注入参数
type runtimeInjectParams struct {
	fx.In

	Env      eventbus.Env
	AppScope *lifecycle.Owner `name:"app_scope"`
	Metrics  *metrics.Registry
	Loop     *mainloop.Loop `optional:"true"`
}

// injectRuntimeComponents 把 Fx 构建的组件注入 Runtime
func injectRuntimeComponents(rt *Runtime) func(runtimeInjectParams) {
	return func(p runtimeInjectParams) {
		rt.env = p.Env
		rt.appScope = p.AppScope
		rt.metrics = p.Metrics
		rt.loop = p.Loop
	}
}
