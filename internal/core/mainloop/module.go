package mainloop

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-liveevent/config"
	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
)

// Params 主循环模块依赖参数
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Result 主循环模块输出结果
type Result struct {
	fx.Out

	Loop       *Loop
	Dispatcher pkgif.Dispatcher
}

// Module 返回 Fx 模块
//
// 提供:
//   - *Loop: 主循环实例
//   - pkgif.Dispatcher: 同一实例的接口形式
//
// 生命周期:
//   - OnStart: 启动主循环 goroutine
//   - OnStop: 执行完已排队任务后退出
func Module() fx.Option {
	return fx.Module("mainloop",
		fx.Provide(ProvideLoop),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideLoop 提供主循环
func ProvideLoop(p Params) Result {
	capacity := config.DefaultMainLoopConfig().QueueCapacity
	if p.Config != nil {
		capacity = p.Config.MainLoop.QueueCapacity
	}
	l := New(WithQueueCapacity(capacity))
	return Result{Loop: l, Dispatcher: l}
}

func registerLifecycle(lc fx.Lifecycle, l *Loop) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			l.Start()
			logger.Debug("主循环已启动")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return l.Stop(ctx)
		},
	})
}
