package lifecycle

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-liveevent/pkg/interfaces"
)

// ModuleResult Fx 模块导出结果
type ModuleResult struct {
	fx.Out

	Owner     *Owner               `name:"app_scope"`
	Interface pkgif.LifecycleOwner `name:"app_scope"`
}

// provideAppScope 提供应用级作用域
func provideAppScope() ModuleResult {
	o := NewOwner(WithName("app"))
	return ModuleResult{
		Owner:     o,
		Interface: o,
	}
}

// Module 返回 Fx 模块
//
// 提供应用级作用域（命名为 app_scope），它与 Fx 应用同生共死：
// 启动时进入 Resumed，停止时销毁，绑定到它的观察者随之自动移除。
func Module() fx.Option {
	return fx.Module("lifecycle",
		fx.Provide(provideAppScope),
		fx.Invoke(registerLifecycleHooks),
	)
}

// lifecycleHooksParams 生命周期钩子参数
type lifecycleHooksParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Owner     *Owner `name:"app_scope"`
}

// registerLifecycleHooks 注册生命周期钩子
func registerLifecycleHooks(params lifecycleHooksParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return params.Owner.Resume(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return params.Owner.Destroy(ctx)
		},
	})
}
