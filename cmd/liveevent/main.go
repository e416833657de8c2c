// Package main 提供 liveevent 演示命令行入口
//
// 启动一个运行时，按固定间隔投递计数事件，同时执行一个带进度的异步任务，
// 退出时打印每条总线的投递统计。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	liveevent "github.com/dep2p/go-liveevent"
	"github.com/dep2p/go-liveevent/config"
	"github.com/dep2p/go-liveevent/pkg/asyncjob"
	"github.com/dep2p/go-liveevent/pkg/lib/log"
	"github.com/dep2p/go-liveevent/pkg/types"
)

var logger = log.Logger("liveevent/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径")
	preset     = flag.String("preset", "", "预设配置 (default/transient/sticky)")
	policy     = flag.String("policy", "", "默认消费策略 (always/once_per_subscriber/once_globally/once_per_scope)")
	timeout    = flag.Duration("timeout", 0, "事件存活时长（0 = 永不过期）")
	logLevel   = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")

	interval = flag.Duration("interval", time.Second, "计数事件的投递间隔")
	duration = flag.Duration("duration", 0, "运行时长（0 = 直到收到退出信号）")

	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}
	if *interval <= 0 {
		return fmt.Errorf("interval must be > 0, got %s", *interval)
	}

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if *duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, *duration)
		defer stop()
	}

	fmt.Printf("📦 %s\n", liveevent.VersionInfo())
	logger.Info("启动 liveevent 演示", "version", liveevent.Version, "commit", liveevent.GitCommit, "buildDate", liveevent.BuildDate)

	rt, err := liveevent.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("创建运行时失败: %w", err)
	}
	defer func() { _ = rt.Close() }()

	if err := rt.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	if err := demo(ctx, rt); err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Println("\n正在关闭...")
	if err := rt.Sync(context.Background()); err != nil {
		logger.Warn("等待主上下文失败", "error", err)
	}
	printMetrics(rt)
	return nil
}

// demo 运行计数事件与异步任务，直到 ctx 结束
func demo(ctx context.Context, rt *liveevent.Runtime) error {
	page := rt.NewScope(liveevent.WithScopeName("demo"))
	if err := page.Resume(ctx); err != nil {
		return err
	}

	ticks := liveevent.NewLiveEvent[int](rt, liveevent.WithEventName("ticks"))
	ticks.Observe(page, func(n int) {
		fmt.Printf("tick #%d\n", n)
	})

	job := liveevent.NewJob[string](rt, asyncjob.WithName("warmup"))
	job.ObserveCallbacks(page, &asyncjob.Callbacks[string]{
		OnBegin:    func() { fmt.Println("warmup: 开始") },
		OnProgress: func(p int) { fmt.Printf("warmup: %d%%\n", p) },
		OnSuccess:  func(r string) { fmt.Printf("warmup: 完成 (%s)\n", r) },
		OnFailure:  func(err *asyncjob.JobError) { fmt.Printf("warmup: 失败 (%v)\n", err) },
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-asyncjob.Run(gctx, job, func(jctx context.Context) (string, error) {
			for p := 25; p <= 100; p += 25 {
				select {
				case <-jctx.Done():
					return "", jctx.Err()
				case <-time.After(*interval / 4):
				}
				job.PostProgress(jctx, p, nil)
			}
			return "ready", nil
		})
		return nil
	})

	g.Go(func() error {
		t := time.NewTicker(*interval)
		defer t.Stop()
		for n := 1; ; n++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-t.C:
				ticks.Post(gctx, n)
			}
		}
	})

	fmt.Println("已启动，按 Ctrl+C 退出")
	return g.Wait()
}

// printMetrics 按总线名称排序打印统计
func printMetrics(rt *liveevent.Runtime) {
	snaps := rt.Metrics()
	names := make([]string, 0, len(snaps))
	for name := range snaps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := json.Marshal(snaps[name])
		if err != nil {
			continue
		}
		fmt.Printf("%-12s %s\n", name, data)
	}
}

// buildOptions 构建选项
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 配置文件
//  3. 默认值
func buildOptions() ([]liveevent.Option, error) {
	cfg, err := loadConfigIfNeeded()
	if err != nil {
		return nil, err
	}

	if isFlagSet("preset") {
		if err := config.ApplyPreset(cfg, *preset); err != nil {
			return nil, err
		}
	}
	if isFlagSet("policy") {
		p, err := types.ParsePolicy(*policy)
		if err != nil {
			return nil, err
		}
		cfg.Event.DefaultPolicy = p
	}
	if isFlagSet("timeout") {
		cfg.Event.DefaultTimeout = config.Duration(*timeout)
	}
	if isFlagSet("log-level") {
		cfg.Log.Level = *logLevel
	}

	if err := config.ValidateAll(cfg); err != nil {
		return nil, err
	}
	return []liveevent.Option{
		liveevent.WithConfig(cfg),
		liveevent.WithLogOutput(os.Stderr),
	}, nil
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("liveevent %s\n", liveevent.Version)
	if liveevent.GitCommit != "" {
		fmt.Printf("  commit: %s\n", liveevent.GitCommit)
	}
	if liveevent.BuildDate != "" {
		fmt.Printf("  built:  %s\n", liveevent.BuildDate)
	}
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("liveevent - 单槽位生命周期感知事件总线演示")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  liveevent [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("预设配置:")
	fmt.Println("  default    仅注册后事件，永不过期")
	fmt.Println("  transient  仅注册后事件，3 秒过期")
	fmt.Println("  sticky     总是投递，永不过期")
	fmt.Println()
	fmt.Println("配置文件示例 (config.json):")
	fmt.Println(`  {`)
	fmt.Println(`    "event": {"default_policy": "always", "default_timeout": "3s"},`)
	fmt.Println(`    "main_loop": {"queue_capacity": 128},`)
	fmt.Println(`    "log": {"level": "debug"}`)
	fmt.Println(`  }`)
}
