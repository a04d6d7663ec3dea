// queryadmitd 演示通过每数据库许可代理准入查询、以带心跳的流式响应返回结果。
//
// 用法:
//
//	queryadmitd [全局选项]
//
// 全局选项:
//
//	--config              配置文件路径（YAML），省略时使用内置默认值
//	--watch-config        监视 --config 文件变更并热重载（仅影响之后首次出现的数据库 id 的限额）
//	--addr                监听地址（默认 :8080）
//	--log-file            日志文件路径；省略时输出到 stderr
//	--clickhouse-dsn      ClickHouse DSN；省略时使用内置的演示 worker
//
// 请求:
//
//	GET /query?db_id=<int>&query=<SQL>
//
// 响应为零个或多个裸换行符（心跳）后跟恰好一个 JSON 文档。
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/queryadmit/internal/demoworker"
	"github.com/omeyang/queryadmit/pkg/admission/xqueryadmit"
	"github.com/omeyang/queryadmit/pkg/config/xconf"
	"github.com/omeyang/queryadmit/pkg/distributed/xbrokerreg"
	"github.com/omeyang/queryadmit/pkg/lifecycle/xrun"
	"github.com/omeyang/queryadmit/pkg/observability/xlog"
	"github.com/omeyang/queryadmit/pkg/observability/xrotate"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// appConfig is the subset of configuration queryadmitd reads via xconf,
// matching the keys documented for the admission model.
type appConfig struct {
	ListenAddr                  string        `koanf:"listen-addr"`
	MaxSimultaneousQueriesPerDB int           `koanf:"max-simultaneous-queries-per-db"`
	HeartbeatInterval           time.Duration `koanf:"heartbeat-interval"`
}

func defaultAppConfig() appConfig {
	return appConfig{
		ListenAddr:                  ":8080",
		MaxSimultaneousQueriesPerDB: 15,
		HeartbeatInterval:           time.Second,
	}
}

func main() {
	os.Exit(run())
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:    "queryadmitd",
		Usage:   "per-database admission-controlled query streaming demo",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML configuration file path"},
			&cli.BoolFlag{Name: "watch-config", Usage: "reload --config on change (fsnotify-driven)"},
			&cli.StringFlag{Name: "addr", Usage: "listen address"},
			&cli.StringFlag{Name: "log-file", Usage: "log file path; omit to log to stderr"},
			&cli.StringFlag{Name: "clickhouse-dsn", Usage: "ClickHouse DSN; omit to use the in-memory demo worker"},
		},
		Action: serve,
	}
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := createApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "queryadmitd: %v\n", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg := defaultAppConfig()
	var conf xconf.Config
	if path := cmd.String("config"); path != "" {
		var err error
		conf, err = xconf.New(path)
		if err != nil {
			return fmt.Errorf("queryadmitd: load config: %w", err)
		}
		if err := conf.Unmarshal("", &cfg); err != nil {
			return fmt.Errorf("queryadmitd: parse config: %w", err)
		}
	}
	if addr := cmd.String("addr"); addr != "" {
		cfg.ListenAddr = addr
	}

	builder := xlog.New().SetLevelString("info")
	if logFile := cmd.String("log-file"); logFile != "" {
		builder = builder.SetRotation(logFile,
			xrotate.WithMaxSize(100),
			xrotate.WithMaxBackups(5),
			xrotate.WithMaxAge(28),
			xrotate.WithCompress(true),
		)
	}
	logger, cleanup, err := builder.Build()
	if err != nil {
		return fmt.Errorf("queryadmitd: build logger: %w", err)
	}
	defer func() { _ = cleanup() }()

	// liveCfg 持有当前生效的 appConfig，--watch-config 时由 Reload 回调原子替换，
	// capacityFn 在为首次出现的数据库 id 创建 broker 时读取当前值；
	// 已创建的 broker 保持创建时的容量。
	var liveCfg atomic.Pointer[appConfig]
	liveCfg.Store(&cfg)

	if conf != nil && cmd.Bool("watch-config") {
		watcher, err := xconf.Watch(conf, func(c xconf.Config, reloadErr error) {
			if reloadErr != nil {
				logger.Warn(ctx, "queryadmitd: config reload failed", slog.Any("error", reloadErr))
				return
			}
			next := defaultAppConfig()
			if err := c.Unmarshal("", &next); err != nil {
				logger.Warn(ctx, "queryadmitd: config reload parse failed", slog.Any("error", err))
				return
			}
			liveCfg.Store(&next)
			logger.Info(ctx, "queryadmitd: config reloaded",
				slog.Int("max-simultaneous-queries-per-db", next.MaxSimultaneousQueriesPerDB))
		})
		if err != nil {
			return fmt.Errorf("queryadmitd: watch config: %w", err)
		}
		watcher.StartAsync()
		defer func() { _ = watcher.Stop() }()
	}

	capacityFn := func(int64) (int, error) {
		return liveCfg.Load().MaxSimultaneousQueriesPerDB, nil
	}
	registry, err := xbrokerreg.New(capacityFn, xbrokerreg.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("queryadmitd: build broker registry: %w", err)
	}

	core, err := xqueryadmit.NewCore(registry, xqueryadmit.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("queryadmitd: build admission core: %w", err)
	}

	worker, closeWorker, err := buildWorker(cmd.String("clickhouse-dsn"))
	if err != nil {
		return fmt.Errorf("queryadmitd: build worker: %w", err)
	}
	defer func() { _ = closeWorker() }()

	mux := http.NewServeMux()
	mux.Handle("/query", xqueryadmit.Handler(core,
		xqueryadmit.WithWorker(worker),
		xqueryadmit.WithHeartbeatInterval(cfg.HeartbeatInterval),
		xqueryadmit.WithHandlerLogger(logger),
	))

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	logger.Info(ctx, "queryadmitd: listening", slog.String("addr", cfg.ListenAddr))

	err = xrun.Run(ctx, xrun.HTTPServer(server, 10*time.Second))
	if err != nil {
		var sigErr *xrun.SignalError
		if errors.As(err, &sigErr) {
			logger.Info(ctx, "queryadmitd: shutting down on signal")
			return nil
		}
		return err
	}
	return nil
}

func buildWorker(dsn string) (xqueryadmit.QueryWorker, func() error, error) {
	if dsn == "" {
		fake := demoworker.NewFakeWorker(200 * time.Millisecond)
		return fake.Run, func() error { return nil }, nil
	}

	worker, err := demoworker.NewClickHouseWorker(dsn)
	if err != nil {
		return nil, nil, err
	}
	return worker.Run, worker.Close, nil
}
