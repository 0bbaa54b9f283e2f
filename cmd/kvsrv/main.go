// Command kvsrv starts the RESP key/value server: a single binary, no
// subcommands, exit 0 on clean shutdown and non-zero on bind failure
// (spec.md §6), mirroring cmd/zmux-server/main.go's zap bootstrap shape.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/kvsrv/kvsrv/internal/admin"
	"github.com/kvsrv/kvsrv/internal/command"
	"github.com/kvsrv/kvsrv/internal/config"
	"github.com/kvsrv/kvsrv/internal/server"
	"github.com/kvsrv/kvsrv/internal/store"
	"github.com/kvsrv/kvsrv/internal/waiter"
)

func main() {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	cfg := config.Load()

	ks := store.New()
	defer ks.Close()

	reg := waiter.New(ks, cfg.WorkerThreads*4)
	ks.SetNotifier(reg.Notify)

	deps := command.Deps{KS: ks, Waiters: reg}
	srv := server.New(log, deps, cfg.AcceptThreads, cfg.WorkerThreads)
	adminSrv := admin.New(log, ks, os.Getenv("ENV") == "dev")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, fmt.Sprintf(":%d", cfg.Port))
	})
	g.Go(func() error {
		return adminSrv.Run(gctx, "127.0.0.1:8080")
	})

	log.Info("kvsrv starting",
		zap.Int("port", cfg.Port),
		zap.Int("accept_threads", cfg.AcceptThreads),
		zap.Int("worker_threads", cfg.WorkerThreads))

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}
