package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/xtding233/awaken-backend/internal/config"
	"github.com/xtding233/awaken-backend/internal/logger"
	"github.com/xtding233/awaken-backend/internal/rpc"
	"github.com/xtding233/awaken-backend/internal/service"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "http listen address")
		grpcAddr  = flag.String("grpc", ":9090", "grpc listen address (empty to disable)")
		configDir = flag.String("configs", "./configs", "config directory")
		logConfig = flag.String("log_config", "", "path to a yaml file with a logging section")
		watch     = flag.Duration("watch", 2*time.Second, "config poll interval (0 to disable)")
		maxTrials = flag.Int("max_trials", 100000, "upper bound on trials per request, http and grpc (0 for none)")
	)
	flag.Parse()

	logCfg, err := logger.LoadConfig(*logConfig)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Initialize(logCfg); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(*configDir)
	svc := service.New(loader)
	svc.MaxTrials = *maxTrials

	if *watch > 0 {
		w := config.NewFileWatcher(loader.WatchPaths(), *watch, func(path string) {
			logger.Info("config changed, invalidating cache", "path", path)
			loader.Invalidate()
		})
		w.Discover = loader.WatchPaths
		w.Start(ctx)
	}

	var grpcSrv *grpc.Server
	if *grpcAddr != "" {
		lis, err := net.Listen("tcp", *grpcAddr)
		if err != nil {
			logger.Error("grpc listen", "addr", *grpcAddr, "err", err)
			os.Exit(1)
		}
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(rpc.LoggingInterceptor))
		rpc.Register(grpcSrv, svc)
		go func() {
			logger.Info("grpc listening", "addr", *grpcAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("grpc serve", "err", err)
			}
		}()
	}

	h := &handlers{svc: svc}
	httpSrv := &http.Server{Addr: *addr, Handler: h.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
	}()

	logger.Info("listening", "addr", *addr, "configs", *configDir)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http serve", "err", err)
		os.Exit(1)
	}
}
