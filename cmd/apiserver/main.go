package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/s2265681/Project-Auto-Testing/internal/business/bitable"
	"github.com/s2265681/Project-Auto-Testing/internal/consumer"
	"github.com/s2265681/Project-Auto-Testing/internal/server/handlers/run"
	"github.com/s2265681/Project-Auto-Testing/internal/server/modules/mdrun"
	"github.com/s2265681/Project-Auto-Testing/internal/server/routers"
	"github.com/s2265681/Project-Auto-Testing/internal/server/services/svcallback"
	"github.com/s2265681/Project-Auto-Testing/internal/server/services/svrun"
	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/infra/mysql"
	infraredis "github.com/s2265681/Project-Auto-Testing/pkg/infra/redis"
	"github.com/s2265681/Project-Auto-Testing/pkg/lmstfy"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化日志
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化基础设施组件
	runDAO, err := mysql.NewRunDAO(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer runDAO.Close()

	pubsub, err := infraredis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to init redis: %v", err)
	}
	defer pubsub.Close()

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to init lmstfy client: %v", err)
	}

	// 4. 组装业务层
	runModule := mdrun.NewRunModule(lmstfyClient, pubsub, cfg.Lmstfy.Queue)
	runService := svrun.NewRunService(runDAO, runModule, zapLogger)
	runHandler := run.NewRunHandler(runService)

	bitableClient := bitable.NewClient(cfg.Feishu)
	callbackService := svcallback.NewCallbackService(bitableClient, zapLogger)
	callbackConsumer := consumer.NewCallbackConsumer(
		lmstfyClient,
		callbackService,
		&consumer.Config{
			QueueName:    cfg.Lmstfy.CallbackQueue,
			Timeout:      3 * time.Second,
			TTR:          30 * time.Second,
			PollInterval: 100 * time.Millisecond,
		},
		zapLogger,
	)

	// 5. 创建 HTTP Server
	engine := routers.SetupRoutes(runHandler, zapLogger)
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	// 6. 启动 Consumer（后台 goroutine）
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	consumerErrChan := make(chan error, 1)

	go func() {
		log.Printf("Starting callback consumer...")
		consumerErrChan <- callbackConsumer.Start(consumerCtx)
	}()

	// 7. 启动 HTTP Server（后台 goroutine）
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 8. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
		gracefulShutdown(server, cancelConsumer)
	case err := <-serverErrChan:
		log.Fatalf("HTTP server error: %v", err)
	case err := <-consumerErrChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Consumer error: %v", err)
		}
	}

	log.Println("Application stopped")
}

// gracefulShutdown 优雅停机
func gracefulShutdown(server *http.Server, cancelConsumer context.CancelFunc) {
	// 1. 停止 Consumer
	log.Println("Stopping consumer...")
	cancelConsumer()
	time.Sleep(1 * time.Second) // 等待消费者处理完当前消息

	// 2. 停止 HTTP Server
	log.Println("Stopping HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	log.Println("All services stopped gracefully")
}
