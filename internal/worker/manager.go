package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/s2265681/Project-Auto-Testing/internal/business"
	"github.com/s2265681/Project-Auto-Testing/internal/business/capture"
	"github.com/s2265681/Project-Auto-Testing/internal/business/cases"
	"github.com/s2265681/Project-Auto-Testing/internal/business/compare"
	"github.com/s2265681/Project-Auto-Testing/internal/business/figma"
	"github.com/s2265681/Project-Auto-Testing/internal/business/prd"
	"github.com/s2265681/Project-Auto-Testing/internal/business/workflow"
	"github.com/s2265681/Project-Auto-Testing/internal/domains"
	"github.com/s2265681/Project-Auto-Testing/internal/framework"
	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/infra/mysql"
	"github.com/s2265681/Project-Auto-Testing/pkg/infra/redis"
	"github.com/s2265681/Project-Auto-Testing/pkg/lmstfy"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx            context.Context
	cfg            *config.Config
	lmstfyClient   *lmstfy.Client
	runDAO         *mysql.RunDAO
	pubsub         *redis.PubSub
	uicheckService *business.UICheckService
	workers        []Worker
	closing        *atomic.Bool
	shutdownCh     chan struct{}
	wg             sync.WaitGroup
	logger         logger.Logger
}

// NewManagerInstance 创建 Manager 并组装全部业务依赖
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	// 初始化 lmstfy 客户端
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	// 初始化存储与消息通道
	runDAO, err := mysql.NewRunDAO(cfg.MySQL.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create run dao: %w", err)
	}

	pubsub, err := redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis pubsub: %w", err)
	}

	// 组装工作流各依赖
	capturer := capture.NewCoordinator(cfg.Browser, log)
	policies := workflow.PoliciesFromConfig(cfg.Retry)

	figmaClient := figma.NewClient(cfg.Figma)
	exporter := figma.NewExporter(figmaClient, capturer, policies.Export, cfg.Figma.Format, cfg.Figma.Scale, log)

	comparator := compare.NewComparator(cfg.Compare)
	prdClient := prd.NewClient(cfg.Feishu)
	generator := cases.NewGenerator(cfg.Cases, log)
	persister := business.NewRunPersister(runDAO)

	executor := workflow.NewExecutor(
		capturer,
		exporter,
		comparator,
		prdClient,
		generator,
		persister,
		policies,
		cfg.Output.Dir,
		cfg.Browser.NavTimeout,
		log,
	)

	uicheckService := business.NewUICheckService(executor, lmstfyClient, pubsub, cfg.Lmstfy.CallbackQueue, log)

	log.Infof(ctx, "[Manager] Initialized with callback_queue: %s", cfg.Lmstfy.CallbackQueue)

	return &ManagerInstance{
		ctx:            ctx,
		cfg:            cfg,
		lmstfyClient:   lmstfyClient,
		runDAO:         runDAO,
		pubsub:         pubsub,
		uicheckService: uicheckService,
		closing:        atomic.NewBool(false),
		shutdownCh:     make(chan struct{}),
		workers:        make([]Worker, 0),
		logger:         log,
	}, nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 3. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// 原子操作，保证并发安全
	if m.closing.CAS(false, true) {
		// 1. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 2. 等待所有 Worker 退出
		m.wg.Wait()

		// 3. 释放存储连接
		if err := m.runDAO.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] Close run dao failed: %v", err)
		}
		if err := m.pubsub.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] Close pubsub failed: %v", err)
		}

		// 4. 关闭信号通道
		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 加载所有 Worker
func (m *ManagerInstance) loadWorkers() error {
	// 遍历配置中的所有 Worker
	for _, workerCfg := range m.cfg.Workers {
		// 创建 Subscriber 配置
		subCfg := &framework.SubscriberConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}

		// 创建 Processor 配置
		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		// 获取 GetProcess 函数
		getProcess := domains.GetProcess(m.logger, m.uicheckService)

		// 创建 Worker 实例
		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			subCfg,
			procCfg,
			m.lmstfyClient, // MessageSource
			getProcess,     // lmstfyx.Proc
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}
