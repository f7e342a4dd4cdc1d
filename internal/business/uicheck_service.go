package business

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/s2265681/Project-Auto-Testing/internal/business/workflow"
	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/infra/redis"
	"github.com/s2265681/Project-Auto-Testing/pkg/lmstfy"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// UICheckService 视觉比对服务
// 职责：执行工作流 → 发送回调到 callback 队列 → 推送 Smart Wait 通知
type UICheckService struct {
	executor      *workflow.Executor
	lmstfyClient  *lmstfy.Client
	pubsub        *redis.PubSub
	callbackQueue string
	log           logger.Logger
}

// NewUICheckService 创建服务实例
func NewUICheckService(
	executor *workflow.Executor,
	lmstfyClient *lmstfy.Client,
	pubsub *redis.PubSub,
	callbackQueue string,
	log logger.Logger,
) *UICheckService {
	return &UICheckService{
		executor:      executor,
		lmstfyClient:  lmstfyClient,
		pubsub:        pubsub,
		callbackQueue: callbackQueue,
		log:           log,
	}
}

// ExecuteRun 执行一次运行并分发结果
// 返回 error 表示结果分发失败（运行本身的失败体现在回调状态上）
func (s *UICheckService) ExecuteRun(ctx context.Context, requestID string, spec *model.RunSpec) (*model.WorkflowRun, error) {
	// 1. 执行工作流（运行记录持久化在 PERSISTING 阶段内完成）
	run := s.executor.Execute(ctx, spec)

	// 2. 构造回调消息
	callback := model.RunCallback{
		RequestID:   requestID,
		RunID:       run.RunID,
		Status:      string(run.Status),
		Partial:     run.Partial,
		Run:         run,
		RunMetadata: spec.RunMetadata,
		Error:       run.Error,
		ProcessedAt: time.Now().Unix(),
	}

	callbackJSON, err := json.Marshal(callback)
	if err != nil {
		return run, fmt.Errorf("failed to marshal callback: %w", err)
	}

	// 3. 发送回调到 callback 队列
	// ttl=0 永不过期，delay=0 立即可用
	if err := s.lmstfyClient.Publish(s.callbackQueue, callbackJSON, 0, 0); err != nil {
		return run, errorutil.Transient("failed to publish callback: %v", err)
	}

	// 4. Smart Wait 通知（尽力而为：订阅端可能早已超时离开）
	notification := &redis.RunNotification{
		RunID:     run.RunID,
		Status:    string(run.Status),
		Partial:   run.Partial,
		Timestamp: time.Now().Unix(),
	}
	if run.Report != nil {
		notification.Rating = run.Report.Rating
		notification.Score = run.Report.HistogramSimilarity
	}
	if err := s.pubsub.PublishRunComplete(ctx, notification); err != nil {
		s.log.Warnf(ctx, "[UICheckService] Publish run notification failed: %v", err)
	}

	return run, nil
}
