package mdrun

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	infraredis "github.com/s2265681/Project-Auto-Testing/pkg/infra/redis"
	"github.com/s2265681/Project-Auto-Testing/pkg/lmstfy"
)

// RunModule 运行分发模块
// 职责：
// 1. 构造标准化 Job 消息并投递到运行队列
// 2. Smart Wait：订阅结果频道等待运行完成通知
type RunModule struct {
	lmstfyClient *lmstfy.Client
	pubsub       *infraredis.PubSub
	queueName    string
}

// NewRunModule 创建运行分发模块实例
func NewRunModule(lmstfyClient *lmstfy.Client, pubsub *infraredis.PubSub, queueName string) *RunModule {
	return &RunModule{
		lmstfyClient: lmstfyClient,
		pubsub:       pubsub,
		queueName:    queueName,
	}
}

// PublishRunJob 发布运行任务到队列
// 消息格式与 worker 侧的标准化 Job 结构对齐
func (m *RunModule) PublishRunJob(ctx context.Context, runID string, req model.RunRequest) error {
	job := model.UICheckJob{
		Payload: model.UICheckPayload{
			Data: model.UICheckData{
				RequestID:  uuid.New().String(), // 生成请求 ID 用于全链路追踪
				OrgID:      "0",
				ActionType: model.ActionTypeUICheck,
				ID:         runID,
				Data:       req,
			},
		},
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal run job failed: %w", err)
	}

	// ttl=0 永不过期，delay=0 立即可用
	return m.lmstfyClient.Publish(m.queueName, jobJSON, 0, 0)
}

// WaitForRunResult 等待运行结果（Smart Wait）
func (m *RunModule) WaitForRunResult(ctx context.Context, runID string, timeout time.Duration) (*infraredis.RunNotification, error) {
	payload, err := m.pubsub.Subscribe(ctx, infraredis.RunChannel(runID), timeout)
	if err != nil {
		return nil, err
	}

	var notification infraredis.RunNotification
	if err := json.Unmarshal([]byte(payload), &notification); err != nil {
		return nil, fmt.Errorf("unmarshal run notification failed: %w", err)
	}

	return &notification, nil
}
