package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PubSub Redis 发布/订阅客户端
// 用于 Smart Wait：worker 完成后推送结果，apiserver 订阅等待
type PubSub struct {
	client *redis.Client
}

// NewPubSub 创建 PubSub 实例，支持密码认证
func NewPubSub(addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PubSub{client: client}, nil
}

// RunNotification 运行完成通知消息
type RunNotification struct {
	RunID     string  `json:"run_id"`
	Status    string  `json:"status"` // COMPLETED/FAILED/CANCELLED
	Partial   bool    `json:"partial"`
	Rating    string  `json:"rating,omitempty"`
	Timestamp int64   `json:"timestamp"`
	Score     float64 `json:"score,omitempty"`
}

// RunChannel 通知频道命名规则
func RunChannel(runID string) string {
	return fmt.Sprintf("uicheck:result:%s", runID)
}

// PublishRunComplete 发布运行完成通知
func (p *PubSub) PublishRunComplete(ctx context.Context, notification *RunNotification) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.Publish(ctx, RunChannel(notification.RunID), msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Subscribe 订阅指定 channel 并等待一条消息，支持超时控制
func (p *PubSub) Subscribe(ctx context.Context, channel string, timeout time.Duration) (string, error) {
	sub := p.client.Subscribe(ctx, channel)
	defer sub.Close()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case msg := <-sub.Channel():
		return msg.Payload, nil
	case <-timeoutCtx.Done():
		return "", timeoutCtx.Err()
	}
}

// Close 关闭 Redis 连接
func (p *PubSub) Close() error {
	return p.client.Close()
}
