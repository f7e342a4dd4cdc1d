package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/internal/server/services/svcallback"
	"github.com/s2265681/Project-Auto-Testing/pkg/lmstfy"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// CallbackConsumer 回调消费者
// 职责：
// 1. 从 lmstfy 队列消费回调消息
// 2. 解析消息并调用 CallbackService 处理
// 3. 确认消息（ACK）
type CallbackConsumer struct {
	lmstfyClient    *lmstfy.Client
	callbackService *svcallback.CallbackService
	queueName       string
	logger          logger.Logger

	// 消费配置
	timeout      time.Duration // 拉取消息超时
	ttr          time.Duration // Time-To-Run
	pollInterval time.Duration
}

// Config 消费者配置
type Config struct {
	QueueName    string        // 队列名称
	Timeout      time.Duration // 拉取消息超时
	TTR          time.Duration // Time-To-Run
	PollInterval time.Duration // 出错后的轮询间隔
}

// NewCallbackConsumer 创建回调消费者实例
func NewCallbackConsumer(
	lmstfyClient *lmstfy.Client,
	callbackService *svcallback.CallbackService,
	config *Config,
	log logger.Logger,
) *CallbackConsumer {
	return &CallbackConsumer{
		lmstfyClient:    lmstfyClient,
		callbackService: callbackService,
		queueName:       config.QueueName,
		timeout:         config.Timeout,
		ttr:             config.TTR,
		pollInterval:    config.PollInterval,
		logger:          log,
	}
}

// Start 启动消费循环
func (c *CallbackConsumer) Start(ctx context.Context) error {
	c.logger.Infof(ctx, "[CallbackConsumer] Started: queue=%s, timeout=%v, ttr=%v",
		c.queueName, c.timeout, c.ttr)

	for {
		select {
		case <-ctx.Done():
			c.logger.Infof(ctx, "[CallbackConsumer] Stopped")
			return ctx.Err()
		default:
			if err := c.consumeOne(ctx); err != nil {
				c.logger.Errorf(ctx, "[CallbackConsumer] Consume failed: %v", err)
				time.Sleep(c.pollInterval)
			}
		}
	}
}

// consumeOne 消费一条消息
func (c *CallbackConsumer) consumeOne(ctx context.Context) error {
	// 1. 从队列拉取消息
	msg, err := c.lmstfyClient.Consume(c.queueName, c.timeout, c.ttr)
	if err != nil {
		return fmt.Errorf("consume message failed: %w", err)
	}

	if msg == nil {
		// 没有消息，继续等待
		return nil
	}

	c.logger.Infof(ctx, "[CallbackConsumer] Received callback: job_id=%s", msg.ID)

	// 2. 解析回调消息
	var callback model.RunCallback
	if err := json.Unmarshal(msg.Data, &callback); err != nil {
		c.logger.Errorf(ctx, "[CallbackConsumer] Parse failed: job_id=%s, error=%v", msg.ID, err)
		// 解析失败，直接 ACK（避免死循环）
		_ = c.lmstfyClient.Ack(c.queueName, msg.ID)
		return err
	}

	// 3. 处理回调
	if err := c.callbackService.HandleCallback(ctx, &callback); err != nil {
		c.logger.Errorf(ctx, "[CallbackConsumer] Handle failed: job_id=%s, run_id=%s, error=%v",
			msg.ID, callback.RunID, err)
		// 处理失败，不 ACK（让 lmstfy TTR 机制重试）
		return err
	}

	// 4. 确认消息
	if err := c.lmstfyClient.Ack(c.queueName, msg.ID); err != nil {
		c.logger.Errorf(ctx, "[CallbackConsumer] Ack failed: job_id=%s, error=%v", msg.ID, err)
		return err
	}

	c.logger.Infof(ctx, "[CallbackConsumer] Callback processed: run_id=%s, status=%s",
		callback.RunID, callback.Status)
	return nil
}
