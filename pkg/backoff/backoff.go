package backoff

import (
	"context"
	"math/rand"
	"time"

	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// Policy 退避策略（每个外部依赖单独配置一份）
// 替代散落在各调用点的 sleep-and-retry
type Policy struct {
	MaxAttempts int           // 最大尝试次数（含首次）
	BaseDelay   time.Duration // 首次重试延迟
	MaxDelay    time.Duration // 延迟上限
	Jitter      float64       // 抖动比例 [0,1]
}

// Default 默认策略：3 次尝试，500ms 起步，指数增长
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Jitter:      0.2,
	}
}

// Delay 计算第 attempt 次失败后的重试延迟（attempt 从 1 开始）
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}

	if p.Jitter > 0 {
		delta := float64(d) * p.Jitter
		d = time.Duration(float64(d) - delta + rand.Float64()*2*delta)
	}

	return d
}

// OnRetry 重试回调（用于记录 stage 的 retried 状态）
type OnRetry func(attempt int, err error, delay time.Duration)

// Retry 按策略执行 fn
// 仅对 errorutil 判定可重试的错误重试；返回总尝试次数和最后一次错误
func Retry(ctx context.Context, p Policy, fn func(ctx context.Context) error, onRetry OnRetry) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}

		if !errorutil.IsRetryable(lastErr) || attempt == maxAttempts {
			return attempt, lastErr
		}

		delay := p.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt, lastErr, delay)
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(delay):
		}
	}

	return maxAttempts, lastErr
}
