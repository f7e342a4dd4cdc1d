package workflow

import (
	"context"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/backoff"
	"github.com/s2265681/Project-Auto-Testing/pkg/config"
)

// Capturer 网站截图依赖
type Capturer interface {
	Capture(ctx context.Context, req *model.CaptureRequest) (*model.CaptureResult, error)
}

// DesignExporter 设计稿导出依赖
// 直连重试与浏览器兜底在导出器内部完成，Orchestrator 对该阶段只调用一次
type DesignExporter interface {
	Export(ctx context.Context, ref *model.DesignReference) (*model.DesignAsset, error)
}

// Comparer 视觉比对依赖
type Comparer interface {
	CompareFiles(pathA, pathB, diffPath string) (*model.DiffReport, error)
}

// SourceFetcher PRD 文档内容依赖
type SourceFetcher interface {
	FetchContent(ctx context.Context, docRef string) (string, error)
}

// CaseGenerator 测试用例生成依赖
// 约定：生成失败返回失败说明文本，不产生错误
type CaseGenerator interface {
	Generate(ctx context.Context, prdContent string) string
}

// Persister 运行记录持久化依赖
type Persister interface {
	PersistRun(ctx context.Context, run *model.WorkflowRun) error
}

// Policies 各外部依赖的退避策略
type Policies struct {
	Capture backoff.Policy
	Export  backoff.Policy
	Source  backoff.Policy
	Persist backoff.Policy
}

// PoliciesFromConfig 从配置构造策略集
func PoliciesFromConfig(cfg config.RetryConfig) Policies {
	return Policies{
		Capture: policyFrom(cfg.Capture),
		Export:  policyFrom(cfg.Export),
		Source:  policyFrom(cfg.Source),
		Persist: policyFrom(cfg.Persist),
	}
}

func policyFrom(b config.BackoffConfig) backoff.Policy {
	return backoff.Policy{
		MaxAttempts: b.MaxAttempts,
		BaseDelay:   b.BaseDelay,
		MaxDelay:    b.MaxDelay,
		Jitter:      b.Jitter,
	}
}
