package cases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// Generator 测试用例生成协作方客户端
// 生成质量不在本系统范围内，这里只约定请求/响应契约
type Generator struct {
	endpoint  string
	apiKey    string
	caseCount int
	httpCli   *http.Client
	log       logger.Logger
}

// NewGenerator 创建生成器客户端
func NewGenerator(cfg config.CasesConfig, log logger.Logger) *Generator {
	return &Generator{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		caseCount: cfg.CaseCount,
		httpCli:   &http.Client{Timeout: cfg.Timeout},
		log:       log,
	}
}

type generateRequest struct {
	PRDContent string `json:"prd_content"`
	CaseCount  int    `json:"case_count"`
}

type generateResponse struct {
	Cases string `json:"cases"`
	Error string `json:"error,omitempty"`
}

// Generate 由 PRD 文本生成测试用例文本
// 生成服务不可用时返回失败说明文本而非硬失败：
// 用例文本是报告的一部分，缺失不应中断视觉比对
func (g *Generator) Generate(ctx context.Context, prdContent string) string {
	text, err := g.generate(ctx, prdContent)
	if err != nil {
		g.log.Warnf(ctx, "[Cases] Generation failed, recording failure note: %v", err)
		return fmt.Sprintf("测试用例生成失败: %v", err)
	}
	return text
}

func (g *Generator) generate(ctx context.Context, prdContent string) (string, error) {
	if g.endpoint == "" {
		return "", errorutil.Validation("case generator endpoint is not configured")
	}
	if prdContent == "" {
		return "", errorutil.Validation("prd content is empty")
	}

	payload, err := json.Marshal(generateRequest{
		PRDContent: prdContent,
		CaseCount:  g.caseCount,
	})
	if err != nil {
		return "", errorutil.Internal("marshal generate request failed").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", errorutil.Internal("build generate request failed").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpCli.Do(req)
	if err != nil {
		return "", errorutil.Transient("generate request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errorutil.Transient("generate service status %d", resp.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errorutil.Transient("decode generate response failed").WithCause(err)
	}
	if body.Error != "" {
		return "", errorutil.Internal("generate service error: %s", body.Error)
	}
	if body.Cases == "" {
		return "", errorutil.Internal("generate service returned empty cases")
	}

	return body.Cases, nil
}
