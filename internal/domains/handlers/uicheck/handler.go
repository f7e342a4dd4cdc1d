package uicheck

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/s2265681/Project-Auto-Testing/internal/business"
	"github.com/s2265681/Project-Auto-Testing/internal/domains/common"
	"github.com/s2265681/Project-Auto-Testing/internal/domains/common/job"
	"github.com/s2265681/Project-Auto-Testing/internal/domains/common/response"
	"github.com/s2265681/Project-Auto-Testing/internal/model"
)

// UICheckHandler UI 核对 Handler
type UICheckHandler struct {
	ctx  context.Context
	meta *job.Meta
	spec *model.RunSpec
}

// NewUICheckHandler 创建 UI 核对 Handler
// 解析标准化 Job 消息并校验运行参数
func NewUICheckHandler(ctx context.Context, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	// 解析 payload（业务数据）
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	var req model.RunRequest
	if err := json.Unmarshal(payloadBytes, &req); err != nil {
		return nil, fmt.Errorf("unmarshal run request failed: %w", err)
	}

	if meta.ID == "" {
		return nil, fmt.Errorf("run id is required")
	}

	spec, err := req.ToRunSpec(meta.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid run request: %w", err)
	}

	return &UICheckHandler{
		ctx:  ctx,
		meta: meta,
		spec: spec,
	}, nil
}

// GetProcess 处理 UI 核对请求
func (h *UICheckHandler) GetProcess() *response.Response {
	run, err := h.process()

	result := &response.UICheckResult{
		ID: h.meta.ID,
	}
	if run != nil {
		result.Status = string(run.Status)
		result.Run = run
	}

	return response.WrapResponse(result, err)
}

// process 业务处理逻辑
func (h *UICheckHandler) process() (*model.WorkflowRun, error) {
	// 从 Context 获取 UICheckService
	svc, ok := h.ctx.Value("uicheck_service").(*business.UICheckService)
	if !ok || svc == nil {
		return nil, fmt.Errorf("UICheckService not found in context")
	}

	return svc.ExecuteRun(h.ctx, h.meta.RequestID, h.spec)
}
