package svcallback

import (
	"context"
	"fmt"

	"github.com/s2265681/Project-Auto-Testing/internal/business/bitable"
	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// CallbackService 回调处理服务
// 把 worker 的运行结果回写到协作方多维表格
type CallbackService struct {
	bitableClient *bitable.Client
	log           logger.Logger
}

// NewCallbackService 创建回调服务实例
func NewCallbackService(bitableClient *bitable.Client, log logger.Logger) *CallbackService {
	return &CallbackService{
		bitableClient: bitableClient,
		log:           log,
	}
}

// HandleCallback 处理一条运行回调
// 元数据不完整说明调用方不需要回写，直接跳过
func (s *CallbackService) HandleCallback(ctx context.Context, callback *model.RunCallback) error {
	meta := callback.RunMetadata
	if meta.AppToken == "" || meta.TableID == "" || meta.RecordID == "" {
		s.log.Infof(ctx, "[CallbackService] run metadata incomplete, skip bitable writeback: run_id=%s", callback.RunID)
		return nil
	}

	if callback.Run == nil {
		return fmt.Errorf("callback missing run detail: run_id=%s", callback.RunID)
	}

	fields := map[string]string{
		bitable.FieldSimReport:  bitable.BuildReportMarkdown(callback.Run),
		bitable.FieldExecResult: bitable.ExecResultText(callback.Run),
	}
	if callback.Run.CaseText != "" {
		fields[bitable.FieldCaseDoc] = callback.Run.CaseText
	}

	if err := s.bitableClient.UpdateRecord(ctx, meta, fields); err != nil {
		return fmt.Errorf("update bitable record failed: %w", err)
	}

	s.log.Infof(ctx, "[CallbackService] bitable record updated: run_id=%s, record_id=%s", callback.RunID, meta.RecordID)
	return nil
}
