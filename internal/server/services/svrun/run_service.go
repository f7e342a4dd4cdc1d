package svrun

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/s2265681/Project-Auto-Testing/internal/entity"
	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/internal/server/modules/mdrun"
	"github.com/s2265681/Project-Auto-Testing/pkg/infra/mysql"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// RunService 运行服务，负责运行创建与查询的业务编排
type RunService struct {
	runDAO    *mysql.RunDAO
	runModule *mdrun.RunModule
	log       logger.Logger
}

// NewRunService 创建运行服务实例
func NewRunService(runDAO *mysql.RunDAO, runModule *mdrun.RunModule, log logger.Logger) *RunService {
	return &RunService{
		runDAO:    runDAO,
		runModule: runModule,
		log:       log,
	}
}

// CreateRun 创建运行（完整业务流程）
// 1. 校验请求参数
// 2. 创建运行记录并落库（PENDING）
// 3. 发布到运行队列
// 4. Smart Wait（等待运行结果）
func (s *RunService) CreateRun(ctx context.Context, req model.RunRequest, waitSeconds int) (*entity.WorkflowRun, error) {
	runID := uuid.New().String()

	// 校验请求（解析 target/device/scope，范围相关必填项）
	spec, err := req.ToRunSpec(runID)
	if err != nil {
		return nil, err
	}

	metaJSON, err := json.Marshal(req.RunMetadata)
	if err != nil {
		return nil, fmt.Errorf("marshal run metadata failed: %w", err)
	}

	run := &entity.WorkflowRun{
		ID:                runID,
		SourceDocumentRef: req.SourceDocumentRef,
		DesignRef:         req.DesignRef,
		Target:            req.Target,
		Device:            spec.Device.Name,
		Scope:             string(spec.Scope),
		RunMetadata:       metaJSON,
		Status:            entity.RunStatusPending,
	}

	if err := s.runDAO.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("save run failed: %w", err)
	}

	// 发布失败只记录日志，不影响运行记录创建成功
	if err := s.runModule.PublishRunJob(ctx, runID, req); err != nil {
		s.log.Warnf(ctx, "[RunService] publish run job failed: run_id=%s, error=%v", runID, err)
		return run, nil
	}

	// Smart Wait（等待运行结果）
	if waitSeconds > 0 {
		timeout := time.Duration(waitSeconds) * time.Second
		notification, err := s.runModule.WaitForRunResult(ctx, runID, timeout)
		if err != nil {
			// 超时或订阅失败，只记录日志，调用方轮询兜底
			s.log.Warnf(ctx, "[RunService] wait for run result failed: run_id=%s, error=%v", runID, err)
			return run, nil
		}

		if notification != nil {
			// 运行记录在 worker 侧已持久化终态，重新读取收敛后的记录
			converged, err := s.runDAO.GetByID(ctx, runID)
			if err != nil {
				s.log.Warnf(ctx, "[RunService] reload converged run failed: run_id=%s, error=%v", runID, err)
				run.Status = notification.Status
				run.Partial = notification.Partial
				return run, nil
			}
			return converged, nil
		}
	}

	return run, nil
}

// GetRun 查询运行记录
func (s *RunService) GetRun(ctx context.Context, runID string) (*entity.WorkflowRun, error) {
	return s.runDAO.GetByID(ctx, runID)
}
