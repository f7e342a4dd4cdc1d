package business

import (
	"context"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/infra/mysql"
)

// RunPersister 基于 MySQL 的运行记录持久化
type RunPersister struct {
	dao *mysql.RunDAO
}

// NewRunPersister 创建持久化实例
func NewRunPersister(dao *mysql.RunDAO) *RunPersister {
	return &RunPersister{dao: dao}
}

// PersistRun 持久化运行终态
// 数据库错误标记为可重试，交由持久化阶段的退避策略处理
func (p *RunPersister) PersistRun(ctx context.Context, run *model.WorkflowRun) error {
	err := p.dao.UpdateResult(ctx, run.RunID, string(run.Status), run.Partial, run.Stages, run.Report, run.Error)
	if err == nil {
		return nil
	}
	if errorutil.IsKind(err, errorutil.KindNotFound) {
		return err
	}
	return errorutil.Transient("persist run failed: %v", err)
}
