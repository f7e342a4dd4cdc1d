package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/s2265681/Project-Auto-Testing/internal/entity"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// RunDAO 工作流运行记录数据访问对象
type RunDAO struct {
	db *gorm.DB
}

// NewRunDAO 创建 RunDAO 实例
func NewRunDAO(dsn string) (*RunDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &RunDAO{db: db}, nil
}

// NewRunDAOWithDB 复用已有连接（用于测试）
func NewRunDAOWithDB(db *gorm.DB) *RunDAO {
	return &RunDAO{db: db}
}

// Create 创建运行记录
func (dao *RunDAO) Create(ctx context.Context, run *entity.WorkflowRun) error {
	if err := dao.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create workflow run: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取运行记录
func (dao *RunDAO) GetByID(ctx context.Context, runID string) (*entity.WorkflowRun, error) {
	var run entity.WorkflowRun
	result := dao.db.WithContext(ctx).Where("id = ?", runID).First(&run)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errorutil.NotFound("workflow run not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to get workflow run: %w", result.Error)
	}
	return &run, nil
}

// MarkRunning 标记运行开始
func (dao *RunDAO) MarkRunning(ctx context.Context, runID string) error {
	now := time.Now()
	result := dao.db.WithContext(ctx).
		Model(&entity.WorkflowRun{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":     entity.RunStatusRunning,
			"started_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark run running: %w", result.Error)
	}
	return nil
}

// UpdateResult 更新运行的终态结果
// 参数：
//   - runID: 运行 ID
//   - status: 终态（COMPLETED/FAILED/CANCELLED）
//   - partial: 是否部分成功
//   - stageResults: 各阶段结果
//   - report: 比对报告（可为 nil）
//   - errorMsg: 错误消息（失败时）
func (dao *RunDAO) UpdateResult(
	ctx context.Context,
	runID string,
	status string,
	partial bool,
	stageResults interface{},
	report interface{},
	errorMsg string,
) error {
	stagesJSON, err := json.Marshal(stageResults)
	if err != nil {
		return fmt.Errorf("failed to marshal stage results: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        status,
		"partial":       partial,
		"stage_results": stagesJSON,
		"finished_at":   &now,
	}

	if report != nil {
		reportJSON, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		updates["report"] = reportJSON
	}

	if errorMsg != "" {
		updates["error_message"] = errorMsg
	}

	result := dao.db.WithContext(ctx).
		Model(&entity.WorkflowRun{}).
		Where("id = ?", runID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update workflow run: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return errorutil.NotFound("workflow run not found: %s", runID)
	}

	return nil
}

// Close 关闭数据库连接
func (dao *RunDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
