package entity

import (
	"time"

	"gorm.io/datatypes"
)

// WorkflowRun 工作流运行记录实体
type WorkflowRun struct {
	// 基础字段
	ID string `gorm:"column:id;primaryKey;type:varchar(64)"`

	// 请求快照
	SourceDocumentRef string         `gorm:"column:source_document_ref;type:varchar(512)"`
	DesignRef         string         `gorm:"column:design_ref;type:varchar(1024)"`
	Target            string         `gorm:"column:target;type:varchar(1024);not null"`
	Device            string         `gorm:"column:device;type:varchar(16);not null"`
	Scope             string         `gorm:"column:scope;type:varchar(16);not null;index:idx_scope_status"`
	RunMetadata       datatypes.JSON `gorm:"column:run_metadata;type:json"`

	// 运行状态与结果
	Status       string         `gorm:"column:status;type:varchar(24);not null;default:'PENDING';index:idx_scope_status"`
	Partial      bool           `gorm:"column:partial;not null;default:0"`
	StageResults datatypes.JSON `gorm:"column:stage_results;type:json"`
	Report       datatypes.JSON `gorm:"column:report;type:json"`
	ErrorMessage string         `gorm:"column:error_message;type:varchar(2048)"`

	// 时间戳
	CreatedAt  time.Time  `gorm:"column:created_at;not null;index:idx_created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null"`
	StartedAt  *time.Time `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

// TableName 指定表名
func (WorkflowRun) TableName() string {
	return "workflow_runs"
}

// 运行状态常量
const (
	RunStatusPending   = "PENDING"
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
	RunStatusCancelled = "CANCELLED"
)
