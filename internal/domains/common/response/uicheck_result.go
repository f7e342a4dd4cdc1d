package response

import (
	"github.com/s2265681/Project-Auto-Testing/internal/model"
)

// UICheckResult UI 核对任务处理结果
type UICheckResult struct {
	ID     string             `json:"id"`     // 运行 ID
	Status string             `json:"status"` // 最终状态
	Run    *model.WorkflowRun `json:"run"`    // 运行详情
}

// ResultID 返回运行 ID
func (r *UICheckResult) ResultID() string {
	return r.ID
}
