package run

import "github.com/s2265681/Project-Auto-Testing/internal/server/services/svrun"

// RunHandler 运行 HTTP 处理器
type RunHandler struct {
	runService *svrun.RunService
}

// NewRunHandler 创建运行处理器实例
func NewRunHandler(runService *svrun.RunService) *RunHandler {
	return &RunHandler{
		runService: runService,
	}
}
