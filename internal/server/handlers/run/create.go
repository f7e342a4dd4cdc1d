package run

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/s2265681/Project-Auto-Testing/internal/entity"
	"github.com/s2265681/Project-Auto-Testing/internal/server/apimodel/request"
	"github.com/s2265681/Project-Auto-Testing/internal/server/apimodel/response"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/ginx"
)

// Create 创建运行接口
// POST /api/v1/runs?wait=30
func (h *RunHandler) Create(c *gin.Context) {
	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			waitSeconds = w
		}
	}

	var req request.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	run, err := h.runService.CreateRun(c.Request.Context(), req.ToRunRequest(), waitSeconds)
	if err != nil {
		if errorutil.IsKind(err, errorutil.KindValidation) {
			ginx.BadRequest(c, err.Error())
			return
		}
		ginx.InternalError(c, err.Error())
		return
	}

	// 仍在处理中返回 3001，调用方轮询
	if run.Status == entity.RunStatusPending || run.Status == entity.RunStatusRunning {
		pollURL := fmt.Sprintf("/api/v1/runs/%s", run.ID)
		ginx.Processing(c, run.ID, pollURL)
		return
	}

	ginx.Success(c, response.FromRunEntity(run))
}
