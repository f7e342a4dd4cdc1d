package run

import (
	"github.com/gin-gonic/gin"

	"github.com/s2265681/Project-Auto-Testing/internal/server/apimodel/response"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/ginx"
)

// Get 获取运行详情接口
// GET /api/v1/runs/:id
// 创建运行返回 code=3001 时，通过此接口轮询结果
func (h *RunHandler) Get(c *gin.Context) {
	runID := c.Param("id")
	if runID == "" {
		ginx.BadRequest(c, "run_id required")
		return
	}

	run, err := h.runService.GetRun(c.Request.Context(), runID)
	if err != nil {
		if errorutil.IsKind(err, errorutil.KindNotFound) {
			ginx.NotFound(c, "run not found")
			return
		}
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, response.FromRunEntity(run))
}
