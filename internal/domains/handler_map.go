package domains

import (
	"github.com/s2265681/Project-Auto-Testing/internal/domains/common"
	"github.com/s2265681/Project-Auto-Testing/internal/domains/handlers/uicheck"
	"github.com/s2265681/Project-Auto-Testing/internal/model"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	model.ActionTypeUICheck: uicheck.NewUICheckHandler,

	// 未来扩展示例：
	// "accessibility_check": accessibility.NewAccessibilityHandler,
}
