package model

// ActionTypeUICheck 视觉比对任务的动作类型
const ActionTypeUICheck = "ui_check"

// UICheckJob 视觉比对任务消息（apiserver → worker）
type UICheckJob struct {
	Payload UICheckPayload `json:"payload"`
}

// UICheckPayload Job 负载
type UICheckPayload struct {
	Data UICheckData `json:"data"`
}

// UICheckData Job 数据层
type UICheckData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	OrgID      string `json:"org_id"`      // 组织 ID（MVP 固定为 "0"）
	ActionType string `json:"action_type"` // 动作类型，固定值 "ui_check"
	ID         string `json:"id"`          // 运行 ID

	// 业务数据（worker 执行所需的全部数据，避免回查 DB）
	Data RunRequest `json:"data"`
}

// RunCallback 运行完成回调消息（worker → apiserver callback consumer）
type RunCallback struct {
	RequestID   string       `json:"request_id"`
	RunID       string       `json:"run_id"`
	Status      string       `json:"status"` // COMPLETED/FAILED/CANCELLED
	Partial     bool         `json:"partial"`
	Run         *WorkflowRun `json:"run,omitempty"`
	RunMetadata RunMetadata  `json:"run_metadata"`
	Error       string       `json:"error,omitempty"`
	ProcessedAt int64        `json:"processed_at"` // Unix timestamp
}
