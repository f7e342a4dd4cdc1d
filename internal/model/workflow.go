package model

import "time"

// Scope 运行范围（请求要执行的阶段子集）
type Scope string

const (
	ScopeFunctional Scope = "functional"
	ScopeVisual     Scope = "visual"
	ScopeBoth       Scope = "both"
)

// Stage 工作流阶段
type Stage string

const (
	StagePending          Stage = "PENDING"
	StageParsingSource    Stage = "PARSING_SOURCE"
	StageGeneratingCases  Stage = "GENERATING_CASES"
	StageCapturingWebsite Stage = "CAPTURING_WEBSITE"
	StageExportingDesign  Stage = "EXPORTING_DESIGN"
	StageComparing        Stage = "COMPARING"
	StagePersisting       Stage = "PERSISTING"
)

// StageStatus 阶段状态
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusRunning   StageStatus = "running"
	StageStatusSucceeded StageStatus = "succeeded"
	StageStatusFailed    StageStatus = "failed"
	StageStatusRetried   StageStatus = "retried"
	StageStatusSkipped   StageStatus = "skipped"
)

// RunStatus 运行整体状态
type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

// RunSpec 一次运行的完整输入（校验后构造，下游不再见原始请求）
type RunSpec struct {
	RunID             string        `json:"run_id"`
	SourceDocumentRef string        `json:"source_document_ref"`
	DesignRef         string        `json:"design_ref"`
	TargetURL         string        `json:"target_url"`
	Selector          SelectorSpec  `json:"selector"`
	Device            DeviceProfile `json:"device"`
	Scope             Scope         `json:"scope"`
	RunMetadata       RunMetadata   `json:"run_metadata"`
}

// RunMetadata 透传给持久化协作方的元数据
type RunMetadata struct {
	AppToken string `json:"appToken"`
	TableID  string `json:"tableId"`
	RecordID string `json:"recordId"`
}

// StageResult 单个阶段的执行结果
type StageResult struct {
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
	Attempts   int         `json:"attempts"`
	Error      string      `json:"error,omitempty"`
	ErrorKind  string      `json:"error_kind,omitempty"`
	Artifacts  []string    `json:"artifacts,omitempty"`
	StartedAt  time.Time   `json:"started_at,omitempty"`
	FinishedAt time.Time   `json:"finished_at,omitempty"`
}

// WorkflowRun 一次运行的完整结果
type WorkflowRun struct {
	RunID      string        `json:"run_id"`
	Scope      Scope         `json:"scope"`
	Status     RunStatus     `json:"status"`
	Partial    bool          `json:"partial"`
	Stages     []StageResult `json:"stages"`
	Report     *DiffReport   `json:"report,omitempty"`
	CaseText   string        `json:"case_text,omitempty"`
	OutputDir  string        `json:"output_dir,omitempty"`
	Missing    []string      `json:"missing,omitempty"` // 缺失产物及原因（partial 时）
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// StageByName 查找指定阶段的结果
func (r *WorkflowRun) StageByName(stage Stage) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Stage == stage {
			return &r.Stages[i]
		}
	}
	return nil
}

// VisualStages 视觉范围包含的阶段
func (s Scope) VisualStages() bool {
	return s == ScopeVisual || s == ScopeBoth
}

// FunctionalStages 功能范围包含的阶段
func (s Scope) FunctionalStages() bool {
	return s == ScopeFunctional || s == ScopeBoth
}

// Valid 范围是否合法
func (s Scope) Valid() bool {
	return s == ScopeFunctional || s == ScopeVisual || s == ScopeBoth
}
