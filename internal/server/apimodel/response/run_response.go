package response

import (
	"encoding/json"
	"time"

	"github.com/s2265681/Project-Auto-Testing/internal/entity"
)

// RunResponse 运行详情响应
type RunResponse struct {
	RunID             string          `json:"run_id"`
	SourceDocumentRef string          `json:"source_document_ref,omitempty"`
	DesignRef         string          `json:"design_ref,omitempty"`
	Target            string          `json:"target"`
	Device            string          `json:"device"`
	Scope             string          `json:"scope"`
	Status            string          `json:"status"`
	Partial           bool            `json:"partial"`
	StageResults      json.RawMessage `json:"stage_results,omitempty"`
	Report            json.RawMessage `json:"report,omitempty"`
	Error             string          `json:"error,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	StartedAt         *time.Time      `json:"started_at,omitempty"`
	FinishedAt        *time.Time      `json:"finished_at,omitempty"`
}

// FromRunEntity 实体转响应
func FromRunEntity(run *entity.WorkflowRun) *RunResponse {
	return &RunResponse{
		RunID:             run.ID,
		SourceDocumentRef: run.SourceDocumentRef,
		DesignRef:         run.DesignRef,
		Target:            run.Target,
		Device:            run.Device,
		Scope:             run.Scope,
		Status:            run.Status,
		Partial:           run.Partial,
		StageResults:      json.RawMessage(run.StageResults),
		Report:            json.RawMessage(run.Report),
		Error:             run.ErrorMessage,
		CreatedAt:         run.CreatedAt,
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
	}
}
