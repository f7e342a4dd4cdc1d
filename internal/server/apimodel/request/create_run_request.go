package request

import (
	"github.com/s2265681/Project-Auto-Testing/internal/model"
)

// CreateRunRequest 创建运行请求
type CreateRunRequest struct {
	SourceDocumentRef string      `json:"source_document_ref" binding:"required_without=Target"`
	DesignRef         string      `json:"design_ref"`
	Target            string      `json:"target" binding:"required_without=SourceDocumentRef"`
	DeviceFlag        string      `json:"device_flag"`
	Scope             string      `json:"scope"`
	RunMetadata       RunMetadata `json:"run_metadata"`
}

// RunMetadata 协作方回写定位信息（原样透传）
type RunMetadata struct {
	AppToken string `json:"appToken"`
	TableID  string `json:"tableId"`
	RecordID string `json:"recordId"`
}

// ToRunRequest 转换为内部请求模型
func (r *CreateRunRequest) ToRunRequest() model.RunRequest {
	return model.RunRequest{
		SourceDocumentRef: r.SourceDocumentRef,
		DesignRef:         r.DesignRef,
		Target:            r.Target,
		DeviceFlag:        r.DeviceFlag,
		Scope:             r.Scope,
		RunMetadata: model.RunMetadata{
			AppToken: r.RunMetadata.AppToken,
			TableID:  r.RunMetadata.TableID,
			RecordID: r.RunMetadata.RecordID,
		},
	}
}
