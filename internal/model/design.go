package model

import "time"

// DesignReference 设计稿引用（从设计工具 URL 解析）
type DesignReference struct {
	FileKey string `json:"file_key"`
	NodeID  string `json:"node_id"` // 可为空，导出时降级到首页首节点
	RawURL  string `json:"raw_url"`
}

// 导出方式常量
const (
	ExportMethodDirect   = "direct"   // 直连导出接口
	ExportMethodFallback = "fallback" // 浏览器渲染兜底
)

// DesignAsset 设计稿导出产物
type DesignAsset struct {
	ImagePath  string    `json:"image_path"`
	Method     string    `json:"method"`   // direct / fallback
	Degraded   bool      `json:"degraded"` // 节点引用不明确，降级解析到首页首节点
	NodeID     string    `json:"node_id"`  // 实际导出的节点
	ExportedAt time.Time `json:"exported_at"`
}
