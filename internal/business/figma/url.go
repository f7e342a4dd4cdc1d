package figma

import (
	"net/url"
	"strings"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// ParseDesignURL 解析设计稿 URL 为结构化引用
// 支持 /file/{key}/ 与 /design/{key}/ 两种路径形式；
// node id 从 node-id / node_id / nodeId 查询参数中取（URL 解码后）。
// node id 可为空，导出阶段会降级到首页首节点
func ParseDesignURL(raw string) (*model.DesignReference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errorutil.Validation("design url is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errorutil.Validation("invalid design url: %q", raw).WithCause(err)
	}

	fileKey := extractFileKey(u.Path)
	if fileKey == "" {
		return nil, errorutil.Validation("design url missing file key: %q", raw)
	}

	return &model.DesignReference{
		FileKey: fileKey,
		NodeID:  extractNodeID(u.Query()),
		RawURL:  raw,
	}, nil
}

// extractFileKey 从路径中提取文件 key
// 合法 key 至少 10 个字符，过短视为未命中
func extractFileKey(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if part != "file" && part != "design" {
			continue
		}
		if i+1 < len(parts) && len(parts[i+1]) >= 10 {
			return parts[i+1]
		}
	}
	return ""
}

// extractNodeID 从查询参数中提取 node id
func extractNodeID(query url.Values) string {
	for _, key := range []string{"node-id", "node_id", "nodeId"} {
		if v := query.Get(key); v != "" {
			if decoded, err := url.QueryUnescape(v); err == nil {
				return decoded
			}
			return v
		}
	}
	return ""
}

// CanonicalNodeID URL 形式（1-2）转 API 形式（1:2）
func CanonicalNodeID(nodeID string) string {
	return strings.ReplaceAll(nodeID, "-", ":")
}

// URLNodeID API 形式（1:2）转 URL 形式（1-2）
func URLNodeID(nodeID string) string {
	return strings.ReplaceAll(nodeID, ":", "-")
}
