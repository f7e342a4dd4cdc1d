package model

import (
	"strings"

	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// RunRequest Orchestrator 消费的请求（传输无关 JSON）
type RunRequest struct {
	SourceDocumentRef string      `json:"source_document_ref"`
	DesignRef         string      `json:"design_ref"`
	Target            string      `json:"target"`
	DeviceFlag        string      `json:"device_flag"`
	Scope             string      `json:"scope"`
	RunMetadata       RunMetadata `json:"run_metadata"`
}

// ToRunSpec 校验请求并构造 RunSpec
// 下游组件只见强类型结构，不再接触原始载荷
func (r *RunRequest) ToRunSpec(runID string) (*RunSpec, error) {
	targetURL, selector, err := ParseTarget(r.Target)
	if err != nil {
		return nil, err
	}

	device, err := ResolveDeviceFlag(r.DeviceFlag)
	if err != nil {
		return nil, err
	}

	scope, err := ResolveScope(r.Scope)
	if err != nil {
		return nil, err
	}

	if scope.VisualStages() && targetURL == "" {
		return nil, errorutil.Validation("target url is required for visual scope")
	}
	if scope.FunctionalStages() && r.SourceDocumentRef == "" {
		return nil, errorutil.Validation("source_document_ref is required for functional scope")
	}

	return &RunSpec{
		RunID:             runID,
		SourceDocumentRef: r.SourceDocumentRef,
		DesignRef:         r.DesignRef,
		TargetURL:         targetURL,
		Selector:          selector,
		Device:            device,
		Scope:             scope,
		RunMetadata:       r.RunMetadata,
	}, nil
}

// ParseTarget 解析 target 字段
// 支持两种形式：纯 URL，或 "@URL:XPath" 组合形式。
// 组合形式在 URL scheme（"://"）之后的第一个 ':' 处切分，
// 左侧为导航 URL，右侧为 XPath 选择器；缺少 ':' 视为校验错误
func ParseTarget(target string) (string, SelectorSpec, error) {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "@") {
		return target, SelectorSpec{}, nil
	}

	combined := target[1:]
	schemeEnd := strings.Index(combined, "://")
	var sep int
	if schemeEnd >= 0 {
		rest := combined[schemeEnd+3:]
		idx := strings.Index(rest, ":")
		if idx < 0 {
			return "", SelectorSpec{}, errorutil.Validation("malformed combined target, missing ':' after url: %q", target)
		}
		sep = schemeEnd + 3 + idx
	} else {
		idx := strings.Index(combined, ":")
		if idx < 0 {
			return "", SelectorSpec{}, errorutil.Validation("malformed combined target, missing ':' after url: %q", target)
		}
		sep = idx
	}

	url := combined[:sep]
	xpath := combined[sep+1:]
	if url == "" || xpath == "" {
		return "", SelectorSpec{}, errorutil.Validation("malformed combined target: %q", target)
	}

	return url, XPathSelector(xpath), nil
}

// ResolveScope 解析运行范围
// 兼容中文测试类型：功能测试/UI测试/完整测试
func ResolveScope(scope string) (Scope, error) {
	switch strings.TrimSpace(scope) {
	case "functional", "功能测试":
		return ScopeFunctional, nil
	case "visual", "UI测试":
		return ScopeVisual, nil
	case "both", "完整测试", "":
		return ScopeBoth, nil
	}
	return "", errorutil.Validation("unrecognized scope: %q", scope)
}
