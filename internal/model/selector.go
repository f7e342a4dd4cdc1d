package model

// SelectorKind 选择器类型
type SelectorKind string

const (
	// SelectorClassList 类名列表（按文档顺序命中，支持显式 index）
	SelectorClassList SelectorKind = "class_list"
	// SelectorCSS 标准 CSS 选择器
	SelectorCSS SelectorKind = "css"
	// SelectorXPath XPath 表达式
	SelectorXPath SelectorKind = "xpath"
)

// SelectorSpec 目标元素选择器（tagged variant，一次只用一种）
type SelectorSpec struct {
	Kind    SelectorKind `json:"kind"`
	Classes []string     `json:"classes,omitempty"` // Kind == class_list
	CSS     string       `json:"css,omitempty"`     // Kind == css
	XPath   string       `json:"xpath,omitempty"`   // Kind == xpath
	Index   int          `json:"index"`             // 多个命中时按文档顺序取第 Index 个
}

// ClassListSelector 构造类名列表选择器
func ClassListSelector(classes []string, index int) SelectorSpec {
	return SelectorSpec{Kind: SelectorClassList, Classes: classes, Index: index}
}

// CSSSelector 构造 CSS 选择器
func CSSSelector(css string) SelectorSpec {
	return SelectorSpec{Kind: SelectorCSS, CSS: css}
}

// XPathSelector 构造 XPath 选择器
func XPathSelector(xpath string) SelectorSpec {
	return SelectorSpec{Kind: SelectorXPath, XPath: xpath}
}

// IsZero 是否未指定选择器（整页截图）
func (s SelectorSpec) IsZero() bool {
	return s.Kind == ""
}
