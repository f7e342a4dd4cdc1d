package capture

import (
	"regexp"
	"strings"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// cssSpecialChars CSS 选择器中需要转义的元字符
var cssSpecialChars = regexp.MustCompile(`([\[\](){}*+?.^$|\\])`)

// escapeClass 转义单个类名中的 CSS 元字符
func escapeClass(class string) string {
	return cssSpecialChars.ReplaceAllString(class, `\$1`)
}

// BuildClassSelector 由类名列表构造 CSS 选择器
// 多个类名按 ".cls1.cls2" 形式组合（同一元素需同时携带全部类名）
func BuildClassSelector(classes []string) string {
	var sb strings.Builder
	for _, class := range classes {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		sb.WriteString(".")
		sb.WriteString(escapeClass(class))
	}
	return sb.String()
}

// selectorQuery 将选择器规格转换为 chromedp 查询串
func selectorQuery(sel model.SelectorSpec) (string, error) {
	switch sel.Kind {
	case model.SelectorClassList:
		q := BuildClassSelector(sel.Classes)
		if q == "" {
			return "", errorutil.Validation("class list selector is empty")
		}
		return q, nil
	case model.SelectorCSS:
		if strings.TrimSpace(sel.CSS) == "" {
			return "", errorutil.Validation("css selector is empty")
		}
		return sel.CSS, nil
	case model.SelectorXPath:
		if strings.TrimSpace(sel.XPath) == "" {
			return "", errorutil.Validation("xpath selector is empty")
		}
		return sel.XPath, nil
	}
	return "", errorutil.Validation("unknown selector kind: %q", sel.Kind)
}
