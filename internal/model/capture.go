package model

import "time"

// CaptureRequest 截图请求（构造后不可变）
type CaptureRequest struct {
	URL      string        `json:"url"`
	Selector SelectorSpec  `json:"selector"`
	Device   DeviceProfile `json:"device"`
	MaxWait  time.Duration `json:"max_wait"`
}

// BoundingBox 元素在页面中的包围盒（CSS 像素）
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CaptureResult 截图结果
type CaptureResult struct {
	ImagePath  string        `json:"image_path"` // 临时产物路径，消费后释放
	Box        BoundingBox   `json:"box"`
	Viewport   DeviceProfile `json:"viewport"`
	CapturedAt time.Time     `json:"captured_at"`
	FullPage   bool          `json:"full_page"` // 未指定选择器时整页截图
}
