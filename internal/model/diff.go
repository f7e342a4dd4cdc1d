package model

// 综合评级常量（以直方图相似度为准）
const (
	RatingExcellent = "excellent" // >= 0.90
	RatingGood      = "good"      // >= 0.80
	RatingFair      = "fair"      // >= 0.70
	RatingPoor      = "poor"      // >= 0.60
	RatingBad       = "bad"       // <  0.60
)

// RatingOf 按直方图相似度分值映射评级
func RatingOf(score float64) string {
	switch {
	case score >= 0.90:
		return RatingExcellent
	case score >= 0.80:
		return RatingGood
	case score >= 0.70:
		return RatingFair
	case score >= 0.60:
		return RatingPoor
	default:
		return RatingBad
	}
}

// ScaleInfo 归一化元数据（记录 letterbox 填充是否影响比对）
type ScaleInfo struct {
	CanvasWidth  int     `json:"canvas_width"`
	CanvasHeight int     `json:"canvas_height"`
	PadRightA    int     `json:"pad_right_a"`
	PadBottomA   int     `json:"pad_bottom_a"`
	PadRightB    int     `json:"pad_right_b"`
	PadBottomB   int     `json:"pad_bottom_b"`
	PadFractionA float64 `json:"pad_fraction_a"` // A 画布中填充像素占比
	PadFractionB float64 `json:"pad_fraction_b"`
	Padded       bool    `json:"padded"`
}

// ColorAnalysis 平均颜色差异分析（RGB 通道）
type ColorAnalysis struct {
	MeanColorA   [3]float64 `json:"mean_color_a"`
	MeanColorB   [3]float64 `json:"mean_color_b"`
	ColorDiff    [3]float64 `json:"color_diff"`
	MaxColorDiff float64    `json:"max_color_diff"`
}

// DiffRegion 差异区域包围盒（画布坐标）
type DiffRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Area   int `json:"area"`
}

// DiffReport 比对报告（产出后不可变）
// 五项指标相互独立，评级只由直方图相似度推导，其余指标仍全部保留
type DiffReport struct {
	HistogramSimilarity float64       `json:"histogram_similarity"` // [0,1]
	SSIM                float64       `json:"ssim"`                 // [-1,1]
	MSE                 float64       `json:"mse"`                  // [0,1]，越低越相似
	HashDistance        int           `json:"hash_distance"`        // 感知哈希汉明距离
	RegionCount         int           `json:"region_count"`
	Regions             []DiffRegion  `json:"regions,omitempty"`
	DiffPercentage      float64       `json:"diff_percentage"` // 差异像素占比（0-100）
	ColorAnalysis       ColorAnalysis `json:"color_analysis"`
	Recommendations     []string      `json:"recommendations,omitempty"`
	Rating              string        `json:"rating"`
	DiffImagePath       string        `json:"diff_image_path,omitempty"`
	Scale               ScaleInfo     `json:"scale"`
}
