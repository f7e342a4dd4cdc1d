package compare

import (
	"image"
	"math"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
)

// MeanColor 全图 RGB 三通道均值
func MeanColor(img *image.NRGBA) [3]float64 {
	bounds := img.Bounds()
	total := float64(bounds.Dx() * bounds.Dy())
	if total == 0 {
		return [3]float64{}
	}

	var sum [3]float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				sum[c] += float64(img.Pix[i+c])
			}
		}
	}

	for c := 0; c < 3; c++ {
		sum[c] /= total
	}
	return sum
}

// AnalyzeColors 平均颜色差异分析
// 逐通道比较两图均值，取绝对差的最大值作为整体颜色偏差
func AnalyzeColors(a, b *image.NRGBA) model.ColorAnalysis {
	meanA := MeanColor(a)
	meanB := MeanColor(b)

	var diff [3]float64
	var maxDiff float64
	for c := 0; c < 3; c++ {
		diff[c] = math.Abs(meanA[c] - meanB[c])
		if diff[c] > maxDiff {
			maxDiff = diff[c]
		}
	}

	return model.ColorAnalysis{
		MeanColorA:   meanA,
		MeanColorB:   meanB,
		ColorDiff:    diff,
		MaxColorDiff: maxDiff,
	}
}

// DiffPercentage 差异像素占全图比例（0-100）
func DiffPercentage(a, b *image.NRGBA, threshold uint8) float64 {
	mask := DiffMask(a, b, threshold)
	if len(mask) == 0 {
		return 0
	}

	count := 0
	for _, hit := range mask {
		if hit {
			count++
		}
	}
	return float64(count) / float64(len(mask)) * 100
}

// Recommendations 根据各项指标生成改进建议
// 命中多项阈值时逐条列出；全部通过时返回单条正向结论
func Recommendations(report *model.DiffReport) []string {
	var recs []string

	if report.HistogramSimilarity < 0.8 {
		recs = append(recs, "建议检查页面布局是否与设计稿一致")
	}
	if report.ColorAnalysis.MaxColorDiff > 50 {
		recs = append(recs, "建议检查颜色配置，存在较大颜色差异")
	}
	if report.DiffPercentage > 20 {
		recs = append(recs, "建议检查页面元素位置，存在较大布局差异")
	}
	if report.HashDistance > 10 {
		recs = append(recs, "建议检查图像内容，结构差异较大")
	}

	if len(recs) == 0 {
		recs = append(recs, "页面实现与设计稿匹配度较高，无重大问题")
	}
	return recs
}
