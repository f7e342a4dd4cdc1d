package compare

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

// patternImage 带结构的测试图：竖向渐变加一个色块
func patternImage(w, h int, block color.NRGBA) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(200 + (y*55)/h)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: 255, A: 255})
		}
	}
	for y := h / 4; y < h/2; y++ {
		for x := w / 4; x < w/2; x++ {
			img.SetNRGBA(x, y, block)
		}
	}
	return img
}

func testComparator() *Comparator {
	return NewComparator(config.CompareConfig{DiffThreshold: 30, MinRegionArea: 16})
}

func TestCompare_IdenticalImages(t *testing.T) {
	img := patternImage(64, 64, color.NRGBA{R: 10, G: 120, B: 40, A: 255})

	report, annotated, err := testComparator().Compare(img, img)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, report.HistogramSimilarity, 1e-9)
	assert.InDelta(t, 1.0, report.SSIM, 1e-9)
	assert.InDelta(t, 0.0, report.MSE, 1e-9)
	assert.Equal(t, 0, report.HashDistance)
	assert.Equal(t, 0, report.RegionCount)
	assert.Equal(t, model.RatingExcellent, report.Rating)
	assert.False(t, report.Scale.Padded)
	assert.InDelta(t, 0.0, report.DiffPercentage, 1e-9)
	assert.InDelta(t, 0.0, report.ColorAnalysis.MaxColorDiff, 1e-9)
	assert.Equal(t, []string{"页面实现与设计稿匹配度较高，无重大问题"}, report.Recommendations)
	assert.Equal(t, 64*3, annotated.Bounds().Dx())
}

func TestCompare_ContrastingSolidColors(t *testing.T) {
	red := solidImage(64, 64, color.NRGBA{R: 255, A: 255})
	blue := solidImage(64, 64, color.NRGBA{B: 255, A: 255})

	report, _, err := testComparator().Compare(red, blue)
	require.NoError(t, err)

	assert.Less(t, report.HistogramSimilarity, 0.6)
	assert.Equal(t, model.RatingBad, report.Rating)
	assert.Greater(t, report.MSE, 0.0)
	assert.Greater(t, report.ColorAnalysis.MaxColorDiff, 50.0)
	assert.Contains(t, report.Recommendations, "建议检查颜色配置，存在较大颜色差异")
	assert.Contains(t, report.Recommendations, "建议检查页面布局是否与设计稿一致")
}

func TestAnalyzeColors(t *testing.T) {
	red := solidImage(16, 16, color.NRGBA{R: 200, G: 20, B: 20, A: 255})
	dark := solidImage(16, 16, color.NRGBA{R: 100, G: 20, B: 20, A: 255})

	analysis := AnalyzeColors(red, dark)
	assert.InDelta(t, 200, analysis.MeanColorA[0], 1e-9)
	assert.InDelta(t, 100, analysis.MeanColorB[0], 1e-9)
	assert.InDelta(t, 100, analysis.ColorDiff[0], 1e-9)
	assert.InDelta(t, 0, analysis.ColorDiff[1], 1e-9)
	assert.InDelta(t, 100, analysis.MaxColorDiff, 1e-9)
}

func TestDiffPercentage_HalfChanged(t *testing.T) {
	base := solidImage(32, 32, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	half := imaging.Clone(base)
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			half.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}

	assert.InDelta(t, 50.0, DiffPercentage(base, half, 30), 1e-9)
}

func TestCompare_DifferentSizesAreLetterboxed(t *testing.T) {
	small := patternImage(32, 32, color.NRGBA{R: 10, G: 120, B: 40, A: 255})
	large := patternImage(64, 64, color.NRGBA{R: 10, G: 120, B: 40, A: 255})

	report, _, err := testComparator().Compare(small, large)
	require.NoError(t, err)

	assert.True(t, report.Scale.Padded)
	assert.Equal(t, 64, report.Scale.CanvasWidth)
	assert.Equal(t, 64, report.Scale.CanvasHeight)
	assert.Equal(t, 32, report.Scale.PadRightA)
	assert.Equal(t, 32, report.Scale.PadBottomA)
	assert.Zero(t, report.Scale.PadRightB)
	assert.Greater(t, report.Scale.PadFractionA, 0.0)
}

func TestCompare_ZeroAreaImage(t *testing.T) {
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	ok := solidImage(8, 8, color.NRGBA{A: 255})

	_, _, err := testComparator().Compare(empty, ok)
	require.Error(t, err)
	assert.True(t, errorutil.IsKind(err, errorutil.KindInvalidImage))
}

func TestFindRegions_DetectsChangedBlock(t *testing.T) {
	base := solidImage(64, 64, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	changed := imaging.Clone(base)
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			changed.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}

	regions := FindRegions(base, changed, 30, 16)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.InDelta(t, 10, r.X, 2)
	assert.InDelta(t, 10, r.Y, 2)
	assert.InDelta(t, 20, r.Width, 4)
	assert.InDelta(t, 20, r.Height, 4)
}

func TestFindRegions_NoiseSuppressed(t *testing.T) {
	base := solidImage(64, 64, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	noisy := imaging.Clone(base)
	// 孤立单像素差异应被形态学开运算滤掉
	noisy.SetNRGBA(5, 5, color.NRGBA{A: 255})
	noisy.SetNRGBA(50, 20, color.NRGBA{A: 255})

	regions := FindRegions(base, noisy, 30, 16)
	assert.Empty(t, regions)
}

func TestRatingBands(t *testing.T) {
	assert.Equal(t, model.RatingExcellent, model.RatingOf(0.95))
	assert.Equal(t, model.RatingExcellent, model.RatingOf(0.90))
	assert.Equal(t, model.RatingGood, model.RatingOf(0.85))
	assert.Equal(t, model.RatingFair, model.RatingOf(0.75))
	assert.Equal(t, model.RatingPoor, model.RatingOf(0.65))
	assert.Equal(t, model.RatingBad, model.RatingOf(0.4))
}
