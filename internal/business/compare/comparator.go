package compare

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// Comparator 视觉比对引擎
// 五项指标相互独立计算；综合评级只由直方图相似度推导，
// 其余指标全部保留在报告中
type Comparator struct {
	diffThreshold uint8
	minRegionArea int
}

// NewComparator 创建比对引擎
func NewComparator(cfg config.CompareConfig) *Comparator {
	return &Comparator{
		diffThreshold: cfg.DiffThreshold,
		minRegionArea: cfg.MinRegionArea,
	}
}

// Compare 比对两张图并产出报告
func (c *Comparator) Compare(imgA, imgB image.Image) (*model.DiffReport, *image.NRGBA, error) {
	canvasA, canvasB, scale, err := Normalize(imgA, imgB)
	if err != nil {
		return nil, nil, err
	}

	histSim := HistogramSimilarity(canvasA, canvasB)
	ssim := SSIM(canvasA, canvasB)
	mse := MSE(canvasA, canvasB)

	hashDist, err := HashDistance(canvasA, canvasB)
	if err != nil {
		return nil, nil, err
	}

	regions := FindRegions(canvasA, canvasB, c.diffThreshold, c.minRegionArea)
	annotated := Annotate(canvasA, canvasB, regions)

	report := &model.DiffReport{
		HistogramSimilarity: histSim,
		SSIM:                ssim,
		MSE:                 mse,
		HashDistance:        hashDist,
		RegionCount:         len(regions),
		Regions:             regions,
		DiffPercentage:      DiffPercentage(canvasA, canvasB, c.diffThreshold),
		ColorAnalysis:       AnalyzeColors(canvasA, canvasB),
		Rating:              model.RatingOf(histSim),
		Scale:               scale,
	}
	report.Recommendations = Recommendations(report)

	return report, annotated, nil
}

// CompareFiles 从文件读取两张图比对，标注图写到 diffPath
func (c *Comparator) CompareFiles(pathA, pathB, diffPath string) (*model.DiffReport, error) {
	imgA, err := imaging.Open(pathA)
	if err != nil {
		return nil, errorutil.InvalidImage("open image %s failed", pathA).WithCause(err)
	}
	imgB, err := imaging.Open(pathB)
	if err != nil {
		return nil, errorutil.InvalidImage("open image %s failed", pathB).WithCause(err)
	}

	report, annotated, err := c.Compare(imgA, imgB)
	if err != nil {
		return nil, err
	}

	if diffPath != "" {
		if err := imaging.Save(annotated, diffPath); err != nil {
			return nil, errorutil.Internal("save diff image failed").WithCause(err)
		}
		report.DiffImagePath = diffPath
	}

	return report, nil
}
