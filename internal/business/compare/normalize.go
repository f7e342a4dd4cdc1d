package compare

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// Normalize 将两张图对齐到公共画布
// 画布取两图各维度的最大值；较小的图 letterbox 填充（不拉伸），
// 避免纵横比失真污染相似度指标。填充量记录在 ScaleInfo 中，
// 供报告说明填充是否影响了比对
func Normalize(imgA, imgB image.Image) (*image.NRGBA, *image.NRGBA, model.ScaleInfo, error) {
	var info model.ScaleInfo

	wa, ha := imgA.Bounds().Dx(), imgA.Bounds().Dy()
	wb, hb := imgB.Bounds().Dx(), imgB.Bounds().Dy()

	if wa <= 0 || ha <= 0 || wb <= 0 || hb <= 0 {
		return nil, nil, info, errorutil.InvalidImage(
			"zero-area image: a=%dx%d, b=%dx%d", wa, ha, wb, hb)
	}

	cw := max(wa, wb)
	ch := max(ha, hb)

	// 左上角锚定，右/下侧填充白色
	canvasA := letterbox(imgA, cw, ch)
	canvasB := letterbox(imgB, cw, ch)

	info = model.ScaleInfo{
		CanvasWidth:  cw,
		CanvasHeight: ch,
		PadRightA:    cw - wa,
		PadBottomA:   ch - ha,
		PadRightB:    cw - wb,
		PadBottomB:   ch - hb,
		PadFractionA: 1 - float64(wa*ha)/float64(cw*ch),
		PadFractionB: 1 - float64(wb*hb)/float64(cw*ch),
	}
	info.Padded = info.PadRightA > 0 || info.PadBottomA > 0 || info.PadRightB > 0 || info.PadBottomB > 0

	return canvasA, canvasB, info, nil
}

// letterbox 将图像贴到指定尺寸的白色画布左上角
func letterbox(img image.Image, w, h int) *image.NRGBA {
	canvas := imaging.New(w, h, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Paste(canvas, img, image.Pt(0, 0))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
