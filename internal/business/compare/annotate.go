package compare

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
)

var annotationRed = color.NRGBA{R: 230, G: 30, B: 30, A: 255}

// Annotate 生成三联比对图：网站截图 | 设计稿 | 差异标注
// 差异标注基于网站画布，每个检出区域画红色包围盒
func Annotate(canvasA, canvasB *image.NRGBA, regions []model.DiffRegion) *image.NRGBA {
	marked := drawRegions(canvasA, regions)

	w := canvasA.Bounds().Dx()
	h := canvasA.Bounds().Dy()

	out := imaging.New(w*3, h, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	out = imaging.Paste(out, canvasA, image.Pt(0, 0))
	out = imaging.Paste(out, canvasB, image.Pt(w, 0))
	out = imaging.Paste(out, marked, image.Pt(w*2, 0))
	return out
}

// drawRegions 在画布副本上画区域包围盒
func drawRegions(canvas *image.NRGBA, regions []model.DiffRegion) *image.NRGBA {
	out := imaging.Clone(canvas)
	for _, r := range regions {
		drawRect(out, r.X, r.Y, r.Width, r.Height)
	}
	return out
}

// drawRect 画 2px 边框矩形
func drawRect(img *image.NRGBA, x, y, w, h int) {
	for t := 0; t < 2; t++ {
		for i := x; i < x+w; i++ {
			setPixel(img, i, y+t)
			setPixel(img, i, y+h-1-t)
		}
		for j := y; j < y+h; j++ {
			setPixel(img, x+t, j)
			setPixel(img, x+w-1-t, j)
		}
	}
}

func setPixel(img *image.NRGBA, x, y int) {
	if x < 0 || y < 0 || x >= img.Bounds().Dx() || y >= img.Bounds().Dy() {
		return
	}
	img.SetNRGBA(x, y, annotationRed)
}
