package compare

import (
	"image"
	"math"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"

	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// 直方图分箱数（HSV 三维）
const (
	hueBins = 50
	satBins = 60
	valBins = 60
)

// HistogramSimilarity HSV 三维直方图的 Pearson 相关系数
// 范围 [0,1]，1 为分布完全一致；负相关按 0 截断
func HistogramSimilarity(a, b *image.NRGBA) float64 {
	ha := hsvHistogram(a)
	hb := hsvHistogram(b)
	corr := pearson(ha, hb)
	if corr < 0 {
		return 0
	}
	return corr
}

// hsvHistogram 归一化 HSV 三维直方图（展平为一维向量）
func hsvHistogram(img *image.NRGBA) []float64 {
	hist := make([]float64, hueBins*satBins*valBins)
	bounds := img.Bounds()
	total := float64(bounds.Dx() * bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := img.PixOffset(x, y)
			h, s, v := rgbToHSV(img.Pix[i], img.Pix[i+1], img.Pix[i+2])

			hi := int(h / 360 * hueBins)
			si := int(s * satBins)
			vi := int(v * valBins)
			if hi >= hueBins {
				hi = hueBins - 1
			}
			if si >= satBins {
				si = satBins - 1
			}
			if vi >= valBins {
				vi = valBins - 1
			}

			hist[(hi*satBins+si)*valBins+vi]++
		}
	}

	for i := range hist {
		hist[i] /= total
	}
	return hist
}

// rgbToHSV RGB [0,255] 转 HSV（h ∈ [0,360)，s/v ∈ [0,1]）
func rgbToHSV(r, g, b uint8) (float64, float64, float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	delta := maxC - minC

	var h float64
	switch {
	case delta == 0:
		h = 0
	case maxC == rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case maxC == gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}

	var s float64
	if maxC > 0 {
		s = delta / maxC
	}

	return h, s, maxC
}

// pearson 两个等长向量的 Pearson 相关系数
func pearson(a, b []float64) float64 {
	n := float64(len(a))
	if n == 0 {
		return 0
	}

	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 || varB == 0 {
		// 两张纯色图：分布完全一致则视为相同
		if varA == varB {
			return 1
		}
		return 0
	}

	return cov / math.Sqrt(varA*varB)
}

// SSIM 窗口化结构相似度（8x8 非重叠窗口，灰度）
// 范围 [-1,1]，1 为结构完全一致
func SSIM(a, b *image.NRGBA) float64 {
	const window = 8
	c1 := math.Pow(0.01*255, 2)
	c2 := math.Pow(0.03*255, 2)

	ga := grayValues(a)
	gb := grayValues(b)
	w := a.Bounds().Dx()
	h := a.Bounds().Dy()

	var total float64
	var windows int

	for wy := 0; wy+window <= h; wy += window {
		for wx := 0; wx+window <= w; wx += window {
			var sumA, sumB float64
			for y := wy; y < wy+window; y++ {
				for x := wx; x < wx+window; x++ {
					sumA += ga[y*w+x]
					sumB += gb[y*w+x]
				}
			}
			n := float64(window * window)
			muA := sumA / n
			muB := sumB / n

			var varA, varB, cov float64
			for y := wy; y < wy+window; y++ {
				for x := wx; x < wx+window; x++ {
					da := ga[y*w+x] - muA
					db := gb[y*w+x] - muB
					varA += da * da
					varB += db * db
					cov += da * db
				}
			}
			varA /= n - 1
			varB /= n - 1
			cov /= n - 1

			num := (2*muA*muB + c1) * (2*cov + c2)
			den := (muA*muA + muB*muB + c1) * (varA + varB + c2)
			total += num / den
			windows++
		}
	}

	if windows == 0 {
		// 图像小于一个窗口，退化为全图单窗口
		return ssimWhole(ga, gb, c1, c2)
	}
	return total / float64(windows)
}

// ssimWhole 整图作为单个窗口计算 SSIM
func ssimWhole(ga, gb []float64, c1, c2 float64) float64 {
	n := float64(len(ga))
	if n == 0 {
		return 0
	}

	var muA, muB float64
	for i := range ga {
		muA += ga[i]
		muB += gb[i]
	}
	muA /= n
	muB /= n

	var varA, varB, cov float64
	for i := range ga {
		da := ga[i] - muA
		db := gb[i] - muB
		varA += da * da
		varB += db * db
		cov += da * db
	}
	if n > 1 {
		varA /= n - 1
		varB /= n - 1
		cov /= n - 1
	}

	num := (2*muA*muB + c1) * (2*cov + c2)
	den := (muA*muA + muB*muB + c1) * (varA + varB + c2)
	return num / den
}

// grayValues 灰度化为 float64 数组（[0,255]）
func grayValues(img *image.NRGBA) []float64 {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := gray.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			out[y*w+x] = float64(gray.Pix[i])
		}
	}
	return out
}

// MSE 归一化均方误差（RGB 三通道，除以 255^2 归一到 [0,1]）
func MSE(a, b *image.NRGBA) float64 {
	bounds := a.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ia := a.PixOffset(x, y)
			ib := b.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				d := float64(a.Pix[ia+c]) - float64(b.Pix[ib+c])
				sum += d * d
			}
		}
	}

	return sum / (float64(w*h*3) * 255 * 255)
}

// HashDistance 感知哈希汉明距离（越低越相似）
func HashDistance(a, b image.Image) (int, error) {
	hashA, err := goimagehash.PerceptionHash(a)
	if err != nil {
		return 0, errorutil.InvalidImage("perception hash failed").WithCause(err)
	}
	hashB, err := goimagehash.PerceptionHash(b)
	if err != nil {
		return 0, errorutil.InvalidImage("perception hash failed").WithCause(err)
	}

	dist, err := hashA.Distance(hashB)
	if err != nil {
		return 0, errorutil.InvalidImage("hash distance failed").WithCause(err)
	}
	return dist, nil
}
