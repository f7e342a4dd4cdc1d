package compare

import (
	"image"
	"sort"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
)

// DiffMask 像素差阈值化后的二值掩码
// 灰度绝对差超过 threshold 的像素记为 1
func DiffMask(a, b *image.NRGBA, threshold uint8) []bool {
	ga := grayValues(a)
	gb := grayValues(b)

	mask := make([]bool, len(ga))
	for i := range ga {
		d := ga[i] - gb[i]
		if d < 0 {
			d = -d
		}
		if d > float64(threshold) {
			mask[i] = true
		}
	}
	return mask
}

// morphOpen 3x3 形态学开运算（先腐蚀后膨胀），抑制孤立噪点
func morphOpen(mask []bool, w, h int) []bool {
	return dilate(erode(mask, w, h), w, h)
}

func erode(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			all := true
			for dy := -1; dy <= 1 && all; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h || !mask[ny*w+nx] {
						all = false
						break
					}
				}
			}
			out[y*w+x] = all
		}
	}
	return out
}

func dilate(mask []bool, w, h int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			any := false
			for dy := -1; dy <= 1 && !any; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx >= 0 && ny >= 0 && nx < w && ny < h && mask[ny*w+nx] {
						any = true
						break
					}
				}
			}
			out[y*w+x] = any
		}
	}
	return out
}

// FindRegions 差异区域检测
// 阈值化 → 形态学开运算去噪 → 四连通分量 → 过滤小面积区域，
// 返回按面积降序的包围盒列表
func FindRegions(a, b *image.NRGBA, threshold uint8, minArea int) []model.DiffRegion {
	w := a.Bounds().Dx()
	h := a.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}

	mask := morphOpen(DiffMask(a, b, threshold), w, h)
	visited := make([]bool, len(mask))
	var regions []model.DiffRegion

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}

		// BFS 收集连通分量
		minX, minY := start%w, start/w
		maxX, maxY := minX, minY
		area := 0

		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			area++

			x, y := idx%w, idx/w
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}

			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				ni := ny*w + nx
				if mask[ni] && !visited[ni] {
					visited[ni] = true
					queue = append(queue, ni)
				}
			}
		}

		if area >= minArea {
			regions = append(regions, model.DiffRegion{
				X:      minX,
				Y:      minY,
				Width:  maxX - minX + 1,
				Height: maxY - minY + 1,
				Area:   area,
			})
		}
	}

	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Area > regions[j].Area
	})
	return regions
}
