package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// Coordinator 截图协调器
// 驱动浏览器会话渲染页面并截取目标区域。
// 一次 Capture 对应一个独立的浏览器会话，会话在返回前必然释放
type Coordinator struct {
	cfg config.BrowserConfig
	log logger.Logger
}

// NewCoordinator 创建截图协调器
func NewCoordinator(cfg config.BrowserConfig, log logger.Logger) *Coordinator {
	return &Coordinator{cfg: cfg, log: log}
}

// Capture 截取页面目标区域
// 页面就绪采用两段式启发：等待 DOM ready（有上限），再固定 settle 等待
// 以容纳迟到的动画。导航/元素解析超时返回 CaptureTimeout，
// 此处不做内部重试，重试策略由 Orchestrator 统一负责
func (c *Coordinator) Capture(ctx context.Context, req *model.CaptureRequest) (*model.CaptureResult, error) {
	maxWait := req.MaxWait
	if maxWait <= 0 {
		maxWait = c.cfg.NavTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("lang", c.cfg.Language),
		chromedp.WindowSize(req.Device.Width, req.Device.Height),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, maxWait+c.cfg.SettleDelay)
	defer cancelRun()

	c.log.Infof(ctx, "[Capture] Navigating: url=%s, device=%s(%dx%d)",
		req.URL, req.Device.Name, req.Device.Width, req.Device.Height)

	// 1. 导航并等待页面就绪
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(req.Device.Width), int64(req.Device.Height)),
		chromedp.Navigate(req.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(c.cfg.SettleDelay),
	)
	if err != nil {
		return nil, c.classify(err, "navigate %s", req.URL)
	}

	// 2. 截图（整页或目标元素）
	var buf []byte
	box := model.BoundingBox{}
	fullPage := req.Selector.IsZero()

	if fullPage {
		if err := chromedp.Run(runCtx, chromedp.FullScreenshot(&buf, 90)); err != nil {
			return nil, c.classify(err, "full page screenshot")
		}
	} else {
		buf, box, err = c.captureElement(runCtx, req.Selector)
		if err != nil {
			return nil, err
		}
	}

	// 3. 成功后才落盘，失败路径不产生半成品产物
	path, err := writeTempImage(buf)
	if err != nil {
		return nil, errorutil.Internal("write capture artifact failed").WithCause(err)
	}

	c.log.Infof(ctx, "[Capture] Done: path=%s, full_page=%v, bytes=%d", path, fullPage, len(buf))

	return &model.CaptureResult{
		ImagePath:  path,
		Box:        box,
		Viewport:   req.Device,
		CapturedAt: time.Now(),
		FullPage:   fullPage,
	}, nil
}

// captureElement 解析目标元素并截图
// 多个命中按文档顺序取 Index 指定的一个；零命中返回 ElementNotFound
func (c *Coordinator) captureElement(ctx context.Context, sel model.SelectorSpec) ([]byte, model.BoundingBox, error) {
	var box model.BoundingBox

	query, err := selectorQuery(sel)
	if err != nil {
		return nil, box, err
	}

	queryOpt := chromedp.ByQueryAll
	if sel.Kind == model.SelectorXPath {
		queryOpt = chromedp.BySearch
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx,
		chromedp.Nodes(query, &nodes, queryOpt, chromedp.AtLeast(0)),
	); err != nil {
		return nil, box, c.classify(err, "resolve selector %q", query)
	}

	if len(nodes) == 0 {
		return nil, box, errorutil.ElementNotFound("no element matched selector: %q", query)
	}
	if sel.Index < 0 || sel.Index >= len(nodes) {
		return nil, box, errorutil.ElementNotFound(
			"selector %q matched %d elements, index %d out of range", query, len(nodes), sel.Index)
	}

	node := nodes[sel.Index]
	nodeIDs := []cdp.NodeID{node.NodeID}

	var buf []byte
	err = chromedp.Run(ctx,
		chromedp.ScrollIntoView(nodeIDs, chromedp.ByNodeID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			boxModel, err := dom.GetBoxModel().WithNodeID(node.NodeID).Do(ctx)
			if err != nil {
				// 包围盒仅是元数据，取不到不影响截图
				return nil
			}
			box = boxFromContent(boxModel.Content)
			return nil
		}),
		chromedp.Screenshot(nodeIDs, &buf, chromedp.ByNodeID),
	)
	if err != nil {
		return nil, box, c.classify(err, "element screenshot %q", query)
	}

	return buf, box, nil
}

// classify 将 chromedp 错误映射到错误分类
func (c *Coordinator) classify(err error, format string, args ...interface{}) error {
	op := fmt.Sprintf(format, args...)
	if errors.Is(err, context.DeadlineExceeded) {
		return errorutil.CaptureTimeout("%s timed out", op).WithCause(err)
	}
	if errors.Is(err, context.Canceled) {
		return errorutil.Wrap(err, op)
	}
	// 浏览器/网络抖动按瞬时错误处理，交给上层退避重试
	return errorutil.Transient("%s failed", op).WithCause(err)
}

// boxFromContent content quad（8 个坐标值）转包围盒
func boxFromContent(content []float64) model.BoundingBox {
	if len(content) < 8 {
		return model.BoundingBox{}
	}
	minX, minY := content[0], content[1]
	maxX, maxY := content[0], content[1]
	for i := 2; i < 8; i += 2 {
		if content[i] < minX {
			minX = content[i]
		}
		if content[i] > maxX {
			maxX = content[i]
		}
		if content[i+1] < minY {
			minY = content[i+1]
		}
		if content[i+1] > maxY {
			maxY = content[i+1]
		}
	}
	return model.BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// writeTempImage 写入临时产物文件
// 产物由消费方（PERSISTING 阶段）移入运行目录或丢弃
func writeTempImage(data []byte) (string, error) {
	f, err := os.CreateTemp("", "uicheck-capture-*.png")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
