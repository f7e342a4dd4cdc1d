package figma

import (
	"context"
	"time"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/backoff"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// BrowserCapturer 浏览器截图兜底依赖
type BrowserCapturer interface {
	Capture(ctx context.Context, req *model.CaptureRequest) (*model.CaptureResult, error)
}

// Exporter 设计稿导出器
// 优先直连导出接口（带退避重试），失败后降级为浏览器渲染截图；
// 两条路径都失败时返回 DesignExport 错误，同时携带两个失败原因
type Exporter struct {
	client   *Client
	capturer BrowserCapturer
	policy   backoff.Policy
	format   string
	scale    float64
	log      logger.Logger
}

// NewExporter 创建导出器
func NewExporter(client *Client, capturer BrowserCapturer, policy backoff.Policy, format string, scale float64, log logger.Logger) *Exporter {
	return &Exporter{
		client:   client,
		capturer: capturer,
		policy:   policy,
		format:   format,
		scale:    scale,
		log:      log,
	}
}

// Export 导出设计稿节点渲染图
// node id 缺失时降级到首页首节点，降级事实记录在产物元数据中而非报错
func (e *Exporter) Export(ctx context.Context, ref *model.DesignReference) (*model.DesignAsset, error) {
	asset, directErr := e.exportDirect(ctx, ref)
	if directErr == nil {
		return asset, nil
	}

	e.log.Warnf(ctx, "[Export] Direct export failed, falling back to browser render: %v", directErr)

	asset, fallbackErr := e.exportFallback(ctx, ref)
	if fallbackErr == nil {
		return asset, nil
	}

	return nil, errorutil.DesignExport(directErr, fallbackErr)
}

// exportDirect 直连导出（带退避重试）
func (e *Exporter) exportDirect(ctx context.Context, ref *model.DesignReference) (*model.DesignAsset, error) {
	var (
		path     string
		nodeID   string
		degraded bool
	)

	attempts, err := backoff.Retry(ctx, e.policy, func(ctx context.Context) error {
		var err error
		nodeID = ref.NodeID
		degraded = false

		if nodeID == "" {
			nodeID, err = e.client.FirstNode(ctx, ref.FileKey)
			if err != nil {
				return err
			}
			degraded = true
		}

		imageURL, err := e.client.RenderImage(ctx, ref.FileKey, nodeID, e.format, e.scale)
		if err != nil {
			return err
		}

		path, err = e.client.Download(ctx, imageURL)
		return err
	}, func(attempt int, err error, delay time.Duration) {
		e.log.Warnf(ctx, "[Export] Direct attempt %d failed: %v, retrying in %v", attempt, err, delay)
	})
	if err != nil {
		return nil, err
	}

	e.log.Infof(ctx, "[Export] Direct export done: file=%s, node=%s, degraded=%v, attempts=%d",
		ref.FileKey, nodeID, degraded, attempts)

	return &model.DesignAsset{
		ImagePath:  path,
		Method:     model.ExportMethodDirect,
		Degraded:   degraded,
		NodeID:     nodeID,
		ExportedAt: time.Now(),
	}, nil
}

// exportFallback 浏览器渲染兜底
// 复用截图协调器：打开设计稿页面，截取画布区域
func (e *Exporter) exportFallback(ctx context.Context, ref *model.DesignReference) (*model.DesignAsset, error) {
	if e.capturer == nil {
		return nil, errorutil.Internal("browser fallback is not configured")
	}

	device, _ := model.DeviceByName(model.DeviceDesktop)
	result, err := e.capturer.Capture(ctx, &model.CaptureRequest{
		URL:      ref.RawURL,
		Selector: model.CSSSelector("canvas"),
		Device:   device,
	})
	if err != nil {
		return nil, err
	}

	return &model.DesignAsset{
		ImagePath:  result.ImagePath,
		Method:     model.ExportMethodFallback,
		Degraded:   ref.NodeID == "",
		NodeID:     ref.NodeID,
		ExportedAt: time.Now(),
	}, nil
}
