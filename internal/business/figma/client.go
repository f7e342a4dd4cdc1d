package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// Client 设计工具导出接口客户端
// 第三方响应在此边界一次性转为强类型结构，下游不接触原始载荷
type Client struct {
	baseURL string
	token   string
	httpCli *http.Client
}

// NewClient 创建客户端
func NewClient(cfg config.FigmaConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpCli: &http.Client{Timeout: cfg.Timeout},
	}
}

// imagesResponse /images 接口响应
type imagesResponse struct {
	Err    string            `json:"err"`
	Images map[string]string `json:"images"`
}

// fileResponse /files 接口响应（只取降级解析所需字段）
type fileResponse struct {
	Document struct {
		Children []struct {
			ID       string `json:"id"`
			Children []struct {
				ID string `json:"id"`
			} `json:"children"`
		} `json:"children"`
	} `json:"document"`
}

// RenderImage 请求节点渲染图 URL
// node id 同时尝试给定形式与连字符/冒号互换形式；
// 均未命中时取第一个非空 URL 兜底
func (c *Client) RenderImage(ctx context.Context, fileKey, nodeID, format string, scale float64) (string, error) {
	q := url.Values{}
	q.Set("ids", CanonicalNodeID(nodeID))
	q.Set("format", format)
	q.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))

	endpoint := fmt.Sprintf("%s/images/%s?%s", c.baseURL, fileKey, q.Encode())

	var resp imagesResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	if resp.Err != "" {
		return "", errorutil.Transient("design export api error: %s", resp.Err)
	}

	// 精确命中（两种 node id 形式）
	for _, id := range []string{CanonicalNodeID(nodeID), URLNodeID(nodeID), nodeID} {
		if u, ok := resp.Images[id]; ok && u != "" {
			return u, nil
		}
	}

	// 兜底：第一个非空 URL
	for _, u := range resp.Images {
		if u != "" {
			return u, nil
		}
	}

	return "", errorutil.NotFound("no rendered image for node %q in file %s", nodeID, fileKey)
}

// FirstNode 降级解析：取首页第一个顶层节点
func (c *Client) FirstNode(ctx context.Context, fileKey string) (string, error) {
	endpoint := fmt.Sprintf("%s/files/%s?depth=2", c.baseURL, fileKey)

	var resp fileResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}

	if len(resp.Document.Children) == 0 {
		return "", errorutil.NotFound("design file %s has no pages", fileKey)
	}
	page := resp.Document.Children[0]
	if len(page.Children) == 0 {
		return "", errorutil.NotFound("design file %s first page has no nodes", fileKey)
	}
	return page.Children[0].ID, nil
}

// Download 下载渲染图到临时文件
func (c *Client) Download(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", errorutil.Internal("build download request failed").WithCause(err)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", errorutil.Transient("download rendered image failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, "download rendered image")
	}

	f, err := os.CreateTemp("", "uicheck-design-*.png")
	if err != nil {
		return "", errorutil.Internal("create design artifact failed").WithCause(err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", errorutil.Transient("write design artifact failed").WithCause(err)
	}
	return f.Name(), nil
}

// getJSON 发起带鉴权的 GET 请求并解码 JSON
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errorutil.Internal("build request failed").WithCause(err)
	}
	req.Header.Set("X-Figma-Token", c.token)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return errorutil.Transient("design api request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, "design api")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errorutil.Transient("decode design api response failed").WithCause(err)
	}
	return nil
}

// statusError HTTP 状态码映射到错误分类
func statusError(code int, op string) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errorutil.Authorization("%s unauthorized (status %d)", op, code)
	case code == http.StatusNotFound:
		return errorutil.NotFound("%s not found (status %d)", op, code)
	case code == http.StatusTooManyRequests:
		return errorutil.RateLimit("%s rate limited (status %d)", op, code)
	case code >= 500:
		return errorutil.Transient("%s server error (status %d)", op, code)
	default:
		return errorutil.Internal("%s unexpected status %d", op, code)
	}
}
