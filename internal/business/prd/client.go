package prd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// Client PRD 文档协作方客户端
// 只负责按文档引用取回纯文本内容，文档格式解析不在本系统范围内
type Client struct {
	baseURL string
	token   string
	httpCli *http.Client
}

// NewClient 创建客户端
func NewClient(cfg config.FeishuConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpCli: &http.Client{Timeout: cfg.Timeout},
	}
}

// rawContentResponse 文档纯文本接口响应
type rawContentResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Content string `json:"content"`
	} `json:"data"`
}

// DocumentID 从文档引用（URL 或裸 token）提取文档 ID
func DocumentID(ref string) string {
	ref = strings.TrimSpace(ref)
	for _, marker := range []string{"/docx/", "/docs/", "/wiki/"} {
		if idx := strings.Index(ref, marker); idx >= 0 {
			id := ref[idx+len(marker):]
			if q := strings.IndexAny(id, "?#/"); q >= 0 {
				id = id[:q]
			}
			return id
		}
	}
	return ref
}

// FetchContent 拉取文档纯文本内容
func (c *Client) FetchContent(ctx context.Context, docRef string) (string, error) {
	docID := DocumentID(docRef)
	if docID == "" {
		return "", errorutil.Validation("source document ref is empty")
	}

	endpoint := fmt.Sprintf("%s/docx/v1/documents/%s/raw_content", c.baseURL, docID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errorutil.Internal("build document request failed").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", errorutil.Transient("document request failed").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", errorutil.Authorization("document access denied (status %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return "", errorutil.NotFound("document not found: %s", docID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", errorutil.RateLimit("document api rate limited")
	case resp.StatusCode >= 500:
		return "", errorutil.Transient("document api server error (status %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", errorutil.Internal("document api unexpected status %d", resp.StatusCode)
	}

	var body rawContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errorutil.Transient("decode document response failed").WithCause(err)
	}
	if body.Code != 0 {
		return "", errorutil.Internal("document api error %d: %s", body.Code, body.Msg)
	}

	return body.Data.Content, nil
}
