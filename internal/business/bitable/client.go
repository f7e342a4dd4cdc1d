package bitable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// 多维表格结果列名
const (
	FieldCaseDoc    = "测试用例文档"
	FieldSimReport  = "网站相似度报告"
	FieldExecResult = "执行结果"
)

// Client 多维表格协作方客户端
// 按 run_metadata 透传的 appToken/tableId/recordId 回写结果记录
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

type updateRecordRequest struct {
	Fields map[string]string `json:"fields"`
}

type updateRecordResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// UpdateRecord 回写结果记录
func (c *Client) UpdateRecord(ctx context.Context, meta model.RunMetadata, fields map[string]string) error {
	if meta.AppToken == "" || meta.TableID == "" || meta.RecordID == "" {
		return errorutil.Validation("run metadata is incomplete: appToken/tableId/recordId required")
	}

	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/%s",
		c.baseURL, meta.AppToken, meta.TableID, meta.RecordID)

	payload, err := json.Marshal(updateRecordRequest{Fields: fields})
	if err != nil {
		return errorutil.Internal("marshal record update failed").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errorutil.Internal("build record update request failed").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return errorutil.Transient("record update request failed").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errorutil.Authorization("bitable access denied (status %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return errorutil.NotFound("bitable record not found: %s/%s/%s", meta.AppToken, meta.TableID, meta.RecordID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return errorutil.RateLimit("bitable api rate limited")
	case resp.StatusCode >= 500:
		return errorutil.Transient("bitable api server error (status %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return errorutil.Internal("bitable api unexpected status %d", resp.StatusCode)
	}

	var body updateRecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return errorutil.Transient("decode bitable response failed").WithCause(err)
	}
	if body.Code != 0 {
		return errorutil.Internal("bitable api error %d: %s", body.Code, body.Msg)
	}

	return nil
}

// BuildReportMarkdown 相似度报告的 Markdown 摘要
func BuildReportMarkdown(run *model.WorkflowRun) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## 视觉比对报告 %s\n\n", run.RunID))
	sb.WriteString(fmt.Sprintf("- 状态: %s\n", run.Status))
	if run.Partial {
		sb.WriteString("- 部分成功: 是\n")
		for _, m := range run.Missing {
			sb.WriteString(fmt.Sprintf("- 缺失产物: %s\n", m))
		}
	}

	if r := run.Report; r != nil {
		sb.WriteString("\n### 相似度指标\n")
		sb.WriteString(fmt.Sprintf("- 相似度: %.4f（评级 %s）\n", r.HistogramSimilarity, r.Rating))
		sb.WriteString(fmt.Sprintf("- SSIM: %.4f\n", r.SSIM))
		sb.WriteString(fmt.Sprintf("- MSE: %.6f\n", r.MSE))
		sb.WriteString(fmt.Sprintf("- 感知哈希距离: %d\n", r.HashDistance))
		sb.WriteString(fmt.Sprintf("- 差异区域数: %d\n", r.RegionCount))
		if r.Scale.Padded {
			sb.WriteString("- 归一化: letterbox 填充参与了比对\n")
		}

		sb.WriteString("\n### 详细分析\n")
		sb.WriteString(fmt.Sprintf("- 差异百分比: %.2f%%\n", r.DiffPercentage))
		sb.WriteString(fmt.Sprintf("- 最大颜色差异: %.2f\n", r.ColorAnalysis.MaxColorDiff))
		sb.WriteString(fmt.Sprintf("- 平均颜色（实现/设计）: RGB(%.0f, %.0f, %.0f) / RGB(%.0f, %.0f, %.0f)\n",
			r.ColorAnalysis.MeanColorA[0], r.ColorAnalysis.MeanColorA[1], r.ColorAnalysis.MeanColorA[2],
			r.ColorAnalysis.MeanColorB[0], r.ColorAnalysis.MeanColorB[1], r.ColorAnalysis.MeanColorB[2]))

		if len(r.Recommendations) > 0 {
			sb.WriteString("\n### AI 分析建议\n")
			for _, rec := range r.Recommendations {
				sb.WriteString("- " + rec + "\n")
			}
		}

		sb.WriteString("\n### 分析结论\n")
		sb.WriteString(comparisonConclusion(r.HistogramSimilarity) + "\n")
	}

	sb.WriteString("\n### 阶段明细\n")
	for _, st := range run.Stages {
		line := fmt.Sprintf("- %s: %s（尝试 %d 次）", st.Stage, st.Status, st.Attempts)
		if st.Error != "" {
			line += " " + st.Error
		}
		sb.WriteString(line + "\n")
	}

	return sb.String()
}

// comparisonConclusion 按相似度分档产出结论文案
func comparisonConclusion(similarity float64) string {
	switch {
	case similarity >= 0.9:
		return "实现效果与设计高度一致，无需调整。"
	case similarity >= 0.8:
		return "实现效果良好，基本符合设计要求，可考虑微调细节。"
	case similarity >= 0.7:
		return "实现效果一般，存在一些差异，建议检查并优化。"
	case similarity >= 0.6:
		return "实现效果较差，与设计存在明显差异，需要重点调整。"
	default:
		return "实现效果很差，与设计差异极大，建议重新实现。"
	}
}

// ExecResultText 执行结果列文本
func ExecResultText(run *model.WorkflowRun) string {
	switch {
	case run.Status == model.RunStatusCompleted && run.Partial:
		return "部分成功"
	case run.Status == model.RunStatusCompleted:
		return "成功"
	case run.Status == model.RunStatusCancelled:
		return "已取消"
	default:
		return "失败"
	}
}
