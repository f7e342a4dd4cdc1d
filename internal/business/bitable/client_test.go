package bitable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
)

func sampleRun(similarity float64) *model.WorkflowRun {
	return &model.WorkflowRun{
		RunID:  "run-1",
		Status: model.RunStatusCompleted,
		Stages: []model.StageResult{
			{Stage: model.StageCapturingWebsite, Status: model.StageStatusSucceeded, Attempts: 1},
			{Stage: model.StageComparing, Status: model.StageStatusSucceeded, Attempts: 1},
		},
		Report: &model.DiffReport{
			HistogramSimilarity: similarity,
			Rating:              model.RatingOf(similarity),
			DiffPercentage:      3.5,
			ColorAnalysis:       model.ColorAnalysis{MaxColorDiff: 12.4},
			Recommendations:     []string{"页面实现与设计稿匹配度较高，无重大问题"},
		},
	}
}

func TestBuildReportMarkdown_Sections(t *testing.T) {
	md := BuildReportMarkdown(sampleRun(0.95))

	assert.Contains(t, md, "### 相似度指标")
	assert.Contains(t, md, "### 详细分析")
	assert.Contains(t, md, "差异百分比: 3.50%")
	assert.Contains(t, md, "最大颜色差异: 12.40")
	assert.Contains(t, md, "### AI 分析建议")
	assert.Contains(t, md, "页面实现与设计稿匹配度较高")
	assert.Contains(t, md, "### 分析结论")
	assert.Contains(t, md, "实现效果与设计高度一致，无需调整。")
	assert.Contains(t, md, "### 阶段明细")
}

func TestBuildReportMarkdown_PartialRun(t *testing.T) {
	run := sampleRun(0.85)
	run.Partial = true
	run.Missing = []string{"figma_export: rate limited"}

	md := BuildReportMarkdown(run)
	assert.Contains(t, md, "部分成功: 是")
	assert.Contains(t, md, "缺失产物: figma_export: rate limited")
	assert.Contains(t, md, "实现效果良好，基本符合设计要求，可考虑微调细节。")
}

func TestComparisonConclusionBands(t *testing.T) {
	assert.Equal(t, "实现效果与设计高度一致，无需调整。", comparisonConclusion(0.9))
	assert.Equal(t, "实现效果良好，基本符合设计要求，可考虑微调细节。", comparisonConclusion(0.8))
	assert.Equal(t, "实现效果一般，存在一些差异，建议检查并优化。", comparisonConclusion(0.7))
	assert.Equal(t, "实现效果较差，与设计存在明显差异，需要重点调整。", comparisonConclusion(0.6))
	assert.Equal(t, "实现效果很差，与设计差异极大，建议重新实现。", comparisonConclusion(0.3))
}

func TestExecResultText(t *testing.T) {
	run := sampleRun(0.95)
	assert.Equal(t, "成功", ExecResultText(run))

	run.Partial = true
	assert.Equal(t, "部分成功", ExecResultText(run))

	run.Partial = false
	run.Status = model.RunStatusFailed
	assert.Equal(t, "失败", ExecResultText(run))

	run.Status = model.RunStatusCancelled
	assert.Equal(t, "已取消", ExecResultText(run))
}
