package workflow

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/s2265681/Project-Auto-Testing/internal/business/figma"
	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// 运行目录内的产物文件名
const (
	artifactWebsite = "website.png"
	artifactDesign  = "design.png"
	artifactReport  = "report.json"
)

// parseDesignRef 设计稿 URL 解析（委托 figma 包）
func parseDesignRef(raw string) (*model.DesignReference, error) {
	return figma.ParseDesignURL(raw)
}

// ensureRunDir 创建运行产物目录
func (e *Executor) ensureRunDir(runID string) (string, error) {
	dir := filepath.Join(e.outputDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errorutil.Internal("create run dir failed: %s", dir).WithCause(err)
	}
	return dir, nil
}

// persistArtifacts PERSISTING 阶段
// 临时产物移入运行目录、写 JSON 报告、落运行记录；
// 对产出了产物的阶段逐一处理，缺失产物按 Missing 列表如实记录
func (e *Executor) persistArtifacts(ctx context.Context, run *model.WorkflowRun, spec *model.RunSpec, out *visualOutcome) error {
	dir, err := e.ensureRunDir(spec.RunID)
	if err != nil {
		return err
	}
	run.OutputDir = dir

	if out != nil && out.capture != nil {
		dst := filepath.Join(dir, artifactWebsite)
		if err := moveFile(out.capture.ImagePath, dst); err != nil {
			return errorutil.Internal("persist website capture failed").WithCause(err)
		}
		out.capture.ImagePath = dst
		setArtifacts(run, model.StageCapturingWebsite, dst)
	}

	if out != nil && out.asset != nil {
		dst := filepath.Join(dir, artifactDesign)
		if err := moveFile(out.asset.ImagePath, dst); err != nil {
			return errorutil.Internal("persist design asset failed").WithCause(err)
		}
		out.asset.ImagePath = dst
		setArtifacts(run, model.StageExportingDesign, dst)
	}

	if run.Report != nil && run.Report.DiffImagePath != "" {
		setArtifacts(run, model.StageComparing, run.Report.DiffImagePath)
	}

	reportPath := filepath.Join(dir, artifactReport)
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return errorutil.Internal("marshal run report failed").WithCause(err)
	}
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		return errorutil.Internal("write run report failed").WithCause(err)
	}
	setArtifacts(run, model.StagePersisting, reportPath)

	if e.persister != nil {
		if err := e.persister.PersistRun(ctx, run); err != nil {
			return err
		}
	}
	return nil
}

// setArtifacts 记录阶段产物引用
func setArtifacts(run *model.WorkflowRun, stage model.Stage, paths ...string) {
	if st := run.StageByName(stage); st != nil {
		st.Artifacts = paths
	}
}

// moveFile 移动文件，跨文件系统时退化为复制后删除
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
