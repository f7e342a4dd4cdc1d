package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/backoff"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// Executor 工作流编排器
// 阶段状态机：PENDING → PARSING_SOURCE → GENERATING_CASES →
// CAPTURING_WEBSITE → EXPORTING_DESIGN → COMPARING → PERSISTING → COMPLETED。
// 截图与设计稿导出无数据依赖，在单个 run 内并发执行；
// 范围外阶段标记 skipped；取消只影响尚未开始的阶段
type Executor struct {
	capturer  Capturer
	exporter  DesignExporter
	comparer  Comparer
	fetcher   SourceFetcher
	generator CaseGenerator
	persister Persister
	policies  Policies
	outputDir string
	maxWait   time.Duration
	log       logger.Logger
}

// NewExecutor 创建编排器
// 所有配置显式传入，组件不读进程级全局状态
func NewExecutor(
	capturer Capturer,
	exporter DesignExporter,
	comparer Comparer,
	fetcher SourceFetcher,
	generator CaseGenerator,
	persister Persister,
	policies Policies,
	outputDir string,
	maxWait time.Duration,
	log logger.Logger,
) *Executor {
	return &Executor{
		capturer:  capturer,
		exporter:  exporter,
		comparer:  comparer,
		fetcher:   fetcher,
		generator: generator,
		persister: persister,
		policies:  policies,
		outputDir: outputDir,
		maxWait:   maxWait,
		log:       log,
	}
}

// visualOutcome 并发阶段的汇合结果
type visualOutcome struct {
	capture *model.CaptureResult
	asset   *model.DesignAsset
	capErr  error
	expErr  error
}

// Execute 执行一次完整运行
// 永远返回完整的 WorkflowRun（含各阶段结果），错误体现在状态上
func (e *Executor) Execute(ctx context.Context, spec *model.RunSpec) *model.WorkflowRun {
	run := newRun(spec)
	e.log.Infof(ctx, "[Workflow] Run started: id=%s, scope=%s", spec.RunID, spec.Scope)

	e.runFunctional(ctx, run, spec)
	var out *visualOutcome
	if run.Status == model.RunStatusRunning {
		out = e.runVisual(ctx, run, spec)
	}
	e.finalize(ctx, run, spec, out)

	e.log.Infof(ctx, "[Workflow] Run finished: id=%s, status=%s, partial=%v",
		run.RunID, run.Status, run.Partial)
	return run
}

// newRun 初始化运行记录，范围外阶段直接标记 skipped
func newRun(spec *model.RunSpec) *model.WorkflowRun {
	run := &model.WorkflowRun{
		RunID:     spec.RunID,
		Scope:     spec.Scope,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now(),
	}

	functional := spec.Scope.FunctionalStages()
	visual := spec.Scope.VisualStages()

	plan := []struct {
		stage model.Stage
		want  bool
	}{
		{model.StageParsingSource, functional},
		{model.StageGeneratingCases, functional},
		{model.StageCapturingWebsite, visual},
		{model.StageExportingDesign, visual},
		{model.StageComparing, visual},
		{model.StagePersisting, true},
	}

	for _, p := range plan {
		status := model.StageStatusPending
		if !p.want {
			status = model.StageStatusSkipped
		}
		run.Stages = append(run.Stages, model.StageResult{Stage: p.stage, Status: status})
	}
	return run
}

// runFunctional PARSING_SOURCE → GENERATING_CASES
func (e *Executor) runFunctional(ctx context.Context, run *model.WorkflowRun, spec *model.RunSpec) {
	if !spec.Scope.FunctionalStages() {
		return
	}
	if e.cancelled(ctx, run) {
		return
	}

	var content string
	err := e.runStage(ctx, run, model.StageParsingSource, e.policies.Source, func(ctx context.Context) error {
		var err error
		content, err = e.fetcher.FetchContent(ctx, spec.SourceDocumentRef)
		return err
	})
	if err != nil {
		// 功能范围的必要阶段终态失败，运行失败
		run.Status = model.RunStatusFailed
		run.Error = fmt.Sprintf("parsing source failed: %v", err)
		skipPending(run)
		return
	}

	if e.cancelled(ctx, run) {
		return
	}

	// 用例生成软失败：失败时得到说明文本，阶段不失败
	_ = e.runStage(ctx, run, model.StageGeneratingCases, oncePolicy(), func(ctx context.Context) error {
		run.CaseText = e.generator.Generate(ctx, content)
		return nil
	})
}

// runVisual CAPTURING_WEBSITE 与 EXPORTING_DESIGN 并发，汇合后 COMPARING
func (e *Executor) runVisual(ctx context.Context, run *model.WorkflowRun, spec *model.RunSpec) *visualOutcome {
	if !spec.Scope.VisualStages() {
		return nil
	}
	if e.cancelled(ctx, run) {
		return nil
	}

	out := e.runArtifactProducers(ctx, run, spec)

	switch {
	case out.capErr == nil && out.expErr == nil:
		e.runCompare(ctx, run, spec, out)

	case out.capErr != nil && out.expErr != nil:
		// 两个产物都拿不到，比对无从谈起
		run.Status = model.RunStatusFailed
		run.Error = fmt.Sprintf("capture failed: %v; export failed: %v", out.capErr, out.expErr)
		skipPending(run)

	default:
		// 逻辑错误（选择器未命中、入参非法、图像不可用）说明输入本身有问题，
		// 整个运行失败；其余单侧终态失败按部分成功继续持久化
		oneSideErr := out.capErr
		missing := "website capture"
		if oneSideErr == nil {
			oneSideErr = out.expErr
			missing = "design asset"
		}

		if isLogicError(oneSideErr) {
			run.Status = model.RunStatusFailed
			run.Error = fmt.Sprintf("%s failed: %v", missing, oneSideErr)
			skipPending(run)
			return out
		}

		run.Partial = true
		run.Missing = append(run.Missing, fmt.Sprintf("%s: %v", missing, oneSideErr))
		skipStage(run, model.StageComparing, "skipped: missing comparison artifact")
	}

	return out
}

// runArtifactProducers 并发执行截图与设计稿导出，汇合后返回
func (e *Executor) runArtifactProducers(ctx context.Context, run *model.WorkflowRun, spec *model.RunSpec) *visualOutcome {
	out := &visualOutcome{}
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		out.capErr = e.runStage(ctx, run, model.StageCapturingWebsite, e.policies.Capture, func(ctx context.Context) error {
			result, err := e.capturer.Capture(ctx, &model.CaptureRequest{
				URL:      spec.TargetURL,
				Selector: spec.Selector,
				Device:   spec.Device,
				MaxWait:  e.maxWait,
			})
			if err != nil {
				return err
			}
			out.capture = result
			return nil
		})
	}()

	go func() {
		defer wg.Done()
		// 导出器内部已带直连重试与浏览器兜底，阶段层面只调用一次
		out.expErr = e.runStage(ctx, run, model.StageExportingDesign, oncePolicy(), func(ctx context.Context) error {
			ref, err := parseDesignRef(spec.DesignRef)
			if err != nil {
				return err
			}
			asset, err := e.exporter.Export(ctx, ref)
			if err != nil {
				return err
			}
			out.asset = asset
			return nil
		})
	}()

	wg.Wait()
	return out
}

// runCompare 比对阶段
// 像素级计算是 CPU 密集操作，移出协调路径执行，
// 避免阻塞 worker 池的新运行准入
func (e *Executor) runCompare(ctx context.Context, run *model.WorkflowRun, spec *model.RunSpec, out *visualOutcome) {
	if e.cancelled(ctx, run) {
		return
	}

	err := e.runStage(ctx, run, model.StageComparing, oncePolicy(), func(ctx context.Context) error {
		dir, err := e.ensureRunDir(spec.RunID)
		if err != nil {
			return err
		}
		diffPath := dir + "/diff.png"

		type outcome struct {
			report *model.DiffReport
			err    error
		}
		ch := make(chan outcome, 1)
		go func() {
			report, err := e.comparer.CompareFiles(out.capture.ImagePath, out.asset.ImagePath, diffPath)
			ch <- outcome{report: report, err: err}
		}()

		select {
		case o := <-ch:
			if o.err != nil {
				return o.err
			}
			run.Report = o.report
			return nil
		case <-ctx.Done():
			return errorutil.Wrap(ctx.Err(), "compare interrupted")
		}
	})
	if err != nil {
		run.Status = model.RunStatusFailed
		run.Error = fmt.Sprintf("comparing failed: %v", err)
		skipPending(run)
	}
}

// finalize PERSISTING 与终态判定
func (e *Executor) finalize(ctx context.Context, run *model.WorkflowRun, spec *model.RunSpec, out *visualOutcome) {
	defer func() { run.FinishedAt = time.Now() }()

	if run.Status == model.RunStatusCancelled {
		skipStage(run, model.StagePersisting, "skipped: run cancelled")
		return
	}

	// 持久化前先定终态，运行记录落盘时状态已收敛
	if run.Status == model.RunStatusRunning {
		run.Status = model.RunStatusCompleted
	}

	err := e.runStage(ctx, run, model.StagePersisting, e.policies.Persist, func(ctx context.Context) error {
		return e.persistArtifacts(ctx, run, spec, out)
	})
	if err != nil {
		run.Status = model.RunStatusFailed
		if run.Error == "" {
			run.Error = fmt.Sprintf("persisting failed: %v", err)
		}
	}
}

// runStage 执行单个阶段，统一应用退避与状态记录
func (e *Executor) runStage(
	ctx context.Context,
	run *model.WorkflowRun,
	stage model.Stage,
	policy backoff.Policy,
	fn func(ctx context.Context) error,
) error {
	st := run.StageByName(stage)
	st.Status = model.StageStatusRunning
	st.StartedAt = time.Now()

	attempts, err := backoff.Retry(ctx, policy, fn, func(attempt int, err error, delay time.Duration) {
		st.Status = model.StageStatusRetried
		e.log.Warnf(ctx, "[Workflow] Stage %s attempt %d failed: %v, retrying in %v",
			stage, attempt, err, delay)
	})

	st.Attempts = attempts
	st.FinishedAt = time.Now()

	if err != nil {
		st.Status = model.StageStatusFailed
		st.Error = err.Error()
		st.ErrorKind = string(errorutil.KindOf(err))
		e.log.Errorf(ctx, "[Workflow] Stage %s failed after %d attempts: %v", stage, attempts, err)
		return err
	}

	st.Status = model.StageStatusSucceeded
	return nil
}

// cancelled 阶段间取消检查
// 已完成的阶段不回滚，剩余阶段标记 skipped，运行终态 CANCELLED
func (e *Executor) cancelled(ctx context.Context, run *model.WorkflowRun) bool {
	if ctx.Err() == nil {
		return false
	}
	run.Status = model.RunStatusCancelled
	run.Error = ctx.Err().Error()
	skipPending(run)
	return true
}

// skipPending 将所有未开始的阶段标记 skipped
func skipPending(run *model.WorkflowRun) {
	for i := range run.Stages {
		if run.Stages[i].Status == model.StageStatusPending {
			run.Stages[i].Status = model.StageStatusSkipped
		}
	}
}

// skipStage 带原因跳过指定阶段
func skipStage(run *model.WorkflowRun, stage model.Stage, reason string) {
	if st := run.StageByName(stage); st != nil && st.Status == model.StageStatusPending {
		st.Status = model.StageStatusSkipped
		st.Error = reason
	}
}

// oncePolicy 单次执行策略（阶段自身不重试）
func oncePolicy() backoff.Policy {
	return backoff.Policy{MaxAttempts: 1}
}

// isLogicError 输入性逻辑错误判定
func isLogicError(err error) bool {
	switch errorutil.KindOf(err) {
	case errorutil.KindElementNotFound, errorutil.KindValidation, errorutil.KindInvalidImage:
		return true
	}
	return false
}
