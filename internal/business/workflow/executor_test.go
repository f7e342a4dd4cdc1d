package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/backoff"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

type stubCapturer struct {
	failures int // 前 N 次返回瞬时错误
	err      error
	calls    int
}

func (s *stubCapturer) Capture(ctx context.Context, req *model.CaptureRequest) (*model.CaptureResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.calls <= s.failures {
		return nil, errorutil.Transient("capture flake %d", s.calls)
	}
	return &model.CaptureResult{
		ImagePath:  writeTempFile(),
		Viewport:   req.Device,
		CapturedAt: time.Now(),
	}, nil
}

type stubExporter struct {
	err   error
	calls int
}

func (s *stubExporter) Export(ctx context.Context, ref *model.DesignReference) (*model.DesignAsset, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &model.DesignAsset{
		ImagePath:  writeTempFile(),
		Method:     model.ExportMethodDirect,
		NodeID:     ref.NodeID,
		ExportedAt: time.Now(),
	}, nil
}

type stubComparer struct {
	err   error
	calls int
}

func (s *stubComparer) CompareFiles(pathA, pathB, diffPath string) (*model.DiffReport, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	os.WriteFile(diffPath, []byte("diff"), 0o644)
	return &model.DiffReport{
		HistogramSimilarity: 0.95,
		SSIM:                0.9,
		Rating:              model.RatingExcellent,
		DiffImagePath:       diffPath,
	}, nil
}

type stubFetcher struct {
	content string
	err     error
}

func (s *stubFetcher) FetchContent(ctx context.Context, docRef string) (string, error) {
	return s.content, s.err
}

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, prd string) string {
	return "generated cases for: " + prd
}

type stubPersister struct {
	runs []*model.WorkflowRun
	err  error
}

func (s *stubPersister) PersistRun(ctx context.Context, run *model.WorkflowRun) error {
	s.runs = append(s.runs, run)
	return s.err
}

func writeTempFile() string {
	f, _ := os.CreateTemp("", "workflow-test-*.png")
	f.WriteString("img")
	f.Close()
	return f.Name()
}

func fastPolicies() Policies {
	p := backoff.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return Policies{Capture: p, Export: p, Source: p, Persist: p}
}

type fixture struct {
	capturer  *stubCapturer
	exporter  *stubExporter
	comparer  *stubComparer
	fetcher   *stubFetcher
	persister *stubPersister
	exec      *Executor
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		capturer:  &stubCapturer{},
		exporter:  &stubExporter{},
		comparer:  &stubComparer{},
		fetcher:   &stubFetcher{content: "prd text"},
		persister: &stubPersister{},
	}
	f.exec = NewExecutor(
		f.capturer, f.exporter, f.comparer, f.fetcher, stubGenerator{}, f.persister,
		fastPolicies(), t.TempDir(), time.Second, logger.Nop{},
	)
	return f
}

func bothSpec(runID string) *model.RunSpec {
	return &model.RunSpec{
		RunID:             runID,
		SourceDocumentRef: "https://feishu.cn/docx/doc123",
		DesignRef:         "https://www.figma.com/file/filekey12345/x?node-id=1-2",
		TargetURL:         "https://example.com",
		Device:            mustDevice("desktop"),
		Scope:             model.ScopeBoth,
	}
}

func mustDevice(name string) model.DeviceProfile {
	p, _ := model.DeviceByName(name)
	return p
}

func stageStatus(run *model.WorkflowRun, stage model.Stage) model.StageStatus {
	return run.StageByName(stage).Status
}

func TestExecute_FullSuccess(t *testing.T) {
	f := newFixture(t)

	run := f.exec.Execute(context.Background(), bothSpec("run-ok"))

	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.False(t, run.Partial)
	require.NotNil(t, run.Report)
	assert.Equal(t, model.RatingExcellent, run.Report.Rating)
	assert.Equal(t, "generated cases for: prd text", run.CaseText)

	for _, stage := range []model.Stage{
		model.StageParsingSource, model.StageGeneratingCases,
		model.StageCapturingWebsite, model.StageExportingDesign,
		model.StageComparing, model.StagePersisting,
	} {
		assert.Equal(t, model.StageStatusSucceeded, stageStatus(run, stage), string(stage))
	}

	// 产物移入运行目录
	assert.FileExists(t, filepath.Join(run.OutputDir, "website.png"))
	assert.FileExists(t, filepath.Join(run.OutputDir, "design.png"))
	assert.FileExists(t, filepath.Join(run.OutputDir, "report.json"))
	require.Len(t, f.persister.runs, 1)
	assert.Equal(t, model.RunStatusCompleted, f.persister.runs[0].Status)
}

func TestExecute_CaptureRetriesTransientFailures(t *testing.T) {
	f := newFixture(t)
	f.capturer.failures = 2

	run := f.exec.Execute(context.Background(), bothSpec("run-retry"))

	assert.Equal(t, model.RunStatusCompleted, run.Status)
	st := run.StageByName(model.StageCapturingWebsite)
	assert.Equal(t, model.StageStatusSucceeded, st.Status)
	assert.Equal(t, 3, st.Attempts)
}

func TestExecute_ExportTerminalFailureIsPartial(t *testing.T) {
	f := newFixture(t)
	f.exporter.err = errorutil.Authorization("design token rejected")

	run := f.exec.Execute(context.Background(), bothSpec("run-partial"))

	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.True(t, run.Partial)
	require.Len(t, run.Missing, 1)
	assert.Contains(t, run.Missing[0], "design asset")
	assert.Contains(t, run.Missing[0], "token rejected")

	assert.Equal(t, model.StageStatusFailed, stageStatus(run, model.StageExportingDesign))
	assert.Equal(t, model.StageStatusSkipped, stageStatus(run, model.StageComparing))
	assert.Equal(t, model.StageStatusSucceeded, stageStatus(run, model.StagePersisting))
	assert.Nil(t, run.Report)
	assert.Zero(t, f.comparer.calls)

	// 已有产物照常落盘
	assert.FileExists(t, filepath.Join(run.OutputDir, "website.png"))
}

func TestExecute_BothProducersFail(t *testing.T) {
	f := newFixture(t)
	f.capturer.err = errorutil.CaptureTimeout("nav timeout")
	f.exporter.err = errorutil.Authorization("denied")

	run := f.exec.Execute(context.Background(), bothSpec("run-bothfail"))

	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Equal(t, model.StageStatusSkipped, stageStatus(run, model.StageComparing))
}

func TestExecute_ElementNotFoundFailsRun(t *testing.T) {
	f := newFixture(t)
	f.capturer.err = errorutil.ElementNotFound("no element matched selector")

	run := f.exec.Execute(context.Background(), bothSpec("run-noelement"))

	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.False(t, run.Partial)
	st := run.StageByName(model.StageCapturingWebsite)
	assert.Equal(t, model.StageStatusFailed, st.Status)
	assert.Equal(t, string(errorutil.KindElementNotFound), st.ErrorKind)
	assert.Equal(t, 1, st.Attempts, "logic errors are not retried")
}

func TestExecute_FunctionalOnlySkipsVisualStages(t *testing.T) {
	f := newFixture(t)
	spec := bothSpec("run-functional")
	spec.Scope = model.ScopeFunctional

	run := f.exec.Execute(context.Background(), spec)

	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.Equal(t, model.StageStatusSkipped, stageStatus(run, model.StageCapturingWebsite))
	assert.Equal(t, model.StageStatusSkipped, stageStatus(run, model.StageExportingDesign))
	assert.Equal(t, model.StageStatusSkipped, stageStatus(run, model.StageComparing))
	assert.Zero(t, f.capturer.calls)
	assert.Zero(t, f.exporter.calls)
}

func TestExecute_SourceFailureFailsFunctionalRun(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = errorutil.NotFound("document missing")
	spec := bothSpec("run-nosource")
	spec.Scope = model.ScopeFunctional

	run := f.exec.Execute(context.Background(), spec)

	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Equal(t, model.StageStatusFailed, stageStatus(run, model.StageParsingSource))
	assert.Equal(t, model.StageStatusSkipped, stageStatus(run, model.StageGeneratingCases))
}

func TestExecute_CancelledBeforeStart(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := f.exec.Execute(ctx, bothSpec("run-cancelled"))

	assert.Equal(t, model.RunStatusCancelled, run.Status)
	for _, st := range run.Stages {
		assert.Equal(t, model.StageStatusSkipped, st.Status, string(st.Stage))
	}
	assert.Empty(t, f.persister.runs, "cancelled run skips persisting stage")
}

func TestExecute_PersistFailureFailsRun(t *testing.T) {
	f := newFixture(t)
	f.persister.err = errorutil.Internal("db down")

	run := f.exec.Execute(context.Background(), bothSpec("run-nopersist"))

	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.Equal(t, model.StageStatusFailed, stageStatus(run, model.StagePersisting))
}
