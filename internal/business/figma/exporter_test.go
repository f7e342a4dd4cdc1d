package figma

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
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
	result *model.CaptureResult
	err    error
	calls  int
}

func (s *stubCapturer) Capture(ctx context.Context, req *model.CaptureRequest) (*model.CaptureResult, error) {
	s.calls++
	return s.result, s.err
}

func fastPolicy() backoff.Policy {
	return backoff.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestExport_DirectSuccess(t *testing.T) {
	var downloads int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/images/filekey123" {
			fmt.Fprintf(w, `{"err":"","images":{"1:2":"%s/render.png"}}`, "http://"+r.Host)
			return
		}
		downloads++
		w.Write([]byte("png"))
	}))
	defer srv.Close()

	capturer := &stubCapturer{}
	exp := NewExporter(newTestClient(srv.URL), capturer, fastPolicy(), "png", 2, logger.Nop{})

	asset, err := exp.Export(context.Background(), &model.DesignReference{
		FileKey: "filekey123",
		NodeID:  "1-2",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ExportMethodDirect, asset.Method)
	assert.False(t, asset.Degraded)
	assert.Equal(t, 1, downloads)
	assert.Zero(t, capturer.calls, "fallback must not run when direct export succeeds")
}

func TestExport_DegradedNodeResolution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/files/filekey123":
			fmt.Fprint(w, `{"document":{"children":[{"id":"0:1","children":[{"id":"7:11"}]}]}}`)
		case r.URL.Path == "/images/filekey123":
			assert.Equal(t, "7:11", r.URL.Query().Get("ids"))
			fmt.Fprintf(w, `{"err":"","images":{"7:11":"%s/render.png"}}`, "http://"+r.Host)
		default:
			w.Write([]byte("png"))
		}
	}))
	defer srv.Close()

	exp := NewExporter(newTestClient(srv.URL), &stubCapturer{}, fastPolicy(), "png", 2, logger.Nop{})

	asset, err := exp.Export(context.Background(), &model.DesignReference{FileKey: "filekey123"})
	require.NoError(t, err)
	assert.True(t, asset.Degraded)
	assert.Equal(t, "7:11", asset.NodeID)
}

func TestExport_FallbackAfterDirectFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	capturer := &stubCapturer{result: &model.CaptureResult{ImagePath: "/tmp/fallback.png"}}
	exp := NewExporter(newTestClient(srv.URL), capturer, fastPolicy(), "png", 2, logger.Nop{})

	asset, err := exp.Export(context.Background(), &model.DesignReference{
		FileKey: "filekey123",
		NodeID:  "1-2",
		RawURL:  "https://www.figma.com/file/filekey123/x",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ExportMethodFallback, asset.Method)
	assert.Equal(t, "/tmp/fallback.png", asset.ImagePath)
	assert.Equal(t, 1, capturer.calls)
}

func TestExport_BothPathsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	capturer := &stubCapturer{err: errorutil.CaptureTimeout("render page timed out")}
	exp := NewExporter(newTestClient(srv.URL), capturer, fastPolicy(), "png", 2, logger.Nop{})

	_, err := exp.Export(context.Background(), &model.DesignReference{
		FileKey: "filekey123",
		NodeID:  "1-2",
	})
	require.Error(t, err)
	assert.True(t, errorutil.IsKind(err, errorutil.KindDesignExport))

	// 两条失败原因都要在链上
	assert.Contains(t, err.Error(), "unauthorized")
	assert.Contains(t, err.Error(), "timed out")
}
