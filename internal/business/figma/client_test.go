package figma

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.FigmaConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Format:  "png",
		Scale:   2,
		Timeout: 5 * time.Second,
	})
}

func TestRenderImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-Figma-Token"))
		assert.Equal(t, "/images/filekey123", r.URL.Path)
		assert.Equal(t, "1:2", r.URL.Query().Get("ids"))
		fmt.Fprint(w, `{"err":"","images":{"1:2":"https://render.example/a.png"}}`)
	}))
	defer srv.Close()

	cli := newTestClient(srv.URL)
	u, err := cli.RenderImage(context.Background(), "filekey123", "1-2", "png", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://render.example/a.png", u)
}

func TestRenderImage_FallsBackToFirstNonEmptyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"err":"","images":{"9:9":"https://render.example/other.png"}}`)
	}))
	defer srv.Close()

	cli := newTestClient(srv.URL)
	u, err := cli.RenderImage(context.Background(), "filekey123", "1-2", "png", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://render.example/other.png", u)
}

func TestRenderImage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"err":"node not renderable","images":{}}`)
	}))
	defer srv.Close()

	cli := newTestClient(srv.URL)
	_, err := cli.RenderImage(context.Background(), "filekey123", "1-2", "png", 2)
	require.Error(t, err)
	assert.True(t, errorutil.IsRetryable(err))
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status    int
		kind      errorutil.Kind
		retryable bool
	}{
		{status: http.StatusForbidden, kind: errorutil.KindAuthorization, retryable: false},
		{status: http.StatusNotFound, kind: errorutil.KindNotFound, retryable: false},
		{status: http.StatusTooManyRequests, kind: errorutil.KindRateLimit, retryable: true},
		{status: http.StatusBadGateway, kind: errorutil.KindTransient, retryable: true},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("status_%d", c.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
			}))
			defer srv.Close()

			cli := newTestClient(srv.URL)
			_, err := cli.RenderImage(context.Background(), "filekey123", "1-2", "png", 2)
			require.Error(t, err)
			assert.True(t, errorutil.IsKind(err, c.kind))
			assert.Equal(t, c.retryable, errorutil.IsRetryable(err))
		})
	}
}

func TestFirstNode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/filekey123", r.URL.Path)
		fmt.Fprint(w, `{"document":{"children":[{"id":"0:1","children":[{"id":"7:11"},{"id":"7:12"}]}]}}`)
	}))
	defer srv.Close()

	cli := newTestClient(srv.URL)
	id, err := cli.FirstNode(context.Background(), "filekey123")
	require.NoError(t, err)
	assert.Equal(t, "7:11", id)
}

func TestFirstNode_EmptyFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"document":{"children":[]}}`)
	}))
	defer srv.Close()

	cli := newTestClient(srv.URL)
	_, err := cli.FirstNode(context.Background(), "filekey123")
	require.Error(t, err)
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pngbytes"))
	}))
	defer srv.Close()

	cli := newTestClient(srv.URL)
	path, err := cli.Download(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pngbytes", string(data))
}
