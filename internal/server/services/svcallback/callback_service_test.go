package svcallback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2265681/Project-Auto-Testing/internal/business/bitable"
	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/config"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

func completedRun() *model.WorkflowRun {
	return &model.WorkflowRun{
		RunID:    "run-1",
		Status:   model.RunStatusCompleted,
		CaseText: "1. 打开页面\n2. 核对布局",
		Report: &model.DiffReport{
			HistogramSimilarity: 0.93,
			SSIM:                0.88,
			Rating:              model.RatingExcellent,
		},
	}
}

func TestHandleCallbackUpdatesBitableRecord(t *testing.T) {
	var gotPath string
	var gotFields map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotFields = body.Fields
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "msg": "ok"})
	}))
	defer srv.Close()

	client := bitable.NewClient(config.FeishuConfig{BaseURL: srv.URL, Token: "t"})
	svc := NewCallbackService(client, logger.Nop{})

	callback := &model.RunCallback{
		RunID:  "run-1",
		Status: string(model.RunStatusCompleted),
		Run:    completedRun(),
		RunMetadata: model.RunMetadata{
			AppToken: "app-1",
			TableID:  "tbl-1",
			RecordID: "rec-1",
		},
	}

	require.NoError(t, svc.HandleCallback(context.Background(), callback))
	assert.Equal(t, "/bitable/v1/apps/app-1/tables/tbl-1/records/rec-1", gotPath)
	assert.Equal(t, "成功", gotFields[bitable.FieldExecResult])
	assert.Contains(t, gotFields[bitable.FieldSimReport], "相似度")
	assert.Equal(t, "1. 打开页面\n2. 核对布局", gotFields[bitable.FieldCaseDoc])
}

func TestHandleCallbackSkipsWithoutMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("bitable should not be called without metadata")
	}))
	defer srv.Close()

	client := bitable.NewClient(config.FeishuConfig{BaseURL: srv.URL, Token: "t"})
	svc := NewCallbackService(client, logger.Nop{})

	callback := &model.RunCallback{
		RunID:  "run-2",
		Status: string(model.RunStatusFailed),
		Run:    completedRun(),
	}

	require.NoError(t, svc.HandleCallback(context.Background(), callback))
}

func TestHandleCallbackRequiresRunDetail(t *testing.T) {
	client := bitable.NewClient(config.FeishuConfig{BaseURL: "http://127.0.0.1:0", Token: "t"})
	svc := NewCallbackService(client, logger.Nop{})

	callback := &model.RunCallback{
		RunID: "run-3",
		RunMetadata: model.RunMetadata{
			AppToken: "app-1",
			TableID:  "tbl-1",
			RecordID: "rec-1",
		},
	}

	err := svc.HandleCallback(context.Background(), callback)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing run detail")
}
