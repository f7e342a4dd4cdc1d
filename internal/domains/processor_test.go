package domains

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2265681/Project-Auto-Testing/internal/domains/common/job"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
	"github.com/s2265681/Project-Auto-Testing/pkg/lmstfyx"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

func TestGetProcessBuriesMalformedJob(t *testing.T) {
	proc := GetProcess(logger.Nop{}, nil)

	resp := proc(context.Background(), &client.Job{ID: "job-1", Data: []byte("not json")})
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}

func TestGetProcessBuriesUnknownActionType(t *testing.T) {
	proc := GetProcess(logger.Nop{}, nil)

	payload, err := json.Marshal(map[string]interface{}{
		"payload": map[string]interface{}{
			"data": map[string]interface{}{
				"request_id":  "req-1",
				"org_id":      "0",
				"action_type": "no_such_action",
				"id":          "run-1",
				"data":        map[string]interface{}{},
			},
		},
	})
	require.NoError(t, err)

	resp := proc(context.Background(), &client.Job{ID: "job-2", Data: payload})
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}

func TestParseJobFillsMissingRequestID(t *testing.T) {
	payload, err := json.Marshal(map[string]interface{}{
		"payload": map[string]interface{}{
			"data": map[string]interface{}{
				"action_type": "ui_check",
				"id":          "run-9",
				"data":        map[string]interface{}{},
			},
		},
	})
	require.NoError(t, err)

	_, meta, _, err := parseJob(context.Background(), &client.Job{ID: "job-3", Data: payload}, logger.Nop{})
	require.NoError(t, err)
	assert.NotEmpty(t, meta.RequestID)
	assert.Equal(t, "run-9", meta.ID)
}

func TestDoJobReportActions(t *testing.T) {
	ctx := context.Background()
	meta := &job.Meta{ID: "run-1"}
	marshal := func() ([]byte, error) { return []byte(`{"id":"run-1"}`), nil }

	t.Run("success acks", func(t *testing.T) {
		resp := doJobReport(ctx, marshal, nil, meta, logger.Nop{})
		assert.Equal(t, lmstfyx.JobRespStatusSuccess, resp.Action)
		assert.NotEmpty(t, resp.Data)
	})

	t.Run("retryable failure releases with delay", func(t *testing.T) {
		resp := doJobReport(ctx, marshal, errorutil.Transient("network blip"), meta, logger.Nop{})
		assert.Equal(t, lmstfyx.JobRespStatusRelease, resp.Action)
		assert.Equal(t, uint32(releaseDelaySeconds), resp.Delay)
	})

	t.Run("terminal failure buries", func(t *testing.T) {
		resp := doJobReport(ctx, marshal, errorutil.Validation("bad selector"), meta, logger.Nop{})
		assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
	})
}
