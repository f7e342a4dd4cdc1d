package errorutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryableClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		retryable bool
		kind      Kind
	}{
		{"validation", Validation("bad target"), false, KindValidation},
		{"element not found", ElementNotFound("no match for %s", ".btn"), false, KindElementNotFound},
		{"invalid image", InvalidImage("zero area"), false, KindInvalidImage},
		{"capture timeout", CaptureTimeout("navigation exceeded %s", "30s"), true, KindCaptureTimeout},
		{"rate limit", RateLimit("429 from figma"), true, KindRateLimit},
		{"transient", Transient("connection reset"), true, KindTransient},
		{"authorization", Authorization("invalid token"), false, KindAuthorization},
		{"not found", NotFound("file missing"), false, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.True(t, IsKind(tt.err, tt.kind))
		})
	}
}

func TestUnknownErrorNotRetryable(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := RateLimit("figma export throttled")
	outer := fmt.Errorf("export stage: %w", inner)

	assert.True(t, IsRetryable(outer))
	assert.Equal(t, KindRateLimit, KindOf(outer))
}

func TestDesignExportCarriesBothCauses(t *testing.T) {
	direct := RateLimit("export api throttled")
	fallback := CaptureTimeout("fallback render timed out")

	err := DesignExport(direct, fallback)
	require.False(t, IsRetryable(err))
	assert.Equal(t, KindDesignExport, KindOf(err))
	assert.True(t, errors.Is(err, direct))
	assert.True(t, errors.Is(err, fallback))
}

func TestWrapKeepsExistingError(t *testing.T) {
	orig := Transient("dial tcp: timeout")
	wrapped := Wrap(orig, "capture failed")
	assert.Same(t, orig, wrapped)

	plain := Wrap(errors.New("boom"), "capture failed")
	require.NotNil(t, plain)
	assert.Equal(t, KindInternal, plain.Kind)
	assert.ErrorContains(t, plain, "capture failed")
}
