package correlation

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID_Length(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 8)
}

func TestNewID_Unique(t *testing.T) {
	ids := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		ids[NewID()] = struct{}{}
	}
	assert.Len(t, ids, 100)
}

func TestWithID_and_ID_Roundtrip(t *testing.T) {
	ctx := WithID(context.Background(), "cafe0042")
	id, ok := ID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "cafe0042", id)
}

func TestID_Missing(t *testing.T) {
	id, ok := ID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestID_EmptyString(t *testing.T) {
	ctx := WithID(context.Background(), "")
	id, ok := ID(ctx)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func newCapturingLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewHandler(inner)), &buf
}

func TestHandler_AddsCorrelationID(t *testing.T) {
	logger, buf := newCapturingLogger()

	ctx := WithID(context.Background(), "vote4242")
	logger.InfoContext(ctx, "vote cast", "post_id", 7)

	output := buf.String()
	assert.Contains(t, output, "correlation_id=vote4242")
	assert.Contains(t, output, "post_id=7")
	assert.Contains(t, output, "vote cast")
}

func TestHandler_NoCorrelationID_WhenMissing(t *testing.T) {
	logger, buf := newCapturingLogger()

	logger.InfoContext(context.Background(), "no correlation")

	assert.NotContains(t, buf.String(), "correlation_id")
}

func TestHandler_WithAttrs_PreservesCorrelation(t *testing.T) {
	logger, buf := newCapturingLogger()
	logger = logger.With("component", "feed")

	ctx := WithID(context.Background(), "feed0001")
	logger.InfoContext(ctx, "page served")

	output := buf.String()
	assert.Contains(t, output, "correlation_id=feed0001")
	assert.Contains(t, output, "component=feed")
}

func TestHandler_WithGroup_PreservesCorrelation(t *testing.T) {
	logger, buf := newCapturingLogger()
	logger = logger.WithGroup("request")

	ctx := WithID(context.Background(), "grp00001")
	logger.InfoContext(ctx, "grouped", "path", "/api/feed")

	output := buf.String()
	assert.Contains(t, output, "correlation_id=grp00001")
	assert.Contains(t, output, "request.path=/api/feed")
}
