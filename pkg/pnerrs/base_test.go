package pnerrs_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
)

func TestBaseError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := pnerrs.NewNetworkError(pnerrs.ErrCodeConnectionFailed, "admin request failed", cause).
		WithHost("admin.pubnub.com")

	assert.Equal(t, "admin request failed: dial tcp: refused", err.Message())
	assert.Contains(t, err.Error(), "admin request failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "admin.pubnub.com", err.Metadata()["host"])

	err.Metadata()["host"] = "changed"
	assert.Equal(t, "admin.pubnub.com", err.Metadata()["host"])
}

func TestBaseErrorLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("refused", "error", pnerrs.NewKeysetMismatchError("k-1", "k-2"))

	out := buf.String()
	assert.Contains(t, out, "error.code=keyset_mismatch")
	assert.Contains(t, out, "error.attempted=k-1")
	assert.Contains(t, out, "error.permitted=k-2")
}
