package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureRequestMeta(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "10.0.0.7:52114"
	req.Header.Set("X-Device-Id", "d-1")
	req.Header.Set("X-Request-Id", "r-1")

	meta := CaptureRequestMeta(req)
	assert.Equal(t, "10.0.0.7", meta.IP)
	assert.Equal(t, "d-1", meta.DeviceID)
	assert.Equal(t, "r-1", meta.RequestID)
}

func TestCaptureRequestMetaForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "10.0.0.7:52114"
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.7")

	meta := CaptureRequestMeta(req)
	assert.Equal(t, "203.0.113.9", meta.IP)
}

func TestCaptureRequestMetaBarePeerAddress(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "10.0.0.7"

	meta := CaptureRequestMeta(req)
	assert.Equal(t, "10.0.0.7", meta.IP)
	assert.Empty(t, meta.DeviceID)
	assert.Empty(t, meta.RequestID)
}
