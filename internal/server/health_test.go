package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusHandler_GetStatus(t *testing.T) {
	h := NewStatusHandler()

	status := h.GetStatus()
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, int64(0), status.ActiveSessions)
	assert.NotEmpty(t, status.Version)
}

func TestStatusHandler_SessionTracking(t *testing.T) {
	h := NewStatusHandler()

	h.IncrementSessions()
	h.IncrementSessions()
	h.IncrementSessions()
	assert.Equal(t, int64(3), h.GetStatus().ActiveSessions)

	h.DecrementSessions()
	assert.Equal(t, int64(2), h.GetStatus().ActiveSessions)
}

func TestStatusHandler_ServeHTTP(t *testing.T) {
	h := NewStatusHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var status Status
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, "healthy", status.Status)
}

func TestStatusHandler_ServeHTTP_HEAD(t *testing.T) {
	h := NewStatusHandler()

	req := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, w.Body.Len())
}

func TestStatusHandler_ServeHTTP_InvalidMethod(t *testing.T) {
	h := NewStatusHandler()

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStatusHandler_ServeLive(t *testing.T) {
	h := NewStatusHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz/live", nil)
	w := httptest.NewRecorder()
	h.ServeLive(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "alive", body["status"])
}

func TestStatusHandler_ServeReady(t *testing.T) {
	h := NewStatusHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz/ready", nil)
	w := httptest.NewRecorder()
	h.ServeReady(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, true, body["ready"])
}

func TestStatusHandler_Uptime(t *testing.T) {
	h := NewStatusHandler()
	time.Sleep(10 * time.Millisecond)

	status := h.GetStatus()
	assert.NotEmpty(t, status.Uptime)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Second)
}

func TestStatusHandler_ConcurrentAccess(t *testing.T) {
	h := NewStatusHandler()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				h.IncrementSessions()
				_ = h.GetStatus()
				h.DecrementSessions()
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Equal(t, int64(0), h.GetStatus().ActiveSessions)
}
