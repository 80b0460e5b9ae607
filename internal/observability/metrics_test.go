package observability

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/dgramchunk/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordPack(3, [][]byte{make([]byte, 1000), make([]byte, 500)}, 1000)
	RecordPack(0, nil, 0)
	RecordPackRejected("item_too_large")
	RecordUnpack(3)
	RecordUnpackFailure("info")
	RecordPacket("send", "ok")
	RecordHTTPRequest("node-a", "GET", "/healthz", 200, 12*time.Millisecond)
}

func TestServerHealthAndMetrics(t *testing.T) {
	testlog.Start(t)
	s := NewServer("node-a", zerolog.Nop())
	RecordPack(2, [][]byte{make([]byte, 12)}, 1024)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "node-a", body["node"])

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	raw, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "dgramchunk_pack_messages_total"))
}
