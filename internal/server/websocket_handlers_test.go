package server

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/symscan/internal/testutil"
)

func dialStream(t *testing.T) *websocket.Conn {
	t.Helper()

	_, mux := newTestServer(t)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/scan/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readStreamResponse(t *testing.T, conn *websocket.Conn) ScanStreamResponse {
	t.Helper()

	var resp ScanStreamResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestScanStreamDecodesImage(t *testing.T) {
	conn := dialStream(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testutil.GenerateQR(t, "STREAM-1", 200)))

	require.NoError(t, conn.WriteJSON(ScanStreamRequest{Image: buf.Bytes()}))

	processing := readStreamResponse(t, conn)
	assert.Equal(t, "processing", processing.Status)
	assert.NotEmpty(t, processing.RequestID)

	completed := readStreamResponse(t, conn)
	require.Equal(t, "completed", completed.Status)
	require.NotNil(t, completed.Result)
	assert.Equal(t, "STREAM-1", completed.Result.Text)
	assert.Equal(t, processing.RequestID, completed.RequestID)
}

func TestScanStreamEmptyImage(t *testing.T) {
	conn := dialStream(t)

	require.NoError(t, conn.WriteJSON(ScanStreamRequest{}))

	resp := readStreamResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorType)
}

func TestScanStreamMalformedMessage(t *testing.T) {
	conn := dialStream(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	resp := readStreamResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorType)
}

func TestScanStreamMiss(t *testing.T) {
	conn := dialStream(t)

	blank := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, blank))
	require.NoError(t, conn.WriteJSON(ScanStreamRequest{Image: buf.Bytes(), Family: "qr"}))

	processing := readStreamResponse(t, conn)
	require.Equal(t, "processing", processing.Status)

	errResp := readStreamResponse(t, conn)
	assert.Equal(t, "error", errResp.Status)
	assert.Equal(t, "scan_error", errResp.ErrorType)
}

func TestScanStreamUpgradeRequired(t *testing.T) {
	_, mux := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/scan/stream", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
