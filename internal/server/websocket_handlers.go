package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/pipeline"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// ScanStreamRequest is a scan request sent over the WebSocket stream.
// Image carries the encoded image bytes (base64 over JSON).
type ScanStreamRequest struct {
	Image  []byte `json:"image"`
	Family string `json:"family,omitempty"`
	Policy string `json:"policy,omitempty"`
}

// ScanStreamResponse is a message sent back over the stream.
type ScanStreamResponse struct {
	Type      string                 `json:"type"`
	Status    string                 `json:"status"` // "processing", "completed", "error"
	Result    *pipeline.DecodeResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	ErrorType string                 `json:"error_type,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// wsWriter is the subset of *websocket.Conn the senders need.
type wsWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// scanStreamHandler handles WebSocket connections for streaming scans.
func (s *Server) scanStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleScanStream(conn)
}

// handleScanStream processes messages from a WebSocket connection.
func (s *Server) handleScanStream(conn *websocket.Conn) {
	// Read deadline prevents hanging connections; pongs extend it.
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep connection alive
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleScanStreamMessage(conn, data)
		}
	}
}

// handleScanStreamMessage processes one scan request message.
func (s *Server) handleScanStreamMessage(conn *websocket.Conn, data []byte) {
	var req ScanStreamRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendStreamError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}
	if len(req.Image) == 0 {
		s.sendStreamError(conn, "invalid_request", "No image data provided")
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)
	s.sendStreamResponse(conn, ScanStreamResponse{
		Type:      "scan_response",
		Status:    "processing",
		RequestID: requestID,
	})

	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		s.sendStreamError(conn, "processing_error", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	pl := s.pipeline
	if req.Family != "" || req.Policy != "" {
		pl, err = s.streamPipeline(req)
		if err != nil {
			s.sendStreamError(conn, "invalid_request", err.Error())
			return
		}
	}

	ctx := context.Background()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res, err := pl.Scan(ctx, img)
	scanDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())

	if err != nil {
		_, label := scanErrorStatus(err)
		scanRequestsTotal.WithLabelValues("websocket", label).Inc()
		s.sendStreamError(conn, "scan_error", err.Error())
		return
	}

	scanRequestsTotal.WithLabelValues("websocket", "hit").Inc()
	scanHitsByFamily.WithLabelValues(string(res.Family), res.Engine).Inc()

	s.sendStreamResponse(conn, ScanStreamResponse{
		Type:      "scan_response",
		Status:    "completed",
		Result:    res,
		RequestID: requestID,
	})
}

// streamPipeline builds a per-request pipeline with family or policy
// overrides from the stream message.
func (s *Server) streamPipeline(req ScanStreamRequest) (*pipeline.Pipeline, error) {
	cfg := s.pipeline.Config()
	b := pipeline.NewBuilder().
		WithTimeout(cfg.Timeout).
		WithWorkers(cfg.MaxWorkers).
		WithZBar(cfg.ZBarEnabled, cfg.ZBar.Binary)
	if req.Family != "" {
		b = b.WithFamily(engine.Family(req.Family))
	} else {
		b = b.WithFamily(cfg.Family).WithPlan(cfg.Plan)
	}
	if req.Policy != "" {
		b = b.WithPolicy(pipeline.Policy(req.Policy))
	} else {
		b = b.WithPolicy(cfg.Policy)
	}
	return b.Build()
}

// sendStreamResponse sends a response message over the WebSocket.
func (s *Server) sendStreamResponse(conn wsWriter, response ScanStreamResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendStreamError sends an error message over the WebSocket.
func (s *Server) sendStreamError(conn wsWriter, errorType, message string) {
	s.sendStreamResponse(conn, ScanStreamResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	})
}
