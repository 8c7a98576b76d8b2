// Package websocket streams live device screens to calibration clients.
package websocket

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/shinjadong/careon-blog-ai/internal/adb"
	"github.com/shinjadong/careon-blog-ai/internal/config"
	"github.com/shinjadong/careon-blog-ai/internal/logger"
)

// frameInterval throttles the stream to roughly two frames per second, which
// is enough for an operator lining up calibration taps without saturating the
// adb channel.
const frameInterval = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ScreenSource captures frames from one device.
type ScreenSource interface {
	Connect(ctx context.Context) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// Streamer serves the live screen WebSocket endpoint.
type Streamer struct {
	cfg    *config.Config
	source func(serial string) ScreenSource
}

// NewStreamer wires the streamer to adb. Tests swap the source.
func NewStreamer(cfg *config.Config) *Streamer {
	return &Streamer{
		cfg: cfg,
		source: func(serial string) ScreenSource {
			return adb.NewController(cfg.ADBPath, serial, cfg.ADBTimeout)
		},
	}
}

// SetSource replaces the frame source factory.
func (s *Streamer) SetSource(source func(serial string) ScreenSource) {
	if source != nil {
		s.source = source
	}
}

type frameMessage struct {
	Type      string `json:"type"`
	DeviceID  string `json:"device_id"`
	Frame     string `json:"frame,omitempty"`
	Format    string `json:"format,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type clientMessage struct {
	Type string `json:"type"`
}

// Stream handles GET /api/v1/devices/stream/:serial. Frames flow until the
// client sends {"type":"stop"}, disconnects, or the capture fails twice in a
// row.
func (s *Streamer) Stream(c *gin.Context) {
	serial := c.Param("serial")
	log := logger.With("stream")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	src := s.source(serial)
	ctx := c.Request.Context()
	if err := src.Connect(ctx); err != nil {
		_ = conn.WriteJSON(frameMessage{
			Type:      "error",
			DeviceID:  serial,
			Error:     err.Error(),
			Timestamp: time.Now().UnixMilli(),
		})
		return
	}

	stop := make(chan struct{})
	go func() {
		defer close(stop)
		for {
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "stop" {
				return
			}
		}
	}()

	log.Info().Str("serial", serial).Msg("screen stream started")
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-stop:
			log.Info().Str("serial", serial).Msg("screen stream stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			png, err := src.Screenshot(ctx)
			if err != nil {
				failures++
				log.Warn().Err(err).Str("serial", serial).Msg("frame capture failed")
				if failures >= 2 {
					_ = conn.WriteJSON(frameMessage{
						Type:      "error",
						DeviceID:  serial,
						Error:     "screen capture failed: " + err.Error(),
						Timestamp: time.Now().UnixMilli(),
					})
					return
				}
				continue
			}
			failures = 0

			err = conn.WriteJSON(frameMessage{
				Type:      "frame",
				DeviceID:  serial,
				Frame:     base64.StdEncoding.EncodeToString(png),
				Format:    "png",
				Timestamp: time.Now().UnixMilli(),
			})
			if err != nil {
				return
			}
		}
	}
}
