package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"agrivoltaics/internal/analysis"
	"agrivoltaics/internal/api/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message types on the sweep stream.
const (
	TypeSweepStart = "sweep:start" // client -> server, payload SweepRequest
	TypeSweepPoint = "sweep:point" // server -> client, payload analysis.Point
	TypeSweepDone  = "sweep:done"  // server -> client, payload SweepResponse
	TypeError      = "error"       // server -> client, payload ErrorDetail
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

const startTimeout = 30 * time.Second

// StreamSweep handles GET /api/v1/sweep/stream. The client sends one
// sweep:start message; the server answers with a sweep:point per finished grid
// point and a final sweep:done, then closes. Closing the socket early cancels
// the sweep.
func (h *SweepHandler) StreamSweep(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	send := func(msgType string, payload any) error {
		msg, err := NewEnvelope(msgType, payload)
		if err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, msg)
	}
	fail := func(err error) {
		_, detail := errorDetail(err)
		if werr := send(TypeError, detail); werr != nil {
			log.Printf("WebSocket write error: %v", werr)
		}
	}

	req, err := readStart(conn)
	if err != nil {
		fail(err)
		return
	}
	plan, err := h.prepare(*req)
	if err != nil {
		fail(err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		// Anything the client sends after the start message is ignored; a read
		// error means it went away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	var writeErr error
	resp, err := h.execute(ctx, plan, func(p analysis.Point) {
		if writeErr != nil {
			return
		}
		if writeErr = send(TypeSweepPoint, p); writeErr != nil {
			cancel()
		}
	})
	if writeErr != nil {
		log.Printf("WebSocket write error: %v", writeErr)
		return
	}
	if err != nil {
		fail(err)
		return
	}
	if err := send(TypeSweepDone, resp); err != nil {
		log.Printf("WebSocket write error: %v", err)
		return
	}
	closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteMessage(websocket.CloseMessage, closing); err != nil {
		log.Printf("WebSocket close error: %v", err)
	}
}

func readStart(conn *websocket.Conn) (*models.SweepRequest, error) {
	if err := conn.SetReadDeadline(time.Now().Add(startTimeout)); err != nil {
		return nil, err
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	if env.Type != TypeSweepStart {
		return nil, fmt.Errorf("%w: expected %s, got %q", errInvalidRequest, TypeSweepStart, env.Type)
	}
	var req models.SweepRequest
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return &req, nil
}
