package host

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	streamReadLimit = 1 << 20
	streamPongWait  = 60 * time.Second
	streamPingEvery = 50 * time.Second
	streamWriteWait = 10 * time.Second
)

// Ack answers every event received over the stream.
type Ack struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StreamHandler accepts a websocket from the game client and feeds each
// text frame to the dispatcher as one event.
type StreamHandler struct {
	dispatcher *Dispatcher
	logg       *logger.Logger
	upgrader   websocket.Upgrader
}

// NewStreamHandler builds the websocket endpoint. The caller authenticates
// the request before it reaches ServeHTTP.
func NewStreamHandler(dispatcher *Dispatcher, logg *logger.Logger) (*StreamHandler, error) {
	if dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dispatcher required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &StreamHandler{
		dispatcher: dispatcher,
		logg:       logg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}, nil
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logg.Warn(r.Context(), "host.stream_upgrade_failed")
		return
	}
	ctx := r.Context()
	h.logg.Info(ctx, "host.stream_opened")
	h.serve(context.WithoutCancel(ctx), conn)
	h.logg.Info(ctx, "host.stream_closed")
}

func (h *StreamHandler) serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(conn, done)

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logg.Error(ctx, "host.stream_read_failed", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var evt Event
		ack := Ack{OK: true}
		if err := json.Unmarshal(payload, &evt); err != nil {
			ack = failedAck(pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed event"))
		} else {
			ack.Action = evt.Action
			if err := h.dispatcher.Dispatch(ctx, evt); err != nil {
				ack = failedAck(err)
				ack.Action = evt.Action
				h.logg.Warn(h.logg.WithField(ctx, "action", evt.Action), "host.stream_event_rejected")
			}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(ack); err != nil {
			return
		}
	}
}

// keepAlive pings until done closes. Writes from this goroutine only use
// WriteControl, which gorilla allows concurrently with WriteJSON.
func (h *StreamHandler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

func failedAck(err error) Ack {
	ack := Ack{OK: false, Code: string(pkgerrors.CodeInternal), Error: err.Error()}
	if typed := pkgerrors.As(err); typed != nil {
		ack.Code = string(typed.Code())
		ack.Error = typed.Message()
	}
	return ack
}
