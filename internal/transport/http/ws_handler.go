package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-runner/internal/app"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type restartPayload struct {
	Difficulty string `json:"difficulty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and streams snapshots of one session. Without
// a sessionId query parameter a new session is started at ?difficulty=.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	if sessionID == "" {
		snap, err := h.service.Start(ctx, r.URL.Query().Get("difficulty"))
		if err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
		sessionID = snap.SessionID
		// Sessions opened over the socket live as long as the connection.
		defer h.service.End(context.WithoutCancel(ctx), sessionID)
	}

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	logger := h.logger.With(zap.String("session_id", sessionID))
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches the connection for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					// Session ended; unblock the reader.
					_ = conn.Close()
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(err error) {
		if err == nil {
			return
		}
		select {
		case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
		default:
			logger.Debug("ws error dropped", zap.Error(err))
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(errInvalidPayload)
				continue
			}
			_, err := h.service.Answer(ctx, sessionID, payload.Option)
			reply(err)
		case "skip":
			_, err := h.service.Skip(ctx, sessionID)
			reply(err)
		case "next":
			_, err := h.service.Next(ctx, sessionID)
			reply(err)
		case "previous":
			_, err := h.service.Previous(ctx, sessionID)
			reply(err)
		case "restart":
			var payload restartPayload
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					reply(errInvalidPayload)
					continue
				}
			}
			_, err := h.service.Restart(ctx, sessionID, payload.Difficulty)
			reply(err)
		default:
			reply(errUnsupportedMessage)
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var (
	errInvalidPayload     = errors.New("invalid payload")
	errUnsupportedMessage = errors.New("unsupported message type")
)
