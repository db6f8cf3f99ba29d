package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
)

// NewRouter exposes the quiz service over REST under /api/v1 plus the
// websocket stream at /ws.
func NewRouter(service *app.QuizService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &restHandler{service: service, logger: logger}
	ws := NewWSHandler(service, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.start)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.snapshot)
				r.Delete("/", h.end)
				r.Post("/answer", h.answer)
				r.Post("/skip", h.event(service.Skip))
				r.Post("/next", h.event(service.Next))
				r.Post("/previous", h.event(service.Previous))
				r.Post("/restart", h.restart)
			})
		})
		r.Get("/highscores/{difficulty}", h.highScore)
	})
	return r
}

type restHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

type startRequest struct {
	Difficulty string `json:"difficulty"`
}

type answerRequest struct {
	Option string `json:"option"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *restHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	snap, err := h.service.Start(r.Context(), req.Difficulty)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *restHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *restHandler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, err := h.service.Answer(r.Context(), chi.URLParam(r, "id"), req.Option)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *restHandler) restart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	snap, err := h.service.Restart(r.Context(), chi.URLParam(r, "id"), req.Difficulty)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *restHandler) event(apply func(ctx context.Context, id string) (domain.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := apply(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (h *restHandler) end(w http.ResponseWriter, r *http.Request) {
	h.service.End(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *restHandler) highScore(w http.ResponseWriter, r *http.Request) {
	hs, err := h.service.HighScore(r.Context(), chi.URLParam(r, "difficulty"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (h *restHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionNotReady):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeOptional accepts an empty body as the zero request.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
