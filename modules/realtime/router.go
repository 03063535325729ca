package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/logger"
	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/notify"
)

// RouterOptions configures the HTTP surface mounted by Router.
type RouterOptions struct {
	// Metrics, when set, is mounted at GET /metrics.
	Metrics http.Handler

	// HealthChecks run on GET /healthz; all must pass for READY.
	HealthChecks []func(context.Context) error
}

var validate = validator.New()

// queueEventRequest is the POST /events body.
type queueEventRequest struct {
	Kind     string          `json:"kind" validate:"required"`
	UserID   string          `json:"userId" validate:"required"`
	Priority string          `json:"priority" validate:"omitempty,oneof=critical high medium low"`
	Payload  json.RawMessage `json:"payload"`
}

type queueEventResponse struct {
	EventID string `json:"eventId"`
	Status  string `json:"status"`
}

type markReadRequest struct {
	UserID string   `json:"userId" validate:"required"`
	IDs    []string `json:"ids" validate:"required,min=1"`
}

// Router mounts the module's HTTP surface: event ingestion, stats, the
// websocket endpoint and the notification pull API.
func (s *Service) Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Post("/events", s.handleQueueEvent)
	r.Get("/stats", s.handleStats)
	r.Get("/ws", s.wsHandler.ServeHTTP)

	r.Route("/notifications", func(n chi.Router) {
		n.Get("/", s.handleListNotifications)
		n.Post("/read", s.handleMarkRead)
		n.Get("/unread-count", s.handleUnreadCount)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	r.Get("/healthz", s.handleHealth(opts.HealthChecks))

	return r
}

func (s *Service) handleQueueEvent(w http.ResponseWriter, r *http.Request) {
	var req queueEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	kind, err := event.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	priority, err := event.ParsePriority(req.Priority)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var payload any
	if len(req.Payload) > 0 {
		payload = req.Payload
	}

	id, err := s.QueueEvent(r.Context(), kind, req.UserID, payload, priority)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to queue event",
			logger.EventKind(req.Kind), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to queue event")
		return
	}

	writeJSON(w, http.StatusAccepted, queueEventResponse{EventID: id.String(), Status: "queued"})
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Stats())
}

func (s *Service) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	opts := notify.ListOptions{Limit: 50}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Offset = n
		}
	}
	opts.OnlyUnread = r.URL.Query().Get("unread") == "true"

	list, err := s.notifications.List(r.Context(), userID, opts)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list notifications",
			logger.UserID(userID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if list == nil {
		list = []notify.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (s *Service) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.notifications.MarkRead(r.Context(), req.UserID, req.IDs...); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to mark notifications read",
			logger.UserID(req.UserID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	count, err := s.notifications.CountUnread(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to count unread notifications",
			logger.UserID(userID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to count unread notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unread": count})
}

func (s *Service) handleHealth(checks []func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check(ctx); err != nil {
				s.logger.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				writeError(w, http.StatusServiceUnavailable, "NOT_READY")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
