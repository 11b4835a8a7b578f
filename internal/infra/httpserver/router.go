package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	appanalysis "github.com/Aayan-01/CLOT/internal/application/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/session"
	"github.com/Aayan-01/CLOT/internal/metrics"
	"github.com/Aayan-01/CLOT/internal/middleware"
)

// maxRequestBytes bounds a whole analyze upload: three images plus
// multipart overhead.
const maxRequestBytes = 3*middleware.MaxImageBytes + 2<<20

// Analyzer runs the garment pipeline for one submission.
type Analyzer interface {
	Submit(ctx context.Context, cmd appanalysis.SubmitCommand) (*session.Session, error)
}

// Chatter answers a follow-up question within a session.
type Chatter interface {
	Respond(ctx context.Context, sessionID, message string) (string, error)
}

// SessionReader looks up a stored session.
type SessionReader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Config carries the router's operational knobs.
type Config struct {
	AllowedOrigins  []string
	RateLimitBurst  int // bucket capacity; 0 disables limiting
	RateLimitPerSec int
	UploadsDir      string // serve /uploads/* from this directory when set
}

type Router struct {
	analyzer Analyzer
	chatter  Chatter
	sessions SessionReader
}

func NewRouter(analyzer Analyzer, chatter Chatter, sessions SessionReader, m *metrics.Metrics, cfg Config) http.Handler {
	rt := &Router{analyzer: analyzer, chatter: chatter, sessions: sessions}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestLogger(m))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if cfg.RateLimitBurst > 0 {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimitBurst, cfg.RateLimitPerSec))
	}

	mux.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_ = writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})
	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())

	mux.Post("/api/analyze", rt.wrap(rt.handleAnalyze))
	mux.Post("/api/chat", rt.wrap(rt.handleChat))
	mux.Get("/api/session/{id}", rt.wrap(rt.handleSession))

	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		mux.Get("/uploads/*", fs.ServeHTTP)
	}

	return mux
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (rt *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var verr *middleware.ValidationError
		var perr *analysis.UnparseableError
		var uerr *analysis.UpstreamError

		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Msg, "")
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found or expired, please re-submit your images", "")
		case errors.Is(err, analysis.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, "model quota exceeded, please retry later", "")
		case errors.Is(err, analysis.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, "model provider not configured", "")
		case errors.As(err, &perr):
			log.Ctx(req.Context()).Error().Err(err).Str("stage", perr.Stage).Msg("model output unparseable")
			writeError(w, http.StatusInternalServerError, "analysis failed", perr.Error())
		case errors.As(err, &uerr):
			log.Ctx(req.Context()).Error().Err(err).Str("provider", uerr.Provider).Msg("model call failed")
			writeError(w, http.StatusInternalServerError, "model call failed", uerr.Error())
		default:
			log.Ctx(req.Context()).Error().Err(err).Msg("request failed")
			writeError(w, http.StatusInternalServerError, "internal error", "")
		}
	}
}

type analyzeResponse struct {
	SessionID string          `json:"sessionId"`
	Analysis  analysis.Result `json:"analysis"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type sessionResponse struct {
	SessionID    string          `json:"sessionId"`
	Analysis     analysis.Result `json:"analysis"`
	Conversation []session.Turn  `json:"conversation"`
	ExpiresAt    time.Time       `json:"expiresAt"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// POST /api/analyze
// multipart/form-data field "images": 1-3 JPEG/PNG files, 8MB each.
func (rt *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxRequestBytes)
	if err := req.ParseMultipartForm(maxRequestBytes); err != nil {
		return &middleware.ValidationError{Msg: "expected a multipart form upload within the size limit"}
	}
	defer func() {
		if req.MultipartForm != nil {
			_ = req.MultipartForm.RemoveAll()
		}
	}()

	files := req.MultipartForm.File["images"]
	if err := middleware.ValidateImageCount(len(files)); err != nil {
		return err
	}

	images := make([]analysis.ImageInput, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			return err
		}
		contentType, err := middleware.ValidateImage(fh.Filename, data)
		if err != nil {
			return err
		}
		images = append(images, analysis.ImageInput{
			Filename: fh.Filename,
			MIMEType: contentType,
			Data:     data,
		})
	}

	sess, err := rt.analyzer.Submit(req.Context(), appanalysis.SubmitCommand{Images: images})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, analyzeResponse{SessionID: sess.ID, Analysis: sess.Analysis})
}

// POST /api/chat
// Body: {"sessionId": "<id>", "message": "<question>"}
func (rt *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &middleware.ValidationError{Msg: "invalid JSON body"}
	}
	if err := middleware.ValidateSessionID(body.SessionID); err != nil {
		return err
	}
	message := middleware.SanitizeString(body.Message)
	if err := middleware.ValidateMessage(message); err != nil {
		return err
	}

	answer, err := rt.chatter.Respond(req.Context(), body.SessionID, message)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}

// GET /api/session/{id}
func (rt *Router) handleSession(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		return err
	}

	sess, err := rt.sessions.Get(req.Context(), id)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:    sess.ID,
		Analysis:     sess.Analysis,
		Conversation: sess.Conversation,
		ExpiresAt:    sess.ExpiresAt,
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, middleware.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	if len(data) > middleware.MaxImageBytes {
		return nil, &middleware.ValidationError{
			Msg: fmt.Sprintf("image %q exceeds the %dMB limit", fh.Filename, middleware.MaxImageBytes>>20),
		}
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	_ = writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
