// Package server exposes the webhook endpoint, a health check and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"StockSentinel/internal/logger"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/notifier"

	"github.com/gorilla/mux"
)

// StatusMessage is returned by GET /api/bot.
const StatusMessage = "Telegram Stock Bot is running"

// UpdateHandler processes one webhook update.
type UpdateHandler func(ctx context.Context, u notifier.Update) error

// Server routes HTTP requests to the bot.
type Server struct {
	router *mux.Router
	handle UpdateHandler
	log    *logger.Logger
	now    func() time.Time
}

// New builds the router. handle may be nil when the bot runs in polling
// mode; POST /api/bot then answers 503.
func New(handle UpdateHandler, log *logger.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		handle: handle,
		log:    log.Component("server"),
		now:    time.Now,
	}
	s.router.Use(cors)
	s.router.HandleFunc("/api/bot", s.botEndpoint)
	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Infof("server gracefully stopped")
	return nil
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,OPTIONS,PATCH,DELETE,POST,PUT")
		h.Set("Access-Control-Allow-Headers", "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// botEndpoint accepts webhook updates on POST and reports liveness on
// every other method.
func (s *Server) botEndpoint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "running",
			"message":   StatusMessage,
			"timestamp": s.now().UTC().Format(time.RFC3339),
		})
		return
	}

	if s.handle == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": "webhook mode disabled"})
		return
	}

	u, ok, err := notifier.HandleWebhook(r)
	if err == nil && ok {
		err = s.handle(r.Context(), u)
	}
	if err != nil {
		s.log.Errorw("error handling update", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
