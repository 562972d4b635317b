// Package server exposes the converter and the page extractor over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rgonek/html-docusaurus-converter/extract"
)

// DefaultMaxRequestBytes caps request bodies.
const DefaultMaxRequestBytes = 10 << 20

// PageExtractor fetches a URL and returns its main content.
type PageExtractor interface {
	Extract(ctx context.Context, url string) (extract.Page, error)
}

// Options configures a Server. Zero values select the defaults.
type Options struct {
	Extractor       PageExtractor
	Logger          *slog.Logger
	MaxRequestBytes int64
	// Now is used for response timestamps.
	Now func() time.Time
}

// Server handles the conversion and extraction endpoints.
type Server struct {
	extractor       PageExtractor
	logger          *slog.Logger
	maxRequestBytes int64
	now             func() time.Time
}

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		extractor:       opts.Extractor,
		logger:          opts.Logger,
		maxRequestBytes: opts.MaxRequestBytes,
		now:             opts.Now,
	}
	if s.extractor == nil {
		s.extractor = extract.New(extract.Options{})
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("component", "server"))
	if s.maxRequestBytes <= 0 {
		s.maxRequestBytes = DefaultMaxRequestBytes
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("OPTIONS /api/convert", handlePreflight)
	mux.HandleFunc("POST /api/extract-html", s.handleExtract)
	mux.HandleFunc("OPTIONS /api/extract-html", handlePreflight)
	return withCORS(mux)
}

// Run serves Handler on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, Status: status})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a JSON request body. It reports the response status to
// use when decoding fails.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (int, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxRequestBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, errors.New("request body too large")
		}
		return http.StatusBadRequest, errors.New("invalid JSON body")
	}
	return 0, nil
}
