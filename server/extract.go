package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/rgonek/html-docusaurus-converter/extract"
)

type extractRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if status, err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, status, err.Error())
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	s.logger.Info("extracting", slog.String("url", req.URL))
	page, err := s.extractor.Extract(r.Context(), req.URL)
	if err != nil {
		status, message := extractFailure(err)
		s.logger.Error("extraction failed", slog.String("url", req.URL), slog.Int("status", status), slog.String("error", err.Error()))
		s.writeError(w, status, message)
		return
	}

	s.logger.Info("extracted", slog.String("url", req.URL), slog.Int("contentLength", page.ContentLength))
	writeJSON(w, http.StatusOK, page)
}

// extractFailure maps an extraction error to a response status and message.
func extractFailure(err error) (int, string) {
	var statusErr *extract.StatusError
	var netErr *net.OpError
	var dnsErr *net.DNSError

	switch {
	case errors.Is(err, extract.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid URL format"
	case errors.Is(err, extract.ErrTimeout):
		return http.StatusRequestTimeout, "Request timeout - the webpage took too long to respond"
	case errors.As(err, &statusErr):
		return statusErr.StatusCode, fmt.Sprintf("Failed to fetch URL: HTTP %d", statusErr.StatusCode)
	case errors.Is(err, extract.ErrNotHTML):
		return http.StatusBadRequest, "URL does not return HTML content"
	case errors.Is(err, extract.ErrNoContent):
		return http.StatusBadRequest, "No meaningful content found on the page"
	case errors.As(err, &dnsErr), errors.As(err, &netErr):
		return http.StatusBadRequest, "Cannot connect to the specified URL"
	default:
		return http.StatusInternalServerError, "Failed to extract HTML: " + err.Error()
	}
}
