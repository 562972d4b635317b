package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rgonek/html-docusaurus-converter/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeExtractor struct {
	page extract.Page
	err  error
	got  string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (extract.Page, error) {
	f.got = url
	return f.page, f.err
}

func newTestServer(t *testing.T, ex PageExtractor) http.Handler {
	t.Helper()
	if ex == nil {
		ex = &fakeExtractor{}
	}
	return New(Options{
		Extractor: ex,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:       func() time.Time { return fixedNow },
	}).Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Code, resp.Status)
	return resp
}

func TestConvertDefaults(t *testing.T) {
	h := newTestServer(t, nil)

	rec := post(t, h, "/api/convert", `{"html":"<h1>Hi</h1><p>There</p>"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		Markdown string `json:"markdown"`
		Stats    struct {
			MarkdownLines int `json:"markdownLines"`
		} `json:"stats"`
		Config struct {
			SidebarPosition    int  `json:"sidebarPosition"`
			AddFrontmatter     bool `json:"addFrontmatter"`
			ConvertTabs        bool `json:"convertTabs"`
			ConvertAdmonitions bool `json:"convertAdmonitions"`
			ConvertCodeBlocks  bool `json:"convertCodeBlocks"`
			ProcessImages      bool `json:"processImages"`
		} `json:"config"`
		ConvertedAt time.Time `json:"convertedAt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "---\nsidebar_position: 1\n---\n\n# Hi\n\nThere", resp.Markdown)
	assert.Equal(t, 7, resp.Stats.MarkdownLines)
	assert.Equal(t, 1, resp.Config.SidebarPosition)
	assert.True(t, resp.Config.AddFrontmatter)
	assert.True(t, resp.Config.ConvertTabs)
	assert.True(t, resp.Config.ConvertAdmonitions)
	assert.True(t, resp.Config.ConvertCodeBlocks)
	assert.True(t, resp.Config.ProcessImages)
	assert.True(t, fixedNow.Equal(resp.ConvertedAt))
}

func TestConvertExplicitConfig(t *testing.T) {
	h := newTestServer(t, nil)

	body := `{"html":"<div class=\"callout warning\"><div class=\"callout-text\">Careful</div></div>",` +
		`"config":{"addFrontmatter":false,"convertAdmonitions":false,"sidebarPosition":0}}`
	rec := post(t, h, "/api/convert", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp convertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "> Careful", resp.Markdown)
	assert.False(t, resp.Config.AddFrontmatter)
	assert.False(t, resp.Config.ConvertAdmonitions)
	assert.True(t, resp.Config.ConvertTabs)
	assert.Equal(t, 1, resp.Config.SidebarPosition)
}

func TestConvertFrontmatterFields(t *testing.T) {
	h := newTestServer(t, nil)

	body := `{"html":"<p>x</p>","config":{"title":"Guide","sidebarPosition":3,"tags":["a","b"]}}`
	rec := post(t, h, "/api/convert", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp convertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "---\ntitle: \"Guide\"\nsidebar_position: 3\ntags:\n  - a\n  - b\n---\n\nx", resp.Markdown)
}

func TestConvertWarningsReturned(t *testing.T) {
	h := newTestServer(t, nil)

	body := `{"html":"<p>x</p>","config":{"customFrontmatter":"nocolon"}}`
	rec := post(t, h, "/api/convert", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp convertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "frontmatter_line", string(resp.Warnings[0].Type))
}

func TestConvertBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"invalid json", `{"html":`, http.StatusBadRequest, "invalid JSON body"},
		{"html wrong type", `{"html":42}`, http.StatusBadRequest, "invalid JSON body"},
		{"missing html", `{}`, http.StatusBadRequest, "HTML content is required"},
		{"blank html", `{"html":"  \n "}`, http.StatusBadRequest, "HTML content cannot be empty"},
		{"invalid config", `{"html":"<p>x</p>","config":{"sidebarPosition":-2}}`, http.StatusBadRequest, "invalid config: sidebarPosition must not be negative"},
		{"no output", `{"html":"<script>x()</script>","config":{"addFrontmatter":false}}`, http.StatusInternalServerError, "Conversion failed - no markdown output generated"},
	}

	h := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/api/convert", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decodeError(t, rec).Error, tt.message)
		})
	}
}

func TestConvertBodyTooLarge(t *testing.T) {
	h := New(Options{
		Extractor:       &fakeExtractor{},
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxRequestBytes: 16,
	}).Handler()

	rec := post(t, h, "/api/convert", `{"html":"<p>far too long for the limit</p>"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body too large", decodeError(t, rec).Error)
}

func TestPreflight(t *testing.T) {
	h := newTestServer(t, nil)

	for _, path := range []string{"/api/convert", "/api/extract-html"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/convert", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExtractSuccess(t *testing.T) {
	ex := &fakeExtractor{page: extract.Page{
		HTML:          "<p>Body</p>",
		Title:         "Docs",
		URL:           "https://example.com/docs",
		ExtractedAt:   fixedNow,
		ContentLength: 11,
	}}
	h := newTestServer(t, ex)

	rec := post(t, h, "/api/extract-html", `{"url":"https://example.com/docs"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/docs", ex.got)
	assert.JSONEq(t, `{
		"html": "<p>Body</p>",
		"title": "Docs",
		"url": "https://example.com/docs",
		"extractedAt": "2024-05-01T12:00:00Z",
		"contentLength": 11
	}`, rec.Body.String())
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid url", fmt.Errorf("%w: ftp://x", extract.ErrInvalidURL), http.StatusBadRequest, "Invalid URL format"},
		{"timeout", extract.ErrTimeout, http.StatusRequestTimeout, "Request timeout"},
		{"upstream status", &extract.StatusError{URL: "https://example.com", StatusCode: http.StatusNotFound}, http.StatusNotFound, "Failed to fetch URL: HTTP 404"},
		{"not html", extract.ErrNotHTML, http.StatusBadRequest, "URL does not return HTML content"},
		{"no content", extract.ErrNoContent, http.StatusBadRequest, "No meaningful content found on the page"},
		{"dns", &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}, http.StatusBadRequest, "Cannot connect to the specified URL"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Failed to extract HTML: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeExtractor{err: tt.err})
			rec := post(t, h, "/api/extract-html", `{"url":"https://example.com"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decodeError(t, rec).Error, tt.message)
		})
	}
}

func TestExtractMissingURL(t *testing.T) {
	ex := &fakeExtractor{}
	h := newTestServer(t, ex)

	for _, body := range []string{`{}`, `{"url":"  "}`} {
		rec := post(t, h, "/api/extract-html", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "URL is required", decodeError(t, rec).Error)
	}
	assert.Empty(t, ex.got)
}

func TestExtractEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, `<html><head><title>Live</title></head><body><nav>menu</nav><main><p>Real content</p></main></body></html>`)
	}))
	defer upstream.Close()

	h := New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}).Handler()
	rec := post(t, h, "/api/extract-html", fmt.Sprintf(`{"url":%q}`, upstream.URL))

	require.Equal(t, http.StatusOK, rec.Code)
	var page extract.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "Live", page.Title)
	assert.Contains(t, page.HTML, "Real content")
	assert.NotContains(t, page.HTML, "menu")
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
