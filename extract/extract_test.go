package extract

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>Guide</title></head><body><nav>menu</nav><main><h1>Hi</h1></main></body></html>`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "extract-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "gzip, br", r.Header.Get("Accept-Encoding"))
		assert.Equal(t, "/page", r.URL.Path)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	})

	page, err := New(Options{UserAgent: "extract-test/1.0"}).Extract(context.Background(), srv.URL+"/page")
	require.NoError(t, err)

	assert.Equal(t, "<h1>Hi</h1>", page.HTML)
	assert.Equal(t, "Guide", page.Title)
	assert.Equal(t, srv.URL+"/page", page.URL)
	assert.Equal(t, len(page.HTML), page.ContentLength)
	assert.False(t, page.ExtractedAt.IsZero())
}

func TestExtractCompressedBodies(t *testing.T) {
	var gz bytes.Buffer
	gzw := gzip.NewWriter(&gz)
	_, _ = gzw.Write([]byte(samplePage))
	require.NoError(t, gzw.Close())

	var br bytes.Buffer
	brw := brotli.NewWriter(&br)
	_, _ = brw.Write([]byte(samplePage))
	require.NoError(t, brw.Close())

	for encoding, body := range map[string][]byte{"gzip": gz.Bytes(), "br": br.Bytes()} {
		t.Run(encoding, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Header().Set("Content-Encoding", encoding)
				_, _ = w.Write(body)
			})

			page, err := New(Options{}).Extract(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, "<h1>Hi</h1>", page.HTML)
		})
	}
}

func TestExtractDecodesCharset(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><head><title>Caf\xe9</title></head><body><main><p>caf\xe9</p></main></body></html>"))
	})

	page, err := New(Options{}).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Café", page.Title)
	assert.Equal(t, "<p>café</p>", page.HTML)
}

func TestExtractStatusError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	})

	_, err := New(Options{}).Extract(context.Background(), srv.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestExtractRejectsNonHTML(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"html":"<p>no</p>"}`))
	})

	_, err := New(Options{}).Extract(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNotHTML)
}

func TestExtractNoContent(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><nav>only navigation</nav></body></html>`))
	})

	_, err := New(Options{}).Extract(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestExtractTimeout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	extractor := New(Options{Timeout: 50 * time.Millisecond})
	assert.Equal(t, 50*time.Millisecond, extractor.Timeout())

	_, err := extractor.Extract(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExtractInvalidURL(t *testing.T) {
	extractor := New(Options{})
	for _, raw := range []string{"", "ftp://example.com/file", "http://", "://broken"} {
		_, err := extractor.Extract(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestNewDefaults(t *testing.T) {
	extractor := New(Options{})
	assert.Equal(t, DefaultTimeout, extractor.Timeout())
	assert.Equal(t, DefaultUserAgent, extractor.userAgent)
	assert.EqualValues(t, DefaultMaxBodyBytes, extractor.maxBodyBytes)
}
