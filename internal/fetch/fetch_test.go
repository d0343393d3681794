package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Careers</h1></body></html>"))
	}))
	defer server.Close()

	page, err := NewClient(time.Second).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL, page.URL)
	assert.Contains(t, page.HTML, "<h1>Careers</h1>")
	assert.Equal(t, http.StatusOK, page.StatusCode)
}

func TestClientGet_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/careers", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/careers", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>open roles</p>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	page, err := NewClient(time.Second).Get(context.Background(), server.URL+"/jobs")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/careers", page.URL)
}

func TestClientGet_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not-a-url", "file:///etc/passwd", "http://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := NewClient(0).Get(context.Background(), raw)
			var fetchErr *Error
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, "invalid URL", fetchErr.Message)
			assert.Zero(t, fetchErr.StatusCode)
		})
	}
}

func TestClientGet_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("gone"))
	}))
	defer server.Close()

	page, err := NewClient(time.Second).Get(context.Background(), server.URL)
	require.Error(t, err)
	require.NotNil(t, page)
	assert.Equal(t, "gone", page.HTML)

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestClientGet_UnsupportedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer server.Close()

	_, err := NewClient(time.Second).Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type application/pdf")
}

func TestClientGet_BodyLimitAndHeaders(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>0123456789</body></html>"))
	}))
	defer server.Close()

	c := NewClient(time.Second)
	c.MaxBodyBytes = 12
	c.Headers = map[string]string{"X-Test": "1"}

	page, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>", page.HTML)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "1", gotCustom)
}

func TestClientGet_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	_, err := NewClient(20*time.Millisecond).Get(context.Background(), server.URL)
	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "request failed", fetchErr.Message)
}

func TestReadableContent(t *testing.T) {
	assert.True(t, readableContent(""))
	assert.True(t, readableContent("text/html; charset=utf-8"))
	assert.True(t, readableContent("text/plain"))
	assert.True(t, readableContent("application/xhtml+xml"))
	assert.False(t, readableContent("application/json"))
	assert.False(t, readableContent(";;;"))
}

func TestLooksEmpty(t *testing.T) {
	assert.True(t, LooksEmpty("  Loading...  "))
	assert.False(t, LooksEmpty(strings.Repeat("x", MinContentLength)))
}
