package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/japaniel/glossword/pkg/gloss"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return New(Options{Timeout: 5 * time.Second, Logger: zerolog.Nop()})
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.RawPath
		if gotPath == "" {
			gotPath = r.URL.Path
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>at·a·vism</body></html>"))
	}))
	defer srv.Close()

	body, err := newTestClient().Fetch(context.Background(), srv.URL+"/atavism")
	require.NoError(t, err)
	assert.Contains(t, body, "at·a·vism")
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "/atavism", gotPath)
}

func TestFetchIgnoresStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`<ul class="suggestions"><li>atavism</li></ul>`))
	}))
	defer srv.Close()

	body, err := newTestClient().Fetch(context.Background(), srv.URL+"/atavisn")
	require.NoError(t, err)
	assert.Contains(t, body, "suggestions")
}

func TestFetchDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("caf\xe9"))
	}))
	defer srv.Close()

	body, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "café", body)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient().Fetch(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gloss.ErrTransport))
}

func TestFetchBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		chunk := strings.Repeat("a", 1024*1024)
		for i := 0; i < 11; i++ {
			w.Write([]byte(chunk))
		}
	}))
	defer srv.Close()

	_, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gloss.ErrTransport))
}

func TestPageTitle(t *testing.T) {
	page := `<html><head><title>Word not found - The Free Dictionary</title></head>
<body><article><h1>Word not found</h1><p>` + strings.Repeat("Nothing matched this query. ", 20) + `</p></article></body></html>`
	assert.Contains(t, PageTitle(page, "https://www.thefreedictionary.com/xyzzy"), "Word not found")
	assert.Equal(t, "", PageTitle(page, "://bad url"))
}
