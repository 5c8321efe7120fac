package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchOneCachesWithETag(t *testing.T) {
	const etag = `"v1"`
	body := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "test", URL: ts.URL}

	first, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, body, string(first.Body))

	second, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, second.FromCache, "second fetch should be served from cache via 304")
	assert.Equal(t, body, string(second.Body))
	assert.Equal(t, 2, hits)
}

func TestFetchOneFallsBackToCacheOnServerError(t *testing.T) {
	body := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

	failing := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "test", URL: ts.URL}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	failing = true
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, body, string(res.Body))
}

func TestFetchOneEmptyURL(t *testing.T) {
	f := NewFetcher(t.TempDir())
	_, err := f.FetchOne(context.Background(), Source{ID: "x"})
	assert.Error(t, err)
}
