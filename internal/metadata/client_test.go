package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetReturnsBodyOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("User-Agent"), "crate/")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MinInterval: time.Millisecond})
	body, err := c.get(context.Background(), "/ping")
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
}

func TestPacingEnforcesMinimumGap(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MinInterval: 100 * time.Millisecond})

	start := time.Now()
	_, err := c.get(context.Background(), "/a")
	require.NoError(t, err)
	_, err = c.get(context.Background(), "/b")
	require.NoError(t, err)
	elapsed := time.Since(start)

	require.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	require.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestRetryAfter429(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MinInterval: time.Millisecond})
	body, err := c.get(context.Background(), "/limited")
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.EqualValues(t, 2, atomic.LoadInt32(&attempts))
}

func TestNonRetryableStatusReturnsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad query"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MinInterval: time.Millisecond})
	_, err := c.get(context.Background(), "/bad")
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Equal(t, http.StatusBadRequest, upstreamErr.StatusCode)
}
