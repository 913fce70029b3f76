package identity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoamiServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		require.Equal(t, whoamiPath, r.URL.Path)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveReturnsIP(t *testing.T) {
	srv := whoamiServer(t, http.StatusOK, `{"ip":"10.0.0.7"}`, nil)

	id, err := NewHTTPResolver(srv.URL, nil).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", id)
}

func TestServiceFailsSoft(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"ip":"10.0.0.7"}`},
		{"malformed body", http.StatusOK, `not json`},
		{"empty ip", http.StatusOK, `{"ip":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := whoamiServer(t, tt.status, tt.body, nil)
			s := NewService(NewHTTPResolver(srv.URL, nil), nil)

			assert.Equal(t, Unknown, s.Identity(context.Background()))
			assert.Equal(t, SentinelKey, s.LogKey(context.Background()))
		})
	}
}

func TestServiceResolvesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := whoamiServer(t, http.StatusInternalServerError, ``, &calls)
	s := NewService(NewHTTPResolver(srv.URL, nil), nil)

	for i := 0; i < 3; i++ {
		assert.Equal(t, Unknown, s.Identity(context.Background()))
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestLogKey(t *testing.T) {
	assert.Equal(t, "chatHistory-10.0.0.7", LogKey("10.0.0.7"))
	assert.Equal(t, "chatHistory-unknown", LogKey(""))
	assert.Equal(t, "chatHistory-unknown", SentinelKey)
}
