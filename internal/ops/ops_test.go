package ops

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CDevmina/Tapiro-sub000/internal/testutil"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) Ping(ctx context.Context) error   { return f(ctx) }
func (f probeFunc) Health(ctx context.Context) error { return f(ctx) }

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	s := New(":0", nil, testutil.MakeNoopLogger())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Readyz(t *testing.T) {
	t.Parallel()

	healthy := probeFunc(func(context.Context) error { return nil })
	down := probeFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		checks     []Check
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name: "all healthy",
			checks: []Check{
				DatabaseCheck(healthy),
				CacheCheck(testutil.MakeCache(t)),
				ServiceCheck("taxonomy", healthy),
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"database": "ok", "cache": "ok", "taxonomy": "ok"},
		},
		{
			name: "ai down",
			checks: []Check{
				DatabaseCheck(healthy),
				ServiceCheck("ai", down),
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unavailable",
			wantChecks: map[string]string{"database": "ok", "ai": "connection refused"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := New(":0", tt.checks, testutil.MakeNoopLogger())
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body readiness
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	s := New(":0", nil, testutil.MakeNoopLogger())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}

type listenFunc func(protocol, addr string) (net.Listener, error)

func (f listenFunc) Listen(protocol, addr string) (net.Listener, error) { return f(protocol, addr) }

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New("127.0.0.1:0", nil, testutil.MakeNoopLogger())
	assert.Equal(t, "127.0.0.1:0", s.Address())

	result := make(chan error, 1)
	go func() {
		result <- s.Start(listenFunc(func(string, string) (net.Listener, error) { return ln, nil }))
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.NoError(t, <-result)
}
