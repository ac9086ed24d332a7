package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentdeck/internal/auth"
	models "agentdeck/internal/domain/models/organization"
	"agentdeck/internal/httputil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	c := &auth.Claims{Role: "authenticated"}
	c.Subject = "user-7"
	return c, nil
}

func (stubVerifier) Close() error { return nil }

func viewerOf(t *testing.T, header string) models.Viewer {
	t.Helper()
	var got models.Viewer
	h := OptionalAuth(stubVerifier{}, discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = httputil.GetViewer(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	h.ServeHTTP(httptest.NewRecorder(), r)
	return got
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   models.Viewer
	}{
		{"no header", "", models.Anonymous},
		{"valid token", "Bearer good", models.Viewer{UserID: "user-7", IsAuthenticated: true, CanSeePrivate: true}},
		{"lowercase scheme", "bearer good", models.Viewer{UserID: "user-7", IsAuthenticated: true, CanSeePrivate: true}},
		{"invalid token", "Bearer bad", models.Anonymous},
		{"wrong scheme", "Basic good", models.Anonymous},
		{"empty token", "Bearer ", models.Anonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, viewerOf(t, tt.header))
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetRequestID(r)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	incoming := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, incoming)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, incoming, seen)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "<script>")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.NotEqual(t, "<script>", seen)
}

func TestRecovery(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID(), Recovery(discard))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
