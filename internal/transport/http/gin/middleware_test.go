package httpgin

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kirinyoku/busseat/internal/booking"
	"github.com/kirinyoku/busseat/internal/service/reservation"
	"github.com/kirinyoku/busseat/internal/service/schedule"
	"github.com/kirinyoku/busseat/internal/service/tickets"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func sessionEngine(required bool) *gin.Engine {
	r := gin.New()
	r.GET("/who", SessionAuth(testSecret, required), func(c *gin.Context) {
		c.String(http.StatusOK, sessionID(c))
	})
	r.GET("/admin", SessionAuth(testSecret, true), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestSessionAuth(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name     string
		required bool
		header   string
		status   int
		session  string
	}{
		{
			name:     "sid claim",
			required: true,
			header:   "Bearer " + sign(t, jwt.MapClaims{"sid": "s-1", "sub": "user-9", "exp": exp}, testSecret),
			status:   http.StatusOK,
			session:  "s-1",
		},
		{
			name:     "sub fallback",
			required: true,
			header:   "Bearer " + sign(t, jwt.MapClaims{"sub": "user-9", "exp": exp}, testSecret),
			status:   http.StatusOK,
			session:  "user-9",
		},
		{
			name:     "expired",
			required: true,
			header:   "Bearer " + sign(t, jwt.MapClaims{"sid": "s-1", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret),
			status:   http.StatusUnauthorized,
		},
		{
			name:     "no exp",
			required: true,
			header:   "Bearer " + sign(t, jwt.MapClaims{"sid": "s-1"}, testSecret),
			status:   http.StatusUnauthorized,
		},
		{
			name:     "wrong secret",
			required: true,
			header:   "Bearer " + sign(t, jwt.MapClaims{"sid": "s-1", "exp": exp}, []byte("other")),
			status:   http.StatusUnauthorized,
		},
		{
			name:     "missing required",
			required: true,
			status:   http.StatusUnauthorized,
		},
		{
			name:     "missing optional",
			required: false,
			status:   http.StatusOK,
			session:  "",
		},
		{
			name:     "garbage optional",
			required: false,
			header:   "Bearer not-a-token",
			status:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			sessionEngine(tt.required).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusOK && w.Body.String() != tt.session {
				t.Errorf("session = %q, want %q", w.Body.String(), tt.session)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	for _, tc := range []struct {
		role   string
		status int
	}{
		{"admin", http.StatusOK},
		{"customer", http.StatusForbidden},
		{"", http.StatusForbidden},
	} {
		claims := jwt.MapClaims{"sid": "s-1", "exp": exp}
		if tc.role != "" {
			claims["role"] = tc.role
		}
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+sign(t, claims, testSecret))
		w := httptest.NewRecorder()
		sessionEngine(true).ServeHTTP(w, req)

		if w.Code != tc.status {
			t.Errorf("role %q: status = %d, want %d", tc.role, w.Code, tc.status)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("X-Request-ID = %q, want abc", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not generated")
	}
}

func TestRespondErr(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"seat held", fmt.Errorf("op: %w", reservation.ErrSeatHeld), http.StatusConflict},
		{"seat sold", fmt.Errorf("op: %w", tickets.ErrSeatSold), http.StatusConflict},
		{"trip has tickets", schedule.ErrTripHasTickets, http.StatusConflict},
		{"frequency missing", schedule.ErrFrequencyNotFound, http.StatusNotFound},
		{"validation", &booking.ValidationError{Fields: map[string]string{"document": "required"}}, http.StatusUnprocessableEntity},
		{"rate limited", reservation.RateLimitedError{RetryAfter: 1500 * time.Millisecond}, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondErr(c, tt.err)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}

			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Error("empty error message")
			}
			if tt.status == http.StatusUnprocessableEntity && body.Fields["document"] != "required" {
				t.Errorf("fields = %v", body.Fields)
			}
			if tt.status == http.StatusTooManyRequests && w.Header().Get("Retry-After") != "2" {
				t.Errorf("Retry-After = %q, want 2", w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestWriteJSONWithCacheNotModified(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		writeJSONWithCache(c, http.StatusOK, map[string]int{"a": 1}, "no-cache", true)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	tag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || tag == "" {
		t.Fatalf("first response: %d etag %q", w.Code, tag)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", tag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}
