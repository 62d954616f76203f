package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	if seen == "" {
		t.Fatal("GetRequestID() = \"\", want generated id")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("X-Request-ID = %q, want %q", got, seen)
	}

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Errorf("GetRequestID() = %q, want %q", seen, "abc")
	}
}

func TestUserContext(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"set", "user-1", "user-1"},
		{"trimmed", "  user-2 ", "user-2"},
		{"missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := UserContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetUserID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("GetUserID() = %q, want %q", got, tt.want)
			}
		})
	}
}
