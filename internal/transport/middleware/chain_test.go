package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tag appends name to the X-Trace header on the way in.
func tag(name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Trace", name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mws  []Middleware
		want []string
	}{
		{name: "empty", want: []string{"handler"}},
		{name: "single", mws: []Middleware{tag("auth")}, want: []string{"auth", "handler"}},
		{
			name: "first listed runs first",
			mws:  []Middleware{tag("request_id"), tag("logger"), tag("auth")},
			want: []string{"request_id", "logger", "auth", "handler"},
		},
		{
			name: "nil entries skipped",
			mws:  []Middleware{nil, tag("cors"), nil, tag("limit")},
			want: []string{"cors", "limit", "handler"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := Chain(tt.mws...)(tag("handler")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.want, rec.Header().Values("X-Trace"))
		})
	}
}

func TestExcept(t *testing.T) {
	t.Parallel()

	h := Except(tag("limit"), "/live", "/ready")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	tests := []struct {
		path    string
		limited bool
	}{
		{"/live", false},
		{"/ready", false},
		{"/health", true},
		{"/live/extra", true},
		{"/api/v1/interactions", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if tt.limited {
				assert.Equal(t, []string{"limit"}, rec.Header().Values("X-Trace"))
			} else {
				assert.Empty(t, rec.Header().Values("X-Trace"))
			}
		})
	}
}
