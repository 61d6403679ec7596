package middleware

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func TestRemoteHost(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{name: "ipv4 with port", addr: "198.51.100.10:1234", want: "198.51.100.10"},
		{name: "ipv6 with port", addr: net.JoinHostPort("2001:db8::2", "443"), want: "2001:db8::2"},
		{name: "without port", addr: "203.0.113.1", want: "203.0.113.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := remoteHost(tc.addr); got != tc.want {
				t.Fatalf("remoteHost(%q) = %q, want %q", tc.addr, got, tc.want)
			}
		})
	}
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/thumbnail/generate", nil)
		req.RemoteAddr = "198.51.100.10:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Fatalf("missing Retry-After header")
		}
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}

	other := httptest.NewRequest(http.MethodPost, "/api/thumbnail/generate", nil)
	other.RemoteAddr = "203.0.113.9:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", rec.Code)
	}
}

func TestRateLimitIgnoresForwardedHeaders(t *testing.T) {
	h := RateLimit(1, time.Minute)(okHandler())

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/thumbnail/generate", nil)
		req.RemoteAddr = "198.51.100.10:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i+1))
		req.Header.Set("X-Real-IP", "192.0.2."+strconv.Itoa(i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Fatalf("request %d status = %d, want 429", i+1, code)
		}
	}
}

func TestRateLimitKeysOnSessionUser(t *testing.T) {
	h := RateLimit(1, time.Minute)(okHandler())

	send := func(userID, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/thumbnail/generate", nil)
		req.RemoteAddr = addr
		req = req.WithContext(ContextWithUserID(context.Background(), userID))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("user-1", "198.51.100.10:1"); code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", code)
	}
	if code := send("user-1", "203.0.113.7:2"); code != http.StatusTooManyRequests {
		t.Fatalf("same user from another address status = %d, want 429", code)
	}
	if code := send("user-2", "198.51.100.10:1"); code != http.StatusOK {
		t.Fatalf("other user status = %d, want 200", code)
	}
}

func TestRateLimitPrunesExpiredBuckets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := &limiter{limit: 1, per: time.Minute, buckets: make(map[string]*bucket), now: func() time.Time { return now }}

	for i := 0; i < 50; i++ {
		if _, ok := l.take("ip:203.0.113." + strconv.Itoa(i)); !ok {
			t.Fatalf("take(%d) rejected a fresh client", i)
		}
	}
	if got := l.size(); got != 50 {
		t.Fatalf("buckets = %d, want 50", got)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := l.take("ip:198.51.100.1"); !ok {
		t.Fatalf("take() rejected after window reset")
	}
	if got := l.size(); got != 1 {
		t.Fatalf("buckets after prune = %d, want 1", got)
	}
}
