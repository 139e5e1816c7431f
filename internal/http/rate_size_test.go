package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// burst hits on the full match scan return 429
func TestMatchRateLimit(t *testing.T) {
	app, _ := newApp(t)
	tok := login(t, app, meeraEmail)

	for i := 0; i < 21; i++ {
		resp, _ := call(t, app, "POST", "/matching/match", tok, nil)
		if i < 20 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("hit rate limit too early at %d", i)
		}
		if i == 20 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
		}
	}

	// other routes are not affected
	if resp, _ := call(t, app, "GET", "/matching/matches/buyer", tok, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("buyer matches: got %d", resp.StatusCode)
	}
}

// oversized POST rejected with 413
func TestBodySizeLimit(t *testing.T) {
	app, _ := newApp(t)
	tok := login(t, app, meeraEmail)

	// Oversized body (>1MiB)
	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/deals/create", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	// Fiber returns an error instead of a response when body too large; treat that as pass
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(body))
	}
}
