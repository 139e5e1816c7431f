package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"farmdirect/internal/repos"
)

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// seeded passwords are hashed, not plaintext
func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) != 5 {
		t.Fatalf("want 5 seeded users, got %d", len(hashes))
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatalf("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	app, _ := newApp(t)

	resp, env := call(t, app, "POST", "/auth/login", "", map[string]string{"email": meeraEmail, "password": "wrongpass!"})
	if resp.StatusCode != http.StatusUnauthorized || env.Success {
		t.Fatalf("expected 401 for bad creds, got %d", resp.StatusCode)
	}

	resp, env = call(t, app, "POST", "/auth/login", "", map[string]string{"email": meeraEmail, "password": password})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("expected 200 on success, got %d %s", resp.StatusCode, env.Error)
	}
	if extractCookie(resp, "sid") == "" {
		t.Fatal("sid cookie not set")
	}

	// 5 attempts per window; the 6th is throttled
	for i := 0; i < 3; i++ {
		call(t, app, "POST", "/auth/login", "", map[string]string{"email": meeraEmail, "password": "wrongpass!"})
	}
	resp, _ = call(t, app, "POST", "/auth/login", "", map[string]string{"email": meeraEmail, "password": password})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", resp.StatusCode)
	}
}

func TestSessionCookieAndLogout(t *testing.T) {
	app, _ := newApp(t)
	tok := login(t, app, kiranEmail)

	// the cookie works as well as the bearer header
	req := httptest.NewRequest("GET", "/deals/my-deals", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: tok})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cookie auth: got %d", resp.StatusCode)
	}

	if resp, _ := call(t, app, "POST", "/auth/logout", tok, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: got %d", resp.StatusCode)
	}
	if resp, _ := call(t, app, "GET", "/deals/my-deals", tok, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("token still valid after logout: %d", resp.StatusCode)
	}
	if resp, _ := call(t, app, "GET", "/deals/my-deals", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous: got %d", resp.StatusCode)
	}
}
