package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(42, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	uid, ok := ParseToken(token)
	if !ok {
		t.Fatal("token did not parse")
	}
	if uid != 42 {
		t.Errorf("uid = %d, want 42", uid)
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := IssueToken(42, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := ParseToken(token); ok {
		t.Error("expired token parsed as valid")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, ok := ParseToken("not-a-jwt"); ok {
		t.Error("garbage parsed as valid")
	}
}

func TestProtect(t *testing.T) {
	SetUserVerifier(nil)
	var gotUID uint
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := Protect(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}

	token, err := IssueToken(7, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", rec.Code)
	}
	if gotUID != 7 {
		t.Errorf("context uid = %d, want 7", gotUID)
	}
}

func TestProtectUnknownUser(t *testing.T) {
	SetUserVerifier(func(context.Context, uint) bool { return false })
	t.Cleanup(func() { SetUserVerifier(nil) })

	token, err := IssueToken(7, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	protected := Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", rec.Code)
	}
}
