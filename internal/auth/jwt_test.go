package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateValidateToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, nil)
	ctx := context.Background()

	token, session, err := svc.GenerateToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.Username != "alice" || got.TokenID != session.TokenID {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("one", time.Hour, nil).GenerateToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTService("two", time.Hour, nil).ValidateToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, nil)
	start := time.Now()
	svc.now = func() time.Time { return start }

	token, _, err := svc.GenerateToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := svc.ValidateToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestRevokedTokenRejected(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, NewMemoryRevoker())
	ctx := context.Background()

	token, session, err := svc.GenerateToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := svc.RevokeToken(ctx, session); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestMemoryRevokerExpires(t *testing.T) {
	r := NewMemoryRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }
	ctx := context.Background()

	if err := r.Revoke(ctx, "abc", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := r.IsRevoked(ctx, "abc"); !ok {
		t.Fatal("expected token revoked")
	}

	r.now = func() time.Time { return now.Add(2 * time.Minute) }
	if ok, _ := r.IsRevoked(ctx, "abc"); ok {
		t.Fatal("expected revocation to lapse")
	}
}

func TestJWTMiddleware(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, nil)
	token, _, err := svc.GenerateToken("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var seen string
	h := JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("cookie", func(t *testing.T) {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK || seen != "alice" {
			t.Fatalf("status = %d user = %q", rr.Code, seen)
		}
	})

	t.Run("bearer", func(t *testing.T) {
		seen = ""
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK || seen != "alice" {
			t.Fatalf("status = %d user = %q", rr.Code, seen)
		}
	})

	t.Run("api without token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("page without token redirects", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/notes", nil))
		if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
			t.Fatalf("status = %d location = %q", rr.Code, rr.Header().Get("Location"))
		}
	})
}
