package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/urbanatlas/urban-backend/internal/logger"
)

func testMiddleware(t *testing.T, secret string) *AuthMiddleware {
	t.Helper()
	log, err := logger.New("dev", "error")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	return &AuthMiddleware{log: log, secret: []byte(secret)}
}

func signToken(t *testing.T, secret string, claims tokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestParseToken(t *testing.T) {
	am := testMiddleware(t, "test-secret")

	token := signToken(t, "test-secret", tokenClaims{
		IsSuperuser: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	rd, err := am.parseToken(token)
	if err != nil {
		t.Fatalf("parse valid token: %v", err)
	}
	if rd.UserID != "user-42" {
		t.Fatalf("user id = %q, want %q", rd.UserID, "user-42")
	}
	if !rd.IsSuperuser {
		t.Fatalf("superuser claim lost")
	}
}

func TestParseTokenRejectsBadSignature(t *testing.T) {
	am := testMiddleware(t, "test-secret")

	token := signToken(t, "other-secret", tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := am.parseToken(token); err == nil {
		t.Fatalf("token signed with wrong secret accepted")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	am := testMiddleware(t, "test-secret")

	token := signToken(t, "test-secret", tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	if _, err := am.parseToken(token); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestParseTokenRejectsMissingSubject(t *testing.T) {
	am := testMiddleware(t, "test-secret")

	token := signToken(t, "test-secret", tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := am.parseToken(token); err == nil {
		t.Fatalf("token without subject accepted")
	}
}
