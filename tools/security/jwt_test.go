package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"collabhub/tools/errs"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	want := Identity{
		UserID:    "u1",
		Username:  "alice",
		Email:     "alice@example.com",
		AvatarURL: "https://cdn.example.com/a.png",
	}
	token, exp, err := Generate(opts, want)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", exp)
	}

	got, err := Verify(opts, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != want {
		t.Fatalf("identity mismatch: got %+v want %+v", got, want)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("right")), Identity{UserID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := Verify(DefaultOptions([]byte("wrong")), token); err == nil {
		t.Fatalf("token signed with another secret must fail")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	claims := jwtlib.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, verr := Verify(DefaultOptions(secret), token)
	if verr == nil {
		t.Fatalf("expired token must fail")
	}
	if !errs.ErrTokenExpired.Is(verr) {
		t.Fatalf("want token-expired code, got %v", verr)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := Verify(DefaultOptions([]byte("s")), "not-a-token"); err == nil {
		t.Fatalf("garbage token must fail")
	}
}
