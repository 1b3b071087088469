package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"collabhub/tools/errs"
)

// Options controls signing algorithm and TTL.
type Options struct {
	Secret []byte        // HMAC key
	Alg    string        // HS256/HS384/HS512 (default HS256)
	TTL    time.Duration // token lifetime (default 2h)
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS256", TTL: 2 * time.Hour}
}

// Identity is the authenticated user carried by a validated token.
// Captured once at handshake time and immutable for the connection.
type Identity struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// Generate issues a token for the given identity. Used by tests and by the
// login surface of the CRUD layer; the hub itself only verifies.
func Generate(opts Options, id Identity) (string, time.Time, error) {
	method, err := signingMethod(opts.Alg)
	if err != nil {
		return "", time.Time{}, err
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	now := time.Now()
	exp := now.Add(opts.TTL)

	claims := jwtlib.MapClaims{
		"sub": id.UserID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	if id.Username != "" {
		claims["name"] = id.Username
	}
	if id.Email != "" {
		claims["email"] = id.Email
	}
	if id.AvatarURL != "" {
		claims["avatar"] = id.AvatarURL
	}

	signed, err := jwtlib.NewWithClaims(method, claims).SignedString(opts.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify validates the token and extracts the identity claims.
func Verify(opts Options, token string) (Identity, error) {
	if _, err := signingMethod(opts.Alg); err != nil {
		return Identity{}, err
	}
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		// HMAC family only
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return opts.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Identity{}, errs.ErrTokenExpired.WrapMsg("parse", "err", err)
		}
		return Identity{}, errs.ErrTokenInvalid.WrapMsg("parse", "err", err)
	}
	if !parsed.Valid {
		return Identity{}, errs.ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return Identity{}, errs.ErrTokenInvalid.WrapMsg("claims type mismatch")
	}

	id := Identity{
		UserID:    claimString(claims, "sub"),
		Username:  claimString(claims, "name"),
		Email:     claimString(claims, "email"),
		AvatarURL: claimString(claims, "avatar"),
	}
	if id.UserID == "" {
		return Identity{}, errs.ErrTokenInvalid.WrapMsg("missing sub")
	}
	return id, nil
}

func claimString(m jwtlib.MapClaims, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported alg: %s (use HS256/HS384/HS512)", alg)
	}
}
