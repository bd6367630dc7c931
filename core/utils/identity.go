package utils

import (
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// IdentityResolver derives the rate-limit identity of a caller. Precedence:
// API key header, verified bearer token subject, X-Forwarded-For (if
// trusted), remote address.
type IdentityResolver struct {
	KeyHeader string
	TrustXFF  bool
	JWTSecret []byte
}

func (r IdentityResolver) Resolve(req *http.Request) string {
	if r.KeyHeader != "" {
		if v := strings.TrimSpace(req.Header.Get(r.KeyHeader)); v != "" {
			return "key:" + v
		}
	}

	if len(r.JWTSecret) > 0 {
		if sub, ok := BearerSubject(req.Header.Get("Authorization"), r.JWTSecret); ok {
			return "sub:" + sub
		}
	}

	return "ip:" + ClientIP(req, r.TrustXFF)
}

// BearerSubject verifies an HS256 bearer token and returns its subject.
func BearerSubject(header string, secret []byte) (string, bool) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || raw == "" {
		return "", false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", false
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

func ClientIP(req *http.Request, trustXFF bool) string {
	if trustXFF {
		if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if req.RemoteAddr != "" {
		return req.RemoteAddr
	}
	return "unknown"
}

// HashIdentity keeps raw tokens and keys out of the shared counter store.
func HashIdentity(identity string) string {
	sum := blake2b.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:16])
}
