package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestEncodeDecode(t *testing.T) {
	c := NewCodec(secret, time.Hour)
	token, err := c.Encode("sess-1", "u1")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	claims, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if claims.SessionID != "sess-1" || claims.Subject != "u1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestDecodeRejects(t *testing.T) {
	c := NewCodec(secret, time.Hour)
	valid, _ := c.Encode("sess-1", "u1")

	expired := NewCodec(secret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Encode("sess-1", "u1")

	forged, _ := c.Encode("sess-2", "admin")
	parts, forgedParts := strings.Split(valid, "."), strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	other, _ := NewCodec(strings.Repeat("x", 32), time.Hour).Encode("sess-1", "u1")

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{SessionID: "s"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "tampered payload", token: tampered},
		{name: "expired", token: old},
		{name: "wrong secret", token: other},
		{name: "alg none", token: none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decode(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Decode() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
