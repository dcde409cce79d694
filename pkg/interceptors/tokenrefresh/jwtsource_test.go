package tokenrefresh

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

func signTestJWT(t *testing.T, exp time.Time) string {
	t.Helper()

	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privJWK, err := jwk.Import(privKey)
	if err != nil {
		t.Fatalf("import key: %v", err)
	}

	tok, err := jwt.NewBuilder().
		Subject("svc-account").
		Expiration(exp).
		Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), privJWK))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(signed)
}

func TestNewJWTSource_DerivesExpiryFromClaim(t *testing.T) {
	t.Parallel()

	want := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signTestJWT(t, want)

	source := NewJWTSource(func(context.Context) (string, error) {
		return raw, nil
	})

	tok, err := source.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.Value != raw {
		t.Errorf("Value = %q, want the raw JWT", tok.Value)
	}
	if !tok.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", tok.ExpiresAt, want)
	}
}

func TestNewJWTSource_PropagatesFetchError(t *testing.T) {
	t.Parallel()

	boom := context.DeadlineExceeded
	source := NewJWTSource(func(context.Context) (string, error) {
		return "", boom
	})

	if _, err := source.Token(context.Background()); err == nil {
		t.Fatal("Token() error = nil, want fetch error propagated")
	}
}

func TestNewJWTSource_RejectsMalformedToken(t *testing.T) {
	t.Parallel()

	source := NewJWTSource(func(context.Context) (string, error) {
		return "not-a-jwt", nil
	})

	if _, err := source.Token(context.Background()); err == nil {
		t.Fatal("Token() error = nil, want parse failure")
	}
}
