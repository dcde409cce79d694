package tokenrefresh

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
)

// NewJWTSource wraps fetch (typically a client-credentials exchange against
// an OAuth2/OIDC token endpoint) into a Source that derives ExpiresAt from
// the fetched JWT's own "exp" claim instead of trusting a side-channel
// value, so a token endpoint that changes its lifetime is picked up
// automatically. The token is parsed without signature verification:
// the caller already trusts fetch's transport (TLS to its own token
// endpoint), so this only reads the claim, it does not authenticate the
// token's origin.
func NewJWTSource(fetch func(ctx context.Context) (string, error)) Source {
	return SourceFunc(func(ctx context.Context) (Token, error) {
		raw, err := fetch(ctx)
		if err != nil {
			return Token{}, fmt.Errorf("fetch token: %w", err)
		}

		tok, err := jwt.ParseInsecure([]byte(raw))
		if err != nil {
			return Token{}, fmt.Errorf("parse token: %w", err)
		}

		var exp time.Time
		if err := tok.Get(jwt.ExpirationKey, &exp); err != nil {
			return Token{}, fmt.Errorf("parse token: missing exp claim: %w", err)
		}

		return Token{Value: raw, ExpiresAt: exp}, nil
	})
}
