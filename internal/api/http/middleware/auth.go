package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/auth"
	pasetotoken "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/paseto"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/reqctx"
)

type TokenVerifier interface {
	Verify(token string) (*pasetotoken.Claims, error)
}

// SessionStore is the part of *redis.Client used to check live sessions.
type SessionStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// AuthRequired validates a Bearer PASETO access token and checks the session in Redis.
// On success the claims are stored in c.Locals(pasetotoken.CtxKeyClaims) and
// attached to the request context for services.
func AuthRequired(tokens TokenVerifier, sessions SessionStore) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return fiber.ErrUnauthorized
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.ErrUnauthorized
		}

		claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.ErrUnauthorized
		}

		// Only access tokens are accepted on protected routes
		if claims.Type != pasetotoken.TokenTypeAccess || claims.SessionID == nil {
			return fiber.ErrUnauthorized
		}

		if err := sessions.Get(c.Context(), auth.SessionKey(*claims.SessionID)).Err(); err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}
