package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

const claimsKey = "claims"

// Auth validates the bearer JWT, rejects revoked token ids and stores the
// parsed ports.TokenClaims in the context. revocations may be nil.
func Auth(jwtSecret string, revocations ports.TokenRevocationStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := parseToken(parts[1], jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if revocations != nil && claims.TokenID != "" {
				revoked, err := revocations.IsRevoked(c.Request().Context(), claims.TokenID)
				if err != nil {
					return err
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
				}
			}

			SetClaims(c, claims)
			return next(c)
		}
	}
}

// SetClaims stores claims in the request context.
func SetClaims(c echo.Context, claims ports.TokenClaims) {
	c.Set(claimsKey, claims)
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c echo.Context) (ports.TokenClaims, bool) {
	claims, ok := c.Get(claimsKey).(ports.TokenClaims)
	return claims, ok
}

func parseToken(raw, secret string) (ports.TokenClaims, error) {
	mc := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, mc, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return ports.TokenClaims{}, jwt.ErrTokenInvalidClaims
	}

	sub, err := mc.GetSubject()
	if err != nil {
		return ports.TokenClaims{}, err
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return ports.TokenClaims{}, jwt.ErrTokenInvalidSubject
	}

	roleName, _ := mc["role"].(string)
	role, ok := domain.ParseRole(roleName)
	if !ok {
		return ports.TokenClaims{}, jwt.ErrTokenInvalidClaims
	}

	out := ports.TokenClaims{AccountID: id, Role: role}
	out.TokenID, _ = mc["jti"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
