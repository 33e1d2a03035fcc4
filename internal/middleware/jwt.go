package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"assochub/internal/common"
	"assochub/internal/models"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const tokenContextKey = "token"

// JWTConfig selects how bearer tokens are verified. JWKSURL wins over Secret.
type JWTConfig struct {
	JWKSURL  string
	Secret   string
	Issuer   string
	Audience string
}

// JWTAuth verifies identity-provider tokens and places the caller on the request context
type JWTAuth struct {
	jwks    *keyfunc.JWKS
	keyFunc jwt.Keyfunc
	methods []string
	options []jwt.ParserOption
}

func NewJWTAuth(cfg JWTConfig, log *logrus.Logger) (*JWTAuth, error) {
	auth := &JWTAuth{}

	switch {
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				log.WithError(err).Warn("jwks refresh failed")
			},
		})
		if err != nil {
			return nil, fmt.Errorf("load jwks: %w", err)
		}
		auth.jwks = jwks
		auth.keyFunc = jwks.Keyfunc
		auth.methods = []string{"RS256", "ES256"}
	case cfg.Secret != "":
		secret := []byte(cfg.Secret)
		auth.keyFunc = func(*jwt.Token) (interface{}, error) { return secret, nil }
		auth.methods = []string{"HS256"}
	default:
		return nil, errors.New("either a JWKS URL or a JWT secret is required")
	}

	auth.options = []jwt.ParserOption{jwt.WithValidMethods(auth.methods), jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		auth.options = append(auth.options, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		auth.options = append(auth.options, jwt.WithAudience(cfg.Audience))
	}
	return auth, nil
}

// Close stops the background JWKS refresh
func (a *JWTAuth) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// Middleware rejects requests without a valid bearer token
func (a *JWTAuth) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: tokenContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			token, err := jwt.ParseWithClaims(auth, jwt.MapClaims{}, a.keyFunc, a.options...)
			if err != nil {
				return nil, err
			}
			if !token.Valid {
				return nil, errors.New("token not valid")
			}
			return token, nil
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return
			}
			identity, err := IdentityFromClaims(claims)
			if err != nil {
				return
			}
			c.SetRequest(c.Request().WithContext(common.WithIdentity(c.Request().Context(), identity)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, echojwt.ErrJWTMissing) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	})
}

// IdentityFromClaims maps standard OIDC claims onto the caller identity.
// The subject is required; email is lower-cased for member matching.
func IdentityFromClaims(claims jwt.MapClaims) (*models.Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("missing subject")
	}

	identity := &models.Identity{UserID: sub}
	if email, ok := claims["email"].(string); ok {
		identity.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := claims["picture"].(string); ok {
		identity.AvatarURL = picture
	}
	return identity, nil
}
