package middleware

import (
	"context"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"go.uber.org/zap"

	"github.com/andrewpaige1/roadmap-api/auth"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Nickname string `json:"nickname"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

func (c *CustomClaims) GetNickname() string {
	return c.Nickname
}

// EnsureValidToken checks the token from the Authorization header or the auth_token
// cookie. Requests without a token pass through without claims; routes that need an
// owner are wrapped in SyncUserMiddleware.
func EnsureValidToken(issuer *auth.Issuer, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	jwtValidator, err := validator.New(
		func(ctx context.Context) (interface{}, error) {
			return issuer.SigningKey()
		},
		validator.HS256,
		issuer.Issuer(),
		[]string{issuer.Audience()},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Info("rejected token", zap.String("path", r.URL.Path), zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Failed to validate JWT."}`))
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithCredentialsOptional(true),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			jwtmiddleware.CookieTokenExtractor("auth_token"),
		)),
	)

	return mw.CheckJWT, nil
}
