package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL matches the lifetime of the auth_token cookie.
const TokenTTL = 24 * time.Hour

var ErrNoSecret = errors.New("auth: JWT secret key not set")

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewIssuer(secret, issuer, audience string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, audience: audience, now: time.Now}, nil
}

func (i *Issuer) Issuer() string   { return i.issuer }
func (i *Issuer) Audience() string { return i.audience }

// SigningKey is the key func handed to the token validator.
func (i *Issuer) SigningKey() (interface{}, error) {
	return i.secret, nil
}

func (i *Issuer) CreateToken(subject, nickname string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"sub":      subject,
			"nickname": nickname,
			"iss":      i.issuer,
			"aud":      []string{i.audience},
			"iat":      now.Unix(),
			"exp":      now.Add(TokenTTL).Unix(),
		})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken parses the token and returns its subject.
func (i *Issuer) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return token.Claims.GetSubject()
}
