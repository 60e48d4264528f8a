// Package token issues and verifies signed identity tokens for a Principal.
package token

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrNotYetValid      = errors.New("token used before issued")
	ErrAudienceMismatch = errors.New("token audience mismatch")
	ErrIssuerMismatch   = errors.New("token issuer mismatch")
	ErrMalformedSubject = errors.New("token subject malformed")
	ErrMalformedToken   = errors.New("token malformed")

	ErrInvalidPrincipal = errors.New("principal requires id and username")
)

// Principal is the identity attached to a request after verification.
type Principal struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Claims carries the principal as structured claims next to the registered
// ones; sub holds the principal id.
type Claims struct {
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret   []byte
	Audience string
	Issuer   string
	Lifetime time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is immutable after New and safe for concurrent use.
type Service struct {
	secret   []byte
	audience string
	issuer   string
	lifetime time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

func New(cfg Config, opts ...Option) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: empty signing secret")
	}
	if cfg.Audience == "" || cfg.Issuer == "" {
		return nil, errors.New("token: audience and issuer are required")
	}
	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("token: lifetime must be positive, got %s", cfg.Lifetime)
	}

	s := &Service{
		secret:   append([]byte(nil), cfg.Secret...),
		audience: cfg.Audience,
		issuer:   cfg.Issuer,
		lifetime: cfg.Lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(s.audience),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		// claims carry whole seconds; a token is valid through its exp second
		jwt.WithLeeway(time.Second),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	return s, nil
}

func (s *Service) Lifetime() time.Duration { return s.lifetime }

func (s *Service) Issue(p Principal) (string, error) {
	if p.ID == "" || p.Username == "" {
		return "", ErrInvalidPrincipal
	}

	jti, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate jti: %w", err)
	}

	iat := s.now().Unix()
	claims := Claims{
		Username:    p.Username,
		Roles:       orEmpty(p.Roles),
		Permissions: orEmpty(p.Permissions),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   p.ID,
			Audience:  jwt.ClaimStrings{s.audience},
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Unix(iat, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt(iat, s.lifetime), 0)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) Verify(raw string) (Principal, error) {
	var claims Claims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Principal{}, classify(raw, err)
	}

	if claims.ID == "" || claims.Issuer == "" || len(claims.Audience) == 0 ||
		claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Principal{}, ErrMalformedToken
	}
	if claims.Subject == "" || claims.Username == "" {
		return Principal{}, ErrMalformedSubject
	}

	return Principal{
		ID:          claims.Subject,
		Username:    claims.Username,
		Roles:       orEmpty(claims.Roles),
		Permissions: orEmpty(claims.Permissions),
	}, nil
}

func classify(raw string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		// header and payload decode: the broken part is the signature segment
		if _, _, uerr := jwt.NewParser().ParseUnverified(raw, &Claims{}); uerr == nil {
			return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %v", ErrNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", ErrAudienceMismatch, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrIssuerMismatch, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}

// expiresAt adds lifetime to iat in whole seconds, saturating at MaxInt64.
func expiresAt(iat int64, lifetime time.Duration) int64 {
	secs := int64(lifetime / time.Second)
	if secs > 0 && iat > math.MaxInt64-secs {
		return math.MaxInt64
	}
	return iat + secs
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
