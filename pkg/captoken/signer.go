package captoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
)

// claims is the JWT body. Short names keep tokens small in URL paths.
type claims struct {
	Table       string `json:"tbl"`
	Partition   string `json:"pk"`
	Row         string `json:"rk"`
	Permissions string `json:"perm"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 capability tokens with a shared secret.
type Signer struct {
	secret []byte
	issuer string
	clock  clockwork.Clock
}

// NewSigner creates a signer. The clock decides both issue time and expiry
// checks, so tests can move it.
func NewSigner(secret, issuer string, clock clockwork.Clock) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Signer{
		secret: []byte(secret),
		issuer: issuer,
		clock:  clock,
	}, nil
}

// Mint signs a token granting perms on scope until expiry.
func (s *Signer) Mint(scope valueobjects.Scope, perms valueobjects.Permission, expiry time.Time) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	if perms.IsZero() {
		return "", errors.New("mint token: empty permission set")
	}

	now := s.clock.Now()
	if !expiry.After(now) {
		return "", errors.New("mint token: expiry must be in the future")
	}

	c := claims{
		Table:       scope.Table,
		Partition:   scope.Partition,
		Row:         scope.Row,
		Permissions: perms.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   scope.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the token content.
// Errors wrap ErrExpired or ErrInvalid. An expired token with a good
// signature is returned alongside ErrExpired so its scope can still be read.
func (s *Signer) Verify(raw string) (*Token, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalid)
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	// claim errors are joined; only a lone expiry keeps the token
	if err != nil && (!errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenInvalidIssuer)) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	expired := err

	tok, err := tokenFromClaims(&c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if expired != nil {
		return tok, fmt.Errorf("%w: %v", ErrExpired, expired)
	}
	return tok, nil
}

func tokenFromClaims(c *claims) (*Token, error) {
	perms, err := valueobjects.ParsePermission(c.Permissions)
	if err != nil {
		return nil, err
	}
	scope, err := valueobjects.NewScope(c.Table, c.Partition, c.Row)
	if err != nil {
		return nil, err
	}
	if c.ExpiresAt == nil {
		return nil, errors.New("token has no expiry")
	}

	tok := &Token{
		ID:          c.ID,
		Scope:       scope,
		Permissions: perms,
		ExpiresAt:   c.ExpiresAt.Time,
	}
	if c.IssuedAt != nil {
		tok.IssuedAt = c.IssuedAt.Time
	}
	return tok, nil
}
