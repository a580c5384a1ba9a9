package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
	"github.com/jameslaisianto/Back-end-web-dev/pkg/observability"
)

// AuthService exchanges a password for a capability token on the caller's
// profile entity.
type AuthService struct {
	credentials *CredentialStore
	logger      *zap.Logger
	metrics     *observability.Collector
}

// NewAuthService creates the authorization service
func NewAuthService(credentials *CredentialStore, logger *zap.Logger, metrics *observability.Collector) *AuthService {
	return &AuthService{
		credentials: credentials,
		logger:      logger,
		metrics:     metrics,
	}
}

// IssueToken checks the password in body against userID's credential and
// mints a token with perms on the user's profile.
//
// The body may be empty or hold exactly one non-empty string property named
// Password. An unknown user and a wrong password produce the same
// not-found error.
func (s *AuthService) IssueToken(ctx context.Context, userID string, body map[string]interface{}, perms valueobjects.Permission) (*ports.IssuedToken, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("user id is required")
	}
	password, err := PasswordFromBody(body)
	if err != nil {
		return nil, err
	}

	cred, err := s.credentials.Credential(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cred.Matches(password) {
		s.logger.Debug("Password mismatch", zap.String("user_id", userID))
		return nil, pkgerrors.NewNotFoundError("user")
	}
	if !cred.HasProfile() {
		return nil, pkgerrors.NewInternalError("credential record is malformed").
			WithCause(entities.ErrMalformedCredential)
	}

	token, expiry, err := s.credentials.MintToken(ctx, cred.DataPartition, cred.DataRow, perms)
	if err != nil {
		s.logger.Error("Failed to mint token",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.TokenIssued(perms.String())
	s.logger.Info("Issued token",
		zap.String("user_id", userID),
		zap.String("permissions", perms.String()),
		zap.Time("expires_at", expiry),
	)

	return &ports.IssuedToken{
		Token:     token,
		Partition: cred.DataPartition,
		Row:       cred.DataRow,
		ExpiresAt: expiry,
	}, nil
}

const badPasswordBody = `body must be empty or {"Password": "<non-empty string>"}`

// PasswordFromBody extracts the password of a token or sign-on request.
// An empty body yields the empty password, which matches no credential.
func PasswordFromBody(body map[string]interface{}) (string, error) {
	switch len(body) {
	case 0:
		return "", nil
	case 1:
	default:
		return "", pkgerrors.NewValidationError(badPasswordBody)
	}

	v, ok := body[entities.PasswordProperty]
	if !ok {
		return "", pkgerrors.NewValidationError(badPasswordBody)
	}
	password, ok := v.(string)
	if !ok || password == "" {
		return "", pkgerrors.NewValidationError(badPasswordBody)
	}
	return password, nil
}
