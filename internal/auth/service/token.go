package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// DefaultTemporaryTokenTTL applies when IssueTemporaryToken gets ttl <= 0.
const DefaultTemporaryTokenTTL = 5 * time.Minute

// TokenService mints and rotates access/refresh pairs and manages single-use
// temporary tokens. It is the only writer of refresh and temporary records.
type TokenService struct {
	Codec      *jwtx.Codec
	Store      store.Store
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now defaults to time.Now. Tests share one clock with the codec.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// AccessTokenTTL is the lifetime given to issued access tokens.
func (s *TokenService) AccessTokenTTL() time.Duration { return s.accessTTL() }

func refreshTokenKey(userID, refreshTokenID string) string {
	return "refresh_token_" + userID + "_" + refreshTokenID
}

func temporaryTokenKey(usage, id string) string {
	return "temp_token_" + usage + "_" + id
}

// newID returns 128 random bits as 32 lowercase hex characters.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// IssueToken stores a fresh refresh record and returns it together with a
// signed access token carrying the subject, refresh id, roles and any
// additional claims.
func (s *TokenService) IssueToken(
	ctx context.Context,
	userID string,
	roles []string,
	additional []jwtx.Claim,
) (*domain.TokenPair, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	for _, c := range additional {
		switch c.Type {
		case s.Codec.SubjectClaimType(), s.Codec.RoleClaimType(), jwtx.ClaimRefreshTokenID:
			return nil, fmt.Errorf("%w: claim %q is set by the service", ErrInvalidArgument, c.Type)
		}
	}
	l := slogx.FromContext(ctx)

	refreshTokenID := newID()
	refreshSecret, err := cryptox.GenerateSecret(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	claims := make([]jwtx.Claim, 0, 2+len(roles)+len(additional))
	claims = append(claims,
		jwtx.Claim{Type: s.Codec.SubjectClaimType(), Value: userID},
		jwtx.Claim{Type: jwtx.ClaimRefreshTokenID, Value: refreshTokenID},
	)
	for _, role := range roles {
		claims = append(claims, jwtx.Claim{Type: s.Codec.RoleClaimType(), Value: role})
	}
	claims = append(claims, additional...)

	expiresAt := s.now().Add(s.accessTTL())
	accessToken, err := s.Codec.Encode(claims, s.Issuer, s.Audience, expiresAt)
	if err != nil {
		return nil, err
	}

	// Write after encoding so a rejected claim set leaves no orphan record.
	if err := s.Store.Set(ctx, refreshTokenKey(userID, refreshTokenID), refreshSecret, s.refreshTTL()); err != nil {
		return nil, unavailable("store refresh token", err)
	}

	l.Debug("issued token",
		slog.String("user_id", userID),
		slog.Int("roles", len(roles)),
		slog.Time("expires_at", expiresAt),
	)

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshSecret,
	}, nil
}

// refreshIdentity is what a presented access token contributes to the next
// pair.
type refreshIdentity struct {
	userID         string
	refreshTokenID string
	roles          []string
	claims         []jwtx.Claim
}

func (s *TokenService) decodeForRefresh(ctx context.Context, accessToken string) (refreshIdentity, error) {
	principal, err := s.Codec.Decode(accessToken, jwtx.DecodeOptions{ValidateExpiry: false})
	if err != nil {
		slogx.FromContext(ctx).Warn("access token rejected", slog.Any("error", err))
		return refreshIdentity{}, err
	}

	subjectType := s.Codec.SubjectClaimType()
	roleType := s.Codec.RoleClaimType()

	id := refreshIdentity{
		userID: principal.Subject(),
		roles:  principal.Roles(),
	}
	id.refreshTokenID, _ = principal.FindFirst(jwtx.ClaimRefreshTokenID)

	for _, c := range principal.Claims {
		switch c.Type {
		case subjectType, roleType, jwtx.ClaimRefreshTokenID:
			continue
		}
		id.claims = append(id.claims, c)
	}

	if id.userID == "" || id.refreshTokenID == "" {
		return refreshIdentity{}, ErrInvalidRefresh
	}
	return id, nil
}

// RefreshToken rotates a pair. The access token may be expired but must
// otherwise verify. The stored record is consumed before the new pair is
// issued, so a refresh secret works at most once.
func (s *TokenService) RefreshToken(ctx context.Context, accessToken, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	id, err := s.decodeForRefresh(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	key := refreshTokenKey(id.userID, id.refreshTokenID)
	stored, err := s.Store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		l.Warn("refresh token not found", slog.String("user_id", id.userID))
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, unavailable("load refresh token", err)
	}

	if !cryptox.EqualSecrets(stored, refreshToken) {
		l.Warn("refresh token does not match stored record", slog.String("user_id", id.userID))
		return nil, ErrInvalidRefresh
	}

	consumed, err := s.Store.CompareAndDelete(ctx, key, stored)
	if err != nil {
		return nil, unavailable("consume refresh token", err)
	}
	if !consumed {
		// Another caller rotated this record between Get and here.
		l.Warn("refresh token already consumed", slog.String("user_id", id.userID))
		return nil, ErrInvalidRefresh
	}

	l.Debug("refreshing token", slog.String("user_id", id.userID))
	return s.IssueToken(ctx, id.userID, id.roles, id.claims)
}

// RevokeRefreshToken deletes the refresh record bound to accessToken. The
// access token itself stays valid until it expires. Revoking twice is not
// an error.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, accessToken string) error {
	id, err := s.decodeForRefresh(ctx, accessToken)
	if err != nil {
		return err
	}

	if err := s.Store.Delete(ctx, refreshTokenKey(id.userID, id.refreshTokenID)); err != nil {
		return unavailable("revoke refresh token", err)
	}

	slogx.FromContext(ctx).Info("revoked refresh token", slog.String("user_id", id.userID))
	return nil
}

// IssueTemporaryToken stores a single-use token for usage and returns its
// id. ttl <= 0 means DefaultTemporaryTokenTTL.
func (s *TokenService) IssueTemporaryToken(ctx context.Context, userID, usage string, ttl time.Duration) (string, error) {
	if userID == "" || usage == "" {
		return "", fmt.Errorf("%w: user id and usage are required", ErrInvalidArgument)
	}
	if ttl <= 0 {
		ttl = DefaultTemporaryTokenTTL
	}

	raw, err := json.Marshal(domain.TemporaryTokenRecord{UserID: userID, Usage: usage})
	if err != nil {
		return "", err
	}

	id := newID()
	key := temporaryTokenKey(usage, id)
	if err := s.Store.Set(ctx, key, string(raw), ttl); err != nil {
		return "", unavailable("store temporary token", err)
	}

	slogx.FromContext(ctx).Debug("issued temporary token",
		slog.String("user_id", userID),
		slog.String("usage", usage),
		slog.Duration("ttl", ttl),
	)
	return id, nil
}

// ValidateTemporaryToken consumes the token and returns the user it was
// issued for. A record whose usage differs is left in place.
func (s *TokenService) ValidateTemporaryToken(ctx context.Context, token, usage string) (string, error) {
	l := slogx.FromContext(ctx)
	key := temporaryTokenKey(usage, token)

	raw, err := s.Store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		l.Warn("temporary token not found, may be expired or used", slog.String("usage", usage))
		return "", ErrTemporaryTokenExpiredOrUsed
	}
	if err != nil {
		return "", unavailable("load temporary token", err)
	}

	var rec domain.TemporaryTokenRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		l.Warn("temporary token record is corrupt", slog.String("usage", usage), slog.Any("error", err))
		return "", ErrTemporaryTokenExpiredOrUsed
	}

	if rec.Usage != usage {
		l.Warn("temporary token usage mismatch",
			slog.String("stored_usage", rec.Usage),
			slog.String("usage", usage),
		)
		return "", ErrTemporaryTokenUsageMismatch
	}

	consumed, err := s.Store.CompareAndDelete(ctx, key, raw)
	if err != nil {
		return "", unavailable("consume temporary token", err)
	}
	if !consumed {
		return "", ErrTemporaryTokenExpiredOrUsed
	}

	l.Debug("consumed temporary token", slog.String("usage", usage))
	return rec.UserID, nil
}
