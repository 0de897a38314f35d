package service

import (
	"context"
	"errors"
	"time"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

// ScopeResolver grants scopes to roles.
type ScopeResolver interface {
	Scopes(roles []string) ([]string, error)
}

// Identity resolves bearer tokens to identities and their scopes. Both are
// cached under the token's digest until the token expires.
type Identity struct {
	verifier model.IdentityVerifier
	scopes   ScopeResolver
	cache    model.Cache
	logger   *logger.Logger
	now      func() time.Time
}

func NewIdentity(
	verifier model.IdentityVerifier,
	scopes ScopeResolver,
	cache model.Cache,
	logger *logger.Logger,
) *Identity {
	return &Identity{
		verifier: verifier,
		scopes:   scopes,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Authenticate resolves token and attaches its scopes.
func (s *Identity) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, apierror.Unauthorized("Authorization token is required")
	}

	identity, err := s.Resolve(ctx, token)
	if err != nil {
		return model.Identity{}, err
	}

	scopes, err := s.Scopes(ctx, token, identity)
	if err != nil {
		return model.Identity{}, err
	}
	identity.Scopes = scopes

	return identity, nil
}

// Resolve returns the identity asserted by token.
func (s *Identity) Resolve(ctx context.Context, token string) (model.Identity, error) {
	key := cache.TokenKey(token)
	now := s.now()

	var identity model.Identity
	ok, err := cache.GetJSON(ctx, s.cache, key, &identity)
	if err != nil {
		s.logger.Warn("Identity service: cache read failed", "error", err)
	}
	if ok && (identity.ExpiresAt.IsZero() || now.Before(identity.ExpiresAt)) {
		return identity, nil
	}

	identity, err = s.verifier.Verify(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTokenExpired):
			return model.Identity{}, apierror.Unauthorized("Token expired")
		case errors.Is(err, model.ErrTokenInvalid):
			s.logger.Debug("Identity service: token rejected", "error", err)
			return model.Identity{}, apierror.Unauthorized("Invalid token")
		default:
			s.logger.Error("Identity service: failed to verify token", "error", err)
			return model.Identity{}, apierror.Internal(err)
		}
	}

	if err := cache.SetJSON(ctx, s.cache, key, identity, s.ttl(identity, now)); err != nil {
		s.logger.Warn("Identity service: cache write failed", "error", err)
	}

	return identity, nil
}

// Scopes returns the scopes granted to identity's roles.
func (s *Identity) Scopes(ctx context.Context, token string, identity model.Identity) ([]string, error) {
	load := func() ([]string, error) {
		scopes, err := s.scopes.Scopes(identity.Roles)
		if err != nil {
			s.logger.Error("Identity service: failed to resolve scopes", "sub", identity.Subject, "error", err)
			return nil, apierror.Internal(err)
		}
		return scopes, nil
	}

	return readThrough(ctx, s.cache, s.logger, cache.ScopesKey(token), s.ttl(identity, s.now()), load)
}

// ttl never outlives the token.
func (s *Identity) ttl(identity model.Identity, now time.Time) time.Duration {
	ttl := cache.TTLToken
	if !identity.ExpiresAt.IsZero() {
		if remaining := identity.ExpiresAt.Sub(now); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
