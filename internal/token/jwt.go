package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.IdentityVerifier = (*Verifier)(nil)

// Config configures a Verifier. Issuer and Audience are checked only when set.
type Config struct {
	Secret     string
	Issuer     string
	Audience   string
	RolesClaim string
}

// Verifier validates HS256 identity-provider tokens.
type Verifier struct {
	secret     []byte
	issuer     string
	audience   string
	rolesClaim string
	parser     *jwt.Parser
}

// NewVerifier creates a Verifier for tokens signed with cfg.Secret.
func NewVerifier(cfg Config) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Verifier{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		rolesClaim: cfg.RolesClaim,
		parser:     jwt.NewParser(opts...),
	}
}

// Verify checks the signature and registered claims of tokenString and
// returns the identity it asserts.
func (v *Verifier) Verify(_ context.Context, tokenString string) (model.Identity, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, model.ErrTokenExpired
		}
		return model.Identity{}, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return model.Identity{}, fmt.Errorf("%w: missing subject", model.ErrTokenInvalid)
	}

	identity := model.Identity{
		Subject:  sub,
		Email:    stringClaim(claims, "email"),
		Nickname: stringClaim(claims, "nickname"),
		Roles:    []string{},
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}

	if raw, ok := claims[v.rolesClaim].([]interface{}); ok {
		for _, r := range raw {
			if role, ok := r.(string); ok {
				identity.Roles = append(identity.Roles, role)
			}
		}
	}

	return identity, nil
}

// Sign mints a token for identity valid for ttl. It is used by tests and
// development tooling; production tokens come from the identity provider.
func (v *Verifier) Sign(identity model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        identity.Subject,
		"email":      identity.Email,
		"nickname":   identity.Nickname,
		v.rolesClaim: identity.Roles,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}
	if v.audience != "" {
		claims["aud"] = v.audience
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}
