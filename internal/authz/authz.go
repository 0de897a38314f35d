// Package authz maps identity-provider roles to API scopes with casbin.
// A scope is "<object>:<action>", for example "store:write".
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Scopes granted by the policy.
const (
	ScopeUserRead   = "user:read"
	ScopeUserWrite  = "user:write"
	ScopeStoreRead  = "store:read"
	ScopeStoreWrite = "store:write"
)

var knownScopes = []string{ScopeUserRead, ScopeUserWrite, ScopeStoreRead, ScopeStoreWrite}

// Authorizer decides which scopes a set of roles grants.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

// New builds an Authorizer from the embedded model and policy.
func New() (*Authorizer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Authorizer{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		switch {
		case fields[0] == "p" && len(fields) == 4:
			if _, err := enforcer.AddPolicy(fields[1], fields[2], fields[3]); err != nil {
				return fmt.Errorf("failed to add policy %q: %w", line, err)
			}
		case fields[0] == "g" && len(fields) == 3:
			if _, err := enforcer.AddGroupingPolicy(fields[1], fields[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %q: %w", line, err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Allowed reports whether any of roles grants scope.
func (a *Authorizer) Allowed(roles []string, scope string) (bool, error) {
	obj, act, ok := strings.Cut(scope, ":")
	if !ok {
		return false, fmt.Errorf("malformed scope %q", scope)
	}

	for _, role := range roles {
		allowed, err := a.enforcer.Enforce(role, obj, act)
		if err != nil {
			return false, fmt.Errorf("failed to enforce %s for %s: %w", scope, role, err)
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// Scopes returns every scope granted to roles, in a stable order.
func (a *Authorizer) Scopes(roles []string) ([]string, error) {
	scopes := make([]string, 0, len(knownScopes))
	for _, scope := range knownScopes {
		allowed, err := a.Allowed(roles, scope)
		if err != nil {
			return nil, err
		}
		if allowed {
			scopes = append(scopes, scope)
		}
	}
	return scopes, nil
}
