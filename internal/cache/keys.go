package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TTL classes.
const (
	TTLToken           = 3600 * time.Second
	TTLUserData        = 3600 * time.Second
	TTLStoreData       = 3600 * time.Second
	TTLAPIKey          = 1800 * time.Second
	TTLAIRequest       = 60 * time.Second
	TTLTaxonomy        = 3600 * time.Second
	TTLPersonalizedAds = 300 * time.Second
)

// Key prefixes.
const (
	PrefixUserData         = "userdata:"
	PrefixStore            = "store:"
	PrefixAPIKey           = "apikey:"
	PrefixScopes           = "scopes:"
	PrefixPreferences      = "preferences:"
	PrefixStorePreferences = "prefs:"
	PrefixPersonalizedAds  = "personalized_ads:"
	PrefixAIRequest        = "ai_request:"
	PrefixTaxonomyAttrs    = "taxonomy:attrs:"
)

// TokenKey addresses the identity resolved from a bearer token. Tokens are
// hashed so they never appear in the cache keyspace.
func TokenKey(token string) string {
	return PrefixUserData + "token:" + Fingerprint(token)
}

// ScopesKey addresses the scopes granted to a bearer token.
func ScopesKey(token string) string {
	return PrefixScopes + Fingerprint(token)
}

// UserKey addresses a user document by identity-provider subject.
func UserKey(authID string) string {
	return PrefixUserData + authID
}

// StoreKey addresses a store document by identity-provider subject.
func StoreKey(authID string) string {
	return PrefixStore + authID
}

// APIKeyKey addresses the prefix to store mapping of an API key.
func APIKeyKey(prefix string) string {
	return PrefixAPIKey + prefix
}

// PreferencesKey addresses a user's own preference view.
func PreferencesKey(authID string) string {
	return PrefixPreferences + authID
}

// StorePreferencesKey addresses the preference snapshot a store sees for a user.
func StorePreferencesKey(userID, storeID string) string {
	return PrefixStorePreferences + userID + ":" + storeID
}

// PersonalizedAdsKey addresses the ranked advertisements of a user.
func PersonalizedAdsKey(userID string) string {
	return PrefixPersonalizedAds + userID
}

// AIRequestKey addresses a recently forwarded AI processing payload.
func AIRequestKey(fingerprint string) string {
	return PrefixAIRequest + fingerprint
}

// TaxonomyAttributesKey addresses the attribute table of a category.
func TaxonomyAttributesKey(categoryID string) string {
	return PrefixTaxonomyAttrs + categoryID
}

// Fingerprint returns the hex SHA-256 of s.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
