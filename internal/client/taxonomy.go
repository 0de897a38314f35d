package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/CDevmina/Tapiro-sub000/internal/cache"
	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.TaxonomyOracle = (*TaxonomyClient)(nil)

// TaxonomyConfig configures a TaxonomyClient.
type TaxonomyConfig struct {
	URL           string
	APIKey        string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

// TaxonomyClient is a remote taxonomy oracle. Any failure to reach it is
// reported as model.ErrValidationUnavailable.
type TaxonomyClient struct {
	endpoint      *endpoint
	cache         model.Cache
	timeout       time.Duration
	healthTimeout time.Duration
	logger        *logger.Logger
}

func NewTaxonomyClient(cfg TaxonomyConfig, c model.Cache, log *logger.Logger) *TaxonomyClient {
	return &TaxonomyClient{
		endpoint:      newEndpoint("taxonomy", cfg.URL, cfg.APIKey, log),
		cache:         c,
		timeout:       cfg.Timeout,
		healthTimeout: cfg.HealthTimeout,
		logger:        log,
	}
}

type attributesResponse struct {
	Attributes map[string][]string `json:"attributes"`
}

type validateRequest struct {
	CategoryID string            `json:"category_id"`
	Attributes map[string]string `json:"attributes"`
}

type batchRequest struct {
	Items []validateRequest `json:"items"`
}

type batchResponse struct {
	Results map[string]model.ValidationResult `json:"results"`
}

// GetCategoryAttributes returns the attribute table of a category, read
// through the cache.
func (c *TaxonomyClient) GetCategoryAttributes(ctx context.Context, categoryID string) (map[string][]string, error) {
	key := cache.TaxonomyAttributesKey(categoryID)

	var attrs map[string][]string
	if ok, err := cache.GetJSON(ctx, c.cache, key, &attrs); err != nil {
		c.logger.Warn("taxonomy client: cache read failed", "key", key, "error", err)
	} else if ok {
		return attrs, nil
	}

	var resp attributesResponse
	path := "/taxonomy/categories/" + url.PathEscape(categoryID) + "/attributes"
	if err := c.endpoint.call(ctx, c.timeout, http.MethodGet, path, nil, &resp); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", model.ErrValidationUnavailable, err)
	}

	if err := cache.SetJSON(ctx, c.cache, key, resp.Attributes, cache.TTLTaxonomy); err != nil {
		c.logger.Warn("taxonomy client: cache write failed", "key", key, "error", err)
	}

	return resp.Attributes, nil
}

func (c *TaxonomyClient) ValidateAttributes(ctx context.Context, category string, attributes map[string]string) (model.ValidationResult, error) {
	var result model.ValidationResult
	req := validateRequest{CategoryID: category, Attributes: attributes}
	if err := c.endpoint.call(ctx, c.timeout, http.MethodPost, "/taxonomy/validate", req, &result); err != nil {
		c.logger.Warn("taxonomy client: validation failed", "category", category, "error", err)
		return model.ValidationResult{}, fmt.Errorf("%w: %v", model.ErrValidationUnavailable, err)
	}

	return result, nil
}

// ValidateBatch validates items in one request. Result keys are item indices.
// A successful response that omits an index is treated as unavailable.
func (c *TaxonomyClient) ValidateBatch(ctx context.Context, items []model.ValidationItem) (map[string]model.ValidationResult, error) {
	req := batchRequest{Items: make([]validateRequest, len(items))}
	for i, item := range items {
		req.Items[i] = validateRequest{CategoryID: item.Category, Attributes: item.Attributes}
	}

	var resp batchResponse
	if err := c.endpoint.call(ctx, c.timeout, http.MethodPost, "/taxonomy/validate/batch", req, &resp); err != nil {
		c.logger.Warn("taxonomy client: batch validation failed", "items", len(items), "error", err)
		return nil, fmt.Errorf("%w: %v", model.ErrValidationUnavailable, err)
	}

	for i := range items {
		if _, ok := resp.Results[strconv.Itoa(i)]; !ok {
			return nil, fmt.Errorf("%w: missing result for item %d", model.ErrValidationUnavailable, i)
		}
	}

	return resp.Results, nil
}

// Health checks that the oracle answers within the health timeout.
func (c *TaxonomyClient) Health(ctx context.Context) error {
	if err := c.endpoint.call(ctx, c.healthTimeout, http.MethodGet, "/taxonomy/health", nil, nil); err != nil {
		return fmt.Errorf("taxonomy oracle unhealthy: %w", err)
	}
	return nil
}
