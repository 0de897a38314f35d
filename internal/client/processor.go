package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/CDevmina/Tapiro-sub000/internal/logger"
	"github.com/CDevmina/Tapiro-sub000/internal/model"
)

var _ model.Processor = (*AIClient)(nil)

var (
	ErrProcessorDisabled     = errors.New("ai processor: disabled")
	ErrProcessorUnauthorized = errors.New("ai processor: unauthorized")
	ErrProcessorNotFound     = errors.New("ai processor: not found")
	ErrProcessorFailed       = errors.New("ai processor: processor error")
	ErrProcessorUnreachable  = errors.New("ai processor: unreachable")
)

// AIConfig configures an AIClient. An empty URL disables the client.
type AIConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// AIClient forwards ingested user data to the AI processor.
type AIClient struct {
	endpoint *endpoint
	timeout  time.Duration
	disabled bool
}

func NewAIClient(cfg AIConfig, log *logger.Logger) *AIClient {
	return &AIClient{
		endpoint: newEndpoint("ai", cfg.URL, cfg.APIKey, log),
		timeout:  cfg.Timeout,
		disabled: cfg.URL == "",
	}
}

func (c *AIClient) ProcessUserData(ctx context.Context, req model.ProcessRequest) error {
	if c.disabled {
		return ErrProcessorDisabled
	}

	err := c.endpoint.call(ctx, c.timeout, http.MethodPost, "/users/data/process", req, nil)
	if err != nil {
		return classify(err)
	}

	return nil
}

// Health checks that the processor answers. A disabled client is never healthy.
func (c *AIClient) Health(ctx context.Context) error {
	if c.disabled {
		return ErrProcessorDisabled
	}
	if err := c.endpoint.call(ctx, c.timeout, http.MethodGet, "/health", nil, nil); err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrProcessorUnauthorized, statusErr.Body)
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		return ErrProcessorNotFound
	case errors.As(err, &statusErr):
		return fmt.Errorf("%w: status %d", ErrProcessorFailed, statusErr.Code)
	default:
		return fmt.Errorf("%w: %v", ErrProcessorUnreachable, err)
	}
}
