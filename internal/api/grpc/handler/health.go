package handler

import (
	"context"

	"github.com/CDevmina/Tapiro-sub000/internal/api/grpc/tapiro"
)

// Health handles the tapiro.Health service.
type Health struct {
	version string
}

var _ tapiro.HealthServer = (*Health)(nil)

func NewHealth(version string) *Health {
	return &Health{version: version}
}

func (h *Health) Check(context.Context, *tapiro.Empty) (*tapiro.HealthResponse, error) {
	return &tapiro.HealthResponse{Status: "ok", Version: h.version}, nil
}
