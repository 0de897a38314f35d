// Package grpcerror converts service errors into gRPC statuses.
package grpcerror

import (
	"context"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/CDevmina/Tapiro-sub000/internal/apierror"
)

// CodeTrailer carries the numeric API error code next to the gRPC status.
const CodeTrailer = "x-error-code"

// ToStatus maps err to a gRPC status error and records its numeric code in
// the response trailer. The wrapped cause is only exposed in dev mode.
func ToStatus(ctx context.Context, err error, devMode bool) error {
	apiErr := apierror.From(err)

	// Fails outside a server call, which only happens in tests.
	_ = grpc.SetTrailer(ctx, metadata.Pairs(CodeTrailer, strconv.Itoa(apiErr.Code)))

	msg := apiErr.Message
	if devMode && apiErr.Err != nil {
		msg = apiErr.Error()
	}
	return status.Error(apiErr.GRPCCode, msg)
}
