package testutil

import (
	"io"

	"github.com/CDevmina/Tapiro-sub000/internal/logger"
)

// MakeNoopLogger returns a logger that discards everything.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 0, "text")
}
