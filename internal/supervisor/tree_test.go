package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CDevmina/Tapiro-sub000/internal/testutil"
)

type flakyService struct {
	starts atomic.Int32
}

func (s *flakyService) Serve(ctx context.Context) error {
	if s.starts.Add(1) < 3 {
		return errors.New("crashed")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestTree_RestartsFailedService(t *testing.T) {
	tree := NewTree(testutil.MakeNoopLogger().Logger, TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	svc := &flakyService{}
	tree.AddBackground(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	require.Eventually(t, func() bool { return svc.starts.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
	assert.GreaterOrEqual(t, svc.starts.Load(), int32(3))
}
