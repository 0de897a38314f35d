package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type listenFunc func(protocol, addr string) (net.Listener, error)

func (f listenFunc) Listen(protocol, addr string) (net.Listener, error) {
	return f(protocol, addr)
}

func TestGRPCServer_Address(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	assert.Equal(t, ":0", s.Address())
}

func TestGRPCServer_Stop(t *testing.T) {
	s := NewGRPCServer(grpc.NewServer(), ":0")
	err := s.Stop(context.Background())
	assert.NoError(t, err)
}

func TestGRPCServer_Start_ListensAndServes(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer(grpc.NewServer(), ":0")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	listened := make(chan struct{})
	sec := listenFunc(func(protocol, addr string) (net.Listener, error) {
		assert.Equal(t, "tcp", protocol)
		assert.Equal(t, ":0", addr)
		close(listened)
		return ln, nil
	})

	result := make(chan error, 1)
	go func() { result <- srv.Start(sec) }()
	<-listened
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.NoError(t, <-result)
}

func TestGRPCServer_Start_ListenError(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer(grpc.NewServer(), ":0")
	sec := listenFunc(func(string, string) (net.Listener, error) {
		return nil, errors.New("address in use")
	})

	err := srv.Start(sec)
	assert.ErrorContains(t, err, "failed to listen")
}
