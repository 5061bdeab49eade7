package api

import (
	"context"

	"github.com/go-kit/log"

	"github.com/ssargent/minfmt/pkg/codec"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is canceled.
	StartServer(ctx context.Context, c *codec.DocumentCodec, jobs JobStore, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter(logger log.Logger) ServerStarter
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter(logger log.Logger) ServerStarter {
	return &DefaultServerStarter{logger: logger}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct {
	logger log.Logger
}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, c *codec.DocumentCodec, jobs JobStore, config ServerConfig) error {
	return NewServer(c, jobs, config, NewMetrics(), s.logger).ListenAndServe(ctx)
}
