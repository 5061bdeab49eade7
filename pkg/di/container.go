// Package di provides dependency injection container
package di

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-kit/log"

	"github.com/ssargent/minfmt/pkg/api" //nolint:depguard
	"github.com/ssargent/minfmt/pkg/catalog"
	"github.com/ssargent/minfmt/pkg/codec"
	"github.com/ssargent/minfmt/pkg/config"
	"github.com/ssargent/minfmt/pkg/logging"
	"github.com/ssargent/minfmt/pkg/pipeline"
)

// ErrNotConfigured is returned when a dependency is requested before
// Configure has been called.
var ErrNotConfigured = errors.New("container not configured")

// CatalogOpener opens the job catalog stored in dir.
type CatalogOpener func(dir string) (*catalog.Catalog, error)

// Container holds all the dependencies for the application
type Container struct {
	config        *config.Config
	logger        log.Logger
	serverFactory api.ServerFactory
	openCatalog   CatalogOpener
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		logger:        logging.Nop(),
		serverFactory: api.NewServerFactory(),
		openCatalog:   catalog.Open,
	}
}

// Configure installs the loaded configuration and the logger built from it.
func (c *Container) Configure(cfg *config.Config, logger log.Logger) {
	c.config = cfg
	if logger != nil {
		c.logger = logger
	}
}

// Config returns the active configuration
func (c *Container) Config() (*config.Config, error) {
	if c.config == nil {
		return nil, ErrNotConfigured
	}
	return c.config, nil
}

// Logger returns the application logger
func (c *Container) Logger() log.Logger {
	return c.logger
}

// Codec returns a document codec compressing with the configured method and
// holding decoded bodies to the configured size.
func (c *Container) Codec() (*codec.DocumentCodec, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	compressor, err := cfg.Compressor()
	if err != nil {
		return nil, err
	}
	return codec.NewDocumentCodec(
		codec.WithCompressor(compressor),
		codec.WithMaxBodySize(cfg.Compression.MaxDecodedBytes),
	), nil
}

// Catalog opens the job catalog. It returns nil without error when the
// catalog is disabled; callers own closing it.
func (c *Container) Catalog() (*catalog.Catalog, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	if !cfg.Catalog.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.Catalog.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create catalog dir: %w", err)
	}
	return c.openCatalog(cfg.Catalog.DataDir)
}

// Processor builds a file processor recording into jobs, which may be nil.
func (c *Container) Processor(jobs *catalog.Catalog) (*pipeline.Processor, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	dc, err := c.Codec()
	if err != nil {
		return nil, err
	}
	opts := pipeline.Options{
		OutputDir: cfg.Output.Dir,
		Overwrite: cfg.Output.Overwrite,
		Workers:   cfg.Workers,
	}
	var rec pipeline.Recorder
	if jobs != nil {
		rec = jobs
	}
	return pipeline.New(dc, opts, c.logger, rec), nil
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// SetCatalogOpener allows overriding how the catalog is opened (for testing)
func (c *Container) SetCatalogOpener(open CatalogOpener) {
	c.openCatalog = open
}
