// Package container provides dependency injection for extracto-ofx.
// It builds the logger, the profile registry and one parser per source
// from a configuration, so commands and the HTTP API share the same wiring.
package container

import (
	"fmt"
	"strings"

	"fjacquet/extracto-ofx/internal/config"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/normalizer"
	"fjacquet/extracto-ofx/internal/ofx"
	"fjacquet/extracto-ofx/internal/parser"
	"fjacquet/extracto-ofx/internal/profile"
)

// Container holds all application dependencies. It is immutable after
// creation; fields are reached through getters only.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	registry *profile.Registry
	parsers  map[string]*parser.ProfileParser
}

// NewContainer creates and wires all application dependencies, logging
// through a logrus adapter configured from cfg.Log.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	registry := profile.NewRegistry()
	if cfg.Profiles.File != "" {
		ov, err := profile.LoadOverrides(cfg.Profiles.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile overrides: %w", err)
		}
		if err := registry.Apply(ov); err != nil {
			return nil, fmt.Errorf("failed to apply profile overrides: %w", err)
		}
		logger.Info("Applied profile overrides", logging.F(logging.FieldFile, cfg.Profiles.File))
	}

	opts := ParserOptions(cfg)
	parsers := make(map[string]*parser.ProfileParser, len(registry.IDs()))
	for _, p := range registry.All() {
		pp, err := parser.NewProfileParser(p, opts, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s parser: %w", p.ID, err)
		}
		parsers[p.ID] = pp
	}

	logger.Debug("Container initialized",
		logging.F("parsers_count", len(parsers)),
		logging.F("currency", opts.OFX.Currency))

	return &Container{
		logger:   logger,
		config:   cfg,
		registry: registry,
		parsers:  parsers,
	}, nil
}

// ParserOptions derives the parser options from cfg.
func ParserOptions(cfg *config.Config) parser.Options {
	currency := strings.ToUpper(cfg.OFX.Currency)
	return parser.Options{
		Normalizer: normalizer.Options{
			Currency:         currency,
			MemoPrefixLength: cfg.OFX.FitIDMemoLength,
		},
		OFX: ofx.Options{
			Currency:     currency,
			EscapeMarkup: cfg.OFX.EscapeMarkup,
		},
		CSVDelimiter: cfg.Delimiter(),
	}
}

// GetParser returns the parser of source id, matched the way the registry
// matches ids. Unknown ids fail with a *parsererror.UnknownSourceError.
func (c *Container) GetParser(id string) (*parser.ProfileParser, error) {
	p, err := c.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return c.parsers[p.ID], nil
}

// GetRegistry returns the profile registry, overrides applied.
func (c *Container) GetRegistry() *profile.Registry {
	return c.registry
}

// GetLogger returns the container's logger.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close releases container resources. There are none yet.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
