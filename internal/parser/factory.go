package parser

import (
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/profile"
)

// GetParser returns a new parser for the source id of registry.
// Unknown ids fail with a *parsererror.UnknownSourceError.
func GetParser(registry *profile.Registry, id string, opts Options, logger logging.Logger) (*ProfileParser, error) {
	p, err := registry.Get(id)
	if err != nil {
		return nil, err
	}
	return NewProfileParser(p, opts, logger)
}

var _ FullParser = (*ProfileParser)(nil)
