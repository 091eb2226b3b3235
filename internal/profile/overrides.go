package profile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"fjacquet/extracto-ofx/internal/reader"

	"gopkg.in/yaml.v3"
)

// Override adjusts a built-in profile. Nil fields keep the built-in value.
type Override struct {
	HeaderSkip       *int                `yaml:"header_skip"`
	Container        *string             `yaml:"container"`
	DropEmptyColumns *bool               `yaml:"drop_empty_columns"`
	Columns          *Columns            `yaml:"columns"`
	Keywords         map[string][]string `yaml:"keywords"`
}

// Overrides is the content of a profiles file:
//
//	profiles:
//	  santander:
//	    header_skip: 8
//	  inversis:
//	    keywords:
//	      amount: [importe, cargo]
type Overrides struct {
	Profiles map[string]Override `yaml:"profiles"`
}

// LoadOverrides reads a profiles file. Unknown keys are rejected.
func LoadOverrides(path string) (*Overrides, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeOverrides(f)
}

// DecodeOverrides parses profile overrides from YAML.
func DecodeOverrides(r io.Reader) (*Overrides, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	var ov Overrides
	if len(bytes.TrimSpace(raw)) == 0 {
		return &ov, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&ov); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}
	return &ov, nil
}

// Apply merges ov into the registry. Only existing profiles can be
// overridden; the whole file is rejected when any entry is invalid.
func (r *Registry) Apply(ov *Overrides) error {
	if ov == nil {
		return nil
	}
	updated := make(map[string]Profile, len(ov.Profiles))
	for id, o := range ov.Profiles {
		p, err := r.Get(id)
		if err != nil {
			return err
		}
		if o.HeaderSkip != nil {
			p.HeaderSkip = *o.HeaderSkip
		}
		if o.Container != nil {
			p.Container = reader.Container(*o.Container)
		}
		if o.DropEmptyColumns != nil {
			p.DropEmptyColumns = *o.DropEmptyColumns
		}
		if o.Columns != nil {
			p.Columns = *o.Columns
		}
		for role, words := range o.Keywords {
			if !knownRole(Role(role)) {
				return fmt.Errorf("profile %s: unknown keyword role %q", p.ID, role)
			}
			if p.Keywords == nil {
				p.Keywords = make(map[Role][]string)
			}
			p.Keywords[Role(role)] = append([]string(nil), words...)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		updated[p.ID] = p
	}
	for id, p := range updated {
		r.profiles[id] = p
	}
	return nil
}

func knownRole(role Role) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
