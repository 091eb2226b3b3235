// Package profile holds the per-bank layout descriptions the pipeline is
// driven by: how many rows precede the header, how the three semantic
// columns are found, and which container family the export uses.
package profile

import (
	"fmt"
	"strings"

	"fjacquet/extracto-ofx/internal/reader"
)

// Built-in source identifiers.
const (
	BBVA      = "bbva"
	Santander = "santander"
	Inversis  = "inversis"
)

// Strategy selects how columns are resolved.
type Strategy string

const (
	// StrategyFixed expects exact header labels.
	StrategyFixed Strategy = "fixed"
	// StrategyHeuristic matches header labels against keywords.
	StrategyHeuristic Strategy = "heuristic"
)

// Role is a semantic column.
type Role string

const (
	RoleDate        Role = "date"
	RoleDescription Role = "description"
	RoleAmount      Role = "amount"
)

// Roles lists the semantic columns in resolution order.
var Roles = []Role{RoleDate, RoleDescription, RoleAmount}

// Columns are the exact header labels of a fixed-strategy profile.
type Columns struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Amount      string `yaml:"amount"`
}

// Label returns the label configured for role.
func (c Columns) Label(role Role) string {
	switch role {
	case RoleDate:
		return c.Date
	case RoleDescription:
		return c.Description
	case RoleAmount:
		return c.Amount
	}
	return ""
}

// Profile describes one bank export layout.
type Profile struct {
	ID               string
	Name             string
	HeaderSkip       int
	Strategy         Strategy
	Columns          Columns
	Keywords         map[Role][]string
	Container        reader.Container
	DropEmptyColumns bool
}

// ReaderOptions maps the profile onto container reader options.
func (p Profile) ReaderOptions() reader.Options {
	container := p.Container
	if container == "" {
		container = reader.ContainerTabular
	}
	return reader.Options{
		HeaderSkip:       p.HeaderSkip,
		Container:        container,
		DropEmptyColumns: p.DropEmptyColumns,
	}
}

// Validate checks that the profile can drive a conversion.
func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile has no id")
	}
	if p.HeaderSkip < 0 {
		return fmt.Errorf("profile %s: header skip must not be negative, got %d", p.ID, p.HeaderSkip)
	}
	switch p.Container {
	case "", reader.ContainerTabular, reader.ContainerTree:
	default:
		return fmt.Errorf("profile %s: unknown container %q", p.ID, p.Container)
	}
	switch p.Strategy {
	case StrategyFixed:
		for _, role := range Roles {
			if strings.TrimSpace(p.Columns.Label(role)) == "" {
				return fmt.Errorf("profile %s: fixed strategy needs a %s column", p.ID, role)
			}
		}
	case StrategyHeuristic:
	default:
		return fmt.Errorf("profile %s: unknown strategy %q", p.ID, p.Strategy)
	}
	return nil
}

// clone returns a copy that shares no mutable state with p.
func (p Profile) clone() Profile {
	if p.Keywords != nil {
		kw := make(map[Role][]string, len(p.Keywords))
		for role, words := range p.Keywords {
			kw[role] = append([]string(nil), words...)
		}
		p.Keywords = kw
	}
	return p
}

func builtins() []Profile {
	return []Profile{
		{
			ID:         BBVA,
			Name:       "BBVA",
			HeaderSkip: 4,
			Strategy:   StrategyFixed,
			Columns: Columns{
				Date:        "Fecha",
				Description: "Concepto",
				Amount:      "Importe",
			},
			Container:        reader.ContainerTabular,
			DropEmptyColumns: true,
		},
		{
			ID:         Santander,
			Name:       "Santander",
			HeaderSkip: 7,
			Strategy:   StrategyFixed,
			Columns: Columns{
				Date:        "Fecha Valor",
				Description: "Concepto",
				Amount:      "Importe",
			},
			Container: reader.ContainerTabular,
		},
		{
			ID:       Inversis,
			Name:     "Inversis",
			Strategy: StrategyHeuristic,
			Keywords: map[Role][]string{
				RoleDate:        {"fecha"},
				RoleDescription: {"desc", "concep"},
				RoleAmount:      {"importe", "valor"},
			},
			Container: reader.ContainerTabular,
		},
	}
}
