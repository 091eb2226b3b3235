// Package resolver maps the semantic roles date, description and amount onto
// the physical columns of a RowSet.
package resolver

import (
	"strings"

	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/parsererror"
	"fjacquet/extracto-ofx/internal/profile"
	"fjacquet/extracto-ofx/internal/reader"
)

// Mapping names the RowSet column holding each role.
type Mapping struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// Column returns the column mapped to role.
func (m Mapping) Column(role profile.Role) string {
	switch role {
	case profile.RoleDate:
		return m.Date
	case profile.RoleDescription:
		return m.Description
	case profile.RoleAmount:
		return m.Amount
	}
	return ""
}

func (m *Mapping) set(role profile.Role, column string) {
	switch role {
	case profile.RoleDate:
		m.Date = column
	case profile.RoleDescription:
		m.Description = column
	case profile.RoleAmount:
		m.Amount = column
	}
}

// Resolver resolves column mappings for a profile.
type Resolver struct {
	logger logging.Logger
}

// New returns a Resolver. A nil logger gets the default adapter.
func New(logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Resolver{logger: logger}
}

// Resolve finds the date, description and amount columns of rs.
func (r *Resolver) Resolve(rs *reader.RowSet, p profile.Profile) (Mapping, error) {
	if p.Strategy == profile.StrategyHeuristic {
		return r.resolveHeuristic(rs, p)
	}
	return r.resolveFixed(rs, p)
}

func (r *Resolver) resolveFixed(rs *reader.RowSet, p profile.Profile) (Mapping, error) {
	var m Mapping
	for _, role := range profile.Roles {
		label := strings.TrimSpace(p.Columns.Label(role))
		if !rs.HasColumn(label) {
			return Mapping{}, &parsererror.ColumnNotFoundError{
				Source:    p.ID,
				Role:      string(role),
				Label:     label,
				Available: append([]string(nil), rs.Columns...),
			}
		}
		m.set(role, label)
	}
	r.logMapping("Resolved fixed columns", p, m)
	return m, nil
}

// resolveHeuristic claims columns by keyword first, then hands the columns
// nobody claimed to the roles still open, left to right.
func (r *Resolver) resolveHeuristic(rs *reader.RowSet, p profile.Profile) (Mapping, error) {
	var m Mapping
	claimed := make(map[string]bool, len(rs.Columns))
	var open []profile.Role

	for _, role := range profile.Roles {
		col := matchKeyword(rs.Columns, p.Keywords[role], claimed)
		if col == "" {
			open = append(open, role)
			continue
		}
		claimed[col] = true
		m.set(role, col)
	}

	for _, role := range open {
		col := ""
		for _, c := range rs.Columns {
			if !claimed[c] {
				col = c
				break
			}
		}
		if col == "" {
			return Mapping{}, &parsererror.ColumnNotFoundError{
				Source:    p.ID,
				Role:      string(role),
				Available: append([]string(nil), rs.Columns...),
			}
		}
		claimed[col] = true
		m.set(role, col)
		r.logger.Warn("No column matched role keywords, using first unclaimed column",
			logging.F(logging.FieldSource, p.ID),
			logging.F(logging.FieldRole, string(role)),
			logging.F(logging.FieldColumn, col))
	}

	r.logMapping("Resolved heuristic columns", p, m)
	return m, nil
}

func (r *Resolver) logMapping(msg string, p profile.Profile, m Mapping) {
	fields := []logging.Field{logging.F(logging.FieldSource, p.ID)}
	for _, role := range profile.Roles {
		fields = append(fields, logging.F(string(role), m.Column(role)))
	}
	r.logger.Debug(msg, fields...)
}

// matchKeyword tries keywords in priority order and returns the first
// unclaimed column whose lower-cased label contains the keyword.
func matchKeyword(columns, keywords []string, claimed map[string]bool) string {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		for _, c := range columns {
			if !claimed[c] && strings.Contains(strings.ToLower(c), kw) {
				return c
			}
		}
	}
	return ""
}
