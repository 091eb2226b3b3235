// Package profiles lists the supported bank sources
package profiles

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/extracto-ofx/cmd/root"
	"fjacquet/extracto-ofx/internal/profile"

	"github.com/spf13/cobra"
)

// Cmd represents the profiles command
var Cmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the supported bank sources",
	Long: `List the supported bank sources with the header offset and the columns
(or keywords) each one uses, after any overrides from the profiles file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Render(cmd.OutOrStdout(), root.GetContainer().GetRegistry().All())
	},
}

// Render prints one line per profile.
func Render(w io.Writer, profiles []profile.Profile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tNAME\tSKIP\tSTRATEGY\tCOLUMNS")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.HeaderSkip, p.Strategy, describe(p))
	}
	return tw.Flush()
}

func describe(p profile.Profile) string {
	parts := make([]string, 0, len(profile.Roles))
	for _, role := range profile.Roles {
		if p.Strategy == profile.StrategyHeuristic {
			parts = append(parts, fmt.Sprintf("%s~%s", role, strings.Join(p.Keywords[role], "|")))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%q", role, p.Columns.Label(role)))
	}
	return strings.Join(parts, " ")
}
