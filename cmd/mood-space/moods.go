package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

func newMoodsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "moods",
		Short: "List the mood catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), c.All())
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"Mood", "Rules", "Description"})
			for _, m := range c.All() {
				if err := table.Append([]string{m.Name, formatRules(m), m.Description}); err != nil {
					return fmt.Errorf("rendering mood table: %w", err)
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

// formatRules renders rules as "valence>=0.60 energy<=0.50" in feature order.
func formatRules(c mood.Criteria) string {
	var parts []string
	for _, f := range tracks.AllFeatures {
		r, ok := c.Rules[f]
		if !ok {
			continue
		}
		s := string(f)
		switch {
		case r.Min != nil && r.Max != nil:
			s += fmt.Sprintf(" %.2f..%.2f", *r.Min, *r.Max)
		case r.Min != nil:
			s += fmt.Sprintf(">=%.2f", *r.Min)
		case r.Max != nil:
			s += fmt.Sprintf("<=%.2f", *r.Max)
		}
		if r.Weight != 1 {
			s += fmt.Sprintf("(x%g)", r.Weight)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
