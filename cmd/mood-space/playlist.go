package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-space/internal/mood"
)

func newPlaylistCmd(a *app) *cobra.Command {
	var (
		moodName string
		size     int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "playlist <tracks.json>",
		Short: "Generate a mood playlist from a track file",
		Long: `playlist scores every track in the file against a mood, keeps the best
candidates and picks a shuffled selection from them. Use --seed for a
repeatable result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			criteria, err := c.Get(moodName)
			if err != nil {
				return err
			}
			list, err := loadTracks(args)
			if err != nil {
				return err
			}

			picked := mood.GeneratePlaylist(list, criteria, size, shufflerFor(cmd))
			a.log.WithField("mood", criteria.Name).Debugf("Picked %d of %d tracks", len(picked), len(list))

			if asJSON {
				if picked == nil {
					picked = []mood.ScoredTrack{}
				}
				return writeJSON(cmd.OutOrStdout(), picked)
			}
			if len(picked) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No tracks match mood %q\n", criteria.Name)
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"#", "Score", "Track", "Artist"})
			for i, st := range picked {
				row := []string{strconv.Itoa(i + 1), fmt.Sprintf("%.2f", st.Score), st.Track.Name, st.Track.Artist}
				if err := table.Append(row); err != nil {
					return fmt.Errorf("rendering playlist table: %w", err)
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().StringVarP(&moodName, "mood", "m", "happy", "mood to match")
	cmd.Flags().IntVarP(&size, "size", "n", mood.DefaultPlaylistSize, "maximum playlist length")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the playlist as JSON")
	addSeedFlag(cmd)
	return cmd
}
