package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-space/internal/clustering"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

type regionsOutput struct {
	Regions  []clustering.Region     `json:"regions"`
	Outliers []int                   `json:"outliers"`
	Overall  clustering.MoodCategory `json:"overall"`
}

func newRegionsCmd(_ *app) *cobra.Command {
	var (
		cfg    = clustering.DefaultRegionConfig()
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "regions <tracks.json>",
		Short: "Group tracks into mood regions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.NumClusters < 1 || cfg.MinClusterSize < 1 {
				return fmt.Errorf("--clusters and --min-size must be positive")
			}
			list, err := loadTracks(args)
			if err != nil {
				return err
			}

			regions, outliers, err := clustering.DetectMoodRegions(list, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				if regions == nil {
					regions = []clustering.Region{}
				}
				if outliers == nil {
					outliers = []int{}
				}
				return writeJSON(cmd.OutOrStdout(), regionsOutput{
					Regions:  regions,
					Outliers: outliers,
					Overall:  clustering.SummaryCategory(tracks.Summarize(list)),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), clustering.FormatRegionSummary(regions, outliers, list))
			return nil
		},
	}
	cmd.Flags().IntVarP(&cfg.NumClusters, "clusters", "k", cfg.NumClusters, "number of regions to look for")
	cmd.Flags().IntVar(&cfg.MinClusterSize, "min-size", cfg.MinClusterSize, "smallest region; smaller groups become outliers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print regions as JSON")
	return cmd
}
