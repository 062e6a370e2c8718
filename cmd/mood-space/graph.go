package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-space/internal/scene"
)

type layoutOutput struct {
	Stats scene.Stats `json:"stats"`
	Frame scene.Frame `json:"frame"`
}

func newGraphCmd(a *app) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "graph <tracks.json>",
		Short: "Lay out the similarity graph and print the final frame",
		Long: `graph links tracks whose similarity reaches the threshold, runs the
force layout for --steps frames and prints the resulting frame as JSON:
node positions, edges and the projected 3D points.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := loadTracks(args)
			if err != nil {
				return err
			}

			sc := scene.New(list, a.cfg.SceneSettings(), placementFor(cmd))
			frame := sc.Advance(steps)
			stats := sc.Stats()

			a.log.WithFields(logrus.Fields{
				"nodes":  stats.Nodes,
				"edges":  stats.Edges,
				"energy": frame.Energy,
			}).Debug("Layout finished")

			return writeJSON(cmd.OutOrStdout(), layoutOutput{Stats: stats, Frame: frame})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 300, "layout frames to run")
	addEngineFlags(cmd)
	addSeedFlag(cmd)
	return cmd
}
