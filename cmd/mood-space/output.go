package main

import (
	"encoding/json"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-space/internal/graph"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addSeedFlag(cmd *cobra.Command) {
	cmd.Flags().Uint64("seed", 0, "random seed for reproducible output (default random)")
}

// seed returns the --seed value and whether it was given.
func seed(cmd *cobra.Command) (uint64, bool) {
	if !cmd.Flags().Changed("seed") {
		return 0, false
	}
	v, err := cmd.Flags().GetUint64("seed")
	return v, err == nil
}

func shufflerFor(cmd *cobra.Command) mood.Shuffler {
	s, ok := seed(cmd)
	if !ok {
		return nil
	}
	return rand.New(rand.NewPCG(s, s))
}

func placementFor(cmd *cobra.Command) graph.RandomSource {
	s, ok := seed(cmd)
	if !ok {
		return nil
	}
	return rand.New(rand.NewPCG(s, s))
}

// loadTracks reads the track file named by the first argument.
func loadTracks(args []string) ([]tracks.Track, error) {
	return tracks.LoadFile(args[0])
}
