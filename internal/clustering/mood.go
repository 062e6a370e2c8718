// Package clustering groups tracks into mood regions using audio features.
package clustering

import (
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// RegionConfig holds mood clustering parameters.
type RegionConfig struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Minimum tracks per region (smaller clusters become outliers)
}

// DefaultRegionConfig returns the recommended default configuration.
func DefaultRegionConfig() RegionConfig {
	return RegionConfig{
		NumClusters:    3,
		MinClusterSize: 3,
	}
}

// Region is a cluster of tracks that share a mood.
type Region struct {
	Name     string                     `json:"name"`     // Descriptive name: "Upbeat Party"
	Members  []int                      `json:"members"`  // Indices into the input track slice, ascending
	Centroid map[tracks.Feature]float64 `json:"centroid"` // Average feature values for this cluster
}

// trackObservation wraps a track index to implement clusters.Observation.
type trackObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// regionFeatures defines the audio features used for clustering.
var regionFeatures = []tracks.Feature{
	tracks.Energy,
	tracks.Valence,
	tracks.Danceability,
	tracks.Acousticness,
}

// DetectMoodRegions groups tracks by audio feature similarity using k-means
// clustering. It returns the regions, largest first, and the indices of
// outlier tracks that don't fit into any region.
//
// K-means starts from random centers, so region membership may differ
// between runs on ambiguous input.
func DetectMoodRegions(list []tracks.Track, cfg RegionConfig) ([]Region, []int, error) {
	if len(list) == 0 {
		return nil, nil, nil
	}

	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultRegionConfig().NumClusters
	}

	// If fewer tracks than clusters, everything is an outlier
	if len(list) < cfg.NumClusters {
		return nil, allIndices(len(list)), nil
	}

	var obs clusters.Observations
	for i, t := range list {
		obs = append(obs, trackObservation{
			index:  i,
			coords: extractFeatures(t.Features),
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		return nil, nil, fmt.Errorf("k-means clustering failed: %w", err)
	}

	var regions []Region
	var outliers []int

	for _, cluster := range result {
		var members []int
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				members = append(members, to.index)
			}
		}
		slices.Sort(members)

		if len(members) == 0 {
			continue
		}
		if len(members) < cfg.MinClusterSize {
			outliers = append(outliers, members...)
			continue
		}

		centroid := make(map[tracks.Feature]float64, len(regionFeatures))
		for i, feature := range regionFeatures {
			centroid[feature] = cluster.Center[i]
		}

		regions = append(regions, Region{
			Name:     generateMoodName(centroid),
			Members:  members,
			Centroid: centroid,
		})
	}
	slices.Sort(outliers)

	slices.SortStableFunc(regions, func(a, b Region) int {
		if len(a.Members) != len(b.Members) {
			return len(b.Members) - len(a.Members) // Descending
		}
		return a.Members[0] - b.Members[0]
	})

	return regions, outliers, nil
}

// extractFeatures extracts the audio features used for clustering as a coordinate vector.
func extractFeatures(f tracks.Features) clusters.Coordinates {
	coords := make(clusters.Coordinates, len(regionFeatures))
	for i, feature := range regionFeatures {
		coords[i] = f.Normalized(feature)
	}
	return coords
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
