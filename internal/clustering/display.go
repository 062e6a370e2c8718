package clustering

import (
	"fmt"
	"strings"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

const sampleTrackCount = 3

// FormatRegionSummary returns a human-readable summary of detected regions.
// Shows track count, centroid mood indicators, and first 3 sample tracks for
// each region. Outliers are summarized by count only.
func FormatRegionSummary(regions []Region, outliers []int, list []tracks.Track) string {
	var sb strings.Builder

	// Calculate total tracks
	totalTracks := len(outliers)
	for _, r := range regions {
		totalTracks += len(r.Members)
	}

	// Header
	if len(regions) == 0 {
		sb.WriteString(fmt.Sprintf("No mood regions found from %d tracks", totalTracks))
		if len(outliers) > 0 {
			sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", len(outliers)))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	regionWord := "mood region"
	if len(regions) > 1 {
		regionWord = "mood regions"
	}

	sb.WriteString(fmt.Sprintf("Found %d %s from %d tracks", len(regions), regionWord, totalTracks))
	if len(outliers) > 0 {
		sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", len(outliers)))
	}
	sb.WriteString("\n")

	// Region details
	for i, r := range regions {
		sb.WriteString("\n")
		sb.WriteString(formatRegion(i+1, r, list))
	}

	return sb.String()
}

// formatRegion formats a single region with its sample tracks.
func formatRegion(num int, r Region, list []tracks.Track) string {
	var sb strings.Builder

	trackWord := "track"
	if len(r.Members) > 1 {
		trackWord = "tracks"
	}

	sb.WriteString(fmt.Sprintf("Region %d: %s (%d %s)\n", num, r.Name, len(r.Members), trackWord))
	sb.WriteString(fmt.Sprintf("  Mood: Energy=%.0f%% Valence=%.0f%% Danceability=%.0f%%\n",
		r.Centroid[tracks.Energy]*100, r.Centroid[tracks.Valence]*100, r.Centroid[tracks.Danceability]*100))

	// Show sample tracks (first 3)
	sampleCount := min(sampleTrackCount, len(r.Members))
	for i := 0; i < sampleCount; i++ {
		idx := r.Members[i]
		if idx < 0 || idx >= len(list) {
			continue
		}
		track := list[idx]
		sb.WriteString(fmt.Sprintf("  • \"%s\" - %s\n", track.Name, track.Artist))
	}

	// Show "and N more" if needed
	remaining := len(r.Members) - sampleTrackCount
	if remaining > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", remaining))
	}

	return sb.String()
}
