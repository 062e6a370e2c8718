package clustering

import "github.com/justestif/go-spotify-mood-space/internal/tracks"

// generateMoodName creates a descriptive name based on audio feature centroid values.
// Uses a 2x2 energy/valence quadrant system with acousticness modifier.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Acousticness modifier: if > 0.6, appends "Acoustic" to the name.
func generateMoodName(centroid map[tracks.Feature]float64) string {
	baseName := quadrantName(centroid[tracks.Energy], centroid[tracks.Valence])

	// Add acoustic modifier if acousticness is high
	if centroid[tracks.Acousticness] > 0.6 {
		return baseName + " (Acoustic)"
	}

	return baseName
}

func quadrantName(energy, valence float64) string {
	highEnergy := energy > 0.6
	highValence := valence > 0.5

	switch {
	case highEnergy && highValence:
		return "Upbeat Party"
	case highEnergy && !highValence:
		return "Intense & Dark"
	case !highEnergy && highValence:
		return "Chill & Happy"
	default: // low energy, low valence
		return "Reflective & Melancholy"
	}
}

// MoodCategory represents a mood classification for display purposes.
type MoodCategory struct {
	Name        string  `json:"name"`        // Display name
	Energy      float64 `json:"energy"`      // Average energy level
	Valence     float64 `json:"valence"`     // Average positivity
	Description string  `json:"description"` // Brief description of the mood
}

// GetMoodCategory returns a detailed mood category for a centroid.
func GetMoodCategory(centroid map[tracks.Feature]float64) MoodCategory {
	name := generateMoodName(centroid)
	energy := centroid[tracks.Energy]
	valence := centroid[tracks.Valence]

	var description string
	switch {
	case energy > 0.6 && valence > 0.5:
		description = "High-energy, positive vibes - perfect for dancing and celebrations"
	case energy > 0.6 && valence <= 0.5:
		description = "Intense, driving energy with darker emotional tones"
	case energy <= 0.6 && valence > 0.5:
		description = "Relaxed and uplifting - great for unwinding"
	default:
		description = "Contemplative and introspective - ideal for quiet moments"
	}

	return MoodCategory{
		Name:        name,
		Energy:      energy,
		Valence:     valence,
		Description: description,
	}
}

// SummaryCategory classifies a whole track set from its average features.
func SummaryCategory(s tracks.Summary) MoodCategory {
	return GetMoodCategory(map[tracks.Feature]float64{
		tracks.Energy:       s.Average.Energy,
		tracks.Valence:      s.Average.Valence,
		tracks.Acousticness: s.Average.Acousticness,
	})
}
