package tracks

// Summary is the aggregate mood profile of a track set.
type Summary struct {
	TrackCount int      `json:"track_count"`
	Average    Features `json:"average"`
}

// Summarize averages every feature across the tracks. An empty input yields
// a zero summary.
func Summarize(list []Track) Summary {
	if len(list) == 0 {
		return Summary{}
	}

	var sum Features
	for _, t := range list {
		f := t.Features
		sum.Valence += f.Value(Valence)
		sum.Energy += f.Value(Energy)
		sum.Danceability += f.Value(Danceability)
		sum.Acousticness += f.Value(Acousticness)
		sum.Instrumentalness += f.Value(Instrumentalness)
		sum.Speechiness += f.Value(Speechiness)
		sum.Liveness += f.Value(Liveness)
		sum.Popularity += f.Value(Popularity)
		sum.MoodScore += f.Value(MoodScore)
	}

	n := float64(len(list))
	return Summary{
		TrackCount: len(list),
		Average: Features{
			Valence:          sum.Valence / n,
			Energy:           sum.Energy / n,
			Danceability:     sum.Danceability / n,
			Acousticness:     sum.Acousticness / n,
			Instrumentalness: sum.Instrumentalness / n,
			Speechiness:      sum.Speechiness / n,
			Liveness:         sum.Liveness / n,
			Popularity:       sum.Popularity / n,
			MoodScore:        sum.MoodScore / n,
		},
	}
}
