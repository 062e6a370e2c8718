package tracks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ErrNoTracks is returned when a track document contains no tracks.
var ErrNoTracks = errors.New("no tracks in input")

// UnmarshalJSON decodes features leniently: missing, null, or malformed
// values read as 0 instead of failing the whole document.
func (f *Features) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*f = Features{}
		return nil
	}

	read := func(key Feature) float64 {
		msg, ok := raw[string(key)]
		if !ok {
			return 0
		}
		var v float64
		if err := json.Unmarshal(msg, &v); err == nil {
			return v
		}
		// Some sources quote their numbers.
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			if parsed, err := strconv.ParseFloat(s, 64); err == nil {
				return parsed
			}
		}
		return 0
	}

	*f = Features{
		Valence:          read(Valence),
		Energy:           read(Energy),
		Danceability:     read(Danceability),
		Acousticness:     read(Acousticness),
		Instrumentalness: read(Instrumentalness),
		Speechiness:      read(Speechiness),
		Liveness:         read(Liveness),
		Popularity:       read(Popularity),
		MoodScore:        read(MoodScore),
	}
	return nil
}

// document is the wrapped form of a track file: {"tracks": [...]}.
type document struct {
	Tracks []Track `json:"tracks"`
}

// Decode reads tracks from either a bare JSON array or an object with a
// "tracks" field. Features are sanitized before returning.
func Decode(r io.Reader) ([]Track, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tracks: %w", err)
	}

	data = bytes.TrimSpace(data)
	var list []Track
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parsing track list: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing track document: %w", err)
		}
		list = doc.Tracks
	}

	if len(list) == 0 {
		return nil, ErrNoTracks
	}
	return Sanitize(list), nil
}

// LoadFile decodes tracks from a JSON file.
func LoadFile(path string) ([]Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening track file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// WriteFile writes tracks to path as an indented {"tracks": [...]} document.
func WriteFile(path string, list []Track) error {
	data, err := json.MarshalIndent(document{Tracks: list}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tracks: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing track file: %w", err)
	}
	return nil
}
