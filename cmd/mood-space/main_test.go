package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTracks writes n distinct tracks to a temp file.
func writeTracks(t *testing.T, n int) string {
	t.Helper()
	list := make([]tracks.Track, n)
	for i := range list {
		list[i] = tracks.Track{
			ID:     fmt.Sprintf("t%02d", i),
			Name:   fmt.Sprintf("Track %d", i),
			Artist: "Artist",
			Features: tracks.Features{
				Valence:      float64(i+1) / float64(n+1),
				Energy:       float64((i*7)%n) / float64(n),
				Danceability: float64(n-i) / float64(n+1),
				Acousticness: float64((i*3)%n) / float64(n),
				MoodScore:    float64(i) / float64(n),
			},
		}
	}
	path := filepath.Join(t.TempDir(), "tracks.json")
	if err := tracks.WriteFile(path, list); err != nil {
		t.Fatalf("writing tracks: %v", err)
	}
	return path
}

func TestMoodsCommand(t *testing.T) {
	out, err := execute(t, "moods")
	if err != nil {
		t.Fatalf("moods error = %v", err)
	}
	for _, name := range mood.DefaultCatalog().Names() {
		if !strings.Contains(out, name) {
			t.Errorf("output missing mood %q:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "valence>=0.60(x2)") {
		t.Errorf("output missing happy rule:\n%s", out)
	}
}

func TestMoodsCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moods.toml")
	doc := "[moods.late_night]\ndescription = \"Dark and slow\"\n\n[moods.late_night.rules.energy]\nmax = 0.4\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "moods", "--json", "--moods.catalog_file", path)
	if err != nil {
		t.Fatalf("moods error = %v", err)
	}
	var got []mood.Criteria
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(got) != len(mood.DefaultCatalog().Names())+1 || got[len(got)-1].Name != "late_night" {
		t.Errorf("catalog = %+v", got)
	}
}

func TestPlaylistCommand(t *testing.T) {
	path := writeTracks(t, 20)

	run := func() []mood.ScoredTrack {
		out, err := execute(t, "playlist", path, "--mood", "energetic", "--size", "4", "--seed", "3", "--json")
		if err != nil {
			t.Fatalf("playlist error = %v", err)
		}
		var got []mood.ScoredTrack
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decoding %q: %v", out, err)
		}
		return got
	}

	first, second := run(), run()
	if len(first) != 4 {
		t.Fatalf("playlist has %d tracks, want 4", len(first))
	}
	for i := range first {
		if first[i].Track.ID != second[i].Track.ID {
			t.Errorf("seeded playlists differ at %d: %s vs %s", i, first[i].Track.ID, second[i].Track.ID)
		}
	}

	out, err := execute(t, "playlist", path, "-m", "chill")
	if err != nil {
		t.Fatalf("playlist error = %v", err)
	}
	if !strings.Contains(out, "Track ") || strings.Contains(out, "No tracks match") {
		t.Errorf("table output = %q", out)
	}
}

func TestPlaylistErrors(t *testing.T) {
	path := writeTracks(t, 5)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown mood", []string{"playlist", path, "--mood", "grumpy"}, mood.ErrUnknownMood},
		{"missing file", []string{"playlist", filepath.Join(t.TempDir(), "none.json")}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := execute(t, "playlist"); err == nil {
		t.Error("playlist without a file succeeded")
	}
}

func TestGraphCommand(t *testing.T) {
	path := writeTracks(t, 6)

	out, err := execute(t, "graph", path, "--steps", "5", "--seed", "1", "--engine.threshold", "0")
	if err != nil {
		t.Fatalf("graph error = %v", err)
	}
	var got layoutOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if got.Frame.Tick != 5 || len(got.Frame.Nodes) != 6 || len(got.Frame.Points) != 6 {
		t.Errorf("frame tick %d with %d nodes, %d points", got.Frame.Tick, len(got.Frame.Nodes), len(got.Frame.Points))
	}
	if got.Stats.Edges != 15 || got.Stats.Threshold != 0 {
		t.Errorf("stats = %+v, want 15 edges at threshold 0", got.Stats)
	}
}

func TestGraphConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mood-space.toml")
	if err := os.WriteFile(cfgPath, []byte("[engine]\nthreshold = 1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeTracks(t, 4)

	out, err := execute(t, "graph", path, "--steps", "1", "--config", cfgPath)
	if err != nil {
		t.Fatalf("graph error = %v", err)
	}
	var got layoutOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Stats.Threshold != 1 || got.Stats.Edges != 0 {
		t.Errorf("stats = %+v, want threshold 1 from file", got.Stats)
	}

	// Flags win over the file.
	out, err = execute(t, "graph", path, "--steps", "1", "--config", cfgPath, "--engine.threshold", "0")
	if err != nil {
		t.Fatalf("graph error = %v", err)
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Stats.Threshold != 0 || got.Stats.Edges != 6 {
		t.Errorf("stats = %+v, want the flag's threshold 0", got.Stats)
	}

	if _, err := execute(t, "graph", path, "--engine.threshold", "2"); err == nil {
		t.Error("threshold 2 was accepted")
	}
}

func TestRegionsCommand(t *testing.T) {
	path := writeTracks(t, 12)

	out, err := execute(t, "regions", path, "-k", "2", "--min-size", "1", "--json")
	if err != nil {
		t.Fatalf("regions error = %v", err)
	}
	var got regionsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	total := len(got.Outliers)
	for _, r := range got.Regions {
		total += len(r.Members)
	}
	if total != 12 {
		t.Errorf("regions cover %d tracks, want 12", total)
	}

	out, err = execute(t, "regions", path)
	if err != nil {
		t.Fatalf("regions error = %v", err)
	}
	if !strings.Contains(out, "from 12 tracks") {
		t.Errorf("summary = %q", out)
	}

	if _, err := execute(t, "regions", path, "-k", "0"); err == nil {
		t.Error("zero clusters accepted")
	}
}
