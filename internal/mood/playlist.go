package mood

import (
	"math/rand/v2"
	"sort"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// Playlist selection limits.
const (
	// MaxPoolSize caps the candidate pool.
	MaxPoolSize = 15
	// DefaultPlaylistSize is used when the caller asks for a size <= 0.
	DefaultPlaylistSize = 12
)

// Shuffler permutes n elements. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Rank scores every track and sorts them by descending score. Equal scores
// keep input order.
func Rank(list []tracks.Track, c Criteria) []ScoredTrack {
	scored := make([]ScoredTrack, len(list))
	for i, t := range list {
		scored[i] = ScoredTrack{Track: t, Index: i, Score: Score(t, c)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// PoolSize returns how many of n ranked tracks form the candidate pool:
// ceil(0.7n), capped at MaxPoolSize.
func PoolSize(n int) int {
	if n <= 0 {
		return 0
	}
	return min((7*n+9)/10, MaxPoolSize)
}

// Pool returns the candidate pool for a playlist: the top PoolSize tracks by
// score, without any that score 0. The result is deterministic.
func Pool(list []tracks.Track, c Criteria) []ScoredTrack {
	ranked := Rank(list, c)
	pool := ranked[:PoolSize(len(ranked))]
	for len(pool) > 0 && pool[len(pool)-1].Score <= 0 {
		pool = pool[:len(pool)-1]
	}
	return pool
}

// GeneratePlaylist picks up to maxSize tracks for the criteria. It keeps the
// top 80% of the candidate pool, shuffles them with rnd and truncates. The
// result is always drawn from Pool; order and membership among the kept
// tracks vary with rnd. A maxSize <= 0 means DefaultPlaylistSize and a nil
// rnd uses the global source. It returns nil when no track scores above 0.
func GeneratePlaylist(list []tracks.Track, c Criteria, maxSize int, rnd Shuffler) []ScoredTrack {
	pool := Pool(list, c)
	if len(pool) == 0 {
		return nil
	}
	if maxSize <= 0 {
		maxSize = DefaultPlaylistSize
	}
	if rnd == nil {
		rnd = globalShuffler{}
	}

	keep := (4*len(pool) + 4) / 5 // ceil(0.8 * len(pool))
	picked := make([]ScoredTrack, keep)
	copy(picked, pool[:keep])

	rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	return picked[:min(maxSize, len(picked))]
}

// Tracks strips the scores from a playlist.
func Tracks(scored []ScoredTrack) []tracks.Track {
	out := make([]tracks.Track, len(scored))
	for i, s := range scored {
		out[i] = s.Track
	}
	return out
}
