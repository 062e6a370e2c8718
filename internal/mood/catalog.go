package mood

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// ErrUnknownMood is returned when a mood name is not in the catalog.
var ErrUnknownMood = errors.New("unknown mood")

// Catalog is a fixed set of named mood criteria. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	moods map[string]Criteria
	order []string
}

// presets is the built-in mood catalog.
var presets = []Criteria{
	{
		Name:        "happy",
		Description: "Bright, positive tracks with a lift",
		Rules: map[tracks.Feature]Rule{
			tracks.Valence:      {Min: Bound(0.6), Weight: 2},
			tracks.Energy:       {Min: Bound(0.5), Weight: 1},
			tracks.Danceability: {Min: Bound(0.5), Weight: 1},
		},
	},
	{
		Name:        "sad",
		Description: "Low valence, subdued and often acoustic",
		Rules: map[tracks.Feature]Rule{
			tracks.Valence:      {Max: Bound(0.4), Weight: 2},
			tracks.Energy:       {Max: Bound(0.5), Weight: 1},
			tracks.Acousticness: {Min: Bound(0.3), Weight: 0.5},
		},
	},
	{
		Name:        "energetic",
		Description: "High energy with a steady groove",
		Rules: map[tracks.Feature]Rule{
			tracks.Energy:       {Min: Bound(0.7), Weight: 2},
			tracks.Danceability: {Min: Bound(0.5), Weight: 1},
			tracks.Valence:      {Min: Bound(0.4), Weight: 0.5},
		},
	},
	{
		Name:        "chill",
		Description: "Relaxed, mellow and unhurried",
		Rules: map[tracks.Feature]Rule{
			tracks.Energy:       {Min: Bound(0.2), Max: Bound(0.5), Weight: 2},
			tracks.Acousticness: {Min: Bound(0.4), Weight: 1},
			tracks.Valence:      {Min: Bound(0.3), Max: Bound(0.7), Weight: 1},
		},
	},
	{
		Name:        "workout",
		Description: "Driving, danceable tracks to keep moving",
		Rules: map[tracks.Feature]Rule{
			tracks.Energy:       {Min: Bound(0.75), Weight: 2},
			tracks.Danceability: {Min: Bound(0.6), Weight: 1.5},
			tracks.Valence:      {Min: Bound(0.5), Weight: 0.5},
		},
	},
	{
		Name:        "focus",
		Description: "Mostly instrumental, few vocals, moderate energy",
		Rules: map[tracks.Feature]Rule{
			tracks.Instrumentalness: {Min: Bound(0.5), Weight: 2},
			tracks.Speechiness:      {Max: Bound(0.1), Weight: 1.5},
			tracks.Energy:           {Min: Bound(0.3), Max: Bound(0.6), Weight: 1},
		},
	},
	{
		Name:        "party",
		Description: "Danceable crowd-pleasers",
		Rules: map[tracks.Feature]Rule{
			tracks.Danceability: {Min: Bound(0.7), Weight: 2},
			tracks.Energy:       {Min: Bound(0.6), Weight: 1.5},
			tracks.Valence:      {Min: Bound(0.6), Weight: 1},
			tracks.Popularity:   {Min: Bound(0.5), Weight: 0.5},
		},
	},
	{
		Name:        "romantic",
		Description: "Warm, gentle and intimate",
		Rules: map[tracks.Feature]Rule{
			tracks.Valence:      {Min: Bound(0.4), Max: Bound(0.8), Weight: 1},
			tracks.Energy:       {Max: Bound(0.5), Weight: 1},
			tracks.Acousticness: {Min: Bound(0.4), Weight: 1},
		},
	},
}

// DefaultCatalog returns the built-in presets.
func DefaultCatalog() *Catalog {
	c := &Catalog{moods: make(map[string]Criteria, len(presets))}
	for _, p := range presets {
		c.add(p)
	}
	return c
}

func (c *Catalog) add(cr Criteria) {
	key := normalizeName(cr.Name)
	if _, exists := c.moods[key]; !exists {
		c.order = append(c.order, key)
	}
	cr.Name = key
	c.moods[key] = cr
}

// Names lists the moods in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// All returns every mood in catalog order.
func (c *Catalog) All() []Criteria {
	out := make([]Criteria, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.moods[name])
	}
	return out
}

// Get looks up a mood by name, case-insensitively.
func (c *Catalog) Get(name string) (Criteria, error) {
	cr, ok := c.moods[normalizeName(name)]
	if !ok {
		return Criteria{}, fmt.Errorf("%w: %q", ErrUnknownMood, name)
	}
	return cr, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// catalogFile is the TOML layout of a mood catalog:
//
//	[moods.late_night]
//	description = "Dark and slow"
//
//	[moods.late_night.rules.energy]
//	max = 0.4
//	weight = 2
type catalogFile struct {
	Moods map[string]moodFile `toml:"moods"`
}

type moodFile struct {
	Description string              `toml:"description"`
	Rules       map[string]ruleFile `toml:"rules"`
}

type ruleFile struct {
	Min    *float64 `toml:"min"`
	Max    *float64 `toml:"max"`
	Weight *float64 `toml:"weight"`
}

// LoadCatalog reads extra moods from a TOML file on top of the built-in
// presets. A mood with a preset's name replaces that preset.
func LoadCatalog(path string) (*Catalog, error) {
	var file catalogFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mood catalog: %w", err)
	}
	return buildCatalog(file, md)
}

// ParseCatalog is LoadCatalog for an in-memory document.
func ParseCatalog(data string) (*Catalog, error) {
	var file catalogFile
	md, err := toml.Decode(data, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mood catalog: %w", err)
	}
	return buildCatalog(file, md)
}

func buildCatalog(file catalogFile, md toml.MetaData) (*Catalog, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in mood catalog", undecoded[0].String())
	}

	c := DefaultCatalog()

	// Map iteration order is random; keep file moods in a stable order.
	names := make([]string, 0, len(file.Moods))
	for name := range file.Moods {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cr, err := file.Moods[name].criteria(name)
		if err != nil {
			return nil, err
		}
		c.add(cr)
	}
	return c, nil
}

func (m moodFile) criteria(name string) (Criteria, error) {
	if normalizeName(name) == "" {
		return Criteria{}, errors.New("mood with empty name")
	}
	cr := Criteria{
		Name:        name,
		Description: m.Description,
		Rules:       make(map[tracks.Feature]Rule, len(m.Rules)),
	}
	for key, rf := range m.Rules {
		feature, err := tracks.ParseFeature(key)
		if err != nil {
			return Criteria{}, fmt.Errorf("mood %q: %w", name, err)
		}
		rule := Rule{Min: rf.Min, Max: rf.Max, Weight: 1}
		if rf.Weight != nil {
			rule.Weight = *rf.Weight
		}
		if err := rule.validate(); err != nil {
			return Criteria{}, fmt.Errorf("mood %q, feature %s: %w", name, feature, err)
		}
		cr.Rules[feature] = rule
	}
	if len(cr.Rules) == 0 {
		return Criteria{}, fmt.Errorf("mood %q has no rules", name)
	}
	return cr, nil
}

func (r Rule) validate() error {
	inUnit := func(p *float64) bool {
		return p == nil || (*p >= 0 && *p <= 1)
	}
	if !inUnit(r.Min) || !inUnit(r.Max) {
		return errors.New("bounds must be within [0,1]")
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("min %v exceeds max %v", *r.Min, *r.Max)
	}
	if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) || r.Weight < 0 {
		return errors.New("weight must be a non-negative number")
	}
	return nil
}

// Validate checks criteria built outside a catalog, such as inline criteria
// in an API request.
func (c Criteria) Validate() error {
	if len(c.Rules) == 0 {
		return fmt.Errorf("mood %q has no rules", c.Name)
	}
	for feature, rule := range c.Rules {
		if f, err := tracks.ParseFeature(string(feature)); err != nil || f != feature {
			return fmt.Errorf("mood %q: unknown feature %q", c.Name, feature)
		}
		if err := rule.validate(); err != nil {
			return fmt.Errorf("mood %q, feature %s: %w", c.Name, feature, err)
		}
	}
	return nil
}
