package analysis

import (
	"github.com/ademuri/plex-recommend/internal/audience"
	"github.com/ademuri/plex-recommend/internal/catalog"
)

const (
	// Applied once per matching genre or collection. Large enough to bury an
	// item unless the rest of its profile match is very strong.
	ExcludePenalty = -500.0
	IncludeBonus   = 100.0

	DefaultCastWidth     = 5
	DefaultGenreWidth    = 3
	DefaultRating        = 2.0
	DefaultPlaylistSize  = 10
	DefaultPlaylistTitle = "Recommend for"
)

// Options configures both the builder and the ranker. Use DefaultOptions and
// override what you need.
type Options struct {
	// Width of the "top N matters" window for cast, writers and roles.
	CastWidth int

	// Width of the window for genres.
	GenreWidth int

	// Rating assumed for items that carry none.
	DefaultRating float64

	// When true, an item's rating scales everything it contributes.
	ScaleByRating bool

	// Number of items to select per section.
	PlaylistSize int

	Audience audience.Table
}

func DefaultOptions() Options {
	return Options{
		CastWidth:     DefaultCastWidth,
		GenreWidth:    DefaultGenreWidth,
		DefaultRating: DefaultRating,
		ScaleByRating: true,
		PlaylistSize:  DefaultPlaylistSize,
		Audience:      audience.Standard,
	}
}

// multiplier is the factor an item's rating applies to its contributions.
func (o Options) multiplier(rating float64) float64 {
	if !o.ScaleByRating {
		return 1.0
	}
	return rating / 10
}

// Profile is one account's taste, learned from what it has watched. Each map
// goes from an attribute value to its accumulated score.
type Profile struct {
	Cast      map[string]float64 `yaml:"cast"`
	Genres    map[string]float64 `yaml:"genres"`
	Studios   map[string]float64 `yaml:"studios"`
	Writers   map[string]float64 `yaml:"writers"`
	Directors map[string]float64 `yaml:"directors"`
	Countries map[string]float64 `yaml:"countries"`
	Roles     map[string]float64 `yaml:"roles"`

	// Audience maps a rating bucket code to the weight watched items in that
	// bucket contributed.
	Audience map[string]float64 `yaml:"audience"`

	// Collections holds the static collection overrides, keyed by the
	// substring to look for in an item's collection names.
	Collections map[string]float64 `yaml:"collections"`

	// Watched is the number of watched items the profile was built from.
	Watched int `yaml:"watched"`
}

// NewProfile returns an empty profile with the collection overrides applied.
func NewProfile(o Overrides) *Profile {
	p := &Profile{
		Cast:        make(map[string]float64),
		Genres:      make(map[string]float64),
		Studios:     make(map[string]float64),
		Writers:     make(map[string]float64),
		Directors:   make(map[string]float64),
		Countries:   make(map[string]float64),
		Roles:       make(map[string]float64),
		Audience:    make(map[string]float64),
		Collections: make(map[string]float64, len(o.Collections)),
	}
	for name, score := range o.Collections {
		p.Collections[name] = score
	}
	return p
}

// Empty reports whether nothing has been learned yet.
func (p *Profile) Empty() bool {
	return p.Watched == 0
}

// Overrides are the user-configured bonuses and penalties. They are fixed for
// the whole run and only ever read.
type Overrides struct {
	Genres      map[string]float64 `yaml:"genres,omitempty"`
	Collections map[string]float64 `yaml:"collections,omitempty"`
}

// NewOverrides builds the override tables from the configured name lists.
// A collection that is both included and excluded ends up excluded.
func NewOverrides(excludeGenres, excludeCollections, includeCollections []string) Overrides {
	o := Overrides{
		Genres:      make(map[string]float64),
		Collections: make(map[string]float64),
	}
	for _, g := range excludeGenres {
		o.Genres[g] = ExcludePenalty
	}
	for _, c := range includeCollections {
		o.Collections[c] = IncludeBonus
	}
	for _, c := range excludeCollections {
		o.Collections[c] = ExcludePenalty
	}
	return o
}

// Scored is a candidate together with the score it was ranked by.
type Scored struct {
	Item  catalog.Item `yaml:"-"`
	Title string       `yaml:"title"`
	Score float64      `yaml:"score"`
}
