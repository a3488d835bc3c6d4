package analysis

import (
	"github.com/ademuri/plex-recommend/internal/audience"
	"github.com/ademuri/plex-recommend/internal/catalog"
)

// IsWatched reports whether an item counts towards the taste profile.
func IsWatched(item catalog.Item) bool {
	return item.Watched || item.ViewCount > 0 || (item.UserRating != nil && *item.UserRating > 0)
}

// Builder learns a Profile from watched items.
type Builder struct {
	Options Options
}

// Add accumulates every watched item in items into p. Scores only ever grow
// by addition, so the order items are added in doesn't matter.
func (b Builder) Add(p *Profile, items []catalog.Item) {
	dims := b.Options.dimensions()
	for _, item := range items {
		if !IsWatched(item) {
			continue
		}
		b.addItem(p, dims, item)
	}
}

func (b Builder) addItem(p *Profile, dims dimensions, item catalog.Item) {
	rating := b.Options.DefaultRating
	if item.UserRating != nil {
		rating = *item.UserRating
	} else if item.Rating != nil {
		rating = *item.Rating
	}

	var bucket string
	if item.ContentRating != "" {
		bucket = b.Options.Audience.Normalize(item.ContentRating)
		rating *= float64(audience.Adult) / float64(audience.Bucket(bucket))
	}

	if bucket != "" {
		p.Audience[bucket] += rating
	}
	m := b.Options.multiplier(rating)

	accumulate(p.Cast, item.Cast, dims.cast, m)
	accumulate(p.Writers, item.Writers, dims.writer, m)
	accumulate(p.Directors, item.Directors, dims.director, m)
	accumulate(p.Countries, item.Countries, dims.country, m)
	accumulate(p.Roles, item.Roles, dims.role, m)
	accumulate(p.Genres, item.Genres, dims.genre, m)
	if item.Studio != "" {
		accumulate(p.Studios, []string{item.Studio}, dims.studio, m)
	}
	p.Watched++
}

func accumulate(scores map[string]float64, values []string, d dimension, m float64) {
	for i, v := range values {
		if v == "" {
			continue
		}
		scores[v] += RankDecay(i, d.window) * m * d.factor
	}
}
