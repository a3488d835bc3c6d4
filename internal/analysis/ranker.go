package analysis

import (
	"sort"
	"strings"

	"github.com/ademuri/plex-recommend/internal/audience"
	"github.com/ademuri/plex-recommend/internal/catalog"
)

// IsCandidate reports whether an item can be recommended.
func IsCandidate(item catalog.Item) bool {
	return !item.Watched && item.ViewCount <= 0
}

// Ranker scores unwatched items against a Profile.
type Ranker struct {
	Options Options
}

// Score returns how well item matches p, with the overrides applied and the
// result scaled by the item's own rating.
func (r Ranker) Score(p *Profile, o Overrides, item catalog.Item) float64 {
	rating := r.Options.DefaultRating
	if item.Rating != nil {
		rating = *item.Rating
	}

	score := 0.0
	if item.Studio != "" {
		score += p.Studios[item.Studio]
	}
	score += sum(p.Cast, item.Cast)
	score += sum(p.Genres, item.Genres)
	score += sum(p.Writers, item.Writers)
	score += sum(p.Directors, item.Directors)
	score += sum(p.Countries, item.Countries)
	score += sum(p.Roles, item.Roles)
	score += sum(o.Genres, item.Genres)

	// Only below-adult content is rewarded for audience affinity.
	if item.ContentRating != "" {
		bucket := r.Options.Audience.Normalize(item.ContentRating)
		if v, ok := p.Audience[bucket]; ok && audience.Bucket(bucket) < audience.Adult {
			score += v
		}
	}

	for _, name := range sortedKeys(p.Collections) {
		for _, c := range item.Collections {
			if strings.Contains(c, name) {
				score += p.Collections[name]
				break
			}
		}
	}

	return score * r.Options.multiplier(rating)
}

// Rank scores every candidate in items and returns the best ones, highest
// score first. Items with equal scores keep their catalog order.
func (r Ranker) Rank(p *Profile, o Overrides, items []catalog.Item) []Scored {
	var scored []Scored
	for _, item := range items {
		if !IsCandidate(item) {
			continue
		}
		scored = append(scored, Scored{
			Item:  item,
			Title: item.Title,
			Score: r.Score(p, o, item),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if r.Options.PlaylistSize >= 0 && len(scored) > r.Options.PlaylistSize {
		scored = scored[:r.Options.PlaylistSize]
	}
	return scored
}

// Items strips the scores from a ranked selection.
func Items(scored []Scored) []catalog.Item {
	items := make([]catalog.Item, 0, len(scored))
	for _, s := range scored {
		items = append(items, s.Item)
	}
	return items
}

func sum(scores map[string]float64, values []string) float64 {
	total := 0.0
	for _, v := range values {
		total += scores[v]
	}
	return total
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
