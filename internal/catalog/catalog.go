// Package catalog describes the media catalog as the recommender sees it:
// read-only snapshots of sections and items, plus the few playlist calls the
// session needs to publish its results.
package catalog

import (
	"context"
)

// Kind is the type of a library section.
type Kind string

const (
	KindMovie Kind = "movie"
	KindShow  Kind = "show"
)

// InScope reports whether the recommender handles sections of this kind.
// Music, photo and other libraries are ignored.
func (k Kind) InScope() bool {
	return k == KindMovie || k == KindShow
}

type Section struct {
	Key   string
	Title string
	Kind  Kind
}

// Item is a show, movie or episode. Optional attributes are left empty when
// the catalog doesn't carry them.
type Item struct {
	Key        string
	Title      string
	Type       string
	SectionKey string

	Watched    bool
	ViewCount  int
	UserRating *float64
	Rating     *float64

	Cast        []string
	Writers     []string
	Directors   []string
	Countries   []string
	Roles       []string
	Genres      []string
	Collections []string
	Studio      string

	ContentRating string
}

// IsShow reports whether the item is a whole series rather than something
// that can be played directly.
func (i Item) IsShow() bool {
	return i.Type == string(KindShow)
}

type Playlist struct {
	ID    string
	Title string
}

// Account identifies whose view of the catalog a Library represents.
type Account struct {
	Name      string
	MachineID string
}

// Library is one account's view of the catalog.
type Library interface {
	Sections(ctx context.Context) ([]Section, error)
	Items(ctx context.Context, section Section) ([]Item, error)

	// FirstEpisode returns season 1, episode 1 of a show.
	FirstEpisode(ctx context.Context, show Item) (Item, error)

	Playlists(ctx context.Context) ([]Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	CreatePlaylist(ctx context.Context, title string, items []Item) (string, error)
}

// Float returns a pointer to f, for building items with optional ratings.
func Float(f float64) *float64 {
	return &f
}
