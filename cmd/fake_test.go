package cmd

import (
	"context"
	"fmt"

	"github.com/ademuri/plex-recommend/internal/catalog"
)

type fakeLibrary struct {
	sections  []catalog.Section
	items     map[string][]catalog.Item
	playlists []catalog.Playlist
	created   map[string][]catalog.Item
	deleted   []string
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		sections: []catalog.Section{
			{Key: "1", Title: "Movies", Kind: catalog.KindMovie},
			{Key: "2", Title: "Music", Kind: "artist"},
			{Key: "3", Title: "Home Videos", Kind: catalog.KindMovie},
		},
		items: map[string][]catalog.Item{
			"1": {
				{Key: "10", Title: "Seen", Type: "movie", Watched: true, UserRating: catalog.Float(9), Cast: []string{"Lead"}, Genres: []string{"Drama"}},
				{Key: "11", Title: "Sequel", Type: "movie", Cast: []string{"Lead"}},
				{Key: "12", Title: "Scary <Movie>", Type: "movie", Genres: []string{"Horror"}},
			},
		},
		playlists: []catalog.Playlist{{ID: "99", Title: "Recommend for Movies"}},
	}
}

func (f *fakeLibrary) Sections(ctx context.Context) ([]catalog.Section, error) {
	return f.sections, nil
}

func (f *fakeLibrary) Items(ctx context.Context, section catalog.Section) ([]catalog.Item, error) {
	return f.items[section.Key], nil
}

func (f *fakeLibrary) FirstEpisode(ctx context.Context, show catalog.Item) (catalog.Item, error) {
	return show, nil
}

func (f *fakeLibrary) Playlists(ctx context.Context) ([]catalog.Playlist, error) {
	return f.playlists, nil
}

func (f *fakeLibrary) DeletePlaylist(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeLibrary) CreatePlaylist(ctx context.Context, title string, items []catalog.Item) (string, error) {
	if f.created == nil {
		f.created = make(map[string][]catalog.Item)
	}
	f.created[title] = items
	return fmt.Sprintf("%d", 100+len(f.created)), nil
}

type fakeProvider struct {
	owner  *fakeLibrary
	shared map[string]*fakeLibrary
}

func (p *fakeProvider) Primary(ctx context.Context) (catalog.Account, catalog.Library, error) {
	return catalog.Account{Name: "owner", MachineID: "machine-1"}, p.owner, nil
}

func (p *fakeProvider) SharedAccounts(ctx context.Context, machineID string) (map[string]string, error) {
	tokens := make(map[string]string)
	for name := range p.shared {
		tokens[name] = name
	}
	return tokens, nil
}

func (p *fakeProvider) Open(token string) catalog.Library {
	return p.shared[token]
}
