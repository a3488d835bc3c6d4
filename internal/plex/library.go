package plex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ademuri/plex-recommend/internal/catalog"
)

var ErrNoEpisode = errors.New("show has no first episode")

// MachineID returns the server's machine identifier, fetching it once.
func (c *Client) MachineID(ctx context.Context) (string, error) {
	if c.machineID != "" {
		return c.machineID, nil
	}
	var resp identityResponse
	if err := c.do(ctx, http.MethodGet, "/identity", nil, &resp); err != nil {
		return "", fmt.Errorf("fetching server identity: %w", err)
	}
	if resp.MediaContainer.MachineIdentifier == "" {
		return "", fmt.Errorf("server at %s did not report a machine identifier", c.baseURL)
	}
	c.machineID = resp.MediaContainer.MachineIdentifier
	return c.machineID, nil
}

func (c *Client) Sections(ctx context.Context) ([]catalog.Section, error) {
	var resp sectionsResponse
	if err := c.do(ctx, http.MethodGet, "/library/sections", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}

	var sections []catalog.Section
	for _, d := range resp.MediaContainer.Directory {
		sections = append(sections, catalog.Section{
			Key:   d.Key,
			Title: d.Title,
			Kind:  catalog.Kind(d.Type),
		})
	}
	return sections, nil
}

func (c *Client) Items(ctx context.Context, section catalog.Section) ([]catalog.Item, error) {
	query := url.Values{}
	query.Set("includeCollections", "1")

	var resp metadataResponse
	path := "/library/sections/" + url.PathEscape(section.Key) + "/all"
	if err := c.do(ctx, http.MethodGet, path, query, &resp); err != nil {
		return nil, fmt.Errorf("listing items of %q: %w", section.Title, err)
	}

	items := make([]catalog.Item, 0, len(resp.MediaContainer.Metadata))
	for _, m := range resp.MediaContainer.Metadata {
		items = append(items, toItem(m, section.Key))
	}
	return items, nil
}

// FirstEpisode resolves a show to season 1, episode 1. Anything else is
// returned unchanged.
func (c *Client) FirstEpisode(ctx context.Context, show catalog.Item) (catalog.Item, error) {
	if !show.IsShow() {
		return show, nil
	}

	season, err := c.child(ctx, show.Key, 1)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("finding season 1 of %q: %w", show.Title, err)
	}
	episode, err := c.child(ctx, season.RatingKey, 1)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("finding episode 1 of %q: %w", show.Title, err)
	}
	return toItem(episode, show.SectionKey), nil
}

func (c *Client) child(ctx context.Context, key string, index int) (metadata, error) {
	var resp metadataResponse
	path := "/library/metadata/" + url.PathEscape(key) + "/children"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return metadata{}, err
	}
	for _, m := range resp.MediaContainer.Metadata {
		if m.Index == index {
			return m, nil
		}
	}
	return metadata{}, ErrNoEpisode
}

func (c *Client) Playlists(ctx context.Context) ([]catalog.Playlist, error) {
	var resp playlistsResponse
	if err := c.do(ctx, http.MethodGet, "/playlists", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}

	var playlists []catalog.Playlist
	for _, p := range resp.MediaContainer.Metadata {
		playlists = append(playlists, catalog.Playlist{ID: p.RatingKey, Title: p.Title})
	}
	return playlists, nil
}

func (c *Client) DeletePlaylist(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/playlists/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting playlist %s: %w", id, err)
	}
	return nil
}

// CreatePlaylist creates a video playlist holding items, in order, and
// returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, title string, items []catalog.Item) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("creating playlist %q: no items", title)
	}
	machineID, err := c.MachineID(ctx)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}

	query := url.Values{}
	query.Set("type", "video")
	query.Set("title", title)
	query.Set("smart", "0")
	query.Set("uri", fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s", machineID, strings.Join(keys, ",")))

	var resp playlistsResponse
	if err := c.do(ctx, http.MethodPost, "/playlists", query, &resp); err != nil {
		return "", fmt.Errorf("creating playlist %q: %w", title, err)
	}
	if len(resp.MediaContainer.Metadata) == 0 {
		return "", fmt.Errorf("creating playlist %q: server returned no playlist", title)
	}
	return resp.MediaContainer.Metadata[0].RatingKey, nil
}

func toItem(m metadata, sectionKey string) catalog.Item {
	item := catalog.Item{
		Key:           m.RatingKey,
		Title:         m.Title,
		Type:          m.Type,
		SectionKey:    sectionKey,
		ViewCount:     m.ViewCount,
		UserRating:    m.UserRating,
		Rating:        m.Rating,
		Studio:        m.Studio,
		ContentRating: m.ContentRating,
		Cast:          tags(m.Role),
		Genres:        tags(m.Genre),
		Writers:       tags(m.Writer),
		Directors:     tags(m.Director),
		Countries:     tags(m.Country),
		Collections:   tags(m.Collection),
	}
	for _, r := range m.Role {
		if r.Role != "" {
			item.Roles = append(item.Roles, r.Role)
		}
	}

	if m.Type == string(catalog.KindShow) {
		item.Watched = m.LeafCount > 0 && m.ViewedLeafCount >= m.LeafCount
	} else {
		item.Watched = m.ViewCount > 0
	}
	return item
}

func tags(ts []tag) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Tag)
	}
	return out
}
