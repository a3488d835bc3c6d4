// Package session runs the recommender for the server owner and every
// account the server is shared with, and publishes the results as
// playlists.
package session

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ademuri/plex-recommend/internal/analysis"
	"github.com/ademuri/plex-recommend/internal/catalog"
	"github.com/ademuri/plex-recommend/internal/logging"
)

// Provider hands out one catalog.Library per account.
type Provider interface {
	// Primary returns the server owner's account and library.
	Primary(ctx context.Context) (catalog.Account, catalog.Library, error)

	// SharedAccounts maps the display name of every account the server is
	// shared with to its access token.
	SharedAccounts(ctx context.Context, machineID string) (map[string]string, error)

	// Open returns the library as seen by the account owning token.
	Open(token string) catalog.Library
}

type Config struct {
	Options   analysis.Options
	Overrides analysis.Overrides

	// Prefix is prepended to the section title to name each playlist.
	Prefix string

	// Sections with these titles are neither profiled nor ranked.
	ExcludeSections []string

	// DryRun ranks as usual but leaves playlists untouched.
	DryRun bool

	// Concurrency is the number of accounts processed at once.
	Concurrency int

	// PrimaryOnly skips shared accounts.
	PrimaryOnly bool
}

type SectionResult struct {
	Section catalog.Section
	Title   string

	// Ranked is the selection before shows are resolved to episodes.
	Ranked []analysis.Scored

	// Items is what the playlist holds: Ranked, minus anything that couldn't
	// be resolved to a playable item.
	Items []catalog.Item

	// Titles of the playlists that were (or, in a dry run, would be) removed.
	Deleted    []string
	PlaylistID string

	Err error
}

type AccountResult struct {
	Account  string
	Profile  *analysis.Profile
	Sections []SectionResult
	Err      error
}

type Session struct {
	config   Config
	provider Provider
}

func New(provider Provider, config Config) *Session {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.Prefix == "" {
		config.Prefix = analysis.DefaultPlaylistTitle
	}
	return &Session{config: config, provider: provider}
}

// PlaylistTitle is the name of the playlist published for section.
func (s *Session) PlaylistTitle(section catalog.Section) string {
	return s.config.Prefix + " " + section.Title
}

type account struct {
	name    string
	library catalog.Library
}

// Run processes every account. It only returns an error when the primary
// account can't be reached; everything else is reported per account and
// per section in the results, primary account first.
func (s *Session) Run(ctx context.Context) ([]AccountResult, error) {
	primary, library, err := s.provider.Primary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimaryAccount, err)
	}

	accounts := []account{{name: primary.Name, library: library}}
	if !s.config.PrimaryOnly {
		shared, err := s.provider.SharedAccounts(ctx, primary.MachineID)
		if err != nil {
			logging.Warn().Err(err).Msg("could not list shared accounts, continuing with the primary account only")
		}
		names := make([]string, 0, len(shared))
		for name := range shared {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			accounts = append(accounts, account{name: name, library: s.provider.Open(shared[name])})
		}
	}

	results := make([]AccountResult, len(accounts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i, a := range accounts {
		g.Go(func() error {
			results[i] = s.runAccount(ctx, a)
			return nil
		})
	}
	g.Wait()

	return results, nil
}

func (s *Session) runAccount(ctx context.Context, a account) AccountResult {
	log := logging.Logger().With().Str("account", a.name).Logger()
	log.Info().Msg("building profile")

	profile, sections, all, err := s.analyze(ctx, a.name, a.library)
	result := AccountResult{Account: a.name, Profile: profile, Sections: sections, Err: err}
	if err != nil {
		log.Error().Err(err).Msg("skipping account")
		return result
	}
	log.Info().Int("watched", profile.Watched).Int("sections", len(sections)).Msg("profile built")

	if len(result.Sections) == 0 {
		return result
	}
	existing, err := a.library.Playlists(ctx)
	if err != nil {
		for i := range result.Sections {
			sr := &result.Sections[i]
			sr.Err = &PlaylistError{Account: a.name, Title: sr.Title, Op: "list", Err: err}
		}
		log.Error().Err(err).Msg("could not list playlists, skipping all sections")
		return result
	}

	owned := s.ownedPlaylists(existing, all)
	for i := range result.Sections {
		sr := &result.Sections[i]
		s.publish(ctx, a, owned[sr.Title], sr)
	}
	return result
}

// ownedPlaylists assigns each existing playlist to the section whose
// playlist title is the longest prefix of its name, so "Movies" doesn't
// claim the playlists of "Movies 4K". Every playlist has at most one owner.
func (s *Session) ownedPlaylists(existing []catalog.Playlist, sections []catalog.Section) map[string][]catalog.Playlist {
	owned := make(map[string][]catalog.Playlist)
	for _, p := range existing {
		owner := ""
		for _, section := range sections {
			title := s.PlaylistTitle(section)
			if strings.HasPrefix(p.Title, title) && len(title) > len(owner) {
				owner = title
			}
		}
		if owner != "" {
			owned[owner] = append(owned[owner], p)
		}
	}
	return owned
}

// Analyze builds the account's profile from every in-scope section, then
// ranks each section's candidates against it. Playlists are not touched.
func (s *Session) Analyze(ctx context.Context, name string, library catalog.Library) (*analysis.Profile, []SectionResult, error) {
	profile, results, _, err := s.analyze(ctx, name, library)
	return profile, results, err
}

// analyze is Analyze, also returning every section of the library.
func (s *Session) analyze(ctx context.Context, name string, library catalog.Library) (*analysis.Profile, []SectionResult, []catalog.Section, error) {
	all, err := library.Sections(ctx)
	if err != nil {
		return nil, nil, nil, &TransportError{Account: name, Op: "listing sections", Err: err}
	}

	var sections []catalog.Section
	for _, section := range all {
		if !section.Kind.InScope() || s.excluded(section) {
			continue
		}
		sections = append(sections, section)
	}

	items := make([][]catalog.Item, len(sections))
	profile := analysis.NewProfile(s.config.Overrides)
	builder := analysis.Builder{Options: s.config.Options}
	for i, section := range sections {
		items[i], err = library.Items(ctx, section)
		if err != nil {
			return nil, nil, nil, &TransportError{Account: name, Op: "listing items", Err: err}
		}
		builder.Add(profile, items[i])
	}

	ranker := analysis.Ranker{Options: s.config.Options}
	results := make([]SectionResult, 0, len(sections))
	for i, section := range sections {
		results = append(results, SectionResult{
			Section: section,
			Title:   s.PlaylistTitle(section),
			Ranked:  ranker.Rank(profile, s.config.Overrides, items[i]),
		})
	}
	return profile, results, all, nil
}

func (s *Session) excluded(section catalog.Section) bool {
	for _, title := range s.config.ExcludeSections {
		if strings.EqualFold(strings.TrimSpace(title), section.Title) {
			return true
		}
	}
	return false
}

// publish resolves the section's selection to playable items and replaces
// the playlists the section owns.
func (s *Session) publish(ctx context.Context, a account, owned []catalog.Playlist, sr *SectionResult) {
	log := logging.Logger().With().Str("account", a.name).Str("section", sr.Section.Title).Logger()

	for _, scored := range sr.Ranked {
		item, err := a.library.FirstEpisode(ctx, scored.Item)
		if err != nil {
			log.Warn().Err(err).Str("item", scored.Item.Title).Msg("dropping item")
			continue
		}
		sr.Items = append(sr.Items, item)
	}

	for _, p := range owned {
		if !s.config.DryRun {
			if err := a.library.DeletePlaylist(ctx, p.ID); err != nil {
				sr.Err = &PlaylistError{Account: a.name, Title: p.Title, Op: "delete", Err: err}
				log.Error().Err(sr.Err).Msg("could not delete playlist")
				continue
			}
		}
		sr.Deleted = append(sr.Deleted, p.Title)
	}

	if len(sr.Items) == 0 {
		log.Info().Msg("no candidates, not creating a playlist")
		return
	}
	if s.config.DryRun {
		log.Info().Int("items", len(sr.Items)).Msg("dry run, not creating playlist")
		return
	}

	id, err := a.library.CreatePlaylist(ctx, sr.Title, sr.Items)
	if err != nil {
		sr.Err = &PlaylistError{Account: a.name, Title: sr.Title, Op: "create", Err: err}
		log.Error().Err(sr.Err).Msg("could not create playlist")
		return
	}
	sr.PlaylistID = id
	log.Info().Str("playlist", sr.Title).Int("items", len(sr.Items)).Msg("playlist created")
}
