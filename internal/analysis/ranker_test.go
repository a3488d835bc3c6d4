package analysis

import (
	"fmt"
	"testing"

	"github.com/ademuri/plex-recommend/internal/catalog"
)

func unscaledRanker(size int) Ranker {
	opts := DefaultOptions()
	opts.ScaleByRating = false
	opts.PlaylistSize = size
	return Ranker{Options: opts}
}

func titles(scored []Scored) []string {
	var out []string
	for _, s := range scored {
		out = append(out, s.Title)
	}
	return out
}

func TestRankStableOnTies(t *testing.T) {
	p := NewProfile(Overrides{})
	p.Genres["five"] = 5
	p.Genres["three"] = 3

	cases := []struct {
		name  string
		items []catalog.Item
		want  []string
	}{
		{
			name: "already ordered",
			items: []catalog.Item{
				{Title: "A", Genres: []string{"five"}},
				{Title: "B", Genres: []string{"five"}},
				{Title: "C", Genres: []string{"three"}},
			},
			want: []string{"A", "B", "C"},
		},
		{
			name: "lowest first",
			items: []catalog.Item{
				{Title: "A", Genres: []string{"three"}},
				{Title: "B", Genres: []string{"five"}},
				{Title: "C", Genres: []string{"five"}},
			},
			want: []string{"B", "C", "A"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := titles(unscaledRanker(10).Rank(p, Overrides{}, c.items))
			if fmt.Sprint(got) != fmt.Sprint(c.want) {
				t.Errorf("Rank() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestRankTopK(t *testing.T) {
	p := NewProfile(Overrides{})
	var items []catalog.Item
	for i := 0; i < 25; i++ {
		genre := fmt.Sprintf("g%02d", i)
		p.Genres[genre] = float64(i)
		items = append(items, catalog.Item{Title: genre, Genres: []string{genre}})
	}

	got := unscaledRanker(10).Rank(p, Overrides{}, items)
	if len(got) != 10 {
		t.Fatalf("len(Rank()) = %d, want 10", len(got))
	}
	for i, s := range got {
		want := fmt.Sprintf("g%02d", 24-i)
		if s.Title != want {
			t.Errorf("Rank()[%d] = %q, want %q", i, s.Title, want)
		}
	}
}

func TestRankSkipsWatched(t *testing.T) {
	p := NewProfile(Overrides{})
	items := []catalog.Item{
		{Title: "seen", Watched: true},
		{Title: "played", ViewCount: 1},
		{Title: "fresh"},
	}

	got := titles(unscaledRanker(10).Rank(p, Overrides{}, items))
	if fmt.Sprint(got) != "[fresh]" {
		t.Errorf("Rank() = %v, want [fresh]", got)
	}
}

func TestRankExcludedGenre(t *testing.T) {
	o := NewOverrides([]string{"Reality"}, nil, nil)
	p := NewProfile(o)
	p.Genres["Drama"] = 10

	items := []catalog.Item{{Title: "excluded", Genres: []string{"Reality"}}}
	for i := 0; i < 10; i++ {
		items = append(items, catalog.Item{Title: fmt.Sprintf("drama %d", i), Genres: []string{"Drama"}})
	}

	got := unscaledRanker(10).Rank(p, o, items)
	for _, s := range got {
		if s.Title == "excluded" {
			t.Errorf("excluded genre item was selected: %v", titles(got))
		}
	}
}

func TestRankExcludeIsSoft(t *testing.T) {
	o := NewOverrides([]string{"Reality"}, nil, nil)
	p := NewProfile(o)
	p.Cast["Star"] = 600

	items := []catalog.Item{
		{Title: "plain"},
		{Title: "starring", Genres: []string{"Reality"}, Cast: []string{"Star"}},
	}

	got := unscaledRanker(1).Rank(p, o, items)
	if len(got) != 1 || got[0].Title != "starring" {
		t.Errorf("Rank() = %v, want [starring]", titles(got))
	}
	if !almostEqual(got[0].Score, 100) {
		t.Errorf("score = %v, want 100", got[0].Score)
	}
}

func TestRankEmptyProfileFallsBackToOverrides(t *testing.T) {
	o := NewOverrides(nil, []string{"Holiday"}, []string{"Classics"})
	p := NewProfile(o)
	if !p.Empty() {
		t.Fatalf("new profile is not empty")
	}

	opts := DefaultOptions()
	r := Ranker{Options: opts}
	items := []catalog.Item{
		{Title: "holiday", Rating: catalog.Float(9), Collections: []string{"Holiday Specials"}},
		{Title: "plain one", Rating: catalog.Float(8)},
		{Title: "classic", Rating: catalog.Float(5), Collections: []string{"Criterion Classics"}},
		{Title: "plain two", Rating: catalog.Float(3)},
	}

	got := r.Rank(p, o, items)
	want := []string{"classic", "plain one", "plain two", "holiday"}
	if fmt.Sprint(titles(got)) != fmt.Sprint(want) {
		t.Errorf("Rank() = %v, want %v", titles(got), want)
	}
	if !almostEqual(got[0].Score, IncludeBonus*0.5) {
		t.Errorf("classic score = %v, want %v", got[0].Score, IncludeBonus*0.5)
	}
	if got[1].Score != 0 {
		t.Errorf("plain score = %v, want 0", got[1].Score)
	}
}

func TestScoreAudienceBelowAdultOnly(t *testing.T) {
	p := NewProfile(Overrides{})
	p.Audience["12"] = 4
	p.Audience["18"] = 9

	r := unscaledRanker(10)
	if got := r.Score(p, Overrides{}, catalog.Item{ContentRating: "PG-13"}); got != 4 {
		t.Errorf("Score(PG-13) = %v, want 4", got)
	}
	if got := r.Score(p, Overrides{}, catalog.Item{ContentRating: "R"}); got != 0 {
		t.Errorf("Score(R) = %v, want 0", got)
	}
	if got := r.Score(p, Overrides{}, catalog.Item{}); got != 0 {
		t.Errorf("Score(no rating) = %v, want 0", got)
	}
}

func TestScoreCollectionCountedOnce(t *testing.T) {
	o := NewOverrides(nil, nil, []string{"Marvel"})
	p := NewProfile(o)

	item := catalog.Item{Collections: []string{"Marvel Cinematic Universe", "Marvel Phase One"}}
	if got := unscaledRanker(10).Score(p, o, item); got != IncludeBonus {
		t.Errorf("Score() = %v, want %v", got, IncludeBonus)
	}
}

func TestScoreSumsDimensions(t *testing.T) {
	p := NewProfile(Overrides{})
	p.Studios["HBO"] = 1
	p.Cast["A"] = 2
	p.Genres["Drama"] = 4
	p.Writers["W"] = 8
	p.Directors["D"] = 16
	p.Countries["NL"] = 32
	p.Roles["Lead"] = 64

	item := catalog.Item{
		Rating:    catalog.Float(5),
		Studio:    "HBO",
		Cast:      []string{"A", "unknown"},
		Genres:    []string{"Drama"},
		Writers:   []string{"W"},
		Directors: []string{"D"},
		Countries: []string{"NL"},
		Roles:     []string{"Lead"},
	}

	r := Ranker{Options: DefaultOptions()}
	if got := r.Score(p, Overrides{}, item); !almostEqual(got, 127*0.5) {
		t.Errorf("Score() = %v, want %v", got, 127*0.5)
	}
}

func TestScoreCollectionsDeterministic(t *testing.T) {
	p := NewProfile(Overrides{})
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	values := []float64{0.1, 1e16, 0.7, -1e16, 0.3, 1.1, 2.9, 0.2}
	for i, name := range names {
		p.Collections[name] = values[i]
	}

	// Summed in name order.
	want := 0.0
	for _, v := range values {
		want += v
	}

	r := unscaledRanker(10)
	item := catalog.Item{Collections: []string{"abcdefgh"}}
	for i := 0; i < 50; i++ {
		if got := r.Score(p, Overrides{}, item); got != want {
			t.Fatalf("Score() attempt %d = %v, want %v", i+1, got, want)
		}
	}
}
