package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/ademuri/plex-recommend/internal/analysis"
)

func setRankingDefaults() {
	viper.Set("plex_url", "http://localhost:32400")
	viper.Set("plex_token", "token")
	viper.Set("cast", 5)
	viper.Set("genre", 3)
	viper.Set("rating", 2.0)
	viper.Set("multiplier", true)
	viper.Set("size", 10)
	viper.Set("name", "Recommend for")
	viper.Set("audience_profile", "standard")
	viper.Set("concurrency", 1)
	viper.Set("format", "yaml")
}

func TestRecommendRequiresToken(t *testing.T) {
	viper.Reset()
	setRankingDefaults()
	viper.Set("plex_token", "")

	err := recommendCmd.PreRunE(recommendCmd, []string{})
	if err == nil {
		t.Error("Expected error when plex_token is missing, got nil")
	} else if err.Error() != "required flag(s) \"plex_token\" not set" {
		t.Errorf("Expected 'required flag(s) \"plex_token\" not set', got %v", err)
	}

	viper.Set("plex_token", "token")
	if err := recommendCmd.PreRunE(recommendCmd, []string{}); err != nil {
		t.Errorf("Expected nil when plex_token is set, got %v", err)
	}
}

func TestRecommendRequiresFromForEmail(t *testing.T) {
	viper.Reset()
	setRankingDefaults()
	viper.Set("email_to", "someone@example.com")

	err := recommendCmd.PreRunE(recommendCmd, []string{})
	if err == nil || err.Error() != "required flag(s) \"from\" not set" {
		t.Errorf("Expected missing from error, got %v", err)
	}

	viper.Set("from", "plex@example.com")
	if err := recommendCmd.PreRunE(recommendCmd, []string{}); err != nil {
		t.Errorf("Expected nil when from is set, got %v", err)
	}
}

func TestRecommendRejectsBadConcurrency(t *testing.T) {
	viper.Reset()
	setRankingDefaults()
	viper.Set("concurrency", 0)

	if err := recommendCmd.PreRunE(recommendCmd, []string{}); err == nil {
		t.Error("Expected error for --concurrency 0, got nil")
	}
}

func TestProfileRejectsUnknownFormat(t *testing.T) {
	viper.Reset()
	setRankingDefaults()
	viper.Set("format", "xml")

	err := profileCmd.PreRunE(profileCmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "--format") {
		t.Errorf("Expected a --format error, got %v", err)
	}
}

func TestRankingConfigValidation(t *testing.T) {
	cases := []struct {
		key   string
		value interface{}
		want  string
	}{
		{"cast", 4, "--cast"},
		{"cast", 11, "--cast"},
		{"genre", 0, "--genre"},
		{"genre", 11, "--genre"},
		{"rating", 5.5, "--rating"},
		{"rating", -1.0, "--rating"},
		{"size", 20, "--size"},
		{"name", " ", "--name"},
		{"audience_profile", "bogus", "unknown audience profile"},
	}

	for _, c := range cases {
		viper.Reset()
		setRankingDefaults()
		viper.Set(c.key, c.value)

		_, _, err := rankingConfig()
		if err == nil {
			t.Errorf("%s=%v: expected error, got nil", c.key, c.value)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s=%v: expected error mentioning %q, got %v", c.key, c.value, c.want, err)
		}
	}
}

func TestRankingConfig(t *testing.T) {
	viper.Reset()
	setRankingDefaults()
	viper.Set("cast", 7)
	viper.Set("size", 25)
	viper.Set("multiplier", false)
	viper.Set("audience_profile", "detailed")
	viper.Set("exclude_genre", []string{"Horror"})
	viper.Set("include_collection", []string{"Pixar", "Marvel"})
	viper.Set("exclude_collection", []string{"Marvel"})

	opts, overrides, err := rankingConfig()
	if err != nil {
		t.Fatalf("rankingConfig() error: %v", err)
	}
	if opts.CastWidth != 7 || opts.PlaylistSize != 25 || opts.ScaleByRating || opts.Audience.Name != "detailed" {
		t.Errorf("Unexpected options: %+v", opts)
	}
	if overrides.Genres["Horror"] != analysis.ExcludePenalty {
		t.Errorf("Horror override = %v, want %v", overrides.Genres["Horror"], analysis.ExcludePenalty)
	}
	if overrides.Collections["Pixar"] != analysis.IncludeBonus || overrides.Collections["Marvel"] != analysis.ExcludePenalty {
		t.Errorf("Unexpected collection overrides: %v", overrides.Collections)
	}
}
