/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/plex-recommend/internal/analysis"
	"github.com/ademuri/plex-recommend/internal/catalog"
	"github.com/ademuri/plex-recommend/internal/session"
)

type ProfileConfig struct {
	Account string
	Format  string
	Top     int
	Session session.Config
}

type profileReport struct {
	Account   string             `yaml:"account"`
	Profile   *analysis.Profile  `yaml:"profile"`
	Overrides analysis.Overrides `yaml:"overrides"`
	Sections  []sectionReport    `yaml:"sections"`
}

type sectionReport struct {
	Section    string            `yaml:"section"`
	Playlist   string            `yaml:"playlist"`
	Candidates []analysis.Scored `yaml:"candidates"`
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Prints an account's taste profile and its ranked candidates",
	Long: `Builds the taste profile of one account (the server owner by default) and
ranks every section against it, exactly as recommend would, without touching
any playlist. Output is YAML or tables.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePlex(cmd, args); err != nil {
			return err
		}
		switch viper.GetString("format") {
		case "yaml", "table":
		default:
			return fmt.Errorf("--format must be yaml or table, got %q", viper.GetString("format"))
		}
		_, _, err := rankingConfig()
		return err
	},
	Run: func(cmd *cobra.Command, args []string) {
		opts, overrides, err := rankingConfig()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		account, _ := cmd.Flags().GetString("account")
		config := ProfileConfig{
			Account: account,
			Format:  viper.GetString("format"),
			Top:     viper.GetInt("top"),
			Session: session.Config{
				Options:         opts,
				Overrides:       overrides,
				Prefix:          viper.GetString("name"),
				ExcludeSections: viper.GetStringSlice("exclude_section"),
			},
		}

		provider := newProvider(viper.GetString("plex_url"), viper.GetString("plex_token"), viper.GetString("plextv_url"))
		if err := printProfile(cmd.Context(), config, provider, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error building profile: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringP("account", "a", "", "Account to profile (default is the server owner)")

	var format string
	profileCmd.Flags().StringVarP(&format, "format", "f", "yaml", "yaml or table")
	viper.BindPFlag("format", profileCmd.Flags().Lookup("format"))

	var top int
	profileCmd.Flags().IntVar(&top, "top", 10, "Entries shown per profile dimension in table output")
	viper.BindPFlag("top", profileCmd.Flags().Lookup("top"))
}

// openAccount returns the library of the named account, or the owner's when
// name is empty.
func openAccount(ctx context.Context, provider session.Provider, name string) (string, catalog.Library, error) {
	primary, library, err := provider.Primary(ctx)
	if err != nil {
		return "", nil, err
	}
	if name == "" || name == primary.Name {
		return primary.Name, library, nil
	}

	shared, err := provider.SharedAccounts(ctx, primary.MachineID)
	if err != nil {
		return "", nil, fmt.Errorf("listing shared accounts: %w", err)
	}
	token, ok := shared[name]
	if !ok {
		return "", nil, fmt.Errorf("no account named %q shares this server", name)
	}
	return name, provider.Open(token), nil
}

func printProfile(ctx context.Context, config ProfileConfig, provider session.Provider, out io.Writer) error {
	name, library, err := openAccount(ctx, provider, config.Account)
	if err != nil {
		return err
	}

	s := session.New(provider, config.Session)
	profile, sections, err := s.Analyze(ctx, name, library)
	if err != nil {
		return err
	}

	report := profileReport{
		Account:   name,
		Profile:   profile,
		Overrides: config.Session.Overrides,
	}
	for _, section := range sections {
		report.Sections = append(report.Sections, sectionReport{
			Section:    section.Section.Title,
			Playlist:   section.Title,
			Candidates: section.Ranked,
		})
	}

	if config.Format == "table" {
		_, err := io.WriteString(out, profileTables(report, config.Top))
		return err
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	return encoder.Close()
}

func profileTables(report profileReport, top int) string {
	p := report.Profile
	dimensions := []struct {
		name   string
		scores map[string]float64
	}{
		{"Cast", p.Cast},
		{"Genre", p.Genres},
		{"Writer", p.Writers},
		{"Director", p.Directors},
		{"Country", p.Countries},
		{"Role", p.Roles},
		{"Studio", p.Studios},
		{"Audience", p.Audience},
	}

	out := fmt.Sprintf("Taste profile of %s, from %d watched title(s)\n", report.Account, p.Watched)
	for _, d := range dimensions {
		if len(d.scores) == 0 {
			continue
		}
		t := Table{rows: [][]string{{d.name, "Score"}}}
		for _, e := range topScores(d.scores, top) {
			t.rows = append(t.rows, []string{e.name, strconv.FormatFloat(e.score, 'f', 2, 64)})
		}
		out += t.String()
	}

	for _, section := range report.Sections {
		t := Table{rows: [][]string{{"#", "Title", "Score"}}}
		for i, c := range section.Candidates {
			t.rows = append(t.rows, []string{strconv.Itoa(i + 1), c.Title, strconv.FormatFloat(c.Score, 'f', 2, 64)})
		}
		t.summary = fmt.Sprintf("%s: %d candidate(s)", section.Playlist, len(section.Candidates))
		out += t.String()
	}
	return out
}

type scoreEntry struct {
	name  string
	score float64
}

// topScores returns the n highest scores, ties broken by name.
func topScores(scores map[string]float64, n int) []scoreEntry {
	entries := make([]scoreEntry, 0, len(scores))
	for name, score := range scores {
		entries = append(entries, scoreEntry{name, score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].name < entries[j].name
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
