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
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/plex-recommend/internal/logging"
	"github.com/ademuri/plex-recommend/internal/plex"
	"github.com/ademuri/plex-recommend/internal/session"
	"github.com/ademuri/plex-recommend/internal/store"
)

type RecommendConfig struct {
	PlexURL         string
	PlexToken       string
	PlexTVURL       string
	DbPath          string
	AudienceProfile string
	Session         session.Config
	Digest          DigestConfig
}

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Replaces the recommendation playlists of every account",
	Long: `Builds a taste profile for the server owner and each shared account, ranks
the unwatched titles of every movie and TV section against it, and replaces
that account's "<name> <section>" playlists with the result. Each run is
recorded in the SQLite run log.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePlex(cmd, args); err != nil {
			return err
		}
		if viper.GetInt("concurrency") < 1 {
			return fmt.Errorf("--concurrency must be at least 1, got %d", viper.GetInt("concurrency"))
		}
		if viper.GetString("email_to") != "" && viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		_, _, err := rankingConfig()
		return err
	},
	Run: func(cmd *cobra.Command, args []string) {
		config, err := recommendConfig()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := runRecommend(ctx, config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	var dryRun bool
	recommendCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "Rank and report, but leave playlists untouched")
	viper.BindPFlag("dry_run", recommendCmd.Flags().Lookup("dry_run"))

	var concurrency int
	recommendCmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of accounts to process at once")
	viper.BindPFlag("concurrency", recommendCmd.Flags().Lookup("concurrency"))

	var primaryOnly bool
	recommendCmd.Flags().BoolVar(&primaryOnly, "primary_only", false, "Skip shared accounts")
	viper.BindPFlag("primary_only", recommendCmd.Flags().Lookup("primary_only"))

	var emailTo string
	recommendCmd.Flags().StringVar(&emailTo, "email_to", "", "Send a summary of the run to this address")
	viper.BindPFlag("email_to", recommendCmd.Flags().Lookup("email_to"))

	var from string
	recommendCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", recommendCmd.Flags().Lookup("from"))

	var sendgridKey string
	recommendCmd.Flags().StringVar(&sendgridKey, "sendgrid_api_key", "", "SendGrid API key used for the summary email")
	viper.BindPFlag("sendgrid_api_key", recommendCmd.Flags().Lookup("sendgrid_api_key"))
}

func recommendConfig() (RecommendConfig, error) {
	opts, overrides, err := rankingConfig()
	if err != nil {
		return RecommendConfig{}, err
	}

	return RecommendConfig{
		PlexURL:         viper.GetString("plex_url"),
		PlexToken:       viper.GetString("plex_token"),
		PlexTVURL:       viper.GetString("plextv_url"),
		DbPath:          viper.GetString("database"),
		AudienceProfile: opts.Audience.Name,
		Session: session.Config{
			Options:         opts,
			Overrides:       overrides,
			Prefix:          viper.GetString("name"),
			ExcludeSections: viper.GetStringSlice("exclude_section"),
			DryRun:          viper.GetBool("dry_run"),
			Concurrency:     viper.GetInt("concurrency"),
			PrimaryOnly:     viper.GetBool("primary_only"),
		},
		Digest: DigestConfig{
			To:          viper.GetString("email_to"),
			From:        viper.GetString("from"),
			SendgridKey: viper.GetString("sendgrid_api_key"),
		},
	}, nil
}

func newProvider(plexURL, token, plexTVURL string) *plex.Provider {
	server := plex.New(plexURL, token, plex.DefaultOptions())
	return plex.NewProvider(server, plex.NewTVClient(plexTVURL, token, nil))
}

func runRecommend(ctx context.Context, config RecommendConfig) error {
	return recommend(ctx, config, newProvider(config.PlexURL, config.PlexToken, config.PlexTVURL))
}

func recommend(ctx context.Context, config RecommendConfig, provider session.Provider) error {
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	started := time.Now()
	runID, err := db.StartRun(started, config.Session.DryRun, config.AudienceProfile)
	if err != nil {
		return err
	}
	logging.Info().Str("run", runID).Bool("dry_run", config.Session.DryRun).Msg("starting run")

	results, err := session.New(provider, config.Session).Run(ctx)
	if err != nil {
		if ferr := db.FinishRun(runID, time.Now(), 0, 1); ferr != nil {
			logging.Error().Err(ferr).Msg("could not record failed run")
		}
		return err
	}

	records, failures := playlistRecords(results)
	if err := db.RecordPlaylists(runID, records); err != nil {
		return err
	}
	if err := db.FinishRun(runID, time.Now(), len(results), failures); err != nil {
		return err
	}

	summary := runSummary(results, config.Session.DryRun)
	fmt.Print(summary)
	logging.Info().Str("run", runID).Int("accounts", len(results)).Int("errors", failures).
		Dur("took", time.Since(started)).Msg("run finished")

	if config.Digest.To != "" {
		if err := sendDigest(config.Digest, results, config.Session.DryRun, started); err != nil {
			logging.Error().Err(err).Str("to", config.Digest.To).Msg("could not send summary email")
		}
	}
	return nil
}

// playlistRecords flattens the results for the run log and counts failures.
func playlistRecords(results []session.AccountResult) ([]store.PlaylistRecord, int) {
	var records []store.PlaylistRecord
	failures := 0
	for _, account := range results {
		if account.Err != nil {
			failures++
			records = append(records, store.PlaylistRecord{Account: account.Account, Section: "*", Error: account.Err.Error()})
			continue
		}
		for _, section := range account.Sections {
			record := store.PlaylistRecord{
				Account:    account.Account,
				Section:    section.Section.Title,
				Title:      section.Title,
				PlaylistID: section.PlaylistID,
				Items:      len(section.Items),
			}
			if section.Err != nil {
				failures++
				record.Error = section.Err.Error()
			}
			records = append(records, record)
		}
	}
	return records, failures
}

// runSummary renders one table row per account and section.
func runSummary(results []session.AccountResult, dryRun bool) string {
	t := Table{rows: [][]string{{"Account", "Section", "Playlist", "Items", "Replaced", "Status"}}}
	for _, account := range results {
		if account.Err != nil {
			t.rows = append(t.rows, []string{account.Account, "", "", "", "", account.Err.Error()})
			continue
		}
		for _, section := range account.Sections {
			status := "ok"
			switch {
			case section.Err != nil:
				status = section.Err.Error()
			case len(section.Items) == 0:
				status = "no candidates"
			case dryRun:
				status = "dry run"
			}
			t.rows = append(t.rows, []string{
				account.Account,
				section.Section.Title,
				section.Title,
				strconv.Itoa(len(section.Items)),
				strconv.Itoa(len(section.Deleted)),
				status,
			})
		}
	}
	t.summary = fmt.Sprintf("%d account(s) processed", len(results))
	return t.String()
}
