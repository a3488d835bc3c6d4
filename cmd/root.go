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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/plex-recommend/internal/analysis"
	"github.com/ademuri/plex-recommend/internal/audience"
	"github.com/ademuri/plex-recommend/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plex-recommend",
	Short: "Builds \"what to watch next\" playlists from Plex watch history",
	Long: `Learns a taste profile from everything an account has watched on a Plex
server and replaces a "Recommend for <section>" playlist in every movie and
TV library with the best-matching unwatched titles. Runs for the server
owner and for every account the server is shared with.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.plex-recommend.yaml)")

	flags.String("plex_url", "http://localhost:32400", "Base URL of the Plex Media Server")
	viper.BindPFlag("plex_url", flags.Lookup("plex_url"))

	flags.String("plex_token", "", "Plex token of the server owner")
	viper.BindPFlag("plex_token", flags.Lookup("plex_token"))

	flags.String("plextv_url", "https://plex.tv", "Base URL of plex.tv, used to find shared accounts")
	flags.MarkHidden("plextv_url")
	viper.BindPFlag("plextv_url", flags.Lookup("plextv_url"))

	flags.StringP("database", "d", "./plex-recommend.db", "Path to the SQLite run log")
	viper.BindPFlag("database", flags.Lookup("database"))

	flags.String("log_level", "info", "One of debug, info, warn, error")
	viper.BindPFlag("log_level", flags.Lookup("log_level"))

	flags.String("log_format", "console", "console or json")
	viper.BindPFlag("log_format", flags.Lookup("log_format"))

	// Ranking
	flags.Int("cast", analysis.DefaultCastWidth, "How many top-billed cast members count for more (5-10)")
	viper.BindPFlag("cast", flags.Lookup("cast"))

	flags.Int("genre", analysis.DefaultGenreWidth, "How many leading genres count for more (1-10)")
	viper.BindPFlag("genre", flags.Lookup("genre"))

	flags.Float64("rating", analysis.DefaultRating, "Rating assumed for titles that have none (0-5)")
	viper.BindPFlag("rating", flags.Lookup("rating"))

	flags.Bool("multiplier", true, "Scale every score by the title's rating")
	viper.BindPFlag("multiplier", flags.Lookup("multiplier"))

	flags.Int("size", analysis.DefaultPlaylistSize, "Playlist size: 10, 25, 50 or 100")
	viper.BindPFlag("size", flags.Lookup("size"))

	flags.String("name", analysis.DefaultPlaylistTitle, "Playlist name prefix, followed by the section name")
	viper.BindPFlag("name", flags.Lookup("name"))

	flags.StringSlice("exclude_section", nil, "Library section to skip (repeatable)")
	viper.BindPFlag("exclude_section", flags.Lookup("exclude_section"))

	flags.StringSlice("exclude_genre", nil, "Genre to push to the bottom (repeatable)")
	viper.BindPFlag("exclude_genre", flags.Lookup("exclude_genre"))

	flags.StringSlice("exclude_collection", nil, "Collection to push to the bottom (repeatable)")
	viper.BindPFlag("exclude_collection", flags.Lookup("exclude_collection"))

	flags.StringSlice("include_collection", nil, "Collection to favour (repeatable)")
	viper.BindPFlag("include_collection", flags.Lookup("include_collection"))

	flags.String("audience_profile", audience.Standard.Name, "Content rating table: "+strings.Join(audience.Names(), " or "))
	viper.BindPFlag("audience_profile", flags.Lookup("audience_profile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".plex-recommend" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".plex-recommend")
	}

	viper.SetEnvPrefix("PLEX_RECOMMEND")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// rankingConfig reads and validates the ranking flags.
func rankingConfig() (analysis.Options, analysis.Overrides, error) {
	opts := analysis.DefaultOptions()
	opts.CastWidth = viper.GetInt("cast")
	opts.GenreWidth = viper.GetInt("genre")
	opts.DefaultRating = viper.GetFloat64("rating")
	opts.ScaleByRating = viper.GetBool("multiplier")
	opts.PlaylistSize = viper.GetInt("size")

	if opts.CastWidth < 5 || opts.CastWidth > 10 {
		return opts, analysis.Overrides{}, fmt.Errorf("--cast must be between 5 and 10, got %d", opts.CastWidth)
	}
	if opts.GenreWidth < 1 || opts.GenreWidth > 10 {
		return opts, analysis.Overrides{}, fmt.Errorf("--genre must be between 1 and 10, got %d", opts.GenreWidth)
	}
	if opts.DefaultRating < 0 || opts.DefaultRating > 5 {
		return opts, analysis.Overrides{}, fmt.Errorf("--rating must be between 0 and 5, got %v", opts.DefaultRating)
	}
	switch opts.PlaylistSize {
	case 10, 25, 50, 100:
	default:
		return opts, analysis.Overrides{}, fmt.Errorf("--size must be one of 10, 25, 50 or 100, got %d", opts.PlaylistSize)
	}
	if strings.TrimSpace(viper.GetString("name")) == "" {
		return opts, analysis.Overrides{}, fmt.Errorf("--name must not be empty")
	}

	table, err := audience.Lookup(viper.GetString("audience_profile"))
	if err != nil {
		return opts, analysis.Overrides{}, err
	}
	opts.Audience = table

	overrides := analysis.NewOverrides(
		viper.GetStringSlice("exclude_genre"),
		viper.GetStringSlice("exclude_collection"),
		viper.GetStringSlice("include_collection"))
	return opts, overrides, nil
}

// requirePlex checks the flags every command talking to the server needs.
func requirePlex(cmd *cobra.Command, args []string) error {
	if viper.GetString("plex_token") == "" {
		return fmt.Errorf("required flag(s) \"plex_token\" not set")
	}
	if viper.GetString("plex_url") == "" {
		return fmt.Errorf("required flag(s) \"plex_url\" not set")
	}
	return nil
}
