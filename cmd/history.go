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
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/plex-recommend/internal/store"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Lists past runs, or the playlists written by one run",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runID := ""
		if len(args) == 1 {
			runID = args[0]
		}
		err := printHistory(viper.GetString("database"), runID, viper.GetInt("limit"), os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	var limit int
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of runs to show, 0 for all")
	viper.BindPFlag("limit", historyCmd.Flags().Lookup("limit"))
}

func printHistory(dbPath string, runID string, limit int, out io.Writer) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if runID != "" {
		records, err := db.Playlists(runID)
		if err != nil {
			return err
		}
		t := Table{rows: [][]string{{"Account", "Section", "Playlist", "ID", "Items", "Error"}}}
		for _, r := range records {
			t.rows = append(t.rows, []string{r.Account, r.Section, r.Title, r.PlaylistID, strconv.Itoa(r.Items), r.Error})
		}
		t.summary = fmt.Sprintf("Run %s: %d record(s)", runID, len(records))
		_, err = io.WriteString(out, t.String())
		return err
	}

	runs, err := db.Runs(limit)
	if err != nil {
		return err
	}
	t := Table{rows: [][]string{{"Run", "Started", "Took", "Dry run", "Audience", "Accounts", "Errors"}}}
	for _, r := range runs {
		took := "unfinished"
		if !r.Finished.IsZero() {
			took = r.Finished.Sub(r.Started).Round(time.Second).String()
		}
		t.rows = append(t.rows, []string{
			r.ID,
			r.Started.Local().Format("2006-01-02 15:04"),
			took,
			strconv.FormatBool(r.DryRun),
			r.AudienceProfile,
			strconv.Itoa(r.Accounts),
			strconv.Itoa(r.Errors),
		})
	}
	t.summary = fmt.Sprintf("%d run(s)", len(runs))
	_, err = io.WriteString(out, t.String())
	return err
}
