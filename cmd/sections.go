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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/plex-recommend/internal/session"
)

var sectionsCmd = &cobra.Command{
	Use:     "sections",
	Short:   "Lists the library sections an account can see",
	Long:    `Shows which sections recommend would process and which are skipped.`,
	PreRunE: requirePlex,
	Run: func(cmd *cobra.Command, args []string) {
		provider := newProvider(viper.GetString("plex_url"), viper.GetString("plex_token"), viper.GetString("plextv_url"))
		account, _ := cmd.Flags().GetString("account")
		err := listSections(cmd.Context(), provider, account, viper.GetStringSlice("exclude_section"), os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sectionsCmd)

	sectionsCmd.Flags().StringP("account", "a", "", "Account to list sections for (default is the server owner)")
}

func listSections(ctx context.Context, provider session.Provider, account string, excluded []string, out io.Writer) error {
	name, library, err := openAccount(ctx, provider, account)
	if err != nil {
		return err
	}
	sections, err := library.Sections(ctx)
	if err != nil {
		return fmt.Errorf("listing sections: %w", err)
	}

	t := Table{rows: [][]string{{"Key", "Title", "Type", "Status"}}}
	for _, section := range sections {
		status := "recommend"
		switch {
		case !section.Kind.InScope():
			status = "unsupported type"
		case containsFold(excluded, section.Title):
			status = "excluded"
		}
		t.rows = append(t.rows, []string{section.Key, section.Title, string(section.Kind), status})
	}
	t.summary = fmt.Sprintf("%d section(s) visible to %s", len(sections), name)
	_, err = io.WriteString(out, t.String())
	return err
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
