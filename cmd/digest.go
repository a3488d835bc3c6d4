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
	"html"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ademuri/plex-recommend/internal/session"
)

type DigestConfig struct {
	To          string
	From        string
	SendgridKey string
}

// sendDigest emails a summary of the run.
func sendDigest(config DigestConfig, results []session.AccountResult, dryRun bool, started time.Time) error {
	if config.SendgridKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	subject, body := generateDigest(results, dryRun, started)
	from := mail.NewEmail("plex-recommend", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, runSummary(results, dryRun), body)

	client := sendgrid.NewSendClient(config.SendgridKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("sendEmail: sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func generateDigest(results []session.AccountResult, dryRun bool, started time.Time) (subject string, body string) {
	subject = fmt.Sprintf("Recommendations for %s", started.Format("2006-01-02"))
	if dryRun {
		subject += " (dry run)"
	}

	var sb strings.Builder
	sb.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)
	for _, account := range results {
		sb.WriteString(fmt.Sprintf("<h2>%s</h2>\n", html.EscapeString(account.Account)))
		if account.Err != nil {
			sb.WriteString(fmt.Sprintf("<p>Skipped: %s</p>\n", html.EscapeString(account.Err.Error())))
			continue
		}
		for _, section := range account.Sections {
			sb.WriteString(fmt.Sprintf("<h3>%s</h3>\n", html.EscapeString(section.Title)))
			if section.Err != nil {
				sb.WriteString(fmt.Sprintf("<p>Error: %s</p>\n", html.EscapeString(section.Err.Error())))
			}
			if len(section.Items) == 0 {
				sb.WriteString("<p>No recommendations.</p>\n")
				continue
			}
			sb.WriteString("<table>\n<tr><th>#</th><th>Title</th><th>Score</th></tr>\n")
			for i, scored := range section.Ranked {
				sb.WriteString(fmt.Sprintf("<tr><td>%d</td><td>%s</td><td>%.2f</td></tr>\n",
					i+1, html.EscapeString(scored.Title), scored.Score))
			}
			sb.WriteString("</table>\n")
		}
	}
	sb.WriteString("  </body>\n</html>\n")
	return subject, sb.String()
}
