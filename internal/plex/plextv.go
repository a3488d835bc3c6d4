package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ademuri/plex-recommend/internal/logging"
)

const PlexTVURL = "https://plex.tv"

// TVClient reads account sharing information from plex.tv. Calls go through
// a circuit breaker so an unreachable plex.tv fails fast after a few errors.
type TVClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewTVClient(baseURL string, token string, httpClient *http.Client) *TVClient {
	if baseURL == "" {
		baseURL = PlexTVURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "plex.tv",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &TVClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		breaker:    breaker,
	}
}

// plex.tv's v1 API only speaks XML.
type usersResponse struct {
	Users []struct {
		ID       string `xml:"id,attr"`
		Title    string `xml:"title,attr"`
		Username string `xml:"username,attr"`
	} `xml:"User"`
}

type sharedServersResponse struct {
	SharedServers []struct {
		UserID      string `xml:"userID,attr"`
		Username    string `xml:"username,attr"`
		AccessToken string `xml:"accessToken,attr"`
	} `xml:"SharedServer"`
}

type accountResponse struct {
	Username string `xml:"username,attr"`
	Title    string `xml:"title,attr"`
}

// Username returns the name of the account owning the token.
func (c *TVClient) Username(ctx context.Context) (string, error) {
	var account accountResponse
	if err := c.get(ctx, "/users/account", &account); err != nil {
		return "", fmt.Errorf("fetching account: %w", err)
	}
	if account.Username != "" {
		return account.Username, nil
	}
	return account.Title, nil
}

// SharedAccounts returns the display name and server access token of every
// account the server at machineID is shared with.
func (c *TVClient) SharedAccounts(ctx context.Context, machineID string) (map[string]string, error) {
	var users usersResponse
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	var shared sharedServersResponse
	if err := c.get(ctx, "/api/servers/"+machineID+"/shared_servers", &shared); err != nil {
		return nil, fmt.Errorf("listing shared servers: %w", err)
	}

	names := make(map[string]string, len(users.Users))
	for _, u := range users.Users {
		name := u.Username
		if name == "" {
			name = u.Title
		}
		names[u.ID] = name
	}

	accounts := make(map[string]string, len(shared.SharedServers))
	for _, s := range shared.SharedServers {
		if s.AccessToken == "" {
			continue
		}
		name, ok := names[s.UserID]
		if !ok || name == "" {
			name = s.Username
		}
		if name == "" {
			name = "user " + s.UserID
		}
		accounts[name] = s.AccessToken
	}
	return accounts, nil
}

func (c *TVClient) get(ctx context.Context, path string, result interface{}) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Plex-Token", c.token)
		req.Header.Set("X-Plex-Client-Identifier", ClientID)
		req.Header.Set("X-Plex-Product", Product)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return nil, &StatusError{Method: http.MethodGet, Path: path, Code: resp.StatusCode, Status: resp.Status}
		}
		return io.ReadAll(resp.Body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("plex.tv unavailable: %w", err)
	}
	if err != nil {
		return err
	}
	return xml.Unmarshal(body, result)
}
