package plex

import (
	"context"
	"fmt"

	"github.com/ademuri/plex-recommend/internal/catalog"
	"github.com/ademuri/plex-recommend/internal/logging"
)

// DefaultOwner names the server owner when plex.tv can't tell us who it is.
const DefaultOwner = "owner"

// Provider opens per-account libraries on one server.
type Provider struct {
	Server *Client
	TV     *TVClient
}

func NewProvider(server *Client, tv *TVClient) *Provider {
	return &Provider{Server: server, TV: tv}
}

// Primary checks that the owner's token is accepted by the server and
// returns the owner's account.
func (p *Provider) Primary(ctx context.Context) (catalog.Account, catalog.Library, error) {
	machineID, err := p.Server.MachineID(ctx)
	if err != nil {
		return catalog.Account{}, nil, fmt.Errorf("connecting to %s: %w", p.Server.BaseURL(), err)
	}

	name := DefaultOwner
	if p.TV != nil {
		username, err := p.TV.Username(ctx)
		if err != nil {
			logging.Warn().Err(err).Msg("could not look up the owner's plex.tv username")
		} else if username != "" {
			name = username
		}
	}
	return catalog.Account{Name: name, MachineID: machineID}, p.Server, nil
}

func (p *Provider) SharedAccounts(ctx context.Context, machineID string) (map[string]string, error) {
	if p.TV == nil {
		return nil, nil
	}
	return p.TV.SharedAccounts(ctx, machineID)
}

func (p *Provider) Open(token string) catalog.Library {
	return p.Server.WithToken(token)
}
