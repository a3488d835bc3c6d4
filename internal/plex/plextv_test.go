package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSharedAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "owner-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/users":
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer friendlyName="myPlex" size="2">
  <User id="101" title="Alice A" username="alice"/>
  <User id="102" title="Bob" username=""/>
</MediaContainer>`)
		case "/api/servers/machine-1/shared_servers":
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="3">
  <SharedServer id="1" userID="101" accessToken="tok-alice"/>
  <SharedServer id="2" userID="102" accessToken="tok-bob"/>
  <SharedServer id="3" userID="103" username="pending" accessToken=""/>
</MediaContainer>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewTVClient(server.URL, "owner-token", nil)
	accounts, err := c.SharedAccounts(context.Background(), "machine-1")
	if err != nil {
		t.Fatalf("SharedAccounts() error: %v", err)
	}

	want := map[string]string{"alice": "tok-alice", "Bob": "tok-bob"}
	if len(accounts) != len(want) {
		t.Fatalf("SharedAccounts() = %v, want %v", accounts, want)
	}
	for name, token := range want {
		if accounts[name] != token {
			t.Errorf("accounts[%q] = %q, want %q", name, accounts[name], token)
		}
	}
}

func TestSharedAccountsBreakerOpens(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewTVClient(server.URL, "owner-token", nil)
	for i := 0; i < 5; i++ {
		if _, err := c.SharedAccounts(context.Background(), "machine-1"); err == nil {
			t.Fatalf("SharedAccounts() should have failed")
		}
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want the breaker to stop after 3", calls)
	}
}

func TestProvider(t *testing.T) {
	pms := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"MediaContainer": {"machineIdentifier": "machine-1"}}`)
	}))
	defer pms.Close()
	tv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<user id="1" title="Owner Name" username="owner42"/>`)
	}))
	defer tv.Close()

	p := NewProvider(New(pms.URL, "owner-token", DefaultOptions()), NewTVClient(tv.URL, "owner-token", nil))
	account, library, err := p.Primary(context.Background())
	if err != nil {
		t.Fatalf("Primary() error: %v", err)
	}
	if account.Name != "owner42" || account.MachineID != "machine-1" {
		t.Errorf("Primary() = %+v", account)
	}
	if library == nil {
		t.Errorf("Primary() returned no library")
	}

	friend, ok := p.Open("friend-token").(*Client)
	if !ok || friend.token != "friend-token" || friend.BaseURL() != pms.URL {
		t.Errorf("Open() = %+v", friend)
	}
}

func TestProviderWithoutPlexTV(t *testing.T) {
	pms := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"MediaContainer": {"machineIdentifier": "machine-1"}}`)
	}))
	defer pms.Close()

	p := NewProvider(New(pms.URL, "owner-token", DefaultOptions()), nil)
	account, _, err := p.Primary(context.Background())
	if err != nil || account.Name != DefaultOwner {
		t.Errorf("Primary() = %+v, %v", account, err)
	}
	shared, err := p.SharedAccounts(context.Background(), account.MachineID)
	if err != nil || len(shared) != 0 {
		t.Errorf("SharedAccounts() = %v, %v", shared, err)
	}
}
