package collab

import (
	"context"
	"net/url"
	"time"
)

// AddressBookConfig points at the account service's contact lookup.
type AddressBookConfig struct {
	AccountsURL    string        `env:"ACCOUNTS_SERVICE_URL"`
	RequestTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"10s"`
}

// AddressBookClient resolves user email addresses from the account
// service. notify's email fallback consumes it.
type AddressBookClient struct {
	c *client
}

// NewAddressBookClient creates the account service contact adapter.
func NewAddressBookClient(cfg AddressBookConfig) (*AddressBookClient, error) {
	c, err := newClient(cfg.AccountsURL, cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &AddressBookClient{c: c}, nil
}

type emailResponse struct {
	Email string `json:"email"`
}

// EmailFor returns the user's primary email address.
func (a *AddressBookClient) EmailFor(ctx context.Context, userID string) (string, error) {
	var out emailResponse
	if err := a.c.getJSON(ctx, "/users/email", url.Values{"userId": {userID}}, &out); err != nil {
		return "", err
	}
	return out.Email, nil
}
