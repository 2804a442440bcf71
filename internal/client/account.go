package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/internal/unwrap"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Account implements amocrm.Account.
type Account struct {
	client *Client
}

// Current implements amocrm.Account.Current. The short form only applies to
// the legacy generation, whose account carries the dictionaries it trims.
func (a *Account) Current(ctx context.Context, gen amocrm.Generation, short bool, params amocrm.Params) (amocrm.Record, error) {
	var path string

	switch gen {
	case amocrm.Legacy:
		path = endpoint.LegacyAccount
	case amocrm.Current:
		path = endpoint.CurrentAccount
	default:
		return nil, amocrm.NewConfigurationError(amocrm.EntityAccount, "current", "", amocrm.ErrUnsupportedGeneration)
	}

	resp, err := a.client.perform(ctx, a.client.composer.Get(path, amocrm.EntityAccount, params))
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	if gen == amocrm.Current {
		return resp, nil
	}

	account := unwrap.Account(resp)
	if short {
		return unwrap.ShortAccount(account), nil
	}

	return account, nil
}

// Users implements amocrm.Account.Users.
func (a *Account) Users(ctx context.Context, params amocrm.Params) ([]amocrm.Record, error) {
	resp, err := a.client.perform(ctx, a.client.composer.Get(endpoint.CurrentUsers, amocrm.EntityUsers, params))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return unwrap.Embedded(resp, string(amocrm.EntityUsers)), nil
}

// User implements amocrm.Account.User.
func (a *Account) User(ctx context.Context, id int, params amocrm.Params) (amocrm.Record, error) {
	if id <= 0 {
		return nil, amocrm.NewConfigurationError(amocrm.EntityUsers, "one", amocrm.FieldIdentity, amocrm.ErrInvalidIdentity)
	}

	resp, err := a.client.perform(ctx, a.client.composer.Get(endpoint.User(id), amocrm.EntityUsers, params))
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}

	return resp, nil
}

// Me implements amocrm.Account.Me.
func (a *Account) Me(ctx context.Context) (amocrm.Record, error) {
	resp, err := a.client.perform(ctx, a.client.composer.Get(endpoint.CurrentMe, amocrm.EntityUsers, nil))
	if err != nil {
		return nil, fmt.Errorf("getting authorized user: %w", err)
	}

	return resp, nil
}
