package client

import (
	"context"

	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Customer implements amocrm.Customer.
type Customer struct {
	model
}

// NewCustomer creates an empty customer bound to c.
func NewCustomer(c *Client) *Customer {
	return &Customer{model: newModel(c, amocrm.CustomerFields)}
}

// List implements amocrm.Customer.List.
func (m *Customer) List(ctx context.Context, gen amocrm.Generation, params *amocrm.ListParams) ([]amocrm.Record, error) {
	return m.list(ctx, gen, params)
}

// One implements amocrm.Customer.One.
func (m *Customer) One(ctx context.Context, id int, params amocrm.Params) (amocrm.Record, error) {
	return m.one(ctx, id, params)
}

// Add implements amocrm.Customer.Add. A modified moment is sent as
// If-Modified-Since on the current generation.
func (m *Customer) Add(ctx context.Context, gen amocrm.Generation, modified *amocrm.Moment, batch ...amocrm.Model) (*amocrm.Result, error) {
	return m.write(ctx, gen, endpoint.OpAdd, modified, batch)
}

// Update implements amocrm.Customer.Update.
func (m *Customer) Update(ctx context.Context, gen amocrm.Generation, batch ...amocrm.Model) (*amocrm.Result, error) {
	return m.write(ctx, gen, endpoint.OpUpdate, nil, batch)
}
