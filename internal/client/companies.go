package client

import (
	"context"

	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Company implements amocrm.Company.
type Company struct {
	model
}

// NewCompany creates an empty company bound to c.
func NewCompany(c *Client) *Company {
	return &Company{model: newModel(c, amocrm.CompanyFields)}
}

// List implements amocrm.Company.List.
func (m *Company) List(ctx context.Context, gen amocrm.Generation, params *amocrm.ListParams) ([]amocrm.Record, error) {
	return m.list(ctx, gen, params)
}

// One implements amocrm.Company.One.
func (m *Company) One(ctx context.Context, id int, params amocrm.Params) (amocrm.Record, error) {
	return m.one(ctx, id, params)
}

// Add implements amocrm.Company.Add.
func (m *Company) Add(ctx context.Context, gen amocrm.Generation, batch ...amocrm.Model) (*amocrm.Result, error) {
	return m.write(ctx, gen, endpoint.OpAdd, nil, batch)
}

// Update implements amocrm.Company.Update. A nil modified stamps the
// update with the current time.
func (m *Company) Update(ctx context.Context, gen amocrm.Generation, modified *amocrm.Moment, batch ...amocrm.Model) (*amocrm.Result, error) {
	if modified == nil {
		modified = amocrm.Now()
	}

	return m.write(ctx, gen, endpoint.OpUpdate, modified, batch)
}
