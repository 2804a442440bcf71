package client

import (
	"context"

	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Lead implements amocrm.Lead.
type Lead struct {
	model
}

// NewLead creates an empty lead bound to c.
func NewLead(c *Client) *Lead {
	return &Lead{model: newModel(c, amocrm.LeadFields)}
}

// List implements amocrm.Lead.List.
func (m *Lead) List(ctx context.Context, gen amocrm.Generation, params *amocrm.ListParams) ([]amocrm.Record, error) {
	return m.list(ctx, gen, params)
}

// One implements amocrm.Lead.One.
func (m *Lead) One(ctx context.Context, id int, params amocrm.Params) (amocrm.Record, error) {
	return m.one(ctx, id, params)
}

// Add implements amocrm.Lead.Add.
func (m *Lead) Add(ctx context.Context, gen amocrm.Generation, batch ...amocrm.Model) (*amocrm.Result, error) {
	return m.write(ctx, gen, endpoint.OpAdd, nil, batch)
}

// Update implements amocrm.Lead.Update. A nil modified stamps the
// update with the current time.
func (m *Lead) Update(ctx context.Context, gen amocrm.Generation, modified *amocrm.Moment, batch ...amocrm.Model) (*amocrm.Result, error) {
	if modified == nil {
		modified = amocrm.Now()
	}

	return m.write(ctx, gen, endpoint.OpUpdate, modified, batch)
}
