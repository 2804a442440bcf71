package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/amocrm-client/internal/unwrap"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Link implements amocrm.Link.
type Link struct {
	model
}

// NewLink creates an empty link descriptor bound to c.
func NewLink(c *Client) *Link {
	return &Link{model: newModel(c, amocrm.LinkFields)}
}

// List implements amocrm.Link.List.
func (m *Link) List(ctx context.Context, gen amocrm.Generation, query amocrm.LinkQuery) ([]amocrm.Record, error) {
	req, err := m.client.composer.LinkList(gen, query)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.perform(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}

	return unwrap.List(resp, gen, m.route), nil
}

// Mass implements amocrm.Link.Mass.
func (m *Link) Mass(ctx context.Context, entity amocrm.EntityType, params amocrm.Params) ([]amocrm.Record, error) {
	req, err := m.client.composer.MassLinks(entity, params)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.perform(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("listing %s links: %w", entity, err)
	}

	return unwrap.Embedded(resp, string(amocrm.EntityLinks)), nil
}

// Link implements amocrm.Link.Link.
func (m *Link) Link(ctx context.Context, gen amocrm.Generation, batch ...amocrm.Model) (*amocrm.Result, error) {
	return m.apply(ctx, gen, amocrm.ModeLink, batch)
}

// Unlink implements amocrm.Link.Unlink.
func (m *Link) Unlink(ctx context.Context, gen amocrm.Generation, batch ...amocrm.Model) (*amocrm.Result, error) {
	return m.apply(ctx, gen, amocrm.ModeUnlink, batch)
}

// apply sends every composed request in order and stops at the first
// failure. Results of the requests already sent are returned with the error.
func (m *Link) apply(ctx context.Context, gen amocrm.Generation, mode amocrm.LinkMode, batch []amocrm.Model) (*amocrm.Result, error) {
	requests, err := m.client.composer.Link(gen, mode, m.batch(batch))
	if err != nil {
		return nil, err
	}

	result := &amocrm.Result{Records: []amocrm.Record{}, OK: true}

	for _, req := range requests {
		resp, err := m.client.perform(ctx, req)
		if err != nil {
			result.OK = false

			return result, fmt.Errorf("%s: %w", mode, err)
		}

		part := unwrap.Link(resp, gen, mode)
		result.Records = append(result.Records, part.Records...)
		result.OK = result.OK && part.OK
	}

	return result, nil
}
