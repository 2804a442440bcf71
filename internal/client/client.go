package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/compose"
	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/internal/unwrap"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Client implements the amocrm.Client interface on top of any Requester.
type Client struct {
	requester amocrm.Requester
	composer  *compose.Composer
	logger    amocrm.Logger
	clock     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for composed requests.
func WithLogger(logger amocrm.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the clock used to resolve "now" moments.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates a client performing every composed request through requester.
func New(requester amocrm.Requester, opts ...Option) (*Client, error) {
	if requester == nil {
		return nil, amocrm.ErrRequesterMissing
	}

	c := &Client{
		requester: requester,
		logger:    amocrm.NoopLogger{},
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.composer = compose.New(compose.WithClock(c.clock))

	return c, nil
}

// Account implements amocrm.Client.Account.
func (c *Client) Account() amocrm.Account {
	return &Account{client: c}
}

// Company implements amocrm.Client.Company.
func (c *Client) Company() amocrm.Company {
	return NewCompany(c)
}

// Customer implements amocrm.Client.Customer.
func (c *Client) Customer() amocrm.Customer {
	return NewCustomer(c)
}

// Lead implements amocrm.Client.Lead.
func (c *Client) Lead() amocrm.Lead {
	return NewLead(c)
}

// Note implements amocrm.Client.Note.
func (c *Client) Note() amocrm.Note {
	return NewNote()
}

// Link implements amocrm.Client.Link.
func (c *Client) Link() amocrm.Link {
	return NewLink(c)
}

// Unsorted implements amocrm.Client.Unsorted.
func (c *Client) Unsorted() amocrm.Unsorted {
	return NewUnsorted(c)
}

func (c *Client) perform(ctx context.Context, req *amocrm.Request) (amocrm.Record, error) {
	c.logger.Debug("Composed request", map[string]interface{}{
		"method":    req.Method,
		"path":      req.Path,
		"query":     req.Query.Encode(),
		"entity":    req.Metadata["entity"],
		"operation": req.Metadata["operation"],
	})

	resp, err := c.requester.Perform(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	if resp == nil {
		resp = amocrm.Record{}
	}

	return resp, nil
}

// model is the shared base of every writable entity model: a value store
// bound to a route and a client.
type model struct {
	*amocrm.Entity

	client *Client
	route  endpoint.Route
}

func newModel(c *Client, fields *amocrm.FieldSet) model {
	return model{
		Entity: amocrm.NewEntity(fields),
		client: c,
		route:  endpoint.MustLookup(fields.Entity()),
	}
}

// batch returns the models an operation acts on. An empty batch means the
// receiving model itself.
func (m *model) batch(batch []amocrm.Model) []amocrm.Model {
	if len(batch) == 0 {
		return []amocrm.Model{m.Entity}
	}

	return batch
}

func (m *model) list(ctx context.Context, gen amocrm.Generation, params *amocrm.ListParams) ([]amocrm.Record, error) {
	req, err := m.client.composer.List(gen, m.route, params)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.perform(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", m.route.Entity, err)
	}

	return unwrap.List(resp, gen, m.route), nil
}

func (m *model) one(ctx context.Context, id int, params amocrm.Params) (amocrm.Record, error) {
	req, err := m.client.composer.One(m.route, id, params)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.perform(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", m.route.Entity, id, err)
	}

	return resp, nil
}

func (m *model) write(
	ctx context.Context,
	gen amocrm.Generation,
	op endpoint.Operation,
	modified *amocrm.Moment,
	batch []amocrm.Model,
) (*amocrm.Result, error) {
	models := m.batch(batch)

	req, err := m.client.composer.BatchWrite(gen, m.route, op, models, modified)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.perform(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, m.route.Entity, err)
	}

	return unwrap.Write(resp, gen, m.route, op, len(models)), nil
}
