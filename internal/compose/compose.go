// Package compose turns models into generation-specific requests.
package compose

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/internal/transform"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Header and parameter names.
const (
	HeaderIfModifiedSince = "If-Modified-Since"
	ParamModifiedFrom     = "filter[updated_at][from]"
	legacyEnvelope        = "request"
)

// Composer builds requests. It holds no per-call state.
type Composer struct {
	clock func() time.Time
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock sets the clock used to resolve "now".
func WithClock(clock func() time.Time) Option {
	return func(c *Composer) {
		c.clock = clock
	}
}

// New creates a Composer.
func New(opts ...Option) *Composer {
	c := &Composer{clock: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Now returns the composer's current time.
func (c *Composer) Now() time.Time {
	return c.clock()
}

func newRequest(method, path string, entity amocrm.EntityType, op endpoint.Operation) *amocrm.Request {
	req := amocrm.NewRequest(method, path)
	req.Metadata = map[string]interface{}{
		"entity":    string(entity),
		"operation": op.String(),
	}

	return req
}

func clamp(limit, ceiling int) int {
	if limit > ceiling {
		return ceiling
	}

	return limit
}

func (c *Composer) ifModifiedSince(req *amocrm.Request, m *amocrm.Moment) {
	if m == nil {
		return
	}

	req.SetHeader(HeaderIfModifiedSince, m.Resolve(c.clock).UTC().Format(http.TimeFormat))
}

// List composes a list request. The modified-since filter becomes an epoch
// query parameter for the current generation and a header for the legacy one.
func (c *Composer) List(gen amocrm.Generation, route endpoint.Route, params *amocrm.ListParams) (*amocrm.Request, error) {
	if params == nil {
		params = &amocrm.ListParams{}
	}

	switch gen {
	case amocrm.Current:
		if route.Current == "" {
			return nil, amocrm.NewConfigurationError(route.Entity, "list", "", amocrm.ErrUnsupportedGeneration)
		}

		req := newRequest(http.MethodGet, route.Current, route.Entity, endpoint.OpList)
		EncodeParams(req.Query, params.Extra)

		if params.Limit > 0 {
			req.Query.Set("limit", strconv.Itoa(clamp(params.Limit, route.CurrentPageCap)))
		}

		if params.Page > 0 {
			req.Query.Set("page", strconv.Itoa(params.Page))
		}

		if len(params.With) > 0 {
			req.Query.Set("with", strings.Join(params.With, ","))
		}

		if params.Query != "" {
			req.Query.Set("query", params.Query)
		}

		if params.ModifiedSince != nil {
			req.Query.Set(ParamModifiedFrom, strconv.FormatInt(params.ModifiedSince.Epoch(c.clock), 10))
		}

		return req, nil
	case amocrm.Legacy:
		if route.LegacyList == "" {
			return nil, amocrm.NewConfigurationError(route.Entity, "list", "", amocrm.ErrUnsupportedGeneration)
		}

		req := newRequest(route.LegacyListMethod, route.LegacyList, route.Entity, endpoint.OpList)
		EncodeParams(req.Query, params.Extra)

		if params.Limit > 0 {
			limit := clamp(params.Limit, route.LegacyPageCap)
			req.Query.Set("limit_rows", strconv.Itoa(limit))

			offset := params.Offset
			if offset == 0 && params.Page > 1 {
				offset = (params.Page - 1) * limit
			}

			if offset > 0 {
				req.Query.Set("limit_offset", strconv.Itoa(offset))
			}
		} else if params.Offset > 0 {
			req.Query.Set("limit_offset", strconv.Itoa(params.Offset))
		}

		if params.Query != "" {
			req.Query.Set("query", params.Query)
		}

		c.ifModifiedSince(req, params.ModifiedSince)

		return req, nil
	default:
		return nil, amocrm.NewConfigurationError(route.Entity, "list", "", amocrm.ErrUnsupportedGeneration)
	}
}

// One composes a current-generation request for a single entity.
func (c *Composer) One(route endpoint.Route, id int, params amocrm.Params) (*amocrm.Request, error) {
	if route.Current == "" {
		return nil, amocrm.NewConfigurationError(route.Entity, "one", "", amocrm.ErrUnsupportedGeneration)
	}

	if id <= 0 {
		return nil, amocrm.NewConfigurationError(route.Entity, "one", amocrm.FieldIdentity, amocrm.ErrInvalidIdentity)
	}

	req := newRequest(http.MethodGet, route.One(id), route.Entity, endpoint.OpOne)
	EncodeParams(req.Query, params)

	return req, nil
}

// Get composes a plain GET for fixed paths such as the account.
func (c *Composer) Get(path string, entity amocrm.EntityType, params amocrm.Params) *amocrm.Request {
	req := newRequest(http.MethodGet, path, entity, endpoint.OpOne)
	EncodeParams(req.Query, params)

	return req
}

// CheckBatch verifies that every model belongs to the route's entity type.
func CheckBatch(route endpoint.Route, op string, models []amocrm.Model) error {
	if len(models) == 0 {
		return amocrm.NewConfigurationError(route.Entity, op, "", amocrm.ErrEmptyBatch)
	}

	for i, model := range models {
		if model == nil {
			return amocrm.NewConfigurationError(route.Entity, op, "",
				fmt.Errorf("%w: batch item %d is nil", amocrm.ErrInvalidValue, i))
		}

		if model.Type() != route.Entity {
			return amocrm.NewConfigurationError(route.Entity, op, "",
				fmt.Errorf("%w: got %s", amocrm.ErrMixedBatch, model.Type()))
		}
	}

	return nil
}

// BatchWrite composes an add or update of a same-type batch. Updates check
// every identity before anything is composed. When modified is set, updates
// stamp it on every item and all current writes send it as If-Modified-Since.
func (c *Composer) BatchWrite(
	gen amocrm.Generation,
	route endpoint.Route,
	op endpoint.Operation,
	models []amocrm.Model,
	modified *amocrm.Moment,
) (*amocrm.Request, error) {
	if op != endpoint.OpAdd && op != endpoint.OpUpdate {
		return nil, amocrm.NewConfigurationError(route.Entity, op.String(), "", amocrm.ErrUnsupportedGeneration)
	}

	if err := CheckBatch(route, op.String(), models); err != nil {
		return nil, err
	}

	ids := make([]int, len(models))

	if op == endpoint.OpUpdate {
		for i, model := range models {
			id, err := model.ID()
			if err != nil {
				return nil, err
			}

			ids[i] = id
		}
	}

	switch gen {
	case amocrm.Current:
		return c.currentWrite(route, op, models, ids, modified)
	case amocrm.Legacy:
		return c.legacyWrite(route, op, models, ids, modified)
	default:
		return nil, amocrm.NewConfigurationError(route.Entity, op.String(), "", amocrm.ErrUnsupportedGeneration)
	}
}

func (c *Composer) currentWrite(
	route endpoint.Route,
	op endpoint.Operation,
	models []amocrm.Model,
	ids []int,
	modified *amocrm.Moment,
) (*amocrm.Request, error) {
	if route.Current == "" {
		return nil, amocrm.NewConfigurationError(route.Entity, op.String(), "", amocrm.ErrUnsupportedGeneration)
	}

	body := make([]any, 0, len(models))

	for i, model := range models {
		values := model.Values()

		if op == endpoint.OpUpdate {
			values[amocrm.FieldIdentity] = ids[i]

			if modified != nil {
				values[amocrm.FieldUpdatedAt] = modified.Epoch(c.clock)
			}
		}

		item, err := transform.Current(values, c.clock)
		if err != nil {
			return nil, amocrm.NewConfigurationError(route.Entity, op.String(), "", fmt.Errorf("%w: %w", amocrm.ErrInvalidValue, err))
		}

		body = append(body, item)
	}

	req := newRequest(route.WriteMethod(op), route.Current, route.Entity, op)
	req.Body = body
	c.ifModifiedSince(req, modified)

	return req, nil
}

func (c *Composer) legacyWrite(
	route endpoint.Route,
	op endpoint.Operation,
	models []amocrm.Model,
	ids []int,
	modified *amocrm.Moment,
) (*amocrm.Request, error) {
	if route.LegacySet == "" {
		return nil, amocrm.NewConfigurationError(route.Entity, op.String(), "", amocrm.ErrUnsupportedGeneration)
	}

	items := make([]any, 0, len(models))

	for i, model := range models {
		values := model.Values()

		if op == endpoint.OpUpdate {
			values[amocrm.FieldIdentity] = ids[i]

			if modified != nil {
				values[amocrm.FieldLastModified] = modified.Epoch(c.clock)
			}
		}

		item, err := transform.Legacy(values, c.clock)
		if err != nil {
			return nil, amocrm.NewConfigurationError(route.Entity, op.String(), "", fmt.Errorf("%w: %w", amocrm.ErrInvalidValue, err))
		}

		items = append(items, item)
	}

	key := route.LegacyKey
	if op == endpoint.OpUpdate {
		key = route.UpdateKey()
	}

	req := newRequest(http.MethodPost, route.LegacySet, route.Entity, op)
	req.Body = legacyBody(key, op.String(), items)

	return req, nil
}

func legacyBody(key, op string, items any) map[string]any {
	return map[string]any{
		legacyEnvelope: map[string]any{
			key: map[string]any{op: items},
		},
	}
}
