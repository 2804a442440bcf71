package compose

import (
	"net/http"

	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/internal/transform"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

func linkOperation(mode amocrm.LinkMode) endpoint.Operation {
	if mode == amocrm.ModeUnlink {
		return endpoint.OpUnlink
	}

	return endpoint.OpLink
}

// Link composes link or unlink requests. Every descriptor is validated before
// anything is composed. The current generation needs one request per source
// entity, each with a single-item body; the legacy generation sends the whole
// batch at once.
func (c *Composer) Link(gen amocrm.Generation, mode amocrm.LinkMode, models []amocrm.Model) ([]*amocrm.Request, error) {
	route := endpoint.MustLookup(amocrm.EntityLinks)
	op := linkOperation(mode)

	if err := CheckBatch(route, op.String(), models); err != nil {
		return nil, err
	}

	descriptors := make([]amocrm.LinkDescriptor, len(models))

	for i, model := range models {
		descriptor, err := amocrm.DescriptorFromValues(model.Values())
		if err != nil {
			return nil, err
		}

		descriptors[i] = descriptor
	}

	switch gen {
	case amocrm.Current:
		requests := make([]*amocrm.Request, 0, len(descriptors))

		for _, descriptor := range descriptors {
			item := map[string]any{
				"to_entity_id":   descriptor.ToID,
				"to_entity_type": string(descriptor.To),
			}

			if metadata := transform.LinkMetadata(mode, descriptor.Metadata); metadata != nil {
				item["metadata"] = metadata
			}

			req := newRequest(http.MethodPost, endpoint.LinkAction(descriptor.From, descriptor.FromID, mode), route.Entity, op)
			req.Body = []any{item}
			requests = append(requests, req)
		}

		return requests, nil
	case amocrm.Legacy:
		items := make([]any, 0, len(models))
		for _, model := range models {
			items = append(items, model.Values())
		}

		req := newRequest(http.MethodPost, route.LegacySet, route.Entity, op)
		req.Body = legacyBody(route.LegacyKey, string(mode), items)

		return []*amocrm.Request{req}, nil
	default:
		return nil, amocrm.NewConfigurationError(route.Entity, op.String(), "", amocrm.ErrUnsupportedGeneration)
	}
}

// LinkList composes a link listing. Legacy filters are wrapped into the
// links[0][...] form unless the caller already did so.
func (c *Composer) LinkList(gen amocrm.Generation, query amocrm.LinkQuery) (*amocrm.Request, error) {
	route := endpoint.MustLookup(amocrm.EntityLinks)

	switch gen {
	case amocrm.Current:
		if !query.EntityType.Linkable() {
			return nil, amocrm.NewConfigurationError(route.Entity, "list", "entity_type", amocrm.ErrInvalidLink)
		}

		if query.EntityID <= 0 {
			return nil, amocrm.NewConfigurationError(route.Entity, "list", "entity_id", amocrm.ErrInvalidIdentity)
		}

		req := newRequest(http.MethodGet, endpoint.EntityLinks(query.EntityType, query.EntityID), route.Entity, endpoint.OpList)
		EncodeParams(req.Query, query.Params)

		return req, nil
	case amocrm.Legacy:
		params := query.Params
		if _, ok := params["links"]; !ok {
			filter := amocrm.Params{}
			for key, value := range params {
				filter[key] = value
			}

			if query.EntityType != "" {
				filter["from"] = string(query.EntityType)
			}

			if query.EntityID > 0 {
				filter["from_id"] = query.EntityID
			}

			params = amocrm.Params{"links": []any{filter}}
		}

		req := newRequest(route.LegacyListMethod, route.LegacyList, route.Entity, endpoint.OpList)
		EncodeParams(req.Query, params)

		return req, nil
	default:
		return nil, amocrm.NewConfigurationError(route.Entity, "list", "", amocrm.ErrUnsupportedGeneration)
	}
}

// MassLinks composes the current listing of links for many entities of one type.
func (c *Composer) MassLinks(entity amocrm.EntityType, params amocrm.Params) (*amocrm.Request, error) {
	if !entity.Linkable() {
		return nil, amocrm.NewConfigurationError(amocrm.EntityLinks, "mass", "entity_type", amocrm.ErrInvalidLink)
	}

	req := newRequest(http.MethodGet, endpoint.MassLinks(entity), amocrm.EntityLinks, endpoint.OpList)
	EncodeParams(req.Query, params)

	return req, nil
}

// Unsorted composes a legacy unsorted add for the given category.
func (c *Composer) Unsorted(category string, models []amocrm.Model) (*amocrm.Request, error) {
	route := endpoint.MustLookup(amocrm.EntityUnsorted)

	if err := CheckBatch(route, "add", models); err != nil {
		return nil, err
	}

	items := make([]any, 0, len(models))

	for _, model := range models {
		item, err := transform.Legacy(model.Values(), c.clock)
		if err != nil {
			return nil, amocrm.NewConfigurationError(route.Entity, "add", "", err)
		}

		items = append(items, item)
	}

	req := newRequest(http.MethodPost, route.LegacySet, route.Entity, endpoint.OpAdd)
	req.Body = map[string]any{
		legacyEnvelope: map[string]any{
			route.LegacyKey: map[string]any{
				"category": category,
				"add":      items,
			},
		},
	}

	return req, nil
}
