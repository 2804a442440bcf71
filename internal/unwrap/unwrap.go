// Package unwrap extracts domain collections from the envelopes of both API
// generations. A missing key at any level yields an empty collection.
package unwrap

import (
	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

const (
	legacyRoot  = "response"
	embeddedKey = "_embedded"
	errorsKey   = "errors"
)

// Root strips the legacy {"response": ...} wrapper when present.
func Root(resp amocrm.Record) amocrm.Record {
	if inner, ok := resp[legacyRoot].(map[string]any); ok {
		return inner
	}

	return resp
}

// Lookup walks path through nested objects.
func Lookup(resp amocrm.Record, path ...string) (any, bool) {
	var current any = resp

	for _, key := range path {
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = object[key]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// Object returns the object at path or an empty record.
func Object(resp amocrm.Record, path ...string) amocrm.Record {
	value, ok := Lookup(resp, path...)
	if !ok {
		return amocrm.Record{}
	}

	if object, ok := value.(map[string]any); ok {
		return object
	}

	return amocrm.Record{}
}

// Collection returns the records at path. Objects keyed by id, as some
// legacy responses use, are returned in key order. Non-object items are
// skipped.
func Collection(resp amocrm.Record, path ...string) []amocrm.Record {
	value, ok := Lookup(resp, path...)
	if !ok {
		return []amocrm.Record{}
	}

	switch v := value.(type) {
	case []any:
		out := make([]amocrm.Record, 0, len(v))
		for _, item := range v {
			if record, ok := item.(map[string]any); ok {
				out = append(out, record)
			}
		}

		return out
	case []map[string]any:
		out := make([]amocrm.Record, 0, len(v))
		out = append(out, v...)

		return out
	case map[string]any:
		return keyedCollection(v)
	default:
		return []amocrm.Record{}
	}
}

// Embedded returns _embedded.<key> of a current response.
func Embedded(resp amocrm.Record, key string) []amocrm.Record {
	return Collection(resp, embeddedKey, key)
}

// IDs extracts the id of every record that has one.
func IDs(records []amocrm.Record) []int {
	ids := make([]int, 0, len(records))

	for _, record := range records {
		if id, ok := amocrm.AsInt(record[amocrm.FieldIdentity]); ok {
			ids = append(ids, id)
		}
	}

	return ids
}

// HasErrors reports whether an errors key exists at path with any content.
func HasErrors(resp amocrm.Record, path ...string) bool {
	full := append(append(make([]string, 0, len(path)+1), path...), errorsKey)

	value, ok := Lookup(resp, full...)
	if !ok {
		return false
	}

	return amocrm.Truthy(value)
}

// List unwraps a list response.
func List(resp amocrm.Record, gen amocrm.Generation, route endpoint.Route) []amocrm.Record {
	if gen == amocrm.Legacy {
		return Collection(Root(resp), route.LegacyKey)
	}

	return Embedded(resp, route.EmbeddedKey())
}

// Write unwraps an add or update response. Legacy adds yield per-item results
// in batch order; single marks a batch that had exactly one entity so the
// caller gets a scalar identifier. Current responses always yield the
// embedded collection.
func Write(resp amocrm.Record, gen amocrm.Generation, route endpoint.Route, op endpoint.Operation, batchSize int) *amocrm.Result {
	if gen != amocrm.Legacy {
		records := Embedded(resp, route.EmbeddedKey())

		return &amocrm.Result{Records: records, IDs: IDs(records), OK: true}
	}

	root := Root(resp)

	if op == endpoint.OpUpdate {
		key := route.UpdateKey()
		records := Collection(root, key, op.String())
		_, present := Lookup(root, key)

		return &amocrm.Result{
			Records: records,
			IDs:     IDs(records),
			OK:      present && !HasErrors(root, key, op.String()) && !hasItemErrors(records),
		}
	}

	path := route.LegacyAddResult
	if len(path) == 0 {
		path = []string{route.LegacyKey, op.String()}
	}

	records := Collection(root, path...)

	return &amocrm.Result{
		Records: records,
		IDs:     IDs(records),
		Single:  batchSize == 1,
		OK:      len(records) > 0 && !hasItemErrors(records),
	}
}

// Link unwraps a link or unlink response. The legacy result is successful
// only when the errors key exists and is empty.
func Link(resp amocrm.Record, gen amocrm.Generation, mode amocrm.LinkMode) *amocrm.Result {
	if gen != amocrm.Legacy {
		records := Embedded(resp, "links")

		return &amocrm.Result{Records: records, OK: true}
	}

	root := Root(resp)
	path := []string{"links", string(mode)}

	value, present := Lookup(root, append(path, errorsKey)...)

	return &amocrm.Result{
		Records: Collection(root, path...),
		OK:      present && !amocrm.Truthy(value),
	}
}

// Unsorted unwraps a legacy unsorted add.
func Unsorted(resp amocrm.Record) *amocrm.Result {
	root := Root(resp)
	add := Object(root, "unsorted", "add")

	status, _ := add["status"].(string)
	result := &amocrm.Result{OK: status == "success"}

	if data, ok := add["data"].([]any); ok {
		for _, item := range data {
			switch v := item.(type) {
			case map[string]any:
				result.Records = append(result.Records, v)
			case string:
				result.Records = append(result.Records, amocrm.Record{"uid": v})
			}
		}
	}

	if result.Records == nil {
		result.Records = []amocrm.Record{}
	}

	result.Single = len(result.Records) == 1

	return result
}

func hasItemErrors(records []amocrm.Record) bool {
	for _, record := range records {
		if value, ok := record[errorsKey]; ok && amocrm.Truthy(value) {
			return true
		}
	}

	return false
}
