package transform

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// DateFields are coerced to epoch seconds before transmission.
var DateFields = []string{amocrm.FieldDateCreate, amocrm.FieldLastModified, amocrm.FieldUpdatedAt, amocrm.FieldNextDate}

// Tags converts tag names to current tag objects [{name}]. Empty input
// yields nil.
func Tags(raw any) []any {
	var names []string

	switch v := raw.(type) {
	case []string:
		names = v
	case string:
		if v != "" {
			names = []string{v}
		}
	case []any:
		for _, item := range v {
			switch tag := item.(type) {
			case string:
				names = append(names, tag)
			case map[string]any:
				if name, ok := tag["name"].(string); ok {
					names = append(names, name)
				}
			}
		}
	}

	if len(names) == 0 {
		return nil
	}

	out := make([]any, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]any{"name": name})
	}

	return out
}

// LinkMetadata keeps the optional keys of mode whose value is truthy.
// It returns nil when nothing remains.
func LinkMetadata(mode amocrm.LinkMode, raw amocrm.Record) amocrm.Record {
	out := amocrm.Record{}

	for _, key := range mode.MetadataKeys() {
		if value, ok := raw[key]; ok && amocrm.Truthy(value) {
			out[key] = value
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

// CoerceDates rewrites the named moment fields of values in place as epoch
// seconds. The literal "now" and deferred moments resolve through clock.
func CoerceDates(values amocrm.Record, clock func() time.Time, fields ...string) error {
	if len(fields) == 0 {
		fields = DateFields
	}

	for _, field := range fields {
		value, ok := values[field]
		if !ok || value == nil {
			continue
		}

		epoch, err := amocrm.ToEpoch(value, clock)
		if err != nil {
			return fmt.Errorf("coercing %s: %w", field, err)
		}

		values[field] = epoch
	}

	return nil
}

// Current applies the current-generation transforms to a snapshot and
// returns a new record. Custom fields are normalised or dropped when empty,
// tags move to _embedded.tags and moments become epoch seconds.
func Current(values amocrm.Record, clock func() time.Time) (amocrm.Record, error) {
	out := make(amocrm.Record, len(values))
	for key, value := range values {
		out[key] = value
	}

	if raw, ok := out[amocrm.FieldCustomFields]; ok {
		if fields := CustomFields(raw); fields != nil {
			out[amocrm.FieldCustomFields] = fields
		} else {
			delete(out, amocrm.FieldCustomFields)
		}
	}

	if raw, ok := out[amocrm.FieldTags]; ok {
		delete(out, amocrm.FieldTags)

		if tags := Tags(raw); tags != nil {
			embedded := amocrm.Record{}
			if existing, ok := out[amocrm.FieldEmbedded].(map[string]any); ok {
				for key, value := range existing {
					embedded[key] = value
				}
			}

			embedded["tags"] = tags
			out[amocrm.FieldEmbedded] = embedded
		}
	}

	if err := CoerceDates(out, clock); err != nil {
		return nil, err
	}

	return out, nil
}

// Legacy applies the legacy-generation transforms. Tags and untyped custom
// fields are passed through; typed custom fields are flattened.
func Legacy(values amocrm.Record, clock func() time.Time) (amocrm.Record, error) {
	out := make(amocrm.Record, len(values))
	for key, value := range values {
		out[key] = value
	}

	if raw, ok := out[amocrm.FieldCustomFields]; ok {
		out[amocrm.FieldCustomFields] = LegacyCustomFields(raw)
	}

	if err := CoerceDates(out, clock); err != nil {
		return nil, err
	}

	return out, nil
}
