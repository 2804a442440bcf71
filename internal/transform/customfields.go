// Package transform converts entity snapshots into the nested shapes each
// API generation expects. Every function is pure.
package transform

import (
	"sort"
	"strconv"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

type fieldEntry struct {
	id     int
	code   string
	values []amocrm.CustomFieldValue
}

type fieldCollector struct {
	order []string
	byKey map[string]*fieldEntry
}

func newFieldCollector() *fieldCollector {
	return &fieldCollector{byKey: make(map[string]*fieldEntry)}
}

func (c *fieldCollector) add(id int, code string, values []amocrm.CustomFieldValue) {
	if id <= 0 && code == "" {
		return
	}

	key := code
	if id > 0 {
		key = strconv.Itoa(id)
	}

	entry, ok := c.byKey[key]
	if !ok {
		entry = &fieldEntry{id: id, code: code}
		c.byKey[key] = entry
		c.order = append(c.order, key)
	}

	for _, value := range values {
		if value.Value == nil && value.EnumID == 0 && value.Enum == "" {
			continue
		}

		entry.values = append(entry.values, value)
	}
}

func (c *fieldCollector) entries() []*fieldEntry {
	out := make([]*fieldEntry, 0, len(c.order))
	for _, key := range c.order {
		if entry := c.byKey[key]; len(entry.values) > 0 {
			out = append(out, entry)
		}
	}

	return out
}

// collectCustomFields accepts typed fields, lists of field objects and maps
// keyed by field id.
func collectCustomFields(raw any) ([]*fieldEntry, bool) {
	c := newFieldCollector()

	switch v := raw.(type) {
	case nil:
		return nil, true
	case amocrm.CustomField:
		c.add(v.FieldID, v.FieldCode, v.Values)
	case []amocrm.CustomField:
		for _, field := range v {
			c.add(field.FieldID, field.FieldCode, field.Values)
		}
	case []any:
		for _, item := range v {
			if !collectItem(c, item) {
				return nil, false
			}
		}
	case []map[string]any:
		for _, item := range v {
			if !collectItem(c, item) {
				return nil, false
			}
		}
	case map[int]any:
		ids := make([]int, 0, len(v))
		for id := range v {
			ids = append(ids, id)
		}

		sort.Ints(ids)

		for _, id := range ids {
			c.add(id, "", valuesOf(v[id]))
		}
	case map[string]any:
		if _, single := v["field_id"]; single {
			collectItem(c, v)

			break
		}

		if _, single := v["id"]; single {
			collectItem(c, v)

			break
		}

		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			if id, err := strconv.Atoi(key); err == nil {
				c.add(id, "", valuesOf(v[key]))
			} else {
				c.add(0, key, valuesOf(v[key]))
			}
		}
	default:
		return nil, false
	}

	return c.entries(), true
}

func collectItem(c *fieldCollector, item any) bool {
	switch field := item.(type) {
	case amocrm.CustomField:
		c.add(field.FieldID, field.FieldCode, field.Values)
	case map[string]any:
		id, ok := amocrm.AsInt(field["field_id"])
		if !ok {
			id, _ = amocrm.AsInt(field["id"])
		}

		code, _ := field["field_code"].(string)

		var values []amocrm.CustomFieldValue
		if raw, ok := field["values"]; ok {
			values = valuesOf(raw)
		} else if raw, ok := field["value"]; ok {
			values = valuesOf(raw)
		}

		c.add(id, code, values)
	default:
		return false
	}

	return true
}

func valuesOf(raw any) []amocrm.CustomFieldValue {
	switch v := raw.(type) {
	case nil:
		return nil
	case amocrm.CustomFieldValue:
		return []amocrm.CustomFieldValue{v}
	case []amocrm.CustomFieldValue:
		return v
	case []any:
		out := make([]amocrm.CustomFieldValue, 0, len(v))
		for _, item := range v {
			out = append(out, valuesOf(item)...)
		}

		return out
	case []string:
		out := make([]amocrm.CustomFieldValue, 0, len(v))
		for _, item := range v {
			out = append(out, amocrm.CustomFieldValue{Value: item})
		}

		return out
	case map[string]any:
		value := amocrm.CustomFieldValue{Value: v["value"]}
		value.EnumID, _ = amocrm.AsInt(v["enum_id"])

		if value.EnumID == 0 {
			if enum, ok := amocrm.AsInt(v["enum"]); ok {
				value.EnumID = enum
			} else if enum, ok := v["enum"].(string); ok {
				value.Enum = enum
			}
		}

		return []amocrm.CustomFieldValue{value}
	default:
		return []amocrm.CustomFieldValue{{Value: v}}
	}
}

// CustomFields produces the current wire shape
// [{field_id, values:[{value, enum_id?}]}], one entry per distinct field.
// Empty or unrecognised input yields nil so the caller can omit the key.
func CustomFields(raw any) []any {
	entries, ok := collectCustomFields(raw)
	if !ok || len(entries) == 0 {
		return nil
	}

	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		field := map[string]any{}
		if entry.id > 0 {
			field["field_id"] = entry.id
		} else {
			field["field_code"] = entry.code
		}

		values := make([]any, 0, len(entry.values))
		for _, value := range entry.values {
			item := map[string]any{}
			if value.Value != nil {
				item["value"] = value.Value
			}

			if value.EnumID > 0 {
				item["enum_id"] = value.EnumID
			} else if value.Enum != "" {
				item["enum_code"] = value.Enum
			}

			values = append(values, item)
		}

		field["values"] = values
		out = append(out, field)
	}

	return out
}

// LegacyCustomFields flattens typed fields to the bare legacy array
// [{id, values:[{value, enum?}]}]. Anything else is passed through.
func LegacyCustomFields(raw any) any {
	switch raw.(type) {
	case amocrm.CustomField, []amocrm.CustomField:
	default:
		return raw
	}

	entries, _ := collectCustomFields(raw)

	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		values := make([]any, 0, len(entry.values))
		for _, value := range entry.values {
			item := map[string]any{"value": value.Value}
			if value.EnumID > 0 {
				item["enum"] = value.EnumID
			} else if value.Enum != "" {
				item["enum"] = value.Enum
			}

			values = append(values, item)
		}

		out = append(out, map[string]any{"id": entry.id, "values": values})
	}

	return out
}
