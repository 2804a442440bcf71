package unwrap

import (
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

var (
	shortUserKeys        = []string{"id", "name", "login"}
	shortDictionaryKeys  = []string{"id", "name"}
	shortCustomFieldKeys = []string{"id", "name", "type_id", "enums"}
	shortPipelineKeys    = []string{"id", "label", "name"}
)

// Account returns the account object of a legacy accounts/current response.
func Account(resp amocrm.Record) amocrm.Record {
	return Object(Root(resp), "account")
}

// ShortAccount reduces a legacy account to the identifying keys of its
// dictionaries. Sections that are absent stay absent. The input is not
// modified.
func ShortAccount(account amocrm.Record) amocrm.Record {
	out := make(amocrm.Record, len(account))
	for key, value := range account {
		out[key] = value
	}

	restrictList(out, "users", shortUserKeys)
	restrictList(out, "leads_statuses", shortDictionaryKeys)
	restrictList(out, "note_types", shortDictionaryKeys)
	restrictList(out, "task_types", shortDictionaryKeys)
	restrictList(out, "pipelines", shortPipelineKeys)

	if groups, ok := out["custom_fields"].(map[string]any); ok {
		restricted := make(map[string]any, len(groups))
		for group, fields := range groups {
			restricted[group] = restrictItems(fields, shortCustomFieldKeys)
		}

		out["custom_fields"] = restricted
	}

	return out
}

func restrictList(object amocrm.Record, key string, keep []string) {
	if value, ok := object[key]; ok {
		object[key] = restrictItems(value, keep)
	}
}

// restrictItems keeps only the listed keys of every item of a list or of an
// object keyed by id.
func restrictItems(value any, keep []string) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, intersect(item, keep))
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = intersect(item, keep)
		}

		return out
	default:
		return value
	}
}

func intersect(item any, keep []string) any {
	object, ok := item.(map[string]any)
	if !ok {
		return item
	}

	out := make(map[string]any, len(keep))
	for _, key := range keep {
		if value, ok := object[key]; ok {
			out[key] = value
		}
	}

	return out
}
