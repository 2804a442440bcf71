package unwrap

import (
	"sort"
	"strconv"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// keyedCollection orders {"12": {...}, "7": {...}} objects numerically,
// falling back to lexical order for non-numeric keys. An object that is a
// single record rather than a keyed set yields an empty collection.
func keyedCollection(object map[string]any) []amocrm.Record {
	keys := make([]string, 0, len(object))

	for key, value := range object {
		if _, ok := value.(map[string]any); !ok {
			return []amocrm.Record{}
		}

		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])

		if errA == nil && errB == nil {
			return a < b
		}

		return keys[i] < keys[j]
	})

	out := make([]amocrm.Record, 0, len(keys))
	for _, key := range keys {
		record, _ := object[key].(map[string]any)
		out = append(out, record)
	}

	return out
}
