package compose

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// EncodeParams flattens nested parameters into bracketed query keys the way
// the API parses them: {"filter":{"id":[1,2]}} becomes filter[id][0]=1&filter[id][1]=2.
// Booleans encode as 1/0 and nil values are skipped.
func EncodeParams(dst url.Values, params map[string]any) {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		encodeValue(dst, key, params[key])
	}
}

func encodeValue(dst url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
	case map[string]any:
		keys := make([]string, 0, len(v))
		for sub := range v {
			keys = append(keys, sub)
		}

		sort.Strings(keys)

		for _, sub := range keys {
			encodeValue(dst, key+"["+sub+"]", v[sub])
		}
	case []any:
		for i, item := range v {
			encodeValue(dst, key+"["+strconv.Itoa(i)+"]", item)
		}
	case []map[string]any:
		for i, item := range v {
			encodeValue(dst, key+"["+strconv.Itoa(i)+"]", item)
		}
	case []string:
		for i, item := range v {
			dst.Add(key+"["+strconv.Itoa(i)+"]", item)
		}
	case []int:
		for i, item := range v {
			dst.Add(key+"["+strconv.Itoa(i)+"]", strconv.Itoa(item))
		}
	case bool:
		if v {
			dst.Add(key, "1")
		} else {
			dst.Add(key, "0")
		}
	case string:
		dst.Add(key, v)
	case int:
		dst.Add(key, strconv.Itoa(v))
	case int64:
		dst.Add(key, strconv.FormatInt(v, 10))
	case float64:
		dst.Add(key, strconv.FormatFloat(v, 'f', -1, 64))
	default:
		dst.Add(key, fmt.Sprint(v))
	}
}
