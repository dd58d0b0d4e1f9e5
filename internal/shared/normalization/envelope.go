package normalization

// UnwrapCollection extracts a list of records from a backend response.
//
// The backend is inconsistent about where it puts collections. Accepted shapes, in order:
//
//	[ {...}, ... ]                      top-level array
//	{ "data": [ ... ] }                 data envelope
//	{ "data": { "<key>": [ ... ] } }    data envelope wrapping a named key
//	{ "<key>": [ ... ] }                named key, tried in the order given
//
// This is a migration shim. Once the backend settles on a single response contract the
// named-key fallbacks should go. ok is false when no shape matched; non-object entries are dropped.
func UnwrapCollection(payload any, keys ...string) ([]map[string]any, bool) {
	raw, ok := locateCollection(payload, keys)
	if !ok {
		return nil, false
	}
	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if m := AsMap(entry); m != nil {
			items = append(items, m)
		}
	}
	return items, true
}

// UnwrapRecord extracts a single record, trying the named keys first and then the data envelope.
func UnwrapRecord(payload any, keys ...string) (map[string]any, bool) {
	container := AsMap(payload)
	if container == nil {
		return nil, false
	}
	for _, key := range keys {
		if record := AsMap(container[key]); record != nil {
			return record, true
		}
	}
	if data := AsMap(container["data"]); data != nil {
		for _, key := range keys {
			if record := AsMap(data[key]); record != nil {
				return record, true
			}
		}
		return data, true
	}
	return container, len(container) > 0
}

func locateCollection(payload any, keys []string) ([]any, bool) {
	if list, ok := payload.([]any); ok {
		return list, true
	}
	container := AsMap(payload)
	if container == nil {
		return nil, false
	}
	if data, present := container["data"]; present {
		if list, ok := data.([]any); ok {
			return list, true
		}
		if nested := AsMap(data); nested != nil {
			for _, key := range keys {
				if list, ok := nested[key].([]any); ok {
					return list, true
				}
			}
		}
	}
	for _, key := range keys {
		if list, ok := container[key].([]any); ok {
			return list, true
		}
	}
	return nil, false
}
