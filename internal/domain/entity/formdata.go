package entity

import "sort"

// FormField is one key/value pair handed to a form agent.
type FormField struct {
	Key   string
	Value any
}

// FormData is an ordered mapping. Order matters: fuzzy resolution breaks ties by
// first-seen key.
type FormData []FormField

// FormDataFromMap orders keys lexically so resolution stays deterministic.
func FormDataFromMap(m map[string]any) FormData {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make(FormData, 0, len(keys))
	for _, k := range keys {
		data = append(data, FormField{Key: k, Value: m[k]})
	}
	return data
}

func (d FormData) Get(key string) (any, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (d FormData) Keys() []string {
	keys := make([]string, len(d))
	for i, f := range d {
		keys[i] = f.Key
	}
	return keys
}
