package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// loadRecords reads a JSON array of objects. Numbers are kept as json.Number so that
// integers survive unchanged.
func loadRecords(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("data file %s must contain a JSON array of objects", path)
		}
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	if records == nil {
		return nil, fmt.Errorf("data file %s must contain a JSON array of objects", path)
	}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("record %d in %s is not an object", i, path)
		}
	}
	return records, nil
}
