// Package resolver maps a form question label onto the closest key of an applicant's
// form data using a sequence-matching similarity ratio.
package resolver

import (
	"sort"
	"strings"

	"form-applier/internal/domain/entity"
)

// DefaultCutoff is the similarity below which two strings are not considered a match.
const DefaultCutoff = 0.6

type Match struct {
	Key   string
	Value any
	Ratio float64
}

// Resolve returns up to limit keys of data whose lower-cased form has a similarity
// ratio of at least cutoff with query, best first. The ratio is taken key first, query
// second; the measure is not symmetric. Equal ratios keep the order keys
// appear in data. An empty result means the field is unresolved.
func Resolve(data entity.FormData, query string, cutoff float64, limit int) []Match {
	if limit <= 0 {
		return nil
	}

	matches := make([]Match, 0, len(data))
	for _, f := range data {
		ratio := Ratio(strings.ToLower(f.Key), query)
		if ratio < cutoff {
			continue
		}
		matches = append(matches, Match{Key: f.Key, Value: f.Value, Ratio: ratio})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Ratio > matches[j].Ratio
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// First returns the single best match.
func First(data entity.FormData, query string, cutoff float64) (Match, bool) {
	matches := Resolve(data, query, cutoff, 1)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}
