// Package docstats holds the pure, in-memory transformations applied to a
// loaded document snapshot: free-text search, source filtering, the source
// catalogue, frequency ranking and the dashboard summary. No I/O happens
// here; everything is recomputed from scratch on each snapshot.
package docstats

import (
	"sort"
	"strings"
	"time"

	"casedocs/internal/model"
)

// SourceAll is the sentinel value that disables source filtering.
const SourceAll = "all"

// TopSourcesLimit caps the frequency ranking shown on the dashboard.
const TopSourcesLimit = 5

// Filter returns the documents matching both the search term and the source
// filter. The search term matches case-insensitively as a substring of the
// complainant name, subject or source; an empty term matches everything.
// The source filter is an exact match, with SourceAll (or empty) matching
// everything. The two conditions compose with logical AND.
func Filter(docs []model.Document, term, source string) []model.Document {
	term = strings.ToLower(term)

	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if term != "" &&
			!strings.Contains(strings.ToLower(d.ComplainantName), term) &&
			!strings.Contains(strings.ToLower(d.Subject), term) &&
			!strings.Contains(strings.ToLower(d.Source), term) {
			continue
		}
		if source != "" && source != SourceAll && d.Source != source {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Sources returns the catalogue of selectable source values: the SourceAll
// sentinel first, followed by every distinct source in the order it first
// appears in the snapshot.
func Sources(docs []model.Document) []string {
	out := []string{SourceAll}
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.Source]; ok {
			continue
		}
		seen[d.Source] = struct{}{}
		out = append(out, d.Source)
	}
	return out
}

// SourceCount is one entry of the frequency ranking.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// TopSources counts documents per distinct source and returns at most limit
// entries sorted by descending count. Ties keep the order in which the source
// was first seen in the snapshot.
func TopSources(docs []model.Document, limit int) []SourceCount {
	counts := make(map[string]int, len(docs))
	order := make([]string, 0, len(docs))
	for _, d := range docs {
		if _, ok := counts[d.Source]; !ok {
			order = append(order, d.Source)
		}
		counts[d.Source]++
	}

	ranked := make([]SourceCount, 0, len(order))
	for _, s := range order {
		ranked = append(ranked, SourceCount{Source: s, Count: counts[s]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// CountInMonth counts the documents whose ReceivedDate falls within the
// calendar month of now, evaluated in now's location. Both month boundaries
// are inclusive.
func CountInMonth(docs []model.Document, now time.Time) int {
	loc := now.Location()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	n := 0
	for _, d := range docs {
		t := d.ReceivedDate.In(loc)
		if !t.Before(start) && t.Before(end) {
			n++
		}
	}
	return n
}

// Summary is the aggregate view backing the dashboard.
type Summary struct {
	Total           int              `json:"total"`
	ThisMonth       int              `json:"this_month"`
	WithFiles       int              `json:"with_files"`
	DistinctSources int              `json:"distinct_sources"`
	TopSources      []SourceCount    `json:"top_sources"`
	Recent          []model.Document `json:"recent"`
}

// Summarize computes the dashboard summary for a snapshot. The snapshot is
// expected in receivedDate-descending order, so Recent is simply its head.
func Summarize(docs []model.Document, now time.Time) Summary {
	withFiles := 0
	for i := range docs {
		if docs[i].HasFile() {
			withFiles++
		}
	}

	recent := docs
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return Summary{
		Total:           len(docs),
		ThisMonth:       CountInMonth(docs, now),
		WithFiles:       withFiles,
		DistinctSources: len(Sources(docs)) - 1, // minus the sentinel
		TopSources:      TopSources(docs, TopSourcesLimit),
		Recent:          recent,
	}
}
