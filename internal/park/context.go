package park

import (
	"sort"
	"strings"
	"time"
)

// DefaultLimit is the number of parks requested when the caller gives no limit.
const DefaultLimit = 25

// Enricher turns raw parameters into a QueryContext.
type Enricher struct {
	vocab *Vocabulary
	now   func() time.Time
}

// NewEnricher creates an Enricher over the given vocabulary.
func NewEnricher(vocab *Vocabulary) *Enricher {
	return &Enricher{vocab: vocab, now: time.Now}
}

// Enrich builds the canonical context. It performs no I/O.
// The derived season only fills the gap when the caller gave none.
func (e *Enricher) Enrich(raw RawParams) QueryContext {
	qc := QueryContext{
		Query:       strings.TrimSpace(raw.Query),
		Lat:         raw.Lat,
		Lng:         raw.Lng,
		StateCode:   strings.TrimSpace(raw.StateCode),
		ParkCode:    strings.TrimSpace(raw.ParkCode),
		Designation: strings.TrimSpace(raw.Designation),
		Location:    strings.TrimSpace(raw.Location),
		Limit:       raw.Limit,
		ActivityIDs: e.resolveActivities(raw.Activities, raw.ActivityIDs),
	}
	if qc.Limit <= 0 {
		qc.Limit = DefaultLimit
	}

	if s := Season(strings.ToLower(strings.TrimSpace(raw.Season))); s.Valid() {
		qc.Season = s
	} else {
		qc.Season = SeasonOf(e.now())
	}

	return qc
}

// resolveActivities unions pre-resolved ids with ids looked up by name.
// Anything outside the vocabulary is dropped.
func (e *Enricher) resolveActivities(names, ids []string) []string {
	set := make(map[string]struct{}, len(names)+len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if e.vocab.Known(id) {
			set[id] = struct{}{}
		}
	}
	for _, name := range names {
		if id, ok := e.vocab.Lookup(name); ok {
			set[id] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
