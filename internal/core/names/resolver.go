// Package names reconciles free-text personnel names against a roster.
// Resolution is a pure function of the candidate and a prebuilt roster index.
package names

import "strings"

// Entry is one roster member as seen by the resolver.
type Entry struct {
	ID   string
	Name string
}

// Options tunes fuzzy matching. The defaults are empirical; they are exposed
// so they can be adjusted against a curated name-confusion corpus.
type Options struct {
	// Threshold is the score a fuzzy match must strictly exceed.
	Threshold float64
	// BoostThreshold is the minimum Jaro score for the Winkler prefix boost.
	BoostThreshold float64
	// PrefixScale weights each common-prefix character.
	PrefixScale float64
	// MaxPrefix caps the common prefix considered.
	MaxPrefix int
}

// DefaultOptions returns the standard resolver tuning.
func DefaultOptions() Options {
	return Options{
		Threshold:      0.92,
		BoostThreshold: 0.7,
		PrefixScale:    0.1,
		MaxPrefix:      4,
	}
}

// Normalize uppercases a name and strips every character outside [A-Z0-9].
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type indexed struct {
	id   string
	norm string
}

// Index is an immutable snapshot of a roster prepared for resolution.
// Rebuild it whenever the roster changes.
type Index struct {
	exact   map[string]string
	entries []indexed
}

// NewIndex builds an index preserving roster order. When two entries share a
// normalized name the first one wins.
func NewIndex(roster []Entry) *Index {
	idx := &Index{
		exact:   make(map[string]string, len(roster)),
		entries: make([]indexed, 0, len(roster)),
	}
	for _, e := range roster {
		norm := Normalize(e.Name)
		if norm == "" {
			continue
		}
		if _, dup := idx.exact[norm]; !dup {
			idx.exact[norm] = e.ID
		}
		idx.entries = append(idx.entries, indexed{id: e.ID, norm: norm})
	}
	return idx
}

// Len returns the number of indexed roster entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Match is the outcome of resolving one candidate name.
// Closest carries the best-scoring roster id even when the match is rejected.
type Match struct {
	ID      string
	Score   float64
	Exact   bool
	Found   bool
	Closest string
}

// Resolver matches candidate names against a roster index.
type Resolver struct {
	index *Index
	opts  Options
}

// NewResolver creates a resolver over idx with the given tuning.
func NewResolver(idx *Index, opts Options) *Resolver {
	return &Resolver{index: idx, opts: opts}
}

// Resolve finds the roster member for candidate. An exact normalized match
// always wins; otherwise the best Jaro-Winkler score is accepted only when it
// strictly exceeds the threshold. Ties keep the first roster entry.
func (r *Resolver) Resolve(candidate string) Match {
	norm := Normalize(candidate)
	if norm == "" || r.index.Len() == 0 {
		return Match{}
	}

	if id, ok := r.index.exact[norm]; ok {
		return Match{ID: id, Score: 1, Exact: true, Found: true, Closest: id}
	}

	best := Match{}
	for _, e := range r.index.entries {
		score := r.opts.similarity(norm, e.norm)
		if score > best.Score {
			best = Match{Score: score, Closest: e.id}
		}
	}
	if best.Score > r.opts.Threshold {
		best.ID = best.Closest
		best.Found = true
	}
	return best
}

// ResolveID is a convenience wrapper returning the matched id, if any.
func (r *Resolver) ResolveID(candidate string) (string, bool) {
	m := r.Resolve(candidate)
	return m.ID, m.Found
}
