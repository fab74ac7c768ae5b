// Package lookup resolves company-name variants to their canonical spelling.
package lookup

import (
	"sort"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"leadclean/internal/logger"
	"leadclean/internal/util"
)

// Pair is one row of the variant table.
type Pair struct {
	Variant   string
	Canonical string
}

type Resolver struct {
	byKey map[string]string
	keys  []string
}

// New builds a resolver from pairs. Later pairs win on duplicate variants;
// rows with an empty side are skipped.
func New(pairs []Pair) *Resolver {
	r := &Resolver{byKey: map[string]string{}}
	for _, p := range pairs {
		key := Key(p.Variant)
		canonical := util.Clean(p.Canonical)
		if key == "" || canonical == "" {
			continue
		}
		if _, seen := r.byKey[key]; !seen {
			r.keys = append(r.keys, key)
		}
		r.byKey[key] = canonical
		// The canonical spelling resolves to itself.
		if ck := Key(canonical); ck != "" {
			if _, seen := r.byKey[ck]; !seen {
				r.keys = append(r.keys, ck)
				r.byKey[ck] = canonical
			}
		}
	}
	sort.Strings(r.keys)
	return r
}

// Empty returns a resolver that never matches.
func Empty() *Resolver {
	return New(nil)
}

// Load reads the variant table at path. A missing or unreadable source
// yields an empty resolver; the failure is only logged.
func Load(path string, log *zap.Logger) *Resolver {
	log = logger.OrNop(log)
	if path == "" {
		log.Debug("lookup: no table configured")
		return Empty()
	}
	pairs, err := ReadPairs(path)
	if err != nil {
		log.Warn("lookup: table unavailable, company resolution disabled", zap.String("path", path), zap.Error(err))
		return Empty()
	}
	r := New(pairs)
	log.Info("lookup: table loaded", zap.String("path", path), zap.Int("variants", r.Len()))
	return r
}

// Key is the case- and whitespace-insensitive lookup form of a name.
func Key(name string) string {
	return util.FoldKey(util.Clean(name))
}

func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byKey)
}

// Lookup returns the canonical form of name on an exact key match.
func (r *Resolver) Lookup(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	canonical, ok := r.byKey[Key(name)]
	return canonical, ok
}

// Resolve returns the canonical form of name, or name unchanged.
func (r *Resolver) Resolve(name string) string {
	if canonical, ok := r.Lookup(name); ok {
		return canonical
	}
	return name
}

// LookupFuzzy falls back to the nearest variant within maxDistance edits
// when there is no exact match. Equidistant variants pointing at different
// canonicals are treated as a miss.
func (r *Resolver) LookupFuzzy(name string, maxDistance int) (string, bool) {
	if canonical, ok := r.Lookup(name); ok {
		return canonical, true
	}
	if r == nil || maxDistance <= 0 {
		return "", false
	}
	key := Key(name)
	if key == "" {
		return "", false
	}

	best := maxDistance + 1
	found := ""
	ambiguous := false
	for _, k := range r.keys {
		d := levenshtein.ComputeDistance(key, k)
		if d > maxDistance || d > best {
			continue
		}
		canonical := r.byKey[k]
		if d < best {
			best, found, ambiguous = d, canonical, false
			continue
		}
		if canonical != found {
			ambiguous = true
		}
	}
	if found == "" || ambiguous {
		return "", false
	}
	return found, true
}
