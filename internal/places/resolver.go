// Package places extracts place-name mentions from text and geofilters them
// by proximity to a detected reference place.
package places

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pathfinder-ai/backend/pkg/config"
	"github.com/pathfinder-ai/backend/pkg/geo"
	"github.com/pathfinder-ai/backend/pkg/logger"
)

// Place is a resolved point of interest returned to the client.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Type string  `json:"type"`
}

// proximityPhrases trigger reference-place detection when found within
// proximityWindow characters of a place name.
var proximityPhrases = []string{"near", "close to", "around", "by", "next to"}

const proximityWindow = 30

type candidate struct {
	name    string
	pattern *regexp.Regexp
}

// Resolver matches configured place names in text. Candidates are ordered
// longest-name-first so "Twin Rock Beach" wins over "Twin Rock".
type Resolver struct {
	byName     map[string]config.PlaceConfig
	ordered    []config.PlaceConfig
	candidates []candidate
	maxKm      float64
}

func NewResolver(placeList []config.PlaceConfig, maxKm float64) *Resolver {
	byName := make(map[string]config.PlaceConfig, len(placeList))
	for _, p := range placeList {
		byName[p.Name] = p
	}

	sorted := append([]config.PlaceConfig(nil), placeList...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if len(sorted[a].Name) != len(sorted[b].Name) {
			return len(sorted[a].Name) > len(sorted[b].Name)
		}
		return sorted[a].Name < sorted[b].Name
	})

	candidates := make([]candidate, 0, len(sorted))
	for _, p := range sorted {
		candidates = append(candidates, candidate{
			name:    p.Name,
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(p.Name)) + `\b`),
		})
	}

	return &Resolver{
		byName:     byName,
		ordered:    placeList,
		candidates: candidates,
		maxKm:      maxKm,
	}
}

// ExtractMentions returns the configured place names found in text as whole
// words, case-insensitive, longest names first. Each place appears at most
// once.
func (r *Resolver) ExtractMentions(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, c := range r.candidates {
		if c.pattern.MatchString(lower) {
			found = append(found, c.name)
		}
	}
	return found
}

// MergeMentions combines mentions from the user's raw query and from the
// retrieved fact text: direct mentions first, then fact mentions not already
// present, each group keeping its own order.
func MergeMentions(direct, fromFact []string) []string {
	merged := append([]string(nil), direct...)
	for _, name := range fromFact {
		already := false
		for _, m := range merged {
			if m == name {
				already = true
				break
			}
		}
		if !already {
			merged = append(merged, name)
		}
	}
	return merged
}

// DetectReference scans the raw query for a place name occurring within the
// proximity window of a phrase like "near" or "close to". Places are scanned
// in configuration order and the first matching pair wins.
func (r *Resolver) DetectReference(rawQuery string) string {
	lower := strings.ToLower(rawQuery)

	for _, p := range r.ordered {
		placeIdx := strings.Index(lower, strings.ToLower(p.Name))
		if placeIdx < 0 {
			continue
		}
		for _, phrase := range proximityPhrases {
			phraseIdx := strings.Index(lower, phrase)
			if phraseIdx < 0 {
				continue
			}
			dist := placeIdx - phraseIdx
			if dist < 0 {
				dist = -dist
			}
			if dist < proximityWindow {
				logger.Debug("Detected proximity query",
					zap.String("reference", p.Name),
					zap.String("phrase", phrase),
				)
				return p.Name
			}
		}
	}
	return ""
}

// Resolve maps names to place records, dropping names without configuration.
// When referenceName is set, places farther than the proximity limit from the
// reference are filtered out.
func (r *Resolver) Resolve(names []string, referenceName string) []Place {
	resolved := make([]Place, 0, len(names))
	for _, name := range names {
		p, ok := r.byName[name]
		if !ok {
			continue
		}
		resolved = append(resolved, Place{Name: p.Name, Lat: p.Lat, Lng: p.Lng, Type: p.Type})
	}

	if referenceName != "" {
		if ref, ok := r.byName[referenceName]; ok {
			reference := Place{Name: ref.Name, Lat: ref.Lat, Lng: ref.Lng, Type: ref.Type}
			return FilterByProximity(resolved, &reference, r.maxKm)
		}
	}
	return resolved
}

// FilterByProximity drops places farther than maxKm from the reference,
// preserving order. A nil reference passes the list through unchanged.
func FilterByProximity(list []Place, reference *Place, maxKm float64) []Place {
	if reference == nil {
		return list
	}

	kept := make([]Place, 0, len(list))
	for _, p := range list {
		distance := geo.Haversine(reference.Lat, reference.Lng, p.Lat, p.Lng)
		if distance > maxKm {
			logger.Debug("Filtered out distant place",
				zap.String("place", p.Name),
				zap.String("reference", reference.Name),
				zap.Float64("distance_km", distance),
			)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// All returns every configured place in configuration order, for the map
// view.
func (r *Resolver) All() []Place {
	all := make([]Place, 0, len(r.ordered))
	for _, p := range r.ordered {
		all = append(all, Place{Name: p.Name, Lat: p.Lat, Lng: p.Lng, Type: p.Type})
	}
	return all
}
