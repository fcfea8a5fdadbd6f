package language

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const defaultRegistryEntries = 64

// GenericID is the profile id returned for unrecognized languages.
const GenericID = "generic"

// Registry resolves language ids to shared Profile instances. Lookups are
// cached per normalized (lower-cased) id; the first lookup for a language
// builds its profile, later lookups return the same instance.
type Registry struct {
	profiles *lru.Cache[string, *Profile]
	group    singleflight.Group
}

// NewRegistry creates a registry with the default cache size.
func NewRegistry() *Registry {
	cache, _ := lru.New[string, *Profile](defaultRegistryEntries)
	return &Registry{profiles: cache}
}

// Profile returns the profile for languageID, falling back to the generic
// profile for unknown or empty ids.
func (r *Registry) Profile(languageID string) *Profile {
	id := normalize(languageID)
	if p, ok := r.profiles.Get(id); ok {
		return p
	}
	v, _, _ := r.group.Do(id, func() (any, error) {
		if p, ok := r.profiles.Get(id); ok {
			return p, nil
		}
		p := buildProfile(id)
		r.profiles.Add(id, p)
		return p, nil
	})
	return v.(*Profile)
}

// KeywordsFor returns the keyword set for languageID.
func (r *Registry) KeywordsFor(languageID string) map[string]struct{} {
	return r.Profile(languageID).Keywords()
}

// DelimitersFor returns the delimiter set for languageID.
func (r *Registry) DelimitersFor(languageID string) map[rune]struct{} {
	return r.Profile(languageID).Delimiters()
}

func normalize(languageID string) string {
	id := strings.ToLower(strings.TrimSpace(languageID))
	if canonical, ok := languageAliases[id]; ok {
		return canonical
	}
	return id
}

func buildProfile(id string) *Profile {
	if spec, ok := profileSpecs[id]; ok {
		return newProfile(id, spec.keywords, spec.delimiters, spec.special)
	}
	// Unknown language: no keywords, shared punctuation and bracket sets.
	return newProfile(GenericID, nil, genericDelimiters, nil)
}
