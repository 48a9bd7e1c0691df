package cache

import (
	"net/url"
	"strings"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

// ParamSeason marks a key as belonging to one season.
const ParamSeason = "season"

// Key identifies a cached record by resource kind and normalized parameters.
type Key struct {
	Kind   domain.Kind
	params url.Values
}

// NewKey builds a key from alternating name/value pairs. Names and values are trimmed and
// lower-cased, inner whitespace is collapsed and empty values are dropped. A trailing name
// without a value is ignored.
func NewKey(kind domain.Kind, pairs ...string) Key {
	k := Key{Kind: kind, params: url.Values{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		name := normalize(pairs[i])
		value := normalize(pairs[i+1])
		if name == "" || value == "" {
			continue
		}
		k.params.Set(name, value)
	}
	return k
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Param returns a parameter value, or "" when absent.
func (k Key) Param(name string) string {
	return k.params.Get(normalize(name))
}

// Season returns the season parameter.
func (k Key) Season() string {
	return k.Param(ParamSeason)
}

// String renders the canonical form kind?a=1&b=2 with parameters sorted by name.
func (k Key) String() string {
	if len(k.params) == 0 {
		return string(k.Kind)
	}
	return string(k.Kind) + "?" + k.params.Encode()
}

// SeasonScope matches keys for one season.
func SeasonScope(season string) func(Key) bool {
	want := normalize(season)
	return func(k Key) bool {
		return want != "" && k.Season() == want
	}
}

// SeasonScoped matches every key that carries a season.
func SeasonScoped() func(Key) bool {
	return func(k Key) bool {
		return k.Season() != ""
	}
}

// OtherSeasons matches season-scoped keys that do not belong to season.
func OtherSeasons(season string) func(Key) bool {
	want := normalize(season)
	return func(k Key) bool {
		s := k.Season()
		return s != "" && s != want
	}
}

// OfKind matches keys of one resource kind.
func OfKind(kind domain.Kind) func(Key) bool {
	return func(k Key) bool {
		return k.Kind == kind
	}
}
