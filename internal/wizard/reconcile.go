package wizard

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pavelanni/attendance/internal/model"
)

// KeyResolver looks up the value of a canonical activity key in a raw
// payload, returning false when its naming convention finds nothing.
type KeyResolver func(raw model.ActivityPayload, kind model.ActivityKind) (int, bool)

// DefaultResolvers are tried in order; the first hit wins.
var DefaultResolvers = []KeyResolver{
	resolveExact,
	resolveVariant(strings.ToLower),
	resolveVariant(strings.ToUpper),
	resolveVariant(upperFirst),
	resolveVariant(snakeCase),
	resolveVariant(kebabCase),
	resolveFold,
}

// Reconcile reads every known activity out of raw. Keys that no resolver
// finds stay at zero. Only the load path uses this; writes always carry
// canonical keys.
func Reconcile(raw model.ActivityPayload, resolvers ...KeyResolver) model.ActivityCounts {
	if len(resolvers) == 0 {
		resolvers = DefaultResolvers
	}
	counts := make(model.ActivityCounts, len(model.ActivityKinds))
	for _, kind := range model.ActivityKinds {
		counts[kind] = 0
		for _, resolve := range resolvers {
			if v, ok := resolve(raw, kind); ok {
				counts.Set(kind, v)
				break
			}
		}
	}
	return counts
}

func resolveExact(raw model.ActivityPayload, kind model.ActivityKind) (int, bool) {
	return lookup(raw, string(kind))
}

func resolveVariant(transform func(string) string) KeyResolver {
	return func(raw model.ActivityPayload, kind model.ActivityKind) (int, bool) {
		return lookup(raw, transform(string(kind)))
	}
}

// resolveFold is the last resort: case-insensitive match ignoring separators.
func resolveFold(raw model.ActivityPayload, kind model.ActivityKind) (int, bool) {
	want := squash(string(kind))
	for k := range raw {
		if squash(k) == want {
			return lookup(raw, k)
		}
	}
	return 0, false
}

func lookup(raw model.ActivityPayload, key string) (int, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, false
	}
	return toInt(v)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case float32:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func splitCamel(s, sep string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteString(sep)
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func snakeCase(s string) string { return splitCamel(s, "_") }

func kebabCase(s string) string { return splitCamel(s, "-") }

func squash(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
