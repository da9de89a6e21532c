package portal

import (
	"strings"
)

const (
	localizationCookie  = "localization"
	defaultLocalization = "sr-Cyrl-RS"
)

// CookieJar accumulates cookies across the two portal requests of a
// single scan. The portal renders content (including error pages) by
// locale, so a localization cookie is always present in the serialized
// output even when the portal never set one. A jar is built fresh per
// scan and never shared.
type CookieJar struct {
	order  []string
	values map[string]string
}

func NewCookieJar() *CookieJar {
	return &CookieJar{values: make(map[string]string)}
}

// Ingest parses raw Set-Cookie header values and stores the name/value
// pair preceding the first ";". Attributes (path, domain, expiry) are
// discarded; entries without "=" are skipped; repeated names overwrite.
func (j *CookieJar) Ingest(setCookieHeaders []string) {
	for _, header := range setCookieHeaders {
		pair := header
		if idx := strings.Index(pair, ";"); idx >= 0 {
			pair = pair[:idx]
		}
		pair = strings.TrimSpace(pair)

		eq := strings.Index(pair, "=")
		if eq <= 0 {
			continue
		}

		name := strings.TrimSpace(pair[:eq])
		value := strings.TrimSpace(pair[eq+1:])
		if name == "" || value == "" {
			continue
		}

		if _, exists := j.values[name]; !exists {
			j.order = append(j.order, name)
		}
		j.values[name] = value
	}
}

// Serialize returns the jar as a Cookie header value.
func (j *CookieJar) Serialize() string {
	pairs := make([]string, 0, len(j.order)+1)
	for _, name := range j.order {
		pairs = append(pairs, name+"="+j.values[name])
	}
	if _, ok := j.values[localizationCookie]; !ok {
		pairs = append(pairs, localizationCookie+"="+defaultLocalization)
	}
	return strings.Join(pairs, "; ")
}
