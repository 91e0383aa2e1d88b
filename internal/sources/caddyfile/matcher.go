package caddyfile

import (
	"regexp"
	"strings"
)

// matcherLine matches "@name host d1 d2 ...".
var matcherLine = regexp.MustCompile(`^@([\w-]+)\s+host\s+(.+)`)

// MatcherTable maps a named matcher to the domains of its host matcher.
// It lives for a single parse pass.
type MatcherTable map[string][]string

// Register stores the domains for a matcher, replacing any previous declaration.
func (t MatcherTable) Register(id string, domains []string) {
	t[id] = append([]string(nil), domains...)
}

// Lookup returns a copy of the domains registered for id.
func (t MatcherTable) Lookup(id string) ([]string, bool) {
	domains, ok := t[id]
	if !ok {
		return nil, false
	}
	return append([]string(nil), domains...), true
}

// parseMatcher recognizes a matcher declaration line.
func parseMatcher(line string) (id string, domains []string, ok bool) {
	m := matcherLine.FindStringSubmatch(line)
	if m == nil {
		return "", nil, false
	}
	domains = strings.Fields(m[2])
	if len(domains) == 0 {
		return "", nil, false
	}
	return m[1], domains, true
}
