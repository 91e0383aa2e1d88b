package caddyfile

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
)

type blockKind int

const (
	kindDomain blockKind = iota
	kindHandle
)

var (
	handleHeader = regexp.MustCompile(`^handle\s+@([\w-]+)`)
	schemePrefix = regexp.MustCompile(`^[a-zA-Z0-9+.-]+://`)
)

// block accumulates one site or handle block until its closing brace.
type block struct {
	kind         blockKind
	declaredName string // empty when no comment preceded the block
	matcherRef   string // handle blocks only
	domains      []string
	target       string // empty until a reverse_proxy directive is seen
}

// openBlock builds a block from a header line with the trailing "{" removed.
func openBlock(header, declaredName string, matchers MatcherTable) *block {
	if m := handleHeader.FindStringSubmatch(header); m != nil {
		domains, ok := matchers.Lookup(m[1])
		if !ok {
			domains = []string{domain.UnknownDomain}
		}
		return &block{
			kind:         kindHandle,
			declaredName: declaredName,
			matcherRef:   m[1],
			domains:      domains,
		}
	}

	var domains []string
	for _, d := range strings.Split(header, ",") {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		domains = []string{domain.UnknownDomain}
	}
	return &block{
		kind:         kindDomain,
		declaredName: declaredName,
		domains:      domains,
	}
}

// setTarget records the upstream of a reverse_proxy directive. First one wins.
func (b *block) setTarget(line string) {
	if b.target != "" {
		return
	}
	parts := strings.Fields(line)
	if len(parts) < 2 || parts[1] == "{" {
		return
	}
	b.target = parts[1]
}

// close finalizes the block. Matchers are resolved here rather than at open
// time so a handle may reference a matcher declared after it.
// ok is false when the block never got a target.
func (b *block) close(matchers MatcherTable) (domain.Service, bool) {
	if b.target == "" {
		return domain.Service{}, false
	}

	var resolved []string
	for _, d := range b.domains {
		if b.kind == kindHandle && d == domain.UnknownDomain {
			if late, ok := matchers.Lookup(b.matcherRef); ok {
				resolved = append(resolved, late...)
				continue
			}
		}
		resolved = append(resolved, d)
	}
	resolved = dedupe(resolved)

	name := b.declaredName
	if name == "" {
		name = deriveName(resolved[0])
	}
	if name == "" {
		name = b.target
	}

	return domain.Service{
		Name:    name,
		Domains: resolved,
		Target:  b.target,
	}, true
}

// dedupe removes repeats, keeping first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// deriveName turns a domain into a display name.
// Example: "home-assistant.example.com" -> "Home assistant"
func deriveName(d string) string {
	d = strings.TrimPrefix(d, "@")
	d = schemePrefix.ReplaceAllString(d, "")
	if i := strings.IndexAny(d, "./"); i >= 0 {
		d = d[:i]
	}
	if d == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(d)
	return string(unicode.ToUpper(r)) + strings.ReplaceAll(d[size:], "-", " ")
}
