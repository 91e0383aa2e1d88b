// Package caddyfile extracts the reverse-proxied services described by a
// Caddyfile. Only a narrow, line-oriented subset of the grammar is understood:
// comments, "@id host ..." matchers, site and "handle @id" blocks, and the
// first token of reverse_proxy directives.
package caddyfile

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
)

// parser holds the state of one forward scan.
type parser struct {
	matchers    MatcherTable
	current     *block
	lastComment string
	services    []domain.Service
}

// Parse scans the Caddyfile text once and returns the services it declares,
// sorted by name (case-insensitive). Parsing never fails: blocks without a
// reverse_proxy target, or left open at end of input, are dropped.
func Parse(text string) []domain.Service {
	p := &parser{
		matchers: MatcherTable{},
		services: make([]domain.Service, 0),
	}
	for _, raw := range strings.Split(text, "\n") {
		p.line(strings.TrimSpace(raw))
	}

	SortServices(p.services)
	return p.services
}

func (p *parser) line(line string) {
	if strings.HasPrefix(line, "#") {
		p.comment(strings.TrimSpace(line[1:]))
		return
	}
	if line == "" {
		return
	}

	if id, domains, ok := parseMatcher(line); ok {
		p.matchers.Register(id, domains)
	}

	if strings.HasSuffix(line, "{") {
		header := strings.TrimSpace(strings.TrimSuffix(line, "{"))
		p.current = openBlock(header, p.lastComment, p.matchers)
		p.lastComment = ""
		return
	}

	if line == "}" {
		if p.current != nil {
			if svc, ok := p.current.close(p.matchers); ok {
				p.services = append(p.services, svc)
			}
		}
		p.current = nil
		return
	}

	if p.current != nil && isReverseProxy(line) {
		p.current.setTarget(line)
	}
}

// comment remembers the text as the name of the next block, unless it is a
// separator ("# ---- Media ----") or too short, in which case the previous
// comment is kept.
func (p *parser) comment(text string) {
	if strings.Contains(text, "---") || utf8.RuneCountInString(text) < 2 {
		return
	}
	p.lastComment = text
}

func isReverseProxy(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == "reverse_proxy"
}

// SortServices orders services by name, case-insensitively. Equal names keep
// their relative order.
func SortServices(services []domain.Service) {
	sort.SliceStable(services, func(i, j int) bool {
		return strings.ToLower(services[i].Name) < strings.ToLower(services[j].Name)
	})
}
