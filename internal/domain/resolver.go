package domain

import (
	"strings"
	"unicode"
)

// Query is a parsed search input.
type Query struct {
	Raw       string   // Normalized input
	Fragments []string // Space-separated fragments
	HasDot    bool     // Input contains a dot: match label by label
	Labels    []string // Dot-separated labels (only when HasDot)
}

// ParseQuery parses user input into a structured query.
// Examples:
//   - "web app" -> fragments ["web", "app"], matched against the first label or the name
//   - "api.lab" -> labels ["api", "lab"], matched positionally against domain labels
func ParseQuery(input string) *Query {
	input = strings.TrimSpace(strings.ToLower(input))
	q := &Query{Raw: input}
	if input == "" {
		return q
	}

	q.Fragments = strings.Fields(input)
	if strings.Contains(input, ".") {
		q.HasDot = true
		for _, label := range strings.Split(strings.Join(q.Fragments, ""), ".") {
			if label != "" {
				q.Labels = append(q.Labels, label)
			}
		}
	}
	return q
}

// DomainLabels splits a hostname into its lowercased DNS labels.
// Example: "api.lab.example.com" -> ["api", "lab", "example", "com"]
func DomainLabels(domain string) []string {
	return strings.Split(strings.ToLower(domain), ".")
}

// normalizeFragment keeps letters and digits only, lowercased.
func normalizeFragment(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}
