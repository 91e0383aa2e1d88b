package domain

import (
	"math"
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Short first labels get a small boost
	ScoreLengthBonus = 5.0

	// Query equals the whole first label
	ScoreExactLabelBonus = 200.0

	// Query is one of the service's domains
	ScoreExactDomain = 1000.0
)

// Candidate is a service matched by a search query.
type Candidate struct {
	Service Service `json:"service"`
	Domain  string  `json:"domain"` // domain that produced the best score
	Score   float64 `json:"score"`
}

// Score returns the best match score of a service against a query, and the
// domain that produced it. Zero means no match.
func Score(query *Query, service Service) (float64, string) {
	if query == nil || query.Raw == "" {
		return 0, ""
	}

	best, bestDomain := 0.0, ""
	for _, domain := range service.Domains {
		if domain == UnknownDomain {
			continue
		}
		var s float64
		if query.HasDot {
			s = scoreLabels(query.Labels, DomainLabels(domain))
		} else {
			s = scoreFirstLabel(query.Fragments, DomainLabels(domain))
		}
		if s > best {
			best, bestDomain = s, domain
		}
	}

	// Without a dot the display name is a valid match too.
	if !query.HasDot {
		if s := scoreName(query.Fragments, service.Name); s > best {
			best, bestDomain = s, service.PrimaryDomain()
		}
	}

	return best, bestDomain
}

// scoreFirstLabel matches every fragment against the first label only.
func scoreFirstLabel(fragments, labels []string) float64 {
	if len(fragments) == 0 || len(labels) == 0 {
		return 0
	}
	first := labels[0]

	if len(fragments) == 1 && normalizeFragment(fragments[0]) == normalizeFragment(first) {
		return ScoreExactMatch + ScoreExactLabelBonus
	}

	var total float64
	for _, frag := range fragments {
		total += scoreFragment(frag, first, 0)
	}
	if total > 0 && len(first) < 10 {
		total += ScoreLengthBonus
	}
	return total
}

// scoreLabels matches query labels positionally. Every label must match.
func scoreLabels(queryLabels, labels []string) float64 {
	if len(queryLabels) == 0 || len(queryLabels) > len(labels) {
		return 0
	}
	var total float64
	for i, ql := range queryLabels {
		s := scoreFragment(ql, labels[i], i)
		if s == 0 {
			return 0
		}
		total += s
	}
	return total
}

// scoreName matches fragments against the words of the display name.
func scoreName(fragments []string, name string) float64 {
	words := strings.Fields(strings.ToLower(name))
	if len(fragments) == 0 || len(words) == 0 {
		return 0
	}
	var total float64
	for _, frag := range fragments {
		best := 0.0
		for i, w := range words {
			if s := scoreFragment(frag, w, i); s > best {
				best = s
			}
		}
		if best == 0 {
			return 0
		}
		total += best
	}
	return total
}

// scoreFragment scores a single query fragment against a label or word.
func scoreFragment(queryFrag, target string, position int) float64 {
	queryFrag = normalizeFragment(queryFrag)
	target = normalizeFragment(target)

	if queryFrag == "" || target == "" {
		return 0
	}

	switch {
	case queryFrag == target:
		return ScoreExactMatch + positionBonus(position)
	case strings.HasPrefix(target, queryFrag):
		return ScorePrefixMatch + positionBonus(position)
	case strings.Contains(target, queryFrag):
		idx := strings.Index(target, queryFrag)
		return ScoreSubstringMatch + ScorePositionBonus*(1.0-float64(idx)/float64(len(target)))
	}

	if sim := similarity(queryFrag, target); sim > 0.5 {
		return ScoreFuzzyMatch * sim
	}
	return 0
}

// positionBonus gives a decaying bonus to earlier positions.
func positionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// similarity is the ratio of query characters present in the target.
func similarity(query, target string) float64 {
	if query == "" || target == "" {
		return 0
	}
	matches := 0
	for _, c := range query {
		if strings.ContainsRune(target, c) {
			matches++
		}
	}
	return float64(matches) / float64(len([]rune(query)))
}

// RankServices scores every service and returns the matches, best first.
// Ties keep the input order.
func RankServices(query *Query, services []Service) []Candidate {
	candidates := make([]Candidate, 0, len(services))
	for _, svc := range services {
		score, domain := Score(query, svc)
		if score == 0 {
			continue
		}
		candidates = append(candidates, Candidate{Service: svc, Domain: domain, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
