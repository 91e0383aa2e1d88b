package handlers

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

const defaultSearchLimit = 10

type searchHit struct {
	Name   string  `json:"name"`
	Domain string  `json:"domain"`
	Target string  `json:"target"`
	Score  float64 `json:"score"`
}

type searchResponse struct {
	Query   string      `json:"query"`
	Results []searchHit `json:"results"`
}

// Search ranks the indexed services against ?q= by domain labels and name.
// A query naming a domain exactly puts its service first.
// ?limit= caps the number of hits (default 10).
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeJSON(w, d.Logger, http.StatusBadRequest, errorResponse{Error: "missing query parameter q"})
			return
		}

		limit := defaultSearchLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		candidates := domain.RankServices(domain.ParseQuery(query), d.MemoryIndex.All())
		if svc, ok := d.MemoryIndex.ByDomain(query); ok {
			candidates = promoteExact(svc, query, candidates)
		}
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}

		hits := make([]searchHit, 0, len(candidates))
		for _, c := range candidates {
			hits = append(hits, searchHit{
				Name:   c.Service.Name,
				Domain: c.Domain,
				Target: c.Service.Target,
				Score:  c.Score,
			})
		}

		d.Logger.Debug("search request",
			logger.String("query", query),
			logger.Int("hits", len(hits)))

		writeJSON(w, d.Logger, http.StatusOK, searchResponse{Query: query, Results: hits})
	}
}

// promoteExact puts svc first and drops its fuzzy-ranked duplicate.
func promoteExact(svc domain.Service, query string, ranked []domain.Candidate) []domain.Candidate {
	matched := query
	for _, dom := range svc.Domains {
		if strings.EqualFold(dom, query) {
			matched = dom
			break
		}
	}

	out := make([]domain.Candidate, 0, len(ranked)+1)
	out = append(out, domain.Candidate{Service: svc, Domain: matched, Score: domain.ScoreExactDomain})
	for _, c := range ranked {
		if sameService(c.Service, svc) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sameService(a, b domain.Service) bool {
	return a.Name == b.Name && a.Target == b.Target && slices.Equal(a.Domains, b.Domains)
}
