package domain

// UnknownDomain is the placeholder kept for handle blocks whose matcher
// was never declared before the block closed.
const UnknownDomain = "unknown"

// Service is one reverse-proxied site extracted from the Caddyfile.
//
// Services are value objects: the extraction engine rebuilds the whole
// list on every refresh and nothing mutates them afterwards.
type Service struct {
	// Name is the display name. Taken from the comment above the block,
	// or derived from the first domain when there was none.
	// Example: "Web App", "Api"
	Name string `json:"name" yaml:"name"`

	// Domains are the unique hostnames served by the block, in first-seen order.
	// Example: ["a.example.com", "b.example.com"]
	Domains []string `json:"domains" yaml:"domains"`

	// Target is the upstream address of the first reverse_proxy directive, verbatim.
	// Example: 10.0.0.1:8080, https://backend.lan
	Target string `json:"target" yaml:"target"`
}

// PrimaryDomain returns the first domain, or "" when there is none.
func (s Service) PrimaryDomain() string {
	if len(s.Domains) == 0 {
		return ""
	}
	return s.Domains[0]
}

// CloneServices returns a deep copy so callers can hand the list out
// without sharing the Domains backing arrays.
func CloneServices(services []Service) []Service {
	if services == nil {
		return nil
	}
	out := make([]Service, len(services))
	for i, svc := range services {
		out[i] = Service{
			Name:    svc.Name,
			Domains: append([]string(nil), svc.Domains...),
			Target:  svc.Target,
		}
	}
	return out
}
