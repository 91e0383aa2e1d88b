package domain

import "testing"

func TestCloneServicesIsDeep(t *testing.T) {
	orig := []Service{{Name: "Api", Domains: []string{"api.example.com"}, Target: "localhost:4000"}}

	clone := CloneServices(orig)
	clone[0].Domains[0] = "changed"

	if orig[0].Domains[0] != "api.example.com" {
		t.Errorf("CloneServices() shares Domains with the original")
	}
	if CloneServices(nil) != nil {
		t.Errorf("CloneServices(nil) should return nil")
	}
}

func TestPrimaryDomain(t *testing.T) {
	if got := (Service{}).PrimaryDomain(); got != "" {
		t.Errorf("PrimaryDomain() on empty = %q, want empty", got)
	}
	if got := (Service{Domains: []string{"a", "b"}}).PrimaryDomain(); got != "a" {
		t.Errorf("PrimaryDomain() = %q, want a", got)
	}
}
